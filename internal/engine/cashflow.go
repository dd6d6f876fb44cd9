package engine

// CashFlowRow is one month of the cash projection, with operating,
// financing and investing flows reported separately so consumers can
// present the plan with financing split out.
type CashFlowRow struct {
	Month int `json:"month"`
	// Inflow is revenue collected in cash this month, honoring each
	// product's credit share and collection delay.
	Inflow float64 `json:"inflow"`
	// OperatingOutflow covers variable cost, fixed cost and tax.
	OperatingOutflow float64 `json:"operating_outflow"`
	Installment      float64 `json:"installment"`
	LoanInflow       float64 `json:"loan_inflow"`
	Capex            float64 `json:"capex"`

	Operating float64 `json:"operating"`
	Financing float64 `json:"financing"`
	Investing float64 `json:"investing"`
	Net       float64 `json:"net"`
	Balance   float64 `json:"balance"`
}

// BuildCashFlow projects the monthly cash position. Credit sales are
// collected delay months after the sale; sales falling before month zero
// collect nothing. The loan principal enters at month 0 and capex leaves at
// each item's acquisition month, so the initial balance is seeded by both.
func BuildCashFlow(in Input, rev RevenueSchedule, costs CostSchedule, tax, installments []float64) []CashFlowRow {
	months := in.TotalMonths()
	rows := make([]CashFlowRow, months)

	capex := make([]float64, months)
	for _, item := range in.Capex {
		if item.Month < months {
			capex[item.Month] += item.Value
		}
	}

	var balance float64
	for m := 0; m < months; m++ {
		var inflow float64
		for i, p := range in.Products {
			credit := p.CreditPercent / 100
			inflow += (1 - credit) * rev.PerProduct[i][m]
			if lag := m - p.CreditDelay; lag >= 0 {
				inflow += credit * rev.PerProduct[i][lag]
			}
		}

		operatingOutflow := costs.Variable[m] + costs.Fixed[m] + tax[m]

		var loanInflow float64
		if m == 0 && in.Financing != nil {
			loanInflow = in.Financing.Principal
		}

		row := CashFlowRow{
			Month:            m + 1,
			Inflow:           inflow,
			OperatingOutflow: operatingOutflow,
			Installment:      installments[m],
			LoanInflow:       loanInflow,
			Capex:            capex[m],
			Operating:        inflow - operatingOutflow,
			Financing:        loanInflow - installments[m],
			Investing:        -capex[m],
		}
		row.Net = row.Operating + row.Financing + row.Investing
		balance += row.Net
		row.Balance = balance
		rows[m] = row
	}
	return rows
}

// AnnualNetFlows reduces the monthly projection to the period series the
// viability indicators are computed over. Index 0 is the initial position:
// loan principal minus month-zero capital outlays. Subsequent indexes hold
// each year's net cash flow with those seed movements excluded, so nothing
// is counted twice.
func AnnualNetFlows(in Input, rows []CashFlowRow) []float64 {
	years := len(rows) / 12
	flows := make([]float64, years+1)

	var initialCapex float64
	for _, item := range in.Capex {
		if item.Month == 0 {
			initialCapex += item.Value
		}
	}
	var loan float64
	if in.Financing != nil {
		loan = in.Financing.Principal
	}
	flows[0] = loan - initialCapex

	for y := 0; y < years; y++ {
		var total float64
		for m := y * 12; m < (y+1)*12; m++ {
			net := rows[m].Net
			if m == 0 {
				net -= rows[m].LoanInflow
				net += initialCapex
			}
			total += net
		}
		flows[y+1] = total
	}
	return flows
}
