package engine

// Options parametrizes one scenario run.
type Options struct {
	// QuantityMultiplier scales every product's quantity series uniformly;
	// 1.0 is the base case.
	QuantityMultiplier float64 `json:"quantity_multiplier"`
	// DiscountRate feeds NPV and the discounted payback.
	DiscountRate float64 `json:"discount_rate"`
	// FinanceRate and ReinvestRate refine the MIRR; both default to the
	// discount rate when nil.
	FinanceRate  *float64 `json:"finance_rate,omitempty"`
	ReinvestRate *float64 `json:"reinvest_rate,omitempty"`
}

// MonthlyResult merges the month's income statement and cash position.
type MonthlyResult struct {
	Month              int     `json:"month"`
	Revenue            float64 `json:"revenue"`
	VariableCost       float64 `json:"variable_cost"`
	ContributionMargin float64 `json:"contribution_margin"`
	FixedCost          float64 `json:"fixed_cost"`
	OperatingResult    float64 `json:"operating_result"`
	Interest           float64 `json:"interest"`
	Tax                float64 `json:"tax"`
	NetResult          float64 `json:"net_result"`

	CashInflow        float64 `json:"cash_inflow"`
	CashOutflow       float64 `json:"cash_outflow"`
	OperatingCashFlow float64 `json:"operating_cash_flow"`
	FinancingCashFlow float64 `json:"financing_cash_flow"`
	InvestingCashFlow float64 `json:"investing_cash_flow"`
	NetCashFlow       float64 `json:"net_cash_flow"`
	CashBalance       float64 `json:"cash_balance"`
}

// AnnualResult is the straight yearly sum of the monthly results; the
// closing balance is the last month's.
type AnnualResult struct {
	Year               int     `json:"year"`
	Revenue            float64 `json:"revenue"`
	VariableCost       float64 `json:"variable_cost"`
	ContributionMargin float64 `json:"contribution_margin"`
	FixedCost          float64 `json:"fixed_cost"`
	OperatingResult    float64 `json:"operating_result"`
	Interest           float64 `json:"interest"`
	Tax                float64 `json:"tax"`
	NetResult          float64 `json:"net_result"`

	CashInflow        float64 `json:"cash_inflow"`
	CashOutflow       float64 `json:"cash_outflow"`
	OperatingCashFlow float64 `json:"operating_cash_flow"`
	FinancingCashFlow float64 `json:"financing_cash_flow"`
	InvestingCashFlow float64 `json:"investing_cash_flow"`
	NetCashFlow       float64 `json:"net_cash_flow"`
	ClosingBalance    float64 `json:"closing_balance"`
}

// Result is the complete output of one scenario run.
type Result struct {
	Options      Options             `json:"options"`
	Monthly      []MonthlyResult     `json:"monthly"`
	Annual       []AnnualResult      `json:"annual"`
	Amortization []AmortizationEntry `json:"amortization,omitempty"`
	// PeriodCashFlows is the annual series the indicators are computed
	// over; index 0 is the initial position.
	PeriodCashFlows []float64  `json:"period_cash_flows"`
	BreakEven       BreakEven  `json:"break_even"`
	Viability       Indicators `json:"viability"`
}

// Run validates the snapshot, applies the scenario shock to a private copy
// and executes the full pipeline. The base input is never mutated and two
// runs with the same arguments produce identical results.
func Run(in Input, opts Options) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if opts.QuantityMultiplier == 0 {
		opts.QuantityMultiplier = 1
	}
	if opts.QuantityMultiplier < 0 {
		return nil, domainErr("scenario", "quantity_multiplier", "must be positive, got %.4f", opts.QuantityMultiplier)
	}

	work := in.Clone()
	months := work.TotalMonths()

	rev, err := ProjectRevenue(&work)
	if err != nil {
		return nil, err
	}
	if opts.QuantityMultiplier != 1 {
		for i := range work.Products {
			for m := range work.Products[i].Series {
				work.Products[i].Series[m].Quantity *= opts.QuantityMultiplier
			}
		}
		if rev, err = ProjectRevenue(&work); err != nil {
			return nil, err
		}
	}

	costs := AggregateCosts(work, rev)

	tax, err := TaxSeries(work.Project.TaxAnnex, rev.Total)
	if err != nil {
		return nil, err
	}

	installments := MonthlyInstallments(work.Financing, months)
	interest := MonthlyInterest(work.Financing, months)

	statement := BuildStatement(rev.Total, costs.Variable, costs.Fixed, interest, tax)
	cash := BuildCashFlow(work, rev, costs, tax, installments)

	monthly := make([]MonthlyResult, months)
	for m := 0; m < months; m++ {
		s, c := statement[m], cash[m]
		monthly[m] = MonthlyResult{
			Month:              m + 1,
			Revenue:            s.Revenue,
			VariableCost:       s.VariableCost,
			ContributionMargin: s.ContributionMargin,
			FixedCost:          s.FixedCost,
			OperatingResult:    s.OperatingResult,
			Interest:           s.Interest,
			Tax:                s.Tax,
			NetResult:          s.NetResult,
			CashInflow:         c.Inflow + c.LoanInflow,
			CashOutflow:        c.OperatingOutflow + c.Installment + c.Capex,
			OperatingCashFlow:  c.Operating,
			FinancingCashFlow:  c.Financing,
			InvestingCashFlow:  c.Investing,
			NetCashFlow:        c.Net,
			CashBalance:        c.Balance,
		}
	}

	flows := AnnualNetFlows(work, cash)

	result := &Result{
		Options:         opts,
		Monthly:         monthly,
		Annual:          aggregateResults(monthly),
		PeriodCashFlows: flows,
		BreakEven:       AnalyzeBreakEven(work, rev, costs),
		Viability:       ComputeIndicators(flows, opts.DiscountRate, opts.FinanceRate, opts.ReinvestRate),
	}
	if work.Financing != nil && work.Financing.Principal > 0 {
		result.Amortization = Amortize(*work.Financing)
	}
	return result, nil
}

func aggregateResults(monthly []MonthlyResult) []AnnualResult {
	years := len(monthly) / 12
	annual := make([]AnnualResult, years)
	for y := 0; y < years; y++ {
		out := AnnualResult{Year: y + 1}
		for m := y * 12; m < (y+1)*12; m++ {
			row := monthly[m]
			out.Revenue += row.Revenue
			out.VariableCost += row.VariableCost
			out.ContributionMargin += row.ContributionMargin
			out.FixedCost += row.FixedCost
			out.OperatingResult += row.OperatingResult
			out.Interest += row.Interest
			out.Tax += row.Tax
			out.NetResult += row.NetResult
			out.CashInflow += row.CashInflow
			out.CashOutflow += row.CashOutflow
			out.OperatingCashFlow += row.OperatingCashFlow
			out.FinancingCashFlow += row.FinancingCashFlow
			out.InvestingCashFlow += row.InvestingCashFlow
			out.NetCashFlow += row.NetCashFlow
			out.ClosingBalance = row.CashBalance
		}
		annual[y] = out
	}
	return annual
}
