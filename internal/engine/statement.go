package engine

// StatementRow is one month of the variable-costing income statement (DRE).
// Financing principal never appears here; only the interest component
// reduces the result.
type StatementRow struct {
	Month              int     `json:"month"`
	Revenue            float64 `json:"revenue"`
	VariableCost       float64 `json:"variable_cost"`
	ContributionMargin float64 `json:"contribution_margin"`
	FixedCost          float64 `json:"fixed_cost"`
	OperatingResult    float64 `json:"operating_result"`
	Interest           float64 `json:"interest"`
	Tax                float64 `json:"tax"`
	NetResult          float64 `json:"net_result"`
}

// AnnualStatementRow is the straight sum of twelve monthly rows.
type AnnualStatementRow struct {
	Year               int     `json:"year"`
	Revenue            float64 `json:"revenue"`
	VariableCost       float64 `json:"variable_cost"`
	ContributionMargin float64 `json:"contribution_margin"`
	FixedCost          float64 `json:"fixed_cost"`
	OperatingResult    float64 `json:"operating_result"`
	Interest           float64 `json:"interest"`
	Tax                float64 `json:"tax"`
	NetResult          float64 `json:"net_result"`
}

// BuildStatement assembles the monthly DRE from the projected series.
// All slices must share the same length.
func BuildStatement(revenue, variableCost, fixedCost, interest, tax []float64) []StatementRow {
	rows := make([]StatementRow, len(revenue))
	for m := range revenue {
		cm := revenue[m] - variableCost[m]
		operating := cm - fixedCost[m]
		rows[m] = StatementRow{
			Month:              m + 1,
			Revenue:            revenue[m],
			VariableCost:       variableCost[m],
			ContributionMargin: cm,
			FixedCost:          fixedCost[m],
			OperatingResult:    operating,
			Interest:           interest[m],
			Tax:                tax[m],
			NetResult:          operating - interest[m] - tax[m],
		}
	}
	return rows
}

// AggregateStatement sums each year's twelve months. It never re-derives
// any figure from yearly inputs.
func AggregateStatement(rows []StatementRow) []AnnualStatementRow {
	years := len(rows) / 12
	annual := make([]AnnualStatementRow, years)
	for y := 0; y < years; y++ {
		out := AnnualStatementRow{Year: y + 1}
		for m := y * 12; m < (y+1)*12; m++ {
			out.Revenue += rows[m].Revenue
			out.VariableCost += rows[m].VariableCost
			out.ContributionMargin += rows[m].ContributionMargin
			out.FixedCost += rows[m].FixedCost
			out.OperatingResult += rows[m].OperatingResult
			out.Interest += rows[m].Interest
			out.Tax += rows[m].Tax
			out.NetResult += rows[m].NetResult
		}
		annual[y] = out
	}
	return annual
}
