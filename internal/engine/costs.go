package engine

// UnitVariableCost is the direct cost consumed by one unit of the product:
// the sum over its cost items of quantity-per-unit times unit value.
func UnitVariableCost(p Product) float64 {
	var total float64
	for _, item := range p.CostItems {
		total += item.QuantityPerUnit * item.UnitValue
	}
	return total
}

// UnitExpense is the per-unit portion of the product's variable expenses.
// Percentage-of-revenue expenses are excluded; they depend on price and are
// evaluated against realized monthly revenue.
func UnitExpense(p Product) float64 {
	var total float64
	for _, e := range p.Expenses {
		if e.Kind == ExpensePerUnit {
			total += e.Value
		}
	}
	return total
}

// RevenuePercentExpense is the combined percentage-of-revenue rate of the
// product's variable expenses, as a fraction (7.5% -> 0.075).
func RevenuePercentExpense(p Product) float64 {
	var pct float64
	for _, e := range p.Expenses {
		if e.Kind == ExpensePercentOfRevenue {
			pct += e.Value
		}
	}
	return pct / 100
}

// CostSchedule aggregates the monthly cost side of the plan.
type CostSchedule struct {
	// PerProductVariable holds each product's monthly variable cost
	// (direct cost + per-unit expenses + percent-of-revenue expenses).
	PerProductVariable [][]float64
	// Variable is the aggregate monthly variable cost.
	Variable []float64
	// Fixed is the aggregate monthly fixed cost across all categories.
	Fixed []float64
}

// AggregateCosts derives monthly variable and fixed cost series from the
// validated input and the projected revenue.
func AggregateCosts(in Input, rev RevenueSchedule) CostSchedule {
	months := in.TotalMonths()
	sched := CostSchedule{
		PerProductVariable: make([][]float64, len(in.Products)),
		Variable:           make([]float64, months),
		Fixed:              make([]float64, months),
	}
	for i, p := range in.Products {
		unitCost := UnitVariableCost(p) + UnitExpense(p)
		pct := RevenuePercentExpense(p)
		series := make([]float64, months)
		for m := 0; m < months; m++ {
			cost := unitCost*rev.Quantities[i][m] + pct*rev.PerProduct[i][m]
			series[m] = cost
			sched.Variable[m] += cost
		}
		sched.PerProductVariable[i] = series
	}
	for _, fc := range in.FixedCosts {
		for m := 0; m < months; m++ {
			value := fc.Monthly
			if override, ok := fc.Overrides[m]; ok {
				value = override
			}
			sched.Fixed[m] += value
		}
	}
	return sched
}
