package engine

// ProductBreakEven is the first-year break-even view of a single product.
// Prices and margins are first-year monthly averages; Quantity and Revenue
// are per-month figures at the allocated share of fixed cost.
type ProductBreakEven struct {
	Name               string  `json:"name"`
	AveragePrice       float64 `json:"average_price"`
	UnitVariableCost   float64 `json:"unit_variable_cost"`
	UnitMargin         float64 `json:"unit_margin"`
	RevenueShare       float64 `json:"revenue_share"`
	AllocatedFixedCost float64 `json:"allocated_fixed_cost"`
	Quantity           float64 `json:"quantity"`
	Revenue            float64 `json:"revenue"`
	// Reachable is false when the unit price does not exceed the unit
	// variable cost; break-even is then undefined rather than an error.
	Reachable bool `json:"reachable"`
}

// BreakEven aggregates the plan-level and per-product break-even figures.
type BreakEven struct {
	MonthlyFixedCost        float64            `json:"monthly_fixed_cost"`
	ContributionMarginRatio float64            `json:"contribution_margin_ratio"`
	AggregateRevenue        float64            `json:"aggregate_revenue"`
	AggregateReachable      bool               `json:"aggregate_reachable"`
	Products                []ProductBreakEven `json:"products"`
}

// AnalyzeBreakEven derives break-even quantities and revenue from the
// first projection year. Fixed cost is allocated across products in
// proportion to their revenue share; the aggregate break-even revenue uses
// the revenue-weighted contribution-margin ratio instead, which needs no
// allocation policy.
func AnalyzeBreakEven(in Input, rev RevenueSchedule, costs CostSchedule) BreakEven {
	const window = 12 // first year

	var fixedTotal float64
	for m := 0; m < window; m++ {
		fixedTotal += costs.Fixed[m]
	}
	monthlyFixed := fixedTotal / window

	var totalRevenue, totalVariable float64
	revenueByProduct := make([]float64, len(in.Products))
	quantityByProduct := make([]float64, len(in.Products))
	for i := range in.Products {
		for m := 0; m < window; m++ {
			revenueByProduct[i] += rev.PerProduct[i][m]
			quantityByProduct[i] += rev.Quantities[i][m]
			totalVariable += costs.PerProductVariable[i][m]
		}
		totalRevenue += revenueByProduct[i]
	}

	out := BreakEven{
		MonthlyFixedCost: monthlyFixed,
		Products:         make([]ProductBreakEven, len(in.Products)),
	}

	if totalRevenue > 0 {
		out.ContributionMarginRatio = (totalRevenue - totalVariable) / totalRevenue
	}
	if out.ContributionMarginRatio > 0 {
		out.AggregateRevenue = monthlyFixed / out.ContributionMarginRatio
		out.AggregateReachable = true
	}

	for i, p := range in.Products {
		pbe := ProductBreakEven{Name: p.Name}
		if totalRevenue > 0 {
			pbe.RevenueShare = revenueByProduct[i] / totalRevenue
		} else if len(in.Products) > 0 {
			pbe.RevenueShare = 1 / float64(len(in.Products))
		}
		pbe.AllocatedFixedCost = monthlyFixed * pbe.RevenueShare
		if quantityByProduct[i] > 0 {
			pbe.AveragePrice = revenueByProduct[i] / quantityByProduct[i]
		}
		// Effective unit variable cost: direct cost, per-unit expenses and
		// the percent-of-revenue expenses evaluated at the average price.
		pbe.UnitVariableCost = UnitVariableCost(p) + UnitExpense(p) + pbe.AveragePrice*RevenuePercentExpense(p)
		pbe.UnitMargin = pbe.AveragePrice - pbe.UnitVariableCost
		if pbe.UnitMargin > 0 {
			pbe.Quantity = pbe.AllocatedFixedCost / pbe.UnitMargin
			pbe.Revenue = pbe.Quantity * pbe.AveragePrice
			pbe.Reachable = true
		}
		out.Products[i] = pbe
	}
	return out
}
