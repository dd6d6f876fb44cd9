package engine

import "math"

// GenerateSeries compounds a growth basis into a full monthly series:
// value[m] = base * (1+growth)^m. Zero growth yields a flat series and
// negative growth a declining one; a rate at or below -100% would produce
// negative values and is rejected.
func GenerateSeries(basis GrowthBasis, months int) ([]MonthEntry, error) {
	if basis.QuantityGrowth <= -1 || basis.PriceGrowth <= -1 {
		return nil, domainErr("product", "basis", "growth rate must be greater than -100%%")
	}
	if basis.BasePrice < 0 || basis.BaseQuantity < 0 {
		return nil, domainErr("product", "basis", "base price and quantity must be non-negative")
	}
	series := make([]MonthEntry, months)
	for m := 0; m < months; m++ {
		series[m] = MonthEntry{
			Price:    basis.BasePrice * math.Pow(1+basis.PriceGrowth, float64(m)),
			Quantity: basis.BaseQuantity * math.Pow(1+basis.QuantityGrowth, float64(m)),
		}
	}
	return series, nil
}

// Regenerate rebuilds the product's series from its growth basis,
// overwriting every month. Manual edits made after a previous generation
// are discarded; there is deliberately no partial merge.
func (p *Product) Regenerate(months int) error {
	if p.Basis == nil {
		return shapeErr(productEntity(0, p.Name), "basis", "required for regeneration")
	}
	series, err := GenerateSeries(*p.Basis, months)
	if err != nil {
		return err
	}
	p.Series = series
	p.Mode = SeriesModeGenerated
	return nil
}

// RevenueSchedule is the projector output: one revenue series per product
// plus the aggregate, and the quantity series needed by the cost side.
type RevenueSchedule struct {
	PerProduct [][]float64
	Quantities [][]float64
	Total      []float64
}

// ProjectRevenue materializes any generated series that is still empty and
// multiplies price by quantity month by month. The input must already be
// validated.
func ProjectRevenue(in *Input) (RevenueSchedule, error) {
	months := in.TotalMonths()
	sched := RevenueSchedule{
		PerProduct: make([][]float64, len(in.Products)),
		Quantities: make([][]float64, len(in.Products)),
		Total:      make([]float64, months),
	}
	for i := range in.Products {
		p := &in.Products[i]
		if p.Mode == SeriesModeGenerated && len(p.Series) == 0 {
			if err := p.Regenerate(months); err != nil {
				return RevenueSchedule{}, err
			}
		}
		if len(p.Series) != months {
			return RevenueSchedule{}, shapeErr(productEntity(i, p.Name), "series", "expected %d entries, got %d", months, len(p.Series))
		}
		revenue := make([]float64, months)
		quantities := make([]float64, months)
		for m, e := range p.Series {
			if e.Quantity < 0 {
				return RevenueSchedule{}, domainErr(productEntity(i, p.Name), "series", "negative quantity %.4f at month %d", e.Quantity, m)
			}
			revenue[m] = e.Price * e.Quantity
			quantities[m] = e.Quantity
			sched.Total[m] += revenue[m]
		}
		sched.PerProduct[i] = revenue
		sched.Quantities[i] = quantities
	}
	return sched, nil
}
