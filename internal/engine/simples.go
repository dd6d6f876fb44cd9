package engine

import "strings"

// simplesBracket is one progressive bracket of a Simples Nacional annex.
// Upper is the exclusive upper bound of trailing-twelve-month revenue; the
// last bracket is open-ended and also absorbs revenue above it.
type simplesBracket struct {
	Upper     float64
	Rate      float64
	Deduction float64
}

// The bracket thresholds are shared by all annexes; rates and deductions
// (parcela a deduzir) follow the official Simples Nacional tables.
var simplesUppers = []float64{180000, 360000, 720000, 1800000, 3600000, 4800000}

var simplesAnnexes = map[string][]simplesBracket{
	"I":   buildAnnex([]float64{0.04, 0.073, 0.095, 0.107, 0.143, 0.19}, []float64{0, 5940, 13860, 22500, 87300, 378000}),
	"II":  buildAnnex([]float64{0.045, 0.078, 0.10, 0.112, 0.147, 0.30}, []float64{0, 5940, 13860, 22500, 85500, 720000}),
	"III": buildAnnex([]float64{0.06, 0.112, 0.135, 0.16, 0.21, 0.33}, []float64{0, 9360, 17640, 35640, 125640, 648000}),
	"IV":  buildAnnex([]float64{0.045, 0.09, 0.102, 0.14, 0.22, 0.33}, []float64{0, 8100, 12420, 39780, 183780, 828000}),
	"V":   buildAnnex([]float64{0.155, 0.18, 0.195, 0.205, 0.23, 0.305}, []float64{0, 4500, 9900, 17100, 62100, 540000}),
}

func buildAnnex(rates, deductions []float64) []simplesBracket {
	brackets := make([]simplesBracket, len(simplesUppers))
	for i := range simplesUppers {
		brackets[i] = simplesBracket{Upper: simplesUppers[i], Rate: rates[i], Deduction: deductions[i]}
	}
	return brackets
}

// EffectiveTaxRate resolves the bracket containing the trailing-twelve-month
// revenue (RBT12) and returns the effective rate
// (rbt12*nominal - deduction) / rbt12, clamped at zero. Revenue above the
// final upper bound belongs to the final bracket. Zero or negative RBT12
// carries no tax.
func EffectiveTaxRate(annex string, rbt12 float64) (float64, error) {
	brackets, ok := simplesAnnexes[strings.ToUpper(annex)]
	if !ok {
		return 0, domainErr("project", "tax_annex", "unknown annex %q", annex)
	}
	if rbt12 <= 0 {
		return 0, nil
	}
	bracket := brackets[len(brackets)-1]
	for _, b := range brackets {
		if rbt12 <= b.Upper {
			bracket = b
			break
		}
	}
	effective := (rbt12*bracket.Rate - bracket.Deduction) / rbt12
	if effective < 0 {
		effective = 0
	}
	return effective, nil
}

// TaxSeries computes the monthly tax expense for the aggregate revenue
// series. The tax base is the trailing-twelve-month revenue; before twelve
// months of history exist, the average of the known months is annualized.
// An empty annex yields an all-zero series.
func TaxSeries(annex string, revenue []float64) ([]float64, error) {
	tax := make([]float64, len(revenue))
	if annex == "" {
		return tax, nil
	}
	var trailing float64
	for m := range revenue {
		trailing += revenue[m]
		if m >= 12 {
			trailing -= revenue[m-12]
		}
		rbt12 := trailing
		if m < 11 {
			rbt12 = trailing / float64(m+1) * 12
		}
		rate, err := EffectiveTaxRate(annex, rbt12)
		if err != nil {
			return nil, err
		}
		tax[m] = revenue[m] * rate
	}
	return tax, nil
}
