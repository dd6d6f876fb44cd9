package engine

import "math"

// irrLow and irrHigh bound the IRR root search. Rates at or below -100%
// have no meaning for an annual compounding series.
const (
	irrLow        = -0.9999
	irrHigh       = 10.0
	irrScanSteps  = 2000
	irrTolerance  = 1e-9
	irrIterations = 200
)

// Indicators carries the viability metrics of one cash-flow series. A nil
// pointer marks an indicator that could not be computed for this series
// (no real IRR, rate degenerate, investment never recovered); the rest of
// the result set is unaffected.
type Indicators struct {
	NPV               *float64 `json:"npv"`
	IRR               *float64 `json:"irr"`
	MIRR              *float64 `json:"mirr"`
	Payback           *int     `json:"payback"`
	DiscountedPayback *int     `json:"discounted_payback"`
}

// NPV discounts the series at the given rate: sum of CF[t] / (1+r)^t.
// Rates at or below -100% make the denominator collapse; ok reports false.
func NPV(flows []float64, rate float64) (float64, bool) {
	if rate <= -1 {
		return 0, false
	}
	var value float64
	for t, cf := range flows {
		value += cf / math.Pow(1+rate, float64(t))
	}
	return value, true
}

// IRR finds the rate at which the series' NPV is zero by scanning the
// bounded range for a sign change and bisecting it. Series whose NPV never
// changes sign over the range have no real solution and return false.
func IRR(flows []float64) (float64, bool) {
	f := func(rate float64) float64 {
		v, _ := NPV(flows, rate)
		return v
	}
	step := (irrHigh - irrLow) / irrScanSteps
	lo, flo := irrLow, f(irrLow)
	if flo == 0 {
		return lo, true
	}
	for i := 1; i <= irrScanSteps; i++ {
		hi := irrLow + step*float64(i)
		fhi := f(hi)
		if fhi == 0 {
			return hi, true
		}
		if flo*fhi < 0 {
			return bisect(f, lo, hi), true
		}
		lo, flo = hi, fhi
	}
	return 0, false
}

func bisect(f func(float64) float64, lo, hi float64) float64 {
	flo := f(lo)
	for i := 0; i < irrIterations; i++ {
		mid := (lo + hi) / 2
		fmid := f(mid)
		if fmid == 0 || (hi-lo)/2 < irrTolerance {
			return mid
		}
		if flo*fmid < 0 {
			hi = mid
		} else {
			lo, flo = mid, fmid
		}
	}
	return (lo + hi) / 2
}

// MIRR discounts the negative flows to present value at the finance rate,
// compounds the positive flows to the terminal date at the reinvestment
// rate, and solves for the single rate equating the two. Series without
// both a negative and a positive flow admit no modified rate.
func MIRR(flows []float64, financeRate, reinvestRate float64) (float64, bool) {
	n := len(flows) - 1
	if n <= 0 || financeRate <= -1 || reinvestRate <= -1 {
		return 0, false
	}
	var pvNegative, fvPositive float64
	for t, cf := range flows {
		switch {
		case cf < 0:
			pvNegative += cf / math.Pow(1+financeRate, float64(t))
		case cf > 0:
			fvPositive += cf * math.Pow(1+reinvestRate, float64(n-t))
		}
	}
	if pvNegative == 0 || fvPositive <= 0 {
		return 0, false
	}
	return math.Pow(fvPositive/-pvNegative, 1/float64(n)) - 1, true
}

// Payback returns the first period index at which the cumulative flow
// turns non-negative, or false if the investment is not recovered within
// the horizon. Discounting at a rate of zero gives the simple payback.
func Payback(flows []float64, rate float64) (int, bool) {
	if rate <= -1 {
		return 0, false
	}
	var cumulative float64
	for t, cf := range flows {
		cumulative += cf / math.Pow(1+rate, float64(t))
		if cumulative >= 0 {
			return t, true
		}
	}
	return 0, false
}

// ComputeIndicators evaluates the whole indicator set over one series.
// Finance and reinvestment rates default to the discount rate.
func ComputeIndicators(flows []float64, discountRate float64, financeRate, reinvestRate *float64) Indicators {
	var ind Indicators
	if npv, ok := NPV(flows, discountRate); ok {
		ind.NPV = &npv
	}
	if irr, ok := IRR(flows); ok {
		ind.IRR = &irr
	}
	fin, reinvest := discountRate, discountRate
	if financeRate != nil {
		fin = *financeRate
	}
	if reinvestRate != nil {
		reinvest = *reinvestRate
	}
	if mirr, ok := MIRR(flows, fin, reinvest); ok {
		ind.MIRR = &mirr
	}
	if p, ok := Payback(flows, 0); ok {
		ind.Payback = &p
	}
	if p, ok := Payback(flows, discountRate); ok {
		ind.DiscountedPayback = &p
	}
	return ind
}
