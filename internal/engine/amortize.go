package engine

import "math"

// AmortizationEntry is one yearly period of the loan schedule.
type AmortizationEntry struct {
	Period      int     `json:"period"`
	Installment float64 `json:"installment"`
	Interest    float64 `json:"interest"`
	Principal   float64 `json:"principal"`
	Balance     float64 `json:"balance"`
}

// AnnualInstallment returns the constant annuity payment
// A = P*r / (1 - (1+r)^-n), degenerating to P/n when the rate is zero.
func AnnualInstallment(f Financing) float64 {
	if f.Principal <= 0 || f.TermYears < 1 {
		return 0
	}
	if f.AnnualRate == 0 {
		return f.Principal / float64(f.TermYears)
	}
	return f.Principal * f.AnnualRate / (1 - math.Pow(1+f.AnnualRate, -float64(f.TermYears)))
}

// Amortize builds the yearly schedule. The final principal component
// absorbs any compounding residual so the balance lands exactly at zero.
func Amortize(f Financing) []AmortizationEntry {
	if f.Principal <= 0 || f.TermYears < 1 {
		return nil
	}
	installment := AnnualInstallment(f)
	entries := make([]AmortizationEntry, f.TermYears)
	balance := f.Principal
	for period := 1; period <= f.TermYears; period++ {
		interest := balance * f.AnnualRate
		principal := installment - interest
		if period == f.TermYears {
			principal = balance
		}
		balance -= principal
		entries[period-1] = AmortizationEntry{
			Period:      period,
			Installment: interest + principal,
			Interest:    interest,
			Principal:   principal,
			Balance:     balance,
		}
	}
	return entries
}

// MonthlyInstallments spreads each year's installment evenly across its
// twelve months, zero after the loan term ends.
func MonthlyInstallments(f *Financing, totalMonths int) []float64 {
	return spreadSchedule(f, totalMonths, func(e AmortizationEntry) float64 { return e.Installment })
}

// MonthlyInterest spreads each year's interest component evenly across its
// twelve months; the income statement subtracts it, never the principal.
func MonthlyInterest(f *Financing, totalMonths int) []float64 {
	return spreadSchedule(f, totalMonths, func(e AmortizationEntry) float64 { return e.Interest })
}

func spreadSchedule(f *Financing, totalMonths int, component func(AmortizationEntry) float64) []float64 {
	series := make([]float64, totalMonths)
	if f == nil || f.Principal <= 0 || f.TermYears < 1 {
		return series
	}
	schedule := Amortize(*f)
	for m := 0; m < totalMonths; m++ {
		year := m / 12
		if year < len(schedule) {
			series[m] = component(schedule[year]) / 12
		}
	}
	return series
}
