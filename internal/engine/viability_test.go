package engine

import (
	"math"
	"testing"
)

func TestNPVReferenceSeries(t *testing.T) {
	flows := []float64{-1000, 300, 300, 300, 300}
	npv, ok := NPV(flows, 0.10)
	if !ok {
		t.Fatal("expected NPV to be computable")
	}
	if math.Abs(npv-(-49.04)) > 0.01 {
		t.Fatalf("expected NPV -49.04, got %.4f", npv)
	}
}

func TestNPVMonotoneInRate(t *testing.T) {
	flows := []float64{-1000, 400, 400, 400, 400}
	prev := math.Inf(1)
	for rate := 0.0; rate <= 1.0; rate += 0.05 {
		npv, ok := NPV(flows, rate)
		if !ok {
			t.Fatalf("rate %v: expected NPV to be computable", rate)
		}
		if npv > prev {
			t.Fatalf("NPV increased from %v to %v at rate %v", prev, npv, rate)
		}
		prev = npv
	}
}

func TestNPVDegenerateRate(t *testing.T) {
	if _, ok := NPV([]float64{-100, 50}, -1); ok {
		t.Fatal("expected rate -100% to be rejected")
	}
}

func TestIRRRoundTrip(t *testing.T) {
	flows := []float64{-1000, 400, 400, 400, 400}
	irr, ok := IRR(flows)
	if !ok {
		t.Fatal("expected an IRR for a conventional series")
	}
	npv, _ := NPV(flows, irr)
	if math.Abs(npv) > 1e-4 {
		t.Fatalf("NPV(IRR) = %v, expected ~0", npv)
	}
}

func TestIRRNoRealSolution(t *testing.T) {
	if _, ok := IRR([]float64{100, 200, 300}); ok {
		t.Fatal("expected no IRR for an all-positive series")
	}
}

func TestMIRRBetweenRatesForConventionalSeries(t *testing.T) {
	flows := []float64{-1000, 300, 300, 300, 300}
	mirr, ok := MIRR(flows, 0.10, 0.10)
	if !ok {
		t.Fatal("expected MIRR to be computable")
	}
	irr, _ := IRR(flows)
	// Equal finance/reinvestment rates pull the modified rate toward 10%.
	if mirr < math.Min(irr, 0.10)-1e-9 || mirr > math.Max(irr, 0.10)+1e-9 {
		t.Fatalf("MIRR %v outside [IRR %v, 10%%]", mirr, irr)
	}
}

func TestMIRRRequiresBothSigns(t *testing.T) {
	if _, ok := MIRR([]float64{100, 200}, 0.1, 0.1); ok {
		t.Fatal("expected no MIRR without a negative flow")
	}
}

func TestPaybackSimpleAndDiscounted(t *testing.T) {
	flows := []float64{-1000, 300, 300, 300, 300}

	simple, ok := Payback(flows, 0)
	if !ok || simple != 4 {
		t.Fatalf("expected simple payback at period 4, got %d (ok=%v)", simple, ok)
	}

	// Discounted at 10% the cumulative flow stays negative: NPV is -49.04.
	if _, ok := Payback(flows, 0.10); ok {
		t.Fatal("expected investment not recovered at 10% discount")
	}
}

func TestComputeIndicatorsMarksUnavailable(t *testing.T) {
	ind := ComputeIndicators([]float64{100, 100}, 0.10, nil, nil)
	if ind.NPV == nil {
		t.Fatal("expected NPV for positive series")
	}
	if ind.IRR != nil {
		t.Fatal("expected IRR unavailable for all-positive series")
	}
	if ind.MIRR != nil {
		t.Fatal("expected MIRR unavailable for all-positive series")
	}
	if ind.Payback == nil || *ind.Payback != 0 {
		t.Fatal("expected immediate payback for positive series")
	}
}
