package engine

import (
	"math"
	"testing"
)

func TestUnitVariableCostSumsItems(t *testing.T) {
	p := Product{CostItems: []VariableCostItem{
		{Description: "Madeira", QuantityPerUnit: 2, UnitValue: 10},
		{Description: "Verniz", QuantityPerUnit: 0.5, UnitValue: 8},
	}}
	if got := UnitVariableCost(p); got != 24 {
		t.Fatalf("expected unit cost 24, got %v", got)
	}
}

func TestAggregateCostsVariableAndFixed(t *testing.T) {
	in := fixtureInput(1)
	in.Products[0].Expenses = []VariableExpense{
		{Description: "Comissão", Kind: ExpensePercentOfRevenue, Value: 2},
		{Description: "Frete", Kind: ExpensePerUnit, Value: 1},
	}
	rev, err := ProjectRevenue(&in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	costs := AggregateCosts(in, rev)

	// 100 units * (30 direct + 1 per-unit) + 2% of 5000 revenue.
	want := 100*31 + 0.02*5000
	if math.Abs(costs.Variable[0]-want) > 1e-9 {
		t.Fatalf("expected variable cost %v, got %v", want, costs.Variable[0])
	}
	if costs.Fixed[0] != 1500 {
		t.Fatalf("expected fixed cost 1500, got %v", costs.Fixed[0])
	}
}

func TestAggregateCostsHonorsOverrides(t *testing.T) {
	in := fixtureInput(1)
	in.FixedCosts[0].Overrides = map[int]float64{6: 2500}
	rev, err := ProjectRevenue(&in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	costs := AggregateCosts(in, rev)
	if costs.Fixed[6] != 3000 { // 2500 override + 500 untouched item
		t.Fatalf("expected overridden fixed cost 3000, got %v", costs.Fixed[6])
	}
	if costs.Fixed[5] != 1500 {
		t.Fatalf("expected base fixed cost 1500, got %v", costs.Fixed[5])
	}
}

func TestFixedCostIndependentOfVolume(t *testing.T) {
	in := fixtureInput(1)
	rev, err := ProjectRevenue(&in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	base := AggregateCosts(in, rev)

	shocked := in.Clone()
	for m := range shocked.Products[0].Series {
		shocked.Products[0].Series[m].Quantity *= 3
	}
	shockedRev, err := ProjectRevenue(&shocked)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tripled := AggregateCosts(shocked, shockedRev)

	for m := range base.Fixed {
		if base.Fixed[m] != tripled.Fixed[m] {
			t.Fatalf("month %d: fixed cost changed with volume", m)
		}
	}
	if math.Abs(tripled.Variable[0]-3*base.Variable[0]) > 1e-9 {
		t.Fatalf("expected variable cost to scale with volume")
	}
}
