package engine

import (
	"math"
	"reflect"
	"testing"
)

// fixtureInput is the reference plan used across the engine tests: one
// product selling 100 units/month at 50 with a unit variable cost of 30
// and 1500/month of fixed cost.
func fixtureInput(horizonYears int) Input {
	months := horizonYears * 12
	series := make([]MonthEntry, months)
	for m := range series {
		series[m] = MonthEntry{Price: 50, Quantity: 100}
	}
	return Input{
		Project: Project{Name: "Oficina Boa Vista", Currency: "BRL", HorizonYears: horizonYears},
		Products: []Product{{
			Name:   "Mesa",
			Mode:   SeriesModeManual,
			Series: series,
			CostItems: []VariableCostItem{
				{Description: "Madeira", QuantityPerUnit: 1, UnitValue: 30},
			},
		}},
		FixedCosts: []FixedCost{
			{Category: FixedCostOperational, Description: "Aluguel", Monthly: 1000},
			{Category: FixedCostAdministrative, Description: "Contador", Monthly: 500},
		},
	}
}

func TestRunSeriesLengths(t *testing.T) {
	for _, horizon := range []int{1, 2, 5} {
		res, err := Run(fixtureInput(horizon), Options{DiscountRate: 0.1})
		if err != nil {
			t.Fatalf("horizon %d: unexpected error: %v", horizon, err)
		}
		if len(res.Monthly) != horizon*12 {
			t.Fatalf("horizon %d: expected %d monthly results, got %d", horizon, horizon*12, len(res.Monthly))
		}
		if len(res.Annual) != horizon {
			t.Fatalf("horizon %d: expected %d annual results, got %d", horizon, horizon, len(res.Annual))
		}
		if len(res.PeriodCashFlows) != horizon+1 {
			t.Fatalf("horizon %d: expected %d period flows, got %d", horizon, horizon+1, len(res.PeriodCashFlows))
		}
	}
}

func TestRunContributionMarginIdentity(t *testing.T) {
	in := fixtureInput(2)
	in.Products[0].Expenses = []VariableExpense{
		{Description: "Comissão", Kind: ExpensePercentOfRevenue, Value: 5},
	}
	res, err := Run(in, Options{DiscountRate: 0.1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, row := range res.Monthly {
		if math.Abs(row.ContributionMargin-(row.Revenue-row.VariableCost)) > 1e-9 {
			t.Fatalf("month %d: contribution margin %v != revenue - variable cost %v", row.Month, row.ContributionMargin, row.Revenue-row.VariableCost)
		}
	}
}

func TestRunCashBalanceRecurrence(t *testing.T) {
	in := fixtureInput(3)
	in.Products[0].CreditPercent = 40
	in.Products[0].CreditDelay = 2
	in.Capex = []CapexItem{
		{Description: "Máquina", Value: 20000, Month: 0},
		{Description: "Reforma", Value: 5000, Month: 14},
	}
	in.Financing = &Financing{Principal: 30000, AnnualRate: 0.12, TermYears: 2}

	res, err := Run(in, Options{DiscountRate: 0.1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var prev float64
	for _, row := range res.Monthly {
		want := prev + row.CashInflow - row.CashOutflow
		if math.Abs(row.CashBalance-want) > 1e-9 {
			t.Fatalf("month %d: balance %v, want %v", row.Month, row.CashBalance, want)
		}
		prev = row.CashBalance
	}
}

func TestRunCreditDelayShiftsCollections(t *testing.T) {
	in := fixtureInput(1)
	in.Products[0].CreditPercent = 50
	in.Products[0].CreditDelay = 1

	res, err := Run(in, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Month 1 collects only the cash half; month 2 adds month 1's credit.
	if math.Abs(res.Monthly[0].CashInflow-2500) > 1e-9 {
		t.Fatalf("month 1: expected inflow 2500, got %v", res.Monthly[0].CashInflow)
	}
	if math.Abs(res.Monthly[1].CashInflow-5000) > 1e-9 {
		t.Fatalf("month 2: expected inflow 5000, got %v", res.Monthly[1].CashInflow)
	}
}

func TestRunPrincipalAbsentFromStatement(t *testing.T) {
	in := fixtureInput(1)
	in.Financing = &Financing{Principal: 12000, AnnualRate: 0.10, TermYears: 1}

	res, err := Run(in, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	schedule := Amortize(*in.Financing)
	wantInterest := schedule[0].Interest / 12
	row := res.Monthly[0]
	if math.Abs(row.Interest-wantInterest) > 1e-9 {
		t.Fatalf("expected monthly interest %v, got %v", wantInterest, row.Interest)
	}
	wantNet := row.OperatingResult - row.Interest - row.Tax
	if math.Abs(row.NetResult-wantNet) > 1e-9 {
		t.Fatalf("net result must subtract interest only, got %v want %v", row.NetResult, wantNet)
	}
	// Cash outflow carries the full installment.
	wantOutflow := row.VariableCost + row.FixedCost + row.Tax + schedule[0].Installment/12
	if math.Abs(row.CashOutflow-wantOutflow) > 1e-9 {
		t.Fatalf("expected outflow %v, got %v", wantOutflow, row.CashOutflow)
	}
}

func TestRunAnnualIsStraightSum(t *testing.T) {
	res, err := Run(fixtureInput(2), Options{DiscountRate: 0.08})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var revenue float64
	for m := 12; m < 24; m++ {
		revenue += res.Monthly[m].Revenue
	}
	if math.Abs(res.Annual[1].Revenue-revenue) > 1e-9 {
		t.Fatalf("year 2 revenue %v, want straight sum %v", res.Annual[1].Revenue, revenue)
	}
}

func TestRunBaseCaseReproducedByUnitMultiplier(t *testing.T) {
	in := fixtureInput(2)
	in.Financing = &Financing{Principal: 20000, AnnualRate: 0.15, TermYears: 2}
	in.Capex = []CapexItem{{Description: "Forno", Value: 8000, Month: 0}}

	base, err := Run(in, Options{DiscountRate: 0.12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := Run(in, Options{QuantityMultiplier: 1.0, DiscountRate: 0.12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(base.Monthly, again.Monthly) {
		t.Fatal("multiplier 1.0 must reproduce the base case exactly")
	}
	if !reflect.DeepEqual(base.Viability, again.Viability) {
		t.Fatal("indicators must match the base case exactly")
	}
}

func TestRunDoesNotMutateBaseInput(t *testing.T) {
	in := fixtureInput(1)
	before := in.Clone()

	if _, err := Run(in, Options{QuantityMultiplier: 1.8, DiscountRate: 0.2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(in, before) {
		t.Fatal("scenario run mutated the base input")
	}
}

func TestRunMultiplierScalesQuantities(t *testing.T) {
	base, err := Run(fixtureInput(1), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	shocked, err := Run(fixtureInput(1), Options{QuantityMultiplier: 1.2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(shocked.Monthly[0].Revenue-base.Monthly[0].Revenue*1.2) > 1e-9 {
		t.Fatalf("expected revenue scaled by 1.2, got %v vs %v", shocked.Monthly[0].Revenue, base.Monthly[0].Revenue)
	}
}

func TestRunRejectsNegativeMultiplier(t *testing.T) {
	if _, err := Run(fixtureInput(1), Options{QuantityMultiplier: -0.5}); err == nil {
		t.Fatal("expected domain error for negative multiplier")
	}
}

func TestRunRejectsShortSeries(t *testing.T) {
	in := fixtureInput(2)
	in.Products[0].Series = in.Products[0].Series[:10]
	if _, err := Run(in, Options{}); err == nil {
		t.Fatal("expected shape error for short series")
	}
}

func TestRunGeneratedSeriesMaterialized(t *testing.T) {
	in := fixtureInput(1)
	in.Products[0].Mode = SeriesModeGenerated
	in.Products[0].Series = nil
	in.Products[0].Basis = &GrowthBasis{BasePrice: 50, BaseQuantity: 100}

	res, err := Run(in, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.Monthly[0].Revenue-5000) > 1e-9 {
		t.Fatalf("expected generated revenue 5000, got %v", res.Monthly[0].Revenue)
	}
}

func TestRunCapexInFinalMonthReachesCashFlow(t *testing.T) {
	in := fixtureInput(1)
	in.Capex = []CapexItem{{Description: "Forno", Value: 9000, Month: 11}}

	res, err := Run(in, Options{DiscountRate: 0.10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := res.Monthly[11]
	if math.Abs(last.InvestingCashFlow-(-9000)) > 1e-9 {
		t.Fatalf("expected -9000 investing flow in month 12, got %v", last.InvestingCashFlow)
	}
	// Operating flow is 500/month, so the year nets 6000 - 9000.
	if math.Abs(res.PeriodCashFlows[1]-(-3000)) > 1e-9 {
		t.Fatalf("expected year flow -3000, got %v", res.PeriodCashFlows[1])
	}
	if math.Abs(last.CashBalance-(-3000)) > 1e-9 {
		t.Fatalf("expected closing balance -3000, got %v", last.CashBalance)
	}
}

func TestRunViabilityUsesInitialOutlay(t *testing.T) {
	in := fixtureInput(2)
	in.Capex = []CapexItem{{Description: "Forno", Value: 50000, Month: 0}}

	res, err := Run(in, Options{DiscountRate: 0.10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PeriodCashFlows[0] != -50000 {
		t.Fatalf("expected initial flow -50000, got %v", res.PeriodCashFlows[0])
	}
	// Monthly operating flow is 500, so a year recovers only 6000 of the
	// 50000 outlay within the two-year horizon.
	if res.Viability.Payback != nil {
		t.Fatalf("expected payback not recovered, got period %d", *res.Viability.Payback)
	}
}
