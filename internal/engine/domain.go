// Package engine computes multi-year financial plans: income statements
// under variable costing, cash flow projections, loan amortization,
// break-even points and investment viability indicators. Every function is
// a pure transformation over an Input snapshot; nothing here touches I/O.
package engine

import (
	"fmt"
	"strings"
)

// SeriesMode distinguishes a hand-maintained monthly series from one
// generated out of a base value and growth rate.
type SeriesMode string

const (
	SeriesModeManual    SeriesMode = "MANUAL"
	SeriesModeGenerated SeriesMode = "GENERATED"
)

// FixedCostCategory groups operating expenses the way the plan reports them.
type FixedCostCategory string

const (
	FixedCostOperational    FixedCostCategory = "OPERATIONAL"
	FixedCostAdministrative FixedCostCategory = "ADMINISTRATIVE"
	FixedCostSales          FixedCostCategory = "SALES"
)

// ExpenseKind selects how a variable expense is charged.
type ExpenseKind string

const (
	// ExpensePercentOfRevenue charges Value percent of the month's revenue.
	ExpensePercentOfRevenue ExpenseKind = "PERCENT_OF_REVENUE"
	// ExpensePerUnit charges Value per unit sold in the month.
	ExpensePerUnit ExpenseKind = "PER_UNIT"
)

// Project carries the plan-wide parameters. Currency is an opaque label.
type Project struct {
	Name         string `json:"name"`
	Currency     string `json:"currency"`
	HorizonYears int    `json:"horizon_years"`
	// TaxAnnex selects a Simples Nacional annex ("I".."V"); empty means
	// no tax regime and zero tax expense.
	TaxAnnex string `json:"tax_annex,omitempty"`
}

// MonthEntry is one month of a product's price/quantity series.
type MonthEntry struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// GrowthBasis generates a monthly series by compounding:
// value[m] = base * (1+growth)^m.
type GrowthBasis struct {
	BasePrice      float64 `json:"base_price"`
	BaseQuantity   float64 `json:"base_quantity"`
	PriceGrowth    float64 `json:"price_growth"`
	QuantityGrowth float64 `json:"quantity_growth"`
}

// VariableCostItem is a direct input consumed per unit produced/sold.
type VariableCostItem struct {
	Description     string  `json:"description"`
	QuantityPerUnit float64 `json:"quantity_per_unit"`
	UnitValue       float64 `json:"unit_value"`
}

// VariableExpense is a volume-driven selling charge (commission, tax on
// sale) applied per unit or as a percentage of revenue.
type VariableExpense struct {
	Description string      `json:"description"`
	Kind        ExpenseKind `json:"kind"`
	// Value is a percentage (0-100) for PERCENT_OF_REVENUE and a currency
	// amount per unit for PER_UNIT.
	Value float64 `json:"value"`
}

// Product is one revenue line with its own variable cost structure.
type Product struct {
	Name string `json:"name"`
	// CreditPercent is the share of revenue sold on credit, 0-100.
	CreditPercent float64 `json:"credit_percent"`
	// CreditDelay is how many months after the sale credit revenue is
	// collected.
	CreditDelay int `json:"credit_delay"`

	Mode   SeriesMode   `json:"mode"`
	Basis  *GrowthBasis `json:"basis,omitempty"`
	Series []MonthEntry `json:"series"`

	CostItems []VariableCostItem `json:"cost_items"`
	Expenses  []VariableExpense  `json:"expenses"`
}

// FixedCost is a volume-independent monthly expense. Overrides replaces the
// monthly value for specific month indexes.
type FixedCost struct {
	Category    FixedCostCategory `json:"category"`
	Description string            `json:"description"`
	Monthly     float64           `json:"monthly"`
	Overrides   map[int]float64   `json:"overrides,omitempty"`
}

// CapexItem is a capital expenditure disbursed at a single month.
// Month 0 is the initial outlay before operations start.
type CapexItem struct {
	Description string  `json:"description"`
	Value       float64 `json:"value"`
	Month       int     `json:"month"`
}

// Financing is a single loan amortized with constant installments.
type Financing struct {
	Principal  float64 `json:"principal"`
	AnnualRate float64 `json:"annual_rate"`
	TermYears  int     `json:"term_years"`
}

// Input is the immutable snapshot the pipeline computes from.
type Input struct {
	Project    Project     `json:"project"`
	Products   []Product   `json:"products"`
	FixedCosts []FixedCost `json:"fixed_costs"`
	Capex      []CapexItem `json:"capex"`
	Financing  *Financing  `json:"financing,omitempty"`
}

// TotalMonths returns the plan length in months.
func (in Input) TotalMonths() int {
	return in.Project.HorizonYears * 12
}

// Clone deep-copies the snapshot so scenario runs never share state with
// the base case.
func (in Input) Clone() Input {
	out := in
	out.Products = make([]Product, len(in.Products))
	for i, p := range in.Products {
		cp := p
		if p.Basis != nil {
			basis := *p.Basis
			cp.Basis = &basis
		}
		cp.Series = append([]MonthEntry(nil), p.Series...)
		cp.CostItems = append([]VariableCostItem(nil), p.CostItems...)
		cp.Expenses = append([]VariableExpense(nil), p.Expenses...)
		out.Products[i] = cp
	}
	out.FixedCosts = make([]FixedCost, len(in.FixedCosts))
	for i, fc := range in.FixedCosts {
		cp := fc
		if fc.Overrides != nil {
			cp.Overrides = make(map[int]float64, len(fc.Overrides))
			for k, v := range fc.Overrides {
				cp.Overrides[k] = v
			}
		}
		out.FixedCosts[i] = cp
	}
	out.Capex = append([]CapexItem(nil), in.Capex...)
	if in.Financing != nil {
		fin := *in.Financing
		out.Financing = &fin
	}
	return out
}

// Validate rejects malformed snapshots before any computation starts.
// Shape violations and domain violations are reported as distinct error
// types so callers can map them to the right boundary responses.
func (in Input) Validate() error {
	if in.Project.HorizonYears < 1 {
		return domainErr("project", "horizon_years", "must be at least 1, got %d", in.Project.HorizonYears)
	}
	if annex := in.Project.TaxAnnex; annex != "" {
		if _, ok := simplesAnnexes[strings.ToUpper(annex)]; !ok {
			return domainErr("project", "tax_annex", "unknown annex %q", annex)
		}
	}
	months := in.TotalMonths()
	for i, p := range in.Products {
		entity := productEntity(i, p.Name)
		if p.Mode != SeriesModeManual && p.Mode != SeriesModeGenerated {
			return domainErr(entity, "mode", "unknown series mode %q", p.Mode)
		}
		if p.Mode == SeriesModeGenerated && p.Basis == nil {
			return shapeErr(entity, "basis", "required for generated series")
		}
		if p.Mode == SeriesModeManual && len(p.Series) == 0 {
			return shapeErr(entity, "series", "required for manual series")
		}
		if len(p.Series) > 0 && len(p.Series) != months {
			return shapeErr(entity, "series", "expected %d entries, got %d", months, len(p.Series))
		}
		for m, e := range p.Series {
			if e.Quantity < 0 {
				return domainErr(entity, "series", "negative quantity %.4f at month %d", e.Quantity, m)
			}
			if e.Price < 0 {
				return domainErr(entity, "series", "negative price %.4f at month %d", e.Price, m)
			}
		}
		if p.Basis != nil {
			if p.Basis.BaseQuantity < 0 || p.Basis.BasePrice < 0 {
				return domainErr(entity, "basis", "base price and quantity must be non-negative")
			}
			if p.Basis.QuantityGrowth <= -1 || p.Basis.PriceGrowth <= -1 {
				return domainErr(entity, "basis", "growth rate must be greater than -100%%")
			}
		}
		if p.CreditPercent < 0 || p.CreditPercent > 100 {
			return domainErr(entity, "credit_percent", "must be within 0-100, got %.2f", p.CreditPercent)
		}
		if p.CreditDelay < 0 {
			return domainErr(entity, "credit_delay", "must be non-negative, got %d", p.CreditDelay)
		}
		for _, c := range p.CostItems {
			if c.QuantityPerUnit < 0 || c.UnitValue < 0 {
				return domainErr(entity, "cost_items", "%s: quantity and unit value must be non-negative", c.Description)
			}
		}
		for _, e := range p.Expenses {
			if e.Kind != ExpensePercentOfRevenue && e.Kind != ExpensePerUnit {
				return domainErr(entity, "expenses", "%s: unknown kind %q", e.Description, e.Kind)
			}
			if e.Value < 0 {
				return domainErr(entity, "expenses", "%s: value must be non-negative", e.Description)
			}
		}
	}
	for _, fc := range in.FixedCosts {
		switch fc.Category {
		case FixedCostOperational, FixedCostAdministrative, FixedCostSales:
		default:
			return domainErr("fixed_cost", "category", "unknown category %q", fc.Category)
		}
		if fc.Monthly < 0 {
			return domainErr("fixed_cost", "monthly", "%s: must be non-negative", fc.Description)
		}
		for m, v := range fc.Overrides {
			if m < 0 || m >= months {
				return shapeErr("fixed_cost", "overrides", "%s: month %d outside horizon", fc.Description, m)
			}
			if v < 0 {
				return domainErr("fixed_cost", "overrides", "%s: override at month %d must be non-negative", fc.Description, m)
			}
		}
	}
	for _, cx := range in.Capex {
		if cx.Value < 0 {
			return domainErr("capex", "value", "%s: must be non-negative", cx.Description)
		}
		if cx.Month < 0 || cx.Month >= months {
			return shapeErr("capex", "month", "%s: month %d outside horizon", cx.Description, cx.Month)
		}
	}
	if fin := in.Financing; fin != nil {
		if fin.Principal < 0 {
			return domainErr("financing", "principal", "must be non-negative")
		}
		if fin.Principal > 0 && fin.TermYears < 1 {
			return domainErr("financing", "term_years", "must be at least 1")
		}
		if fin.AnnualRate <= -1 {
			return domainErr("financing", "annual_rate", "must be greater than -100%%")
		}
	}
	return nil
}

func productEntity(index int, name string) string {
	if name == "" {
		return fmt.Sprintf("product[%d]", index)
	}
	return "product[" + name + "]"
}
