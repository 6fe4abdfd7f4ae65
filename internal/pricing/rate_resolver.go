package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"vehicle-ticket-service/internal/domain/ticket"
	"vehicle-ticket-service/internal/utils"
)

var hundred = decimal.NewFromInt(100)

type LineSource string

const (
	SourceRate     LineSource = "rate"
	SourceFallback LineSource = "fallback"
	SourceNone     LineSource = "none"
)

type PriceQuery struct {
	EntryType   ticket.EntryType
	VehicleType string
	Services    []string
	Category    ticket.Category
	Workshop    string
}

func QueryFromDraft(d ticket.Draft) PriceQuery {
	return PriceQuery{
		EntryType:   d.EntryType,
		VehicleType: d.VehicleTypeLabel,
		Services:    d.ServicesChosen,
		Category:    d.Category,
		Workshop:    d.WorkshopName,
	}
}

type QuoteLine struct {
	Service string          `json:"service"`
	Price   decimal.Decimal `json:"price"`
	Source  LineSource      `json:"source"`
}

type Quote struct {
	Price           decimal.Decimal `json:"price"`
	Lines           []QuoteLine     `json:"lines,omitempty"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Manual          bool            `json:"manual"`
}

// RateResolver prices a query from one rate table.
type RateResolver interface {
	PriceFor(q PriceQuery) Quote
	// Invalid returns the query fields that do not belong to the table.
	Invalid(q PriceQuery) []string
}

// FallbackTable prices services that have no matching rate row, keyed by
// normalised service name.
type FallbackTable map[string]decimal.Decimal

func DefaultFallbackPrices() FallbackTable {
	return FallbackTable{
		"basic wash": decimal.NewFromInt(100),
		"full wash":  decimal.NewFromInt(200),
		"vacuum":     decimal.NewFromInt(50),
		"polish":     decimal.NewFromInt(150),
	}
}

// NewFallbackTable builds a table from configured name/price pairs.
func NewFallbackTable(prices map[string]float64) FallbackTable {
	if len(prices) == 0 {
		return DefaultFallbackPrices()
	}
	t := make(FallbackTable, len(prices))
	for name, price := range prices {
		t[utils.NormalizeLabel(name)] = decimal.NewFromFloat(price)
	}
	return t
}

func (t FallbackTable) lookup(service string) (decimal.Decimal, bool) {
	p, ok := t[utils.NormalizeLabel(service)]
	return p, ok
}

type CustomerPricing struct {
	Rows     []ticket.RateRow
	Fallback FallbackTable
}

func (c CustomerPricing) PriceFor(q PriceQuery) Quote {
	quote := Quote{Price: decimal.Zero, DiscountPercent: decimal.Zero}
	seen := make(map[string]struct{}, len(q.Services))
	for _, svc := range q.Services {
		key := utils.NormalizeLabel(svc)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		line := c.priceService(q.VehicleType, svc, q.Category)
		quote.Lines = append(quote.Lines, line)
		quote.Price = quote.Price.Add(line.Price)
	}
	return quote
}

func (c CustomerPricing) priceService(vehicleType, service string, category ticket.Category) QuoteLine {
	vt := utils.NormalizeLabel(vehicleType)
	svc := utils.NormalizeLabel(service)
	for _, r := range c.Rows {
		if utils.NormalizeLabel(r.VehicleType) != vt || utils.NormalizeLabel(r.Service) != svc {
			continue
		}
		if !MatchesCategory(r.WheelCategoryCode, category) {
			continue
		}
		return QuoteLine{Service: service, Price: r.Price, Source: SourceRate}
	}
	if p, ok := c.Fallback.lookup(service); ok {
		return QuoteLine{Service: service, Price: p, Source: SourceFallback}
	}
	return QuoteLine{Service: service, Price: decimal.Zero, Source: SourceNone}
}

func (c CustomerPricing) Invalid(q PriceQuery) []string {
	if q.Category == ticket.CategoryOther || strings.TrimSpace(q.VehicleType) == "" {
		return nil
	}
	if !VehicleTypeConsistent(q.Category, q.VehicleType, c.Rows) {
		return []string{"vehicle_type"}
	}
	return nil
}

var otherWorkshopNames = map[string]struct{}{
	"other":          {},
	"others":         {},
	"other workshop": {},
	"uncategorized":  {},
}

// IsOtherWorkshop reports whether name is the uncategorised workshop
// sentinel, which is priced by hand.
func IsOtherWorkshop(name string) bool {
	_, ok := otherWorkshopNames[utils.NormalizeLabel(name)]
	return ok
}

type WorkshopPricing struct {
	Rows []ticket.WorkshopRateRow
}

func (w WorkshopPricing) PriceFor(q PriceQuery) Quote {
	if IsOtherWorkshop(q.Workshop) {
		return Quote{Price: decimal.Zero, DiscountPercent: decimal.Zero, Manual: true}
	}
	row, ok := w.find(q.Workshop, q.VehicleType)
	if !ok {
		return Quote{Price: decimal.Zero, DiscountPercent: decimal.Zero}
	}
	pct := decimal.Zero
	if row.DiscountPercent != nil {
		pct = *row.DiscountPercent
	}
	return Quote{
		Price:           row.Price,
		DiscountPercent: pct,
		Lines:           []QuoteLine{{Service: row.Workshop, Price: row.Price, Source: SourceRate}},
	}
}

func (w WorkshopPricing) Invalid(q PriceQuery) []string {
	return nil
}

func (w WorkshopPricing) find(workshop, vehicleType string) (ticket.WorkshopRateRow, bool) {
	ws := utils.NormalizeLabel(workshop)
	vt := utils.NormalizeLabel(vehicleType)
	for _, r := range w.Rows {
		if utils.NormalizeLabel(r.Workshop) == ws && utils.NormalizeLabel(r.VehicleType) == vt {
			return r, true
		}
	}
	return ticket.WorkshopRateRow{}, false
}

// WorkshopDiscount converts a discount percentage of price into an amount
// rounded to two places. percent is on a 0-100 scale; the result is what
// Pricing.Discount and the stored ticket discount carry.
func WorkshopDiscount(price, percent decimal.Decimal) decimal.Decimal {
	if percent.IsZero() || price.IsZero() {
		return decimal.Zero
	}
	return price.Mul(percent).Div(hundred).Round(2)
}

// Tables is the rate data a resolver is built from.
type Tables struct {
	Rates     []ticket.RateRow
	Workshops []ticket.WorkshopRateRow
	Models    []ticket.VehicleModelRow
	Fallback  FallbackTable
}

// ResolverFor picks the pricing strategy for an entry type.
func ResolverFor(entryType ticket.EntryType, t Tables) RateResolver {
	if entryType == ticket.EntryWorkshop {
		return WorkshopPricing{Rows: t.Workshops}
	}
	fallback := t.Fallback
	if fallback == nil {
		fallback = DefaultFallbackPrices()
	}
	return CustomerPricing{Rows: t.Rates, Fallback: fallback}
}
