package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"vehicle-ticket-service/internal/domain/ticket"
)

func TestCustomerPricing_PriceFor(t *testing.T) {
	r := CustomerPricing{Rows: rateRows(), Fallback: DefaultFallbackPrices()}

	t.Run("sums matched rows", func(t *testing.T) {
		q := r.PriceFor(PriceQuery{VehicleType: "SEDAN", Services: []string{"Full Wash", "Vacuum"}, Category: ticket.CategoryFourWheeler})
		assert.True(t, decimal.NewFromInt(400).Equal(q.Price))
		assert.Len(t, q.Lines, 2)
	})

	t.Run("order of services does not matter", func(t *testing.T) {
		a := r.PriceFor(PriceQuery{VehicleType: "SEDAN", Services: []string{"Full Wash", "Vacuum", "Polish"}, Category: ticket.CategoryFourWheeler})
		b := r.PriceFor(PriceQuery{VehicleType: "SEDAN", Services: []string{"Polish", "Vacuum", "Full Wash"}, Category: ticket.CategoryFourWheeler})
		assert.True(t, a.Price.Equal(b.Price))
	})

	t.Run("first match wins on duplicate rows", func(t *testing.T) {
		rows := append(rateRows(), ticket.RateRow{VehicleType: "SEDAN", Service: "Vacuum", WheelCategoryCode: "4", Price: decimal.NewFromInt(999)})
		q := CustomerPricing{Rows: rows}.PriceFor(PriceQuery{VehicleType: "sedan ", Services: []string{" vacuum"}, Category: ticket.CategoryFourWheeler})
		assert.True(t, decimal.NewFromInt(100).Equal(q.Price))
	})

	t.Run("legacy code row priced for four wheeler", func(t *testing.T) {
		q := r.PriceFor(PriceQuery{VehicleType: "SUV", Services: []string{"Full Wash"}, Category: ticket.CategoryFourWheeler})
		assert.True(t, decimal.NewFromInt(400).Equal(q.Price))
	})

	t.Run("falls back to static table then zero", func(t *testing.T) {
		q := r.PriceFor(PriceQuery{VehicleType: "SEDAN", Services: []string{"Polish", "Engine Detailing"}, Category: ticket.CategoryFourWheeler})
		assert.True(t, decimal.NewFromInt(150).Equal(q.Price))
		assert.Equal(t, SourceFallback, q.Lines[0].Source)
		assert.Equal(t, SourceNone, q.Lines[1].Source)
	})

	t.Run("category mismatch uses fallback", func(t *testing.T) {
		q := r.PriceFor(PriceQuery{VehicleType: "SEDAN", Services: []string{"Vacuum"}, Category: ticket.CategoryTwoWheeler})
		assert.True(t, decimal.NewFromInt(50).Equal(q.Price))
	})
}

func TestWorkshopPricing_PriceFor(t *testing.T) {
	pct := decimal.NewFromInt(10)
	r := WorkshopPricing{Rows: []ticket.WorkshopRateRow{
		{Workshop: "Speedy Motors", VehicleType: "SEDAN", Price: decimal.NewFromInt(500), DiscountPercent: &pct},
		{Workshop: "Speedy Motors", VehicleType: "SUV", Price: decimal.NewFromInt(700)},
	}}

	q := r.PriceFor(PriceQuery{EntryType: ticket.EntryWorkshop, Workshop: "speedy motors", VehicleType: "Sedan"})
	assert.True(t, decimal.NewFromInt(500).Equal(q.Price))
	assert.True(t, pct.Equal(q.DiscountPercent))
	assert.False(t, q.Manual)

	q = r.PriceFor(PriceQuery{EntryType: ticket.EntryWorkshop, Workshop: "Speedy Motors", VehicleType: "SUV"})
	assert.True(t, decimal.Zero.Equal(q.DiscountPercent))

	q = r.PriceFor(PriceQuery{EntryType: ticket.EntryWorkshop, Workshop: "Other", VehicleType: "SUV"})
	assert.True(t, q.Manual)
	assert.True(t, decimal.Zero.Equal(q.DiscountPercent))
}

func TestWorkshopDiscount(t *testing.T) {
	assert.True(t, decimal.NewFromInt(50).Equal(WorkshopDiscount(decimal.NewFromInt(500), decimal.NewFromInt(10))))
	assert.True(t, decimal.RequireFromString("33.33").Equal(WorkshopDiscount(decimal.NewFromInt(100), decimal.RequireFromString("33.333"))))
	assert.True(t, decimal.Zero.Equal(WorkshopDiscount(decimal.NewFromInt(100), decimal.Zero)))
}

func TestResolverFor(t *testing.T) {
	_, ok := ResolverFor(ticket.EntryWorkshop, Tables{}).(WorkshopPricing)
	assert.True(t, ok)
	c, ok := ResolverFor(ticket.EntryCustomer, Tables{}).(CustomerPricing)
	assert.True(t, ok)
	assert.NotEmpty(t, c.Fallback)
}

func TestNewFallbackTable(t *testing.T) {
	tbl := NewFallbackTable(map[string]float64{"Tyre Shine": 40})
	p, ok := tbl.lookup("tyre  shine")
	assert.True(t, ok)
	assert.True(t, decimal.NewFromInt(40).Equal(p))
	assert.Equal(t, DefaultFallbackPrices(), NewFallbackTable(nil))
}
