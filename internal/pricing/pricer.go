package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"vehicle-ticket-service/internal/domain/ticket"
)

// Pricing is the derived money side of a draft.
type Pricing struct {
	Quote    Quote           `json:"quote"`
	Computed decimal.Decimal `json:"computed"`
	// Discount is always a currency amount. A workshop rate's percentage is
	// converted before it lands here; the percent itself stays on Quote.
	Discount decimal.Decimal `json:"discount"`
	Amount   decimal.Decimal `json:"amount"`
	// Payable is what is shown at settlement. It only differs from Amount for
	// the "other" category, where the entered amount is kept as is.
	Payable decimal.Decimal `json:"payable"`
	Manual  bool            `json:"manual"`
}

// Price derives the amount of d. It is a pure function of its inputs.
//
// For a workshop entry without a discount override the rate's
// DiscountPercent is turned into an amount of the computed price, so the
// returned Discount (and the ticket's discount column) holds money, not a
// percent. Amount is Computed minus Discount, floored at zero.
func Price(d ticket.Draft, r RateResolver) (Pricing, error) {
	if missing := MissingFields(d); len(missing) > 0 {
		return Pricing{}, ticket.NewValidationError("required selections missing", missing...)
	}
	if d.Discount.IsNegative() {
		return Pricing{}, ticket.NewValidationError("discount cannot be negative", "discount")
	}

	if d.EntryType != ticket.EntryWorkshop && d.Category == ticket.CategoryOther {
		manual, err := manualAmount(d)
		if err != nil {
			return Pricing{}, err
		}
		return Pricing{
			Quote:    Quote{Price: manual, DiscountPercent: decimal.Zero, Manual: true},
			Computed: manual,
			Discount: d.Discount,
			Amount:   manual,
			Payable:  nonNegative(manual.Sub(d.Discount)),
			Manual:   true,
		}, nil
	}

	q := QueryFromDraft(d)
	if invalid := r.Invalid(q); len(invalid) > 0 {
		return Pricing{}, ticket.NewValidationError("selection does not match wheel category", invalid...)
	}
	quote := r.PriceFor(q)

	computed := quote.Price
	if quote.Manual {
		manual, err := manualAmount(d)
		if err != nil {
			return Pricing{}, err
		}
		computed = manual
	}

	discount := d.Discount
	if d.EntryType == ticket.EntryWorkshop && !d.DiscountOverride {
		discount = WorkshopDiscount(computed, quote.DiscountPercent)
	}

	amount := nonNegative(computed.Sub(discount))
	return Pricing{
		Quote:    quote,
		Computed: computed,
		Discount: discount,
		Amount:   amount,
		Payable:  amount,
		Manual:   quote.Manual,
	}, nil
}

// Apply writes the derived discount back into the draft. Operator-entered
// amounts are never touched.
func Apply(d ticket.Draft, p Pricing) ticket.Draft {
	d.Discount = p.Discount
	return d
}

// MissingFields lists the required selections absent from d.
func MissingFields(d ticket.Draft) []string {
	var missing []string
	if d.EntryType == ticket.EntryWorkshop {
		if strings.TrimSpace(d.WorkshopName) == "" {
			missing = append(missing, "workshop_name")
		}
		if strings.TrimSpace(d.VehicleTypeLabel) == "" {
			missing = append(missing, "vehicle_type")
		}
		return missing
	}
	if !d.Category.Selected() {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(d.VehicleTypeLabel) == "" {
		missing = append(missing, "vehicle_type")
	}
	if !hasService(d.ServicesChosen) {
		missing = append(missing, "services")
	}
	return missing
}

func manualAmount(d ticket.Draft) (decimal.Decimal, error) {
	if d.ManualAmount == nil {
		return decimal.Zero, ticket.NewValidationError("amount must be entered", "amount")
	}
	if d.ManualAmount.IsNegative() {
		return decimal.Zero, ticket.NewValidationError("amount cannot be negative", "amount")
	}
	return *d.ManualAmount, nil
}

func hasService(services []string) bool {
	for _, s := range services {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

func nonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
