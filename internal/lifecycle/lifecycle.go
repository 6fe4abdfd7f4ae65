package lifecycle

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"vehicle-ticket-service/internal/domain/ticket"
	"vehicle-ticket-service/internal/payment"
	"vehicle-ticket-service/internal/pricing"
	"vehicle-ticket-service/internal/utils"
)

var transitions = map[ticket.State][]ticket.Action{
	ticket.StatePending:         {ticket.ActionApprove, ticket.ActionReject},
	ticket.StateAwaitingPayment: {ticket.ActionSettle},
	ticket.StateSettled:         nil,
	ticket.StateRejected:        nil,
}

// Allowed lists the transitions reachable from s.
func Allowed(s ticket.State) []ticket.Action {
	return append([]ticket.Action(nil), transitions[s]...)
}

func Can(s ticket.State, a ticket.Action) bool {
	for _, allowed := range transitions[s] {
		if allowed == a {
			return true
		}
	}
	return false
}

func check(t ticket.Ticket, a ticket.Action) error {
	if s := t.State(); !Can(s, a) {
		return &ticket.StateError{Action: a, State: s}
	}
	return nil
}

// Env is the context a transition is evaluated in.
type Env struct {
	Now      time.Time
	Accounts []ticket.PaymentAccount
}

type CreateInput struct {
	ID        uuid.UUID
	Draft     ticket.Draft
	Pricing   pricing.Pricing
	CreatedBy uuid.UUID
}

// Create builds a new ticket. A back-dated entry goes straight to approved
// with every lifecycle timestamp set to the chosen time.
func Create(in CreateInput, env Env) (ticket.Ticket, error) {
	if err := validateDraft(in.Draft, in.Pricing, env); err != nil {
		return ticket.Ticket{}, err
	}
	t := build(in, env.Now)

	if !in.Draft.UseCustomTime {
		t.ApprovalStatus = ticket.StatusPending
		t.EntryTime = env.Now
		return t, nil
	}

	chosen := in.Draft.CustomEntryTime
	if chosen == nil || chosen.IsZero() {
		return ticket.Ticket{}, ticket.NewValidationError("custom entry time is required", "custom_entry_time")
	}
	if chosen.After(env.Now) {
		return ticket.Ticket{}, ticket.NewValidationError("entry time cannot be in the future", "custom_entry_time")
	}
	at := *chosen
	t.ApprovalStatus = ticket.StatusApproved
	t.EntryTime = at
	t.ExitTime = timePtr(at)
	t.ApprovedAt = timePtr(at)
	if t.PaymentMode != ticket.PaymentDeferred {
		t.PaymentDate = timePtr(at)
	}
	return t, nil
}

// Checkout creates a ticket that is entered, approved and paid at once.
func Checkout(in CreateInput, env Env) (ticket.Ticket, error) {
	if in.Draft.PaymentMode == ticket.PaymentDeferred {
		return ticket.Ticket{}, ticket.NewValidationError("checkout requires immediate payment", "payment_mode")
	}
	if err := validateDraft(in.Draft, in.Pricing, env); err != nil {
		return ticket.Ticket{}, err
	}
	t := build(in, env.Now)
	t.ApprovalStatus = ticket.StatusApproved
	t.EntryTime = env.Now
	t.ExitTime = timePtr(env.Now)
	t.ApprovedAt = timePtr(env.Now)
	t.PaymentDate = timePtr(env.Now)
	return t, nil
}

func Approve(t ticket.Ticket, env Env) (ticket.Ticket, error) {
	if err := check(t, ticket.ActionApprove); err != nil {
		return t, err
	}
	if err := validateTicket(t, env); err != nil {
		return t, err
	}
	t.ApprovalStatus = ticket.StatusApproved
	t.ApprovedAt = timePtr(env.Now)
	t.ExitTime = timePtr(env.Now)
	if t.PaymentMode != ticket.PaymentDeferred {
		t.PaymentDate = timePtr(env.Now)
	}
	return t, nil
}

func Reject(t ticket.Ticket, env Env) (ticket.Ticket, error) {
	if err := check(t, ticket.ActionReject); err != nil {
		return t, err
	}
	t.ApprovalStatus = ticket.StatusRejected
	t.ApprovedAt = nil
	t.ExitTime = nil
	return t, nil
}

// Settle collects a deferred payment.
func Settle(t ticket.Ticket, method ticket.PaymentMode, accountRef *uuid.UUID, env Env) (ticket.Ticket, *payment.ResolvedAccount, error) {
	if err := check(t, ticket.ActionSettle); err != nil {
		return t, nil, err
	}
	if method != ticket.PaymentCash && method != ticket.PaymentElectronicTransfer {
		return t, nil, ticket.NewValidationError("settle with cash or electronic transfer", "payment_mode")
	}
	acc, err := payment.RequireForMode(method, accountRef, env.Accounts)
	if err != nil {
		return t, nil, err
	}
	t.PaymentMode = method
	t.PaymentAccountRef = nil
	if acc != nil {
		id := acc.ID
		t.PaymentAccountRef = &id
	}
	t.PaymentDate = timePtr(env.Now)
	return t, acc, nil
}

type EditOptions struct {
	// Reopen allows editing a ticket that already left the pending state.
	Reopen bool
}

// Edit replaces the editable fields of t with the re-priced draft. Status,
// timestamps and attribution are kept. Once a ticket has left pending its
// payment mode only changes through Settle.
func Edit(t ticket.Ticket, d ticket.Draft, p pricing.Pricing, opts EditOptions, env Env) (ticket.Ticket, error) {
	s := t.State()
	if s != ticket.StatePending && !opts.Reopen {
		return t, &ticket.StateError{Action: ticket.ActionEdit, State: s}
	}
	if s != ticket.StatePending && d.PaymentMode != t.PaymentMode {
		return t, &ticket.StateError{Action: ticket.ActionEdit, State: s}
	}
	if err := validateDraft(d, p, env); err != nil {
		return t, err
	}
	edited := build(CreateInput{ID: t.ID, Draft: d, Pricing: p, CreatedBy: t.CreatedBy}, t.CreatedAt)
	edited.ApprovalStatus = t.ApprovalStatus
	edited.EntryTime = t.EntryTime
	edited.ExitTime = t.ExitTime
	edited.ApprovedAt = t.ApprovedAt
	edited.PaymentDate = t.PaymentDate
	return edited, nil
}

// Payable is the amount collected at settlement.
func Payable(t ticket.Ticket) decimal.Decimal {
	if t.EntryType != ticket.EntryWorkshop && t.Category() == ticket.CategoryOther {
		v := t.Amount.Sub(t.Discount)
		if v.IsNegative() {
			return decimal.Zero
		}
		return v
	}
	return t.Amount
}

func validateDraft(d ticket.Draft, p pricing.Pricing, env Env) error {
	var missing []string
	if strings.TrimSpace(d.VehiclePlate) == "" {
		missing = append(missing, "vehicle_plate")
	}
	if d.LocationID == uuid.Nil {
		missing = append(missing, "location_id")
	}
	if !d.PaymentMode.Valid() {
		missing = append(missing, "payment_mode")
	}
	if len(missing) > 0 {
		return ticket.NewValidationError("required fields missing", missing...)
	}
	if p.Amount.IsNegative() {
		return ticket.NewValidationError("amount cannot be negative", "amount")
	}
	_, err := payment.RequireForMode(d.PaymentMode, d.PaymentAccountRef, env.Accounts)
	return err
}

func validateTicket(t ticket.Ticket, env Env) error {
	if t.Amount.IsNegative() {
		return ticket.NewValidationError("amount cannot be negative", "amount")
	}
	_, err := payment.RequireForMode(t.PaymentMode, t.PaymentAccountRef, env.Accounts)
	return err
}

func build(in CreateInput, createdAt time.Time) ticket.Ticket {
	d := in.Draft
	t := ticket.Ticket{
		ID:               in.ID,
		EntryType:        d.EntryType,
		VehiclePlate:     utils.CleanPlate(d.VehiclePlate),
		VehicleTypeLabel: strings.TrimSpace(d.VehicleTypeLabel),
		Amount:           in.Pricing.Amount,
		Discount:         in.Pricing.Discount,
		PaymentMode:      d.PaymentMode,
		CreatedAt:        createdAt,
		Customer:         d.Customer,
		Vehicle:          d.Vehicle,
		Remarks:          strings.TrimSpace(d.Remarks),
		LocationID:       d.LocationID,
		CreatedBy:        in.CreatedBy,
		ServicesChosen:   []string{},
	}
	if t.EntryType == "" {
		t.EntryType = ticket.EntryCustomer
	}
	t.WheelCategoryCode = d.Category.Code()
	if t.EntryType == ticket.EntryWorkshop {
		t.WorkshopName = strings.TrimSpace(d.WorkshopName)
	} else {
		for _, s := range d.ServicesChosen {
			if s = strings.TrimSpace(s); s != "" {
				t.ServicesChosen = append(t.ServicesChosen, s)
			}
		}
	}
	if d.PaymentMode == ticket.PaymentElectronicTransfer && d.PaymentAccountRef != nil {
		ref := *d.PaymentAccountRef
		t.PaymentAccountRef = &ref
	}
	return t
}

func timePtr(t time.Time) *time.Time {
	return &t
}
