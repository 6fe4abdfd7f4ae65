package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vehicle-ticket-service/internal/domain/ticket"
	"vehicle-ticket-service/internal/lifecycle"
	"vehicle-ticket-service/internal/metrics"
	"vehicle-ticket-service/internal/payment"
	"vehicle-ticket-service/internal/pricing"
)

type TicketService struct {
	tickets  TicketStore
	rates    RateStore
	accounts PaymentAccountStore
	guard    *SubmitGuard
	fallback pricing.FallbackTable
	now      func() time.Time
	log      zerolog.Logger
}

func NewTicketService(
	tickets TicketStore,
	rates RateStore,
	accounts PaymentAccountStore,
	guard *SubmitGuard,
	fallback pricing.FallbackTable,
	log zerolog.Logger,
) *TicketService {
	return &TicketService{
		tickets:  tickets,
		rates:    rates,
		accounts: accounts,
		guard:    guard,
		fallback: fallback,
		now:      time.Now,
		log:      log,
	}
}

// DraftQuote is a draft after selection revalidation and pricing.
type DraftQuote struct {
	Draft   ticket.Draft    `json:"draft"`
	Options pricing.Options `json:"options"`
	Pricing pricing.Pricing `json:"pricing"`
}

type SettleResult struct {
	Ticket  *ticket.Ticket           `json:"ticket"`
	Account *payment.ResolvedAccount `json:"account,omitempty"`
	Payable string                   `json:"payable"`
}

func (s *TicketService) tables(ctx context.Context) (pricing.Tables, error) {
	rates, err := s.rates.QueryRateRows(ctx)
	if err != nil {
		return pricing.Tables{}, err
	}
	workshops, err := s.rates.QueryWorkshopRateRows(ctx)
	if err != nil {
		return pricing.Tables{}, err
	}
	models, err := s.rates.QueryVehicleModels(ctx)
	if err != nil {
		return pricing.Tables{}, err
	}
	return pricing.Tables{Rates: rates, Workshops: workshops, Models: models, Fallback: s.fallback}, nil
}

func (s *TicketService) env(ctx context.Context, locationID uuid.UUID) (lifecycle.Env, error) {
	accounts, err := s.accounts.QueryPaymentAccounts(ctx, &locationID)
	if err != nil {
		return lifecycle.Env{}, err
	}
	return lifecycle.Env{Now: s.now(), Accounts: accounts}, nil
}

// Options returns sel with stale choices dropped together with what can be
// selected next.
func (s *TicketService) Options(ctx context.Context, sel pricing.Selection) (pricing.Selection, pricing.Options, error) {
	t, err := s.tables(ctx)
	if err != nil {
		return sel, pricing.Options{}, err
	}
	valid := pricing.Revalidate(sel, t.Rates, t.Models)
	return valid, pricing.OptionsFor(valid, t.Rates, t.Models), nil
}

// Quote revalidates and prices d without writing anything.
func (s *TicketService) Quote(ctx context.Context, d ticket.Draft) (*DraftQuote, error) {
	t, err := s.tables(ctx)
	if err != nil {
		return nil, err
	}
	d = revalidateDraft(d, t)
	sel := selectionOf(d)
	out := &DraftQuote{Draft: d, Options: pricing.OptionsFor(sel, t.Rates, t.Models)}

	p, err := pricing.Price(d, pricing.ResolverFor(d.EntryType, t))
	if err != nil {
		return out, err
	}
	out.Draft = pricing.Apply(d, p)
	out.Pricing = p
	return out, nil
}

func (s *TicketService) price(ctx context.Context, d ticket.Draft) (ticket.Draft, pricing.Pricing, error) {
	t, err := s.tables(ctx)
	if err != nil {
		return d, pricing.Pricing{}, err
	}
	p, err := pricing.Price(d, pricing.ResolverFor(d.EntryType, t))
	if err != nil {
		return d, pricing.Pricing{}, err
	}
	return pricing.Apply(d, p), p, nil
}

// Create logs a new ticket. A back-dated draft is created approved.
func (s *TicketService) Create(ctx context.Context, staff uuid.UUID, d ticket.Draft) (*ticket.Ticket, error) {
	return s.create(ctx, "create", staff, d, lifecycle.Create)
}

// Checkout logs a ticket that is entered and paid at the same instant.
func (s *TicketService) Checkout(ctx context.Context, staff uuid.UUID, d ticket.Draft) (*ticket.Ticket, error) {
	return s.create(ctx, "checkout", staff, d, lifecycle.Checkout)
}

func (s *TicketService) create(
	ctx context.Context,
	action string,
	staff uuid.UUID,
	d ticket.Draft,
	build func(lifecycle.CreateInput, lifecycle.Env) (ticket.Ticket, error),
) (*ticket.Ticket, error) {
	if staff == uuid.Nil {
		return nil, fmt.Errorf("%w: staff identity is required", ErrInvalidInput)
	}
	priced, p, err := s.price(ctx, d)
	if err != nil {
		s.observe(action, err)
		return nil, err
	}
	env, err := s.env(ctx, priced.LocationID)
	if err != nil {
		s.observe(action, err)
		return nil, err
	}
	t, err := build(lifecycle.CreateInput{ID: uuid.New(), Draft: priced, Pricing: p, CreatedBy: staff}, env)
	if err != nil {
		s.observe(action, err)
		return nil, err
	}

	if err := s.guard.Acquire(staff, t.VehiclePlate); err != nil {
		metrics.DuplicateSubmits.Inc()
		s.log.Warn().
			Str("staff_id", staff.String()).
			Str("plate", t.VehiclePlate).
			Msg("duplicate submit refused")
		return nil, err
	}

	saved, err := s.tickets.InsertTicket(ctx, t)
	if err != nil {
		s.observe(action, err)
		s.log.Error().
			Err(err).
			Str("plate", t.VehiclePlate).
			Str("location_id", t.LocationID.String()).
			Msg("failed to insert ticket")
		return nil, err
	}

	s.observe(action, nil)
	s.log.Info().
		Str("ticket_id", saved.ID.String()).
		Str("plate", saved.VehiclePlate).
		Str("state", string(saved.State())).
		Str("amount", saved.Amount.StringFixed(2)).
		Str("created_by", staff.String()).
		Msg("ticket created")
	return saved, nil
}

func (s *TicketService) Approve(ctx context.Context, id uuid.UUID) (*ticket.Ticket, error) {
	return s.transition(ctx, id, ticket.ActionApprove, lifecycle.Approve)
}

func (s *TicketService) Reject(ctx context.Context, id uuid.UUID) (*ticket.Ticket, error) {
	return s.transition(ctx, id, ticket.ActionReject, lifecycle.Reject)
}

// Settle collects the payment of an approved pay-later ticket.
func (s *TicketService) Settle(ctx context.Context, id uuid.UUID, method ticket.PaymentMode, accountRef *uuid.UUID) (*SettleResult, error) {
	var account *payment.ResolvedAccount
	saved, err := s.transition(ctx, id, ticket.ActionSettle, func(t ticket.Ticket, env lifecycle.Env) (ticket.Ticket, error) {
		settled, acc, err := lifecycle.Settle(t, method, accountRef, env)
		account = acc
		return settled, err
	})
	if err != nil {
		return nil, err
	}
	return &SettleResult{Ticket: saved, Account: account, Payable: lifecycle.Payable(*saved).StringFixed(2)}, nil
}

// Edit applies patch to a stored ticket and reprices it. reopen allows
// editing a ticket that already left the pending state.
func (s *TicketService) Edit(ctx context.Context, id uuid.UUID, patch ticket.Patch, reopen bool) (*ticket.Ticket, error) {
	return s.transition(ctx, id, ticket.ActionEdit, func(t ticket.Ticket, env lifecycle.Env) (ticket.Ticket, error) {
		d := patch.ApplyTo(ticket.DraftFromTicket(t))
		priced, p, err := s.price(ctx, d)
		if err != nil {
			return t, err
		}
		if priced.LocationID != t.LocationID {
			if env, err = s.env(ctx, priced.LocationID); err != nil {
				return t, err
			}
		}
		return lifecycle.Edit(t, priced, p, lifecycle.EditOptions{Reopen: reopen}, env)
	})
}

// transition reads the current row, applies fn and writes the result only
// if nobody moved the ticket in between. A lost race is reported as the
// StateError the loser would have got had it read the row a moment later.
func (s *TicketService) transition(
	ctx context.Context,
	id uuid.UUID,
	action ticket.Action,
	fn func(ticket.Ticket, lifecycle.Env) (ticket.Ticket, error),
) (*ticket.Ticket, error) {
	current, err := s.tickets.GetTicket(ctx, id)
	if err != nil {
		s.observe(string(action), err)
		return nil, err
	}
	env, err := s.env(ctx, current.LocationID)
	if err != nil {
		s.observe(string(action), err)
		return nil, err
	}
	next, err := fn(*current, env)
	if err != nil {
		s.observe(string(action), err)
		return nil, err
	}

	saved, err := s.tickets.UpdateTicket(ctx, next, current.State())
	if ticket.IsStoreKind(err, ticket.StoreConflict) {
		if fresh, ferr := s.tickets.GetTicket(ctx, id); ferr == nil {
			err = &ticket.StateError{Action: action, State: fresh.State()}
		}
	}
	if err != nil {
		s.observe(string(action), err)
		s.log.Warn().
			Err(err).
			Str("ticket_id", id.String()).
			Str("action", string(action)).
			Msg("ticket transition failed")
		return nil, err
	}

	s.observe(string(action), nil)
	s.log.Info().
		Str("ticket_id", id.String()).
		Str("action", string(action)).
		Str("from", string(current.State())).
		Str("to", string(saved.State())).
		Msg("ticket transition")
	return saved, nil
}

func (s *TicketService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.tickets.DeleteTicket(ctx, id); err != nil {
		s.observe("delete", err)
		return err
	}
	s.observe("delete", nil)
	s.log.Info().Str("ticket_id", id.String()).Msg("ticket deleted")
	return nil
}

func (s *TicketService) Get(ctx context.Context, id uuid.UUID) (*ticket.Ticket, error) {
	return s.tickets.GetTicket(ctx, id)
}

// TicketView is a ticket together with the actions it currently allows.
type TicketView struct {
	ticket.Ticket
	State   ticket.State    `json:"state"`
	Allowed []ticket.Action `json:"allowed_actions"`
	Payable string          `json:"payable"`
}

func NewTicketView(t ticket.Ticket) TicketView {
	st := t.State()
	allowed := lifecycle.Allowed(st)
	if st == ticket.StatePending {
		allowed = append(allowed, ticket.ActionEdit)
	}
	return TicketView{Ticket: t, State: st, Allowed: allowed, Payable: lifecycle.Payable(t).StringFixed(2)}
}

func (s *TicketService) List(ctx context.Context, f ticket.Filter) ([]TicketView, error) {
	rows, err := s.tickets.QueryTickets(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]TicketView, 0, len(rows))
	for _, t := range rows {
		out = append(out, NewTicketView(t))
	}
	return out, nil
}

func (s *TicketService) PaymentAccounts(ctx context.Context, locationID *uuid.UUID) ([]ticket.PaymentAccount, error) {
	return s.accounts.QueryPaymentAccounts(ctx, locationID)
}

func (s *TicketService) observe(action string, err error) {
	metrics.ObserveTransition(action, resultLabel(err))
}

func resultLabel(err error) string {
	var (
		ve *ticket.ValidationError
		se *ticket.StateError
		st *ticket.StoreError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve), errors.Is(err, ErrInvalidInput):
		return "invalid"
	case errors.As(err, &se):
		return "state"
	case errors.As(err, &st):
		return "store"
	default:
		return "error"
	}
}

func selectionOf(d ticket.Draft) pricing.Selection {
	return pricing.Selection{
		Category:    d.Category,
		VehicleType: d.VehicleTypeLabel,
		Services:    d.ServicesChosen,
		Brand:       d.Vehicle.Brand,
		Model:       d.Vehicle.Model,
	}
}

// revalidateDraft drops customer selections that no longer fit the chosen
// category. Workshop drafts are priced from their own table and kept as is.
func revalidateDraft(d ticket.Draft, t pricing.Tables) ticket.Draft {
	if d.EntryType == ticket.EntryWorkshop || !d.Category.Selected() {
		return d
	}
	valid := pricing.Revalidate(selectionOf(d), t.Rates, t.Models)
	d.VehicleTypeLabel = valid.VehicleType
	d.ServicesChosen = valid.Services
	d.Vehicle.Brand = valid.Brand
	d.Vehicle.Model = valid.Model
	if valid.Model == "" {
		d.Vehicle.ModelRef = nil
	}
	return d
}
