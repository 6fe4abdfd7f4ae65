package http

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"vehicle-ticket-service/internal/domain/capture"
	"vehicle-ticket-service/internal/domain/ticket"
	"vehicle-ticket-service/internal/history"
	"vehicle-ticket-service/internal/pricing"
	"vehicle-ticket-service/internal/service"
)

type MockTicketService struct {
	mock.Mock
}

func (m *MockTicketService) Options(ctx context.Context, sel pricing.Selection) (pricing.Selection, pricing.Options, error) {
	args := m.Called(ctx, sel)
	return args.Get(0).(pricing.Selection), args.Get(1).(pricing.Options), args.Error(2)
}

func (m *MockTicketService) Quote(ctx context.Context, d ticket.Draft) (*service.DraftQuote, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DraftQuote), args.Error(1)
}

func (m *MockTicketService) Create(ctx context.Context, staff uuid.UUID, d ticket.Draft) (*ticket.Ticket, error) {
	args := m.Called(ctx, staff, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Ticket), args.Error(1)
}

func (m *MockTicketService) Checkout(ctx context.Context, staff uuid.UUID, d ticket.Draft) (*ticket.Ticket, error) {
	args := m.Called(ctx, staff, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Ticket), args.Error(1)
}

func (m *MockTicketService) Approve(ctx context.Context, id uuid.UUID) (*ticket.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Ticket), args.Error(1)
}

func (m *MockTicketService) Reject(ctx context.Context, id uuid.UUID) (*ticket.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Ticket), args.Error(1)
}

func (m *MockTicketService) Settle(ctx context.Context, id uuid.UUID, method ticket.PaymentMode, accountRef *uuid.UUID) (*service.SettleResult, error) {
	args := m.Called(ctx, id, method, accountRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SettleResult), args.Error(1)
}

func (m *MockTicketService) Edit(ctx context.Context, id uuid.UUID, patch ticket.Patch, reopen bool) (*ticket.Ticket, error) {
	args := m.Called(ctx, id, patch, reopen)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Ticket), args.Error(1)
}

func (m *MockTicketService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTicketService) Get(ctx context.Context, id uuid.UUID) (*ticket.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Ticket), args.Error(1)
}

func (m *MockTicketService) List(ctx context.Context, f ticket.Filter) ([]service.TicketView, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.TicketView), args.Error(1)
}

func (m *MockTicketService) PaymentAccounts(ctx context.Context, locationID *uuid.UUID) ([]ticket.PaymentAccount, error) {
	args := m.Called(ctx, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ticket.PaymentAccount), args.Error(1)
}

type MockCaptureService struct {
	mock.Mock
}

func (m *MockCaptureService) ProcessIncomingEvent(ctx context.Context, payload capture.EventPayload, defaultSourceModel string) (*capture.ProcessResult, error) {
	args := m.Called(ctx, payload, defaultSourceModel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*capture.ProcessResult), args.Error(1)
}

func (m *MockCaptureService) FindPlates(ctx context.Context, plateQuery string) ([]service.PlateInfo, error) {
	args := m.Called(ctx, plateQuery)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.PlateInfo), args.Error(1)
}

func (m *MockCaptureService) FindEntries(ctx context.Context, q service.EntryQuery) ([]capture.Entry, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]capture.Entry), args.Error(1)
}

type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) Lookup(ctx context.Context, plate string, locationID *uuid.UUID) (*service.Visits, error) {
	args := m.Called(ctx, plate, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Visits), args.Error(1)
}

func (m *MockHistoryService) Autofill(ctx context.Context, d ticket.Draft) (ticket.Draft, *history.Profile, error) {
	args := m.Called(ctx, d)
	if args.Get(1) == nil {
		return args.Get(0).(ticket.Draft), nil, args.Error(2)
	}
	return args.Get(0).(ticket.Draft), args.Get(1).(*history.Profile), args.Error(2)
}

type MockReconcileService struct {
	mock.Mock
}

func (m *MockReconcileService) Compare(ctx context.Context, locationID uuid.UUID, day time.Time, trigger string) (*service.Comparison, error) {
	args := m.Called(ctx, locationID, day, trigger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Comparison), args.Error(1)
}

type MockStaffService struct {
	mock.Mock
}

func (m *MockStaffService) UpdateCredentials(ctx context.Context, id uuid.UUID, in service.CredentialsUpdate) error {
	args := m.Called(ctx, id, in)
	return args.Error(0)
}
