package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"vehicle-ticket-service/internal/domain/capture"
	"vehicle-ticket-service/internal/domain/ticket"
	"vehicle-ticket-service/internal/repository"
)

type MockTicketStore struct {
	mock.Mock
}

func (m *MockTicketStore) QueryTickets(ctx context.Context, filter ticket.Filter) ([]ticket.Ticket, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ticket.Ticket), args.Error(1)
}
func (m *MockTicketStore) CountTickets(ctx context.Context, filter ticket.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockTicketStore) GetTicket(ctx context.Context, id uuid.UUID) (*ticket.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Ticket), args.Error(1)
}
func (m *MockTicketStore) InsertTicket(ctx context.Context, t ticket.Ticket) (*ticket.Ticket, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Ticket), args.Error(1)
}
func (m *MockTicketStore) UpdateTicket(ctx context.Context, t ticket.Ticket, expected ticket.State) (*ticket.Ticket, error) {
	args := m.Called(ctx, t, expected)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Ticket), args.Error(1)
}
func (m *MockTicketStore) DeleteTicket(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockTicketStore) ActiveLocations(ctx context.Context, from, to time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockRateStore struct {
	mock.Mock
}

func (m *MockRateStore) QueryRateRows(ctx context.Context) ([]ticket.RateRow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]ticket.RateRow), args.Error(1)
}
func (m *MockRateStore) QueryWorkshopRateRows(ctx context.Context) ([]ticket.WorkshopRateRow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]ticket.WorkshopRateRow), args.Error(1)
}
func (m *MockRateStore) QueryVehicleModels(ctx context.Context) ([]ticket.VehicleModelRow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]ticket.VehicleModelRow), args.Error(1)
}

type MockPaymentAccountStore struct {
	mock.Mock
}

func (m *MockPaymentAccountStore) QueryPaymentAccounts(ctx context.Context, locationID *uuid.UUID) ([]ticket.PaymentAccount, error) {
	args := m.Called(ctx, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ticket.PaymentAccount), args.Error(1)
}

type MockCaptureStore struct {
	mock.Mock
}

func (m *MockCaptureStore) GetOrCreatePlate(ctx context.Context, normalized, original string) (int64, error) {
	args := m.Called(ctx, normalized, original)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockCaptureStore) CreateEntry(ctx context.Context, in repository.NewEntry) (*capture.Entry, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*capture.Entry), args.Error(1)
}
func (m *MockCaptureStore) CloseOpenEntry(ctx context.Context, locationID uuid.UUID, vehicleRef string, exitTime time.Time, imageRef string) (*capture.Entry, bool, error) {
	args := m.Called(ctx, locationID, vehicleRef, exitTime, imageRef)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*capture.Entry), args.Bool(1), args.Error(2)
}
func (m *MockCaptureStore) QueryAutoCaptureEntries(ctx context.Context, filter capture.Filter) ([]capture.Entry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]capture.Entry), args.Error(1)
}
func (m *MockCaptureStore) FindPlatesByNormalized(ctx context.Context, normalized string) ([]repository.Plate, error) {
	args := m.Called(ctx, normalized)
	return args.Get(0).([]repository.Plate), args.Error(1)
}
func (m *MockCaptureStore) GetLastEntryTimeForPlate(ctx context.Context, plateID int64) (*time.Time, error) {
	args := m.Called(ctx, plateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}
func (m *MockCaptureStore) DeleteOldEntries(ctx context.Context, days int) (int64, error) {
	args := m.Called(ctx, days)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockCaptureStore) ActiveLocations(ctx context.Context, from, to time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockStaffStore struct {
	mock.Mock
}

func (m *MockStaffStore) GetStaff(ctx context.Context, id uuid.UUID) (*repository.StaffAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.StaffAccount), args.Error(1)
}
func (m *MockStaffStore) UpdateCredentials(ctx context.Context, id uuid.UUID, email *string, confirmedAt *time.Time, passwordHash *string) error {
	args := m.Called(ctx, id, email, confirmedAt, passwordHash)
	return args.Error(0)
}
