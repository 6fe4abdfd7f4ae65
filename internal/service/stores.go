package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vehicle-ticket-service/internal/domain/capture"
	"vehicle-ticket-service/internal/domain/ticket"
	"vehicle-ticket-service/internal/repository"
)

type TicketStore interface {
	QueryTickets(ctx context.Context, filter ticket.Filter) ([]ticket.Ticket, error)
	CountTickets(ctx context.Context, filter ticket.Filter) (int64, error)
	GetTicket(ctx context.Context, id uuid.UUID) (*ticket.Ticket, error)
	InsertTicket(ctx context.Context, t ticket.Ticket) (*ticket.Ticket, error)
	UpdateTicket(ctx context.Context, t ticket.Ticket, expected ticket.State) (*ticket.Ticket, error)
	DeleteTicket(ctx context.Context, id uuid.UUID) error
	ActiveLocations(ctx context.Context, from, to time.Time) ([]uuid.UUID, error)
}

type RateStore interface {
	QueryRateRows(ctx context.Context) ([]ticket.RateRow, error)
	QueryWorkshopRateRows(ctx context.Context) ([]ticket.WorkshopRateRow, error)
	QueryVehicleModels(ctx context.Context) ([]ticket.VehicleModelRow, error)
}

type PaymentAccountStore interface {
	QueryPaymentAccounts(ctx context.Context, locationID *uuid.UUID) ([]ticket.PaymentAccount, error)
}

type CaptureStore interface {
	GetOrCreatePlate(ctx context.Context, normalized, original string) (int64, error)
	CreateEntry(ctx context.Context, in repository.NewEntry) (*capture.Entry, error)
	CloseOpenEntry(ctx context.Context, locationID uuid.UUID, vehicleRef string, exitTime time.Time, imageRef string) (*capture.Entry, bool, error)
	QueryAutoCaptureEntries(ctx context.Context, filter capture.Filter) ([]capture.Entry, error)
	FindPlatesByNormalized(ctx context.Context, normalized string) ([]repository.Plate, error)
	GetLastEntryTimeForPlate(ctx context.Context, plateID int64) (*time.Time, error)
	DeleteOldEntries(ctx context.Context, days int) (int64, error)
	ActiveLocations(ctx context.Context, from, to time.Time) ([]uuid.UUID, error)
}

type StaffStore interface {
	GetStaff(ctx context.Context, id uuid.UUID) (*repository.StaffAccount, error)
	UpdateCredentials(ctx context.Context, id uuid.UUID, email *string, confirmedAt *time.Time, passwordHash *string) error
}

var (
	_ TicketStore         = (*repository.TicketRepository)(nil)
	_ RateStore           = (*repository.RateRepository)(nil)
	_ PaymentAccountStore = (*repository.PaymentAccountRepository)(nil)
	_ CaptureStore        = (*repository.CaptureRepository)(nil)
	_ StaffStore          = (*repository.StaffRepository)(nil)
)
