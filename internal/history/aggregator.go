package history

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"vehicle-ticket-service/internal/consistency"
	"vehicle-ticket-service/internal/domain/ticket"
	"vehicle-ticket-service/internal/utils"
)

// MinPlateLength is the shortest plate fragment that triggers a lookup.
const MinPlateLength = 3

const (
	relaxedWindow = 90 * 24 * time.Hour
	relaxedLimit  = 500
)

type TicketQuerier interface {
	QueryTickets(ctx context.Context, filter ticket.Filter) ([]ticket.Ticket, error)
	CountTickets(ctx context.Context, filter ticket.Filter) (int64, error)
}

// Profile is the most recent known customer and vehicle for a plate.
type Profile struct {
	Plate         string          `json:"plate"`
	Customer      ticket.Customer `json:"customer"`
	VehicleBrand  string          `json:"vehicle_brand,omitempty"`
	VehicleModel  string          `json:"vehicle_model,omitempty"`
	VehicleType   string          `json:"vehicle_type,omitempty"`
	WheelCategory ticket.Category `json:"wheel_category"`
	LastAmount    decimal.Decimal `json:"last_amount"`
	LastDiscount  decimal.Decimal `json:"last_discount"`
	LastVisit     time.Time       `json:"last_visit"`
}

type Aggregator struct {
	store TicketQuerier
	now   func() time.Time
	log   zerolog.Logger
}

func NewAggregator(store TicketQuerier, log zerolog.Logger) *Aggregator {
	return &Aggregator{store: store, now: time.Now, log: log}
}

// Searchable reports whether plate is long enough to look up.
func Searchable(plate string) bool {
	return len(utils.NormalizePlate(plate)) >= MinPlateLength
}

// MatchesPlate is the loose partial-plate match used by every history read.
func MatchesPlate(stored, query string) bool {
	q := utils.NormalizePlate(query)
	return q != "" && strings.Contains(utils.NormalizePlate(stored), q)
}

// CountVisits counts tickets whose plate contains plate, optionally within a
// single location. The count runs in the store so it is not bounded by a page.
// A zero count falls back to the relaxed recent-window read.
func (a *Aggregator) CountVisits(ctx context.Context, plate string, locationID *uuid.UUID) (int, error) {
	if !Searchable(plate) {
		return 0, nil
	}
	n, err := a.store.CountTickets(ctx, a.strictFilter(plate, locationID))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return int(n), nil
	}
	rows, err := a.lookup(ctx, plate, locationID)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// LatestProfile returns the newest ticket's customer and vehicle data for
// plate across all locations, or nil when there is none.
func (a *Aggregator) LatestProfile(ctx context.Context, plate string) (*Profile, error) {
	if !Searchable(plate) {
		return nil, nil
	}
	rows, err := a.lookup(ctx, plate, nil)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	latest := rows[0]
	return &Profile{
		Plate:         latest.VehiclePlate,
		Customer:      latest.Customer,
		VehicleBrand:  latest.Vehicle.Brand,
		VehicleModel:  latest.Vehicle.Model,
		VehicleType:   latest.VehicleTypeLabel,
		WheelCategory: latest.Category(),
		LastAmount:    latest.Amount,
		LastDiscount:  latest.Discount,
		LastVisit:     latest.CreatedAt,
	}, nil
}

func (a *Aggregator) strictFilter(plate string, locationID *uuid.UUID) ticket.Filter {
	return ticket.Filter{LocationID: locationID, PlateLike: utils.NormalizePlate(plate)}
}

func (a *Aggregator) lookup(ctx context.Context, plate string, locationID *uuid.UUID) ([]ticket.Ticket, error) {
	strict := a.strictFilter(plate, locationID)
	relax := func(f ticket.Filter) (ticket.Filter, bool) {
		from := a.now().Add(-relaxedWindow)
		return ticket.Filter{LocationID: f.LocationID, From: &from, Limit: relaxedLimit}, true
	}
	keep := func(t ticket.Ticket) bool {
		return MatchesPlate(t.VehiclePlate, plate)
	}

	res, err := consistency.WithFallback(ctx, strict, a.store.QueryTickets, relax, keep)
	if err != nil {
		return nil, err
	}
	if res.Relaxed {
		a.log.Debug().
			Str("plate", strict.PlateLike).
			Int("rows", len(res.Rows)).
			Msg("history lookup used relaxed filter")
	}
	matched := make([]ticket.Ticket, 0, len(res.Rows))
	for _, t := range res.Rows {
		if keep(t) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}
