package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vehicle-ticket-service/internal/domain/ticket"
	"vehicle-ticket-service/internal/history"
)

type HistoryService struct {
	agg *history.Aggregator
	log zerolog.Logger
}

func NewHistoryService(store history.TicketQuerier, log zerolog.Logger) *HistoryService {
	return &HistoryService{agg: history.NewAggregator(store, log), log: log}
}

// Visits is the plate lookup shown next to the ticket form.
type Visits struct {
	Plate   string           `json:"plate"`
	Count   int              `json:"count"`
	Profile *history.Profile `json:"profile,omitempty"`
}

// Lookup counts visits within locationID (all locations when nil) and loads
// the global profile. Plates shorter than history.MinPlateLength yield an
// empty result without touching the store.
func (s *HistoryService) Lookup(ctx context.Context, plate string, locationID *uuid.UUID) (*Visits, error) {
	out := &Visits{Plate: plate}
	if !history.Searchable(plate) {
		return out, nil
	}
	count, err := s.agg.CountVisits(ctx, plate, locationID)
	if err != nil {
		return out, err
	}
	profile, err := s.agg.LatestProfile(ctx, plate)
	if err != nil {
		return out, err
	}
	out.Count = count
	out.Profile = profile
	return out, nil
}

// Autofill fills the blank customer and vehicle fields of d from the latest
// profile of its plate.
func (s *HistoryService) Autofill(ctx context.Context, d ticket.Draft) (ticket.Draft, *history.Profile, error) {
	if !history.Searchable(d.VehiclePlate) {
		return history.ApplyProfile(d, d.VehiclePlate, nil), nil, nil
	}
	profile, err := s.agg.LatestProfile(ctx, d.VehiclePlate)
	if err != nil {
		return d, nil, err
	}
	return history.ApplyProfile(d, d.VehiclePlate, profile), profile, nil
}
