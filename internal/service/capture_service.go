package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vehicle-ticket-service/internal/domain/capture"
	"vehicle-ticket-service/internal/metrics"
	"vehicle-ticket-service/internal/repository"
	"vehicle-ticket-service/internal/utils"
)

type CaptureService struct {
	repo CaptureStore
	log  zerolog.Logger
}

func NewCaptureService(repo CaptureStore, log zerolog.Logger) *CaptureService {
	return &CaptureService{
		repo: repo,
		log:  log,
	}
}

// ProcessIncomingEvent records a plate read from the capture pipeline. An
// entry read opens a visit; an exit read closes the latest open visit of the
// vehicle at that location.
func (s *CaptureService) ProcessIncomingEvent(ctx context.Context, payload capture.EventPayload, defaultSourceModel string) (*capture.ProcessResult, error) {
	if payload.Plate == "" {
		return nil, fmt.Errorf("%w: plate is required", ErrInvalidInput)
	}
	if payload.SourceID == "" {
		return nil, fmt.Errorf("%w: source_id is required", ErrInvalidInput)
	}
	if payload.LocationID == uuid.Nil {
		return nil, fmt.Errorf("%w: location_id is required", ErrInvalidInput)
	}
	if payload.EventTime.IsZero() {
		return nil, fmt.Errorf("%w: event_time is required", ErrInvalidInput)
	}
	switch payload.Direction {
	case "":
		payload.Direction = capture.DirectionEntry
	case capture.DirectionEntry, capture.DirectionExit:
	default:
		return nil, fmt.Errorf("%w: direction must be entry or exit", ErrInvalidInput)
	}

	normalized := utils.NormalizePlate(payload.Plate)
	if normalized == "" {
		return nil, fmt.Errorf("%w: plate cannot be empty after normalization", ErrInvalidInput)
	}
	if payload.SourceModel == "" {
		payload.SourceModel = defaultSourceModel
	}

	if payload.Direction == capture.DirectionExit {
		entry, closed, err := s.repo.CloseOpenEntry(ctx, payload.LocationID, normalized, payload.EventTime, payload.ImageRef)
		if err != nil {
			metrics.CaptureEvents.WithLabelValues(string(payload.Direction), "error").Inc()
			s.log.Error().Err(err).Str("plate", normalized).Msg("failed to close capture entry")
			return nil, fmt.Errorf("failed to close capture entry: %w", err)
		}
		if closed {
			metrics.CaptureEvents.WithLabelValues(string(payload.Direction), "closed").Inc()
			s.log.Info().
				Int64("entry_id", entry.ID).
				Str("plate", normalized).
				Str("location_id", payload.LocationID.String()).
				Time("exit_time", payload.EventTime).
				Msg("closed capture entry")
			return &capture.ProcessResult{EntryID: entry.ID, VehicleRef: normalized, Direction: payload.Direction, Closed: true}, nil
		}
		s.log.Debug().
			Str("plate", normalized).
			Str("location_id", payload.LocationID.String()).
			Msg("exit without open entry, storing closed visit")
	}

	plateID, err := s.repo.GetOrCreatePlate(ctx, normalized, payload.Plate)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get or create plate")
		return nil, fmt.Errorf("failed to get or create plate: %w", err)
	}

	entry, err := s.repo.CreateEntry(ctx, repository.NewEntry{
		PlateID:  plateID,
		Payload:  payload,
		Vehicle:  normalized,
		ImageRef: payload.ImageRef,
		Closed:   payload.Direction == capture.DirectionExit,
	})
	if err != nil {
		metrics.CaptureEvents.WithLabelValues(string(payload.Direction), "error").Inc()
		s.log.Error().
			Err(err).
			Str("plate", normalized).
			Str("source_id", payload.SourceID).
			Msg("failed to create capture entry")
		return nil, fmt.Errorf("failed to create capture entry: %w", err)
	}

	metrics.CaptureEvents.WithLabelValues(string(payload.Direction), "recorded").Inc()
	s.log.Info().
		Int64("entry_id", entry.ID).
		Int64("plate_id", plateID).
		Str("plate", normalized).
		Str("raw_plate", payload.Plate).
		Str("source_id", payload.SourceID).
		Time("event_time", payload.EventTime).
		Msg("saved capture entry")

	return &capture.ProcessResult{
		EntryID:    entry.ID,
		VehicleRef: normalized,
		Direction:  payload.Direction,
		Closed:     entry.ExitTime != nil,
	}, nil
}

func (s *CaptureService) FindPlates(ctx context.Context, plateQuery string) ([]PlateInfo, error) {
	normalized := utils.NormalizePlate(plateQuery)
	if normalized == "" {
		return nil, fmt.Errorf("%w: plate query cannot be empty", ErrInvalidInput)
	}

	plates, err := s.repo.FindPlatesByNormalized(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to find plates: %w", err)
	}

	result := make([]PlateInfo, 0, len(plates))
	for _, p := range plates {
		lastEntryTime, _ := s.repo.GetLastEntryTimeForPlate(ctx, p.ID)
		result = append(result, PlateInfo{
			ID:            p.ID,
			Number:        p.Number,
			Normalized:    p.Normalized,
			LastEntryTime: lastEntryTime,
		})
	}
	return result, nil
}

type EntryQuery struct {
	LocationID *uuid.UUID
	Plate      string
	From       string
	To         string
	Limit      int
	Offset     int
}

func (s *CaptureService) FindEntries(ctx context.Context, q EntryQuery) ([]capture.Entry, error) {
	f := capture.Filter{LocationID: q.LocationID, VehicleRef: utils.NormalizePlate(q.Plate)}

	if q.From != "" {
		t, err := time.Parse(time.RFC3339, q.From)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid from time format", ErrInvalidInput)
		}
		f.From = &t
	}
	if q.To != "" {
		t, err := time.Parse(time.RFC3339, q.To)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid to time format", ErrInvalidInput)
		}
		f.To = &t
	}

	f.Limit = q.Limit
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if q.Offset > 0 {
		f.Offset = q.Offset
	}

	entries, err := s.repo.QueryAutoCaptureEntries(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to find capture entries: %w", err)
	}
	return entries, nil
}

// CleanupOldEntries removes captures older than days.
func (s *CaptureService) CleanupOldEntries(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("%w: retention days must be positive", ErrInvalidInput)
	}
	deleted, err := s.repo.DeleteOldEntries(ctx, days)
	if err != nil {
		s.log.Error().Err(err).Int("days", days).Msg("failed to cleanup old capture entries")
		return 0, err
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted_count", deleted).Int("days", days).Msg("cleaned up old capture entries")
	}
	return deleted, nil
}

type PlateInfo struct {
	ID            int64      `json:"id"`
	Number        string     `json:"number"`
	Normalized    string     `json:"normalized"`
	LastEntryTime *time.Time `json:"last_entry_time,omitempty"`
}
