package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vehicle-ticket-service/internal/consistency"
	"vehicle-ticket-service/internal/domain/capture"
	"vehicle-ticket-service/internal/domain/ticket"
	"vehicle-ticket-service/internal/metrics"
	"vehicle-ticket-service/internal/reconcile"
)

const (
	defaultComparisonPage = 250
	defaultMaxDayRows     = 20000
)

type ReconcileConfig struct {
	NearDuplicateWindow time.Duration
	MatchTolerance      time.Duration
	// Location decides where a calendar day starts.
	Location *time.Location
	// PageSize and MaxDayRows bound the paged day reads. A day with more
	// rows than MaxDayRows is compared partially and flagged.
	PageSize   int
	MaxDayRows int
}

type ReconcileService struct {
	tickets  TicketStore
	captures CaptureStore
	cfg      ReconcileConfig
	log      zerolog.Logger
}

func NewReconcileService(tickets TicketStore, captures CaptureStore, cfg ReconcileConfig, log zerolog.Logger) *ReconcileService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultComparisonPage
	}
	if cfg.MaxDayRows <= 0 {
		cfg.MaxDayRows = defaultMaxDayRows
	}
	return &ReconcileService{tickets: tickets, captures: captures, cfg: cfg, log: log}
}

// Comparison is the day view of auto-captured entries against tickets.
type Comparison struct {
	LocationID     uuid.UUID                      `json:"location_id"`
	Date           string                         `json:"date"`
	AutoEntries    int                            `json:"auto_entries"`
	Tickets        int                            `json:"tickets"`
	Result         reconcile.Result               `json:"result"`
	NearDuplicates []reconcile.NearDuplicate      `json:"near_duplicates"`
	Warnings       []ticket.ReconciliationWarning `json:"warnings"`
}

// DayBounds returns [start, end) of the calendar day containing day.
func (s *ReconcileService) DayBounds(day time.Time) (time.Time, time.Time) {
	d := day.In(s.cfg.Location)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.cfg.Location)
	return start, start.AddDate(0, 0, 1)
}

// Compare builds the comparison for one location and day. It only reads.
func (s *ReconcileService) Compare(ctx context.Context, locationID uuid.UUID, day time.Time, trigger string) (*Comparison, error) {
	start, end := s.DayBounds(day)
	inDay := func(t time.Time) bool { return !t.Before(start) && t.Before(end) }

	tickets, ticketsRead, err := s.dayTickets(ctx, locationID, start, end, inDay)
	if err != nil {
		metrics.ReconciliationRuns.WithLabelValues(trigger, "error").Inc()
		return nil, err
	}
	auto, autoRead, err := s.dayCaptures(ctx, locationID, start, end, inDay)
	if err != nil {
		metrics.ReconciliationRuns.WithLabelValues(trigger, "error").Inc()
		return nil, err
	}

	auto = reconcile.Dedupe(auto)
	near := reconcile.FindNearDuplicates(auto, s.cfg.NearDuplicateWindow)
	res := reconcile.Reconcile(auto, tickets, reconcile.Options{Tolerance: s.cfg.MatchTolerance, Location: s.cfg.Location})

	var warnings []ticket.ReconciliationWarning
	if ticketsRead.relaxed || autoRead.relaxed {
		warnings = append(warnings, ticket.ReconciliationWarning{
			Kind:    ticket.WarningStaleRead,
			Message: "filtered read came back empty, results rebuilt from a broader query",
		})
	}
	if ticketsRead.truncated {
		warnings = append(warnings, ticket.ReconciliationWarning{
			Kind:    ticket.WarningTruncated,
			Message: fmt.Sprintf("ticket read stopped at %d rows, comparison is partial", s.cfg.MaxDayRows),
		})
	}
	if autoRead.truncated {
		warnings = append(warnings, ticket.ReconciliationWarning{
			Kind:    ticket.WarningTruncated,
			Message: fmt.Sprintf("capture read stopped at %d rows, comparison is partial", s.cfg.MaxDayRows),
		})
	}
	warnings = append(warnings, reconcile.Warnings(res, near)...)
	for _, w := range warnings {
		metrics.ReconciliationWarnings.WithLabelValues(string(w.Kind)).Inc()
	}
	metrics.ReconciliationRuns.WithLabelValues(trigger, "ok").Inc()

	s.log.Info().
		Str("location_id", locationID.String()).
		Str("date", start.Format("2006-01-02")).
		Int("auto_entries", len(auto)).
		Int("tickets", len(tickets)).
		Int("matched", len(res.Matched)).
		Int("unmatched_auto", len(res.UnmatchedAuto)).
		Int("unmatched_manual", len(res.UnmatchedManual)).
		Int("near_duplicates", len(near)).
		Str("trigger", trigger).
		Msg("comparison built")

	return &Comparison{
		LocationID:     locationID,
		Date:           start.Format("2006-01-02"),
		AutoEntries:    len(auto),
		Tickets:        len(tickets),
		Result:         res,
		NearDuplicates: near,
		Warnings:       warnings,
	}, nil
}

// dayRead describes how a day read was answered.
type dayRead struct {
	relaxed   bool
	truncated bool
}

func (s *ReconcileService) dayTickets(ctx context.Context, locationID uuid.UUID, start, end time.Time, inDay func(time.Time) bool) ([]ticket.Ticket, dayRead, error) {
	last := end.Add(-time.Nanosecond)
	strict := ticket.Filter{LocationID: &locationID, From: &start, To: &last}
	relax := func(f ticket.Filter) (ticket.Filter, bool) {
		from := start.AddDate(0, 0, -1)
		return ticket.Filter{LocationID: f.LocationID, From: &from}, true
	}
	keep := func(t ticket.Ticket) bool {
		return t.LocationID == locationID && inDay(t.EntryTime)
	}
	pager := &consistency.Pager[ticket.Filter, ticket.Ticket]{
		Query: s.tickets.QueryTickets,
		Page: func(f ticket.Filter, limit, offset int) ticket.Filter {
			f.Limit, f.Offset = limit, offset
			return f
		},
		PageSize: s.cfg.PageSize,
		MaxRows:  s.cfg.MaxDayRows,
	}

	res, err := consistency.WithFallback(ctx, strict, pager.All, relax, keep)
	if err != nil {
		return nil, dayRead{}, err
	}
	if res.Relaxed {
		metrics.RelaxedReads.WithLabelValues("comparison_tickets").Inc()
	}
	seen := make(map[uuid.UUID]struct{}, len(res.Rows))
	out := make([]ticket.Ticket, 0, len(res.Rows))
	for _, t := range res.Rows {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		if t.ApprovalStatus != ticket.StatusRejected && keep(t) {
			out = append(out, t)
		}
	}
	return out, dayRead{relaxed: res.Relaxed && len(res.Rows) > 0, truncated: pager.Truncated}, nil
}

func (s *ReconcileService) dayCaptures(ctx context.Context, locationID uuid.UUID, start, end time.Time, inDay func(time.Time) bool) ([]capture.Entry, dayRead, error) {
	last := end.Add(-time.Nanosecond)
	strict := capture.Filter{LocationID: &locationID, From: &start, To: &last}
	relax := func(f capture.Filter) (capture.Filter, bool) {
		from := start.AddDate(0, 0, -1)
		return capture.Filter{LocationID: f.LocationID, From: &from}, true
	}
	keep := func(e capture.Entry) bool {
		return e.LocationID == locationID && inDay(e.EntryTime)
	}
	pager := &consistency.Pager[capture.Filter, capture.Entry]{
		Query: s.captures.QueryAutoCaptureEntries,
		Page: func(f capture.Filter, limit, offset int) capture.Filter {
			f.Limit, f.Offset = limit, offset
			return f
		},
		PageSize: s.cfg.PageSize,
		MaxRows:  s.cfg.MaxDayRows,
	}

	res, err := consistency.WithFallback(ctx, strict, pager.All, relax, keep)
	if err != nil {
		return nil, dayRead{}, err
	}
	if res.Relaxed {
		metrics.RelaxedReads.WithLabelValues("comparison_captures").Inc()
	}
	return res.Rows, dayRead{relaxed: res.Relaxed && len(res.Rows) > 0, truncated: pager.Truncated}, nil
}

// Locations lists every location with tickets or captures on day.
func (s *ReconcileService) Locations(ctx context.Context, day time.Time) ([]uuid.UUID, error) {
	start, end := s.DayBounds(day)
	fromTickets, err := s.tickets.ActiveLocations(ctx, start, end)
	if err != nil {
		return nil, err
	}
	fromCaptures, err := s.captures.ActiveLocations(ctx, start, end)
	if err != nil {
		return nil, err
	}
	seen := map[uuid.UUID]struct{}{}
	var out []uuid.UUID
	for _, id := range append(fromTickets, fromCaptures...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// CompareAll builds the comparison of day for every active location. A
// failing location is logged and skipped.
func (s *ReconcileService) CompareAll(ctx context.Context, day time.Time, trigger string) ([]*Comparison, error) {
	locations, err := s.Locations(ctx, day)
	if err != nil {
		return nil, err
	}
	out := make([]*Comparison, 0, len(locations))
	for _, loc := range locations {
		c, err := s.Compare(ctx, loc, day, trigger)
		if err != nil {
			s.log.Error().Err(err).Str("location_id", loc.String()).Msg("comparison failed")
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
