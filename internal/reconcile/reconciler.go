package reconcile

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"vehicle-ticket-service/internal/domain/capture"
	"vehicle-ticket-service/internal/domain/ticket"
	"vehicle-ticket-service/internal/utils"
)

const (
	DefaultNearDuplicateWindow = 300 * time.Second
	DefaultMatchTolerance      = 30 * time.Minute
	minPartialPlate            = 3
)

// Dedupe drops repeated ids, keeping the first occurrence in input order.
func Dedupe(entries []capture.Entry) []capture.Entry {
	seen := make(map[int64]struct{}, len(entries))
	out := make([]capture.Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}

type NearDuplicate struct {
	First  capture.Entry `json:"first"`
	Second capture.Entry `json:"second"`
	Gap    time.Duration `json:"gap"`
}

type groupKey struct {
	plate    string
	location uuid.UUID
}

// FindNearDuplicates pairs entries of the same vehicle at the same location
// whose entry times are less than window apart. Pairs are only reported.
func FindNearDuplicates(entries []capture.Entry, window time.Duration) []NearDuplicate {
	if window <= 0 {
		window = DefaultNearDuplicateWindow
	}
	var order []groupKey
	groups := map[groupKey][]capture.Entry{}
	for _, e := range Dedupe(entries) {
		k := groupKey{plate: utils.NormalizePlate(e.VehicleRef), location: e.LocationID}
		if k.plate == "" {
			continue
		}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], e)
	}

	var pairs []NearDuplicate
	for _, k := range order {
		g := groups[k]
		sort.SliceStable(g, func(i, j int) bool { return g[i].EntryTime.Before(g[j].EntryTime) })
		for i := 0; i < len(g); i++ {
			for j := i + 1; j < len(g); j++ {
				gap := g[j].EntryTime.Sub(g[i].EntryTime)
				if gap >= window {
					break
				}
				pairs = append(pairs, NearDuplicate{First: g[i], Second: g[j], Gap: gap})
			}
		}
	}
	return pairs
}

type Options struct {
	Tolerance time.Duration
	// Location decides which calendar day a record falls on.
	Location *time.Location
}

type Match struct {
	Auto   capture.Entry `json:"auto"`
	Ticket ticket.Ticket `json:"ticket"`
	Gap    time.Duration `json:"gap"`
	Exact  bool          `json:"exact"`
}

type Result struct {
	Matched         []Match         `json:"matched"`
	UnmatchedAuto   []capture.Entry `json:"unmatched_auto"`
	UnmatchedManual []ticket.Ticket `json:"unmatched_manual"`
}

type candidate struct {
	auto, manual int
	gap          time.Duration
	exact        bool
}

// Reconcile joins auto-captured entries with manual tickets by location,
// day, loose plate match and entry time. Each record matches at most once,
// exact plate matches and smaller time gaps first. Inputs are not modified.
func Reconcile(auto []capture.Entry, tickets []ticket.Ticket, opts Options) Result {
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultMatchTolerance
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	auto = Dedupe(auto)

	var cands []candidate
	for i, a := range auto {
		for j, t := range tickets {
			if a.LocationID != t.LocationID || !sameDay(a.EntryTime, t.EntryTime, opts.Location) {
				continue
			}
			exact, ok := platesMatch(a.VehicleRef, t.VehiclePlate)
			if !ok {
				continue
			}
			gap := absDuration(a.EntryTime.Sub(t.EntryTime))
			if gap > opts.Tolerance {
				continue
			}
			cands = append(cands, candidate{auto: i, manual: j, gap: gap, exact: exact})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].exact != cands[j].exact {
			return cands[i].exact
		}
		return cands[i].gap < cands[j].gap
	})

	usedAuto := make([]bool, len(auto))
	usedManual := make([]bool, len(tickets))
	res := Result{Matched: []Match{}, UnmatchedAuto: []capture.Entry{}, UnmatchedManual: []ticket.Ticket{}}
	for _, c := range cands {
		if usedAuto[c.auto] || usedManual[c.manual] {
			continue
		}
		usedAuto[c.auto] = true
		usedManual[c.manual] = true
		res.Matched = append(res.Matched, Match{Auto: auto[c.auto], Ticket: tickets[c.manual], Gap: c.gap, Exact: c.exact})
	}
	for i, a := range auto {
		if !usedAuto[i] {
			res.UnmatchedAuto = append(res.UnmatchedAuto, a)
		}
	}
	for j, t := range tickets {
		if !usedManual[j] {
			res.UnmatchedManual = append(res.UnmatchedManual, t)
		}
	}
	return res
}

// Warnings turns findings into informational warnings.
func Warnings(res Result, near []NearDuplicate) []ticket.ReconciliationWarning {
	var out []ticket.ReconciliationWarning
	for _, n := range near {
		out = append(out, ticket.ReconciliationWarning{
			Kind:    ticket.WarningNearDuplicate,
			Message: fmt.Sprintf("%s captured twice %s apart", n.First.VehicleRef, n.Gap.Round(time.Second)),
			Refs:    []string{fmt.Sprint(n.First.ID), fmt.Sprint(n.Second.ID)},
		})
	}
	for _, a := range res.UnmatchedAuto {
		out = append(out, ticket.ReconciliationWarning{
			Kind:    ticket.WarningUnmatchedAuto,
			Message: fmt.Sprintf("captured %s at %s has no ticket", a.VehicleRef, a.EntryTime.Format(time.RFC3339)),
			Refs:    []string{fmt.Sprint(a.ID)},
		})
	}
	for _, t := range res.UnmatchedManual {
		out = append(out, ticket.ReconciliationWarning{
			Kind:    ticket.WarningUnmatchedManual,
			Message: fmt.Sprintf("ticket for %s at %s was not captured", t.VehiclePlate, t.EntryTime.Format(time.RFC3339)),
			Refs:    []string{t.ID.String()},
		})
	}
	return out
}

func platesMatch(a, b string) (exact bool, ok bool) {
	na, nb := utils.NormalizePlate(a), utils.NormalizePlate(b)
	if na == "" || nb == "" {
		return false, false
	}
	if na == nb {
		return true, true
	}
	short, long := na, nb
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) >= minPartialPlate && strings.Contains(long, short) {
		return false, true
	}
	return false, false
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
