package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"vehicle-ticket-service/internal/utils"
)

type submitKey struct {
	staff uuid.UUID
	plate string
}

// SubmitGuard refuses a second create for the same staff member and plate
// inside the cooldown window. The store has no request-level deduplication.
type SubmitGuard struct {
	mu       sync.Mutex
	cooldown time.Duration
	now      func() time.Time
	last     map[submitKey]time.Time
}

func NewSubmitGuard(cooldown time.Duration) *SubmitGuard {
	return &SubmitGuard{
		cooldown: cooldown,
		now:      time.Now,
		last:     make(map[submitKey]time.Time),
	}
}

func (g *SubmitGuard) Acquire(staff uuid.UUID, plate string) error {
	if g == nil || g.cooldown <= 0 {
		return nil
	}
	key := submitKey{staff: staff, plate: utils.NormalizePlate(plate)}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if at, ok := g.last[key]; ok && now.Sub(at) < g.cooldown {
		return fmt.Errorf("%w: ticket for %s was submitted %s ago", ErrDuplicateSubmit, key.plate, now.Sub(at).Round(time.Millisecond))
	}
	for k, at := range g.last {
		if now.Sub(at) >= g.cooldown {
			delete(g.last, k)
		}
	}
	g.last[key] = now
	return nil
}
