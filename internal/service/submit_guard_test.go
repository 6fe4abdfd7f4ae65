package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSubmitGuard(t *testing.T) {
	staff := uuid.New()
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	t.Run("SecondSubmitInsideCooldown", func(t *testing.T) {
		g := NewSubmitGuard(3 * time.Second)
		g.now = func() time.Time { return now }

		assert.NoError(t, g.Acquire(staff, "KA01 AB 1234"))
		err := g.Acquire(staff, "ka01ab1234")
		assert.True(t, errors.Is(err, ErrDuplicateSubmit))
	})

	t.Run("AllowedAfterCooldown", func(t *testing.T) {
		g := NewSubmitGuard(3 * time.Second)
		current := now
		g.now = func() time.Time { return current }

		assert.NoError(t, g.Acquire(staff, "KA01"))
		current = now.Add(3 * time.Second)
		assert.NoError(t, g.Acquire(staff, "KA01"))
	})

	t.Run("KeyedByStaffAndPlate", func(t *testing.T) {
		g := NewSubmitGuard(3 * time.Second)
		g.now = func() time.Time { return now }

		assert.NoError(t, g.Acquire(staff, "KA01"))
		assert.NoError(t, g.Acquire(uuid.New(), "KA01"))
		assert.NoError(t, g.Acquire(staff, "KA02"))
	})

	t.Run("ConcurrentSubmitsOnlyOneWins", func(t *testing.T) {
		g := NewSubmitGuard(time.Minute)
		var wg sync.WaitGroup
		var mu sync.Mutex
		wins := 0
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if g.Acquire(staff, "MH12") == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
	})

	t.Run("DisabledCooldown", func(t *testing.T) {
		g := NewSubmitGuard(0)
		assert.NoError(t, g.Acquire(staff, "KA01"))
		assert.NoError(t, g.Acquire(staff, "KA01"))
	})
}
