package embedding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker(t *testing.T) {
	t.Run("stays closed under threshold", func(t *testing.T) {
		cb := newCircuitBreaker(3, time.Minute)
		cb.Failure()
		cb.Failure()
		assert.True(t, cb.Allow())
	})

	t.Run("opens at threshold", func(t *testing.T) {
		cb := newCircuitBreaker(2, time.Minute)
		cb.Failure()
		cb.Failure()
		assert.False(t, cb.Allow())
	})

	t.Run("success resets failure count", func(t *testing.T) {
		cb := newCircuitBreaker(2, time.Minute)
		cb.Failure()
		cb.Success()
		cb.Failure()
		assert.True(t, cb.Allow())
	})

	t.Run("half-open after cooldown allows one trial", func(t *testing.T) {
		cb := newCircuitBreaker(1, time.Millisecond)
		cb.Failure()
		assert.False(t, cb.Allow())

		time.Sleep(5 * time.Millisecond)
		assert.True(t, cb.Allow())

		// A failed trial reopens immediately.
		cb.Failure()
		assert.False(t, cb.Allow())
	})

	t.Run("successful trial closes the breaker", func(t *testing.T) {
		cb := newCircuitBreaker(1, time.Millisecond)
		cb.Failure()
		time.Sleep(5 * time.Millisecond)
		assert.True(t, cb.Allow())
		cb.Success()
		assert.True(t, cb.Allow())
	})
}
