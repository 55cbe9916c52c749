package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
)

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	t.Run("returns immediately on success", func(t *testing.T) {
		calls := 0
		attempts, err := RetryWithBackoff(ctx, func() error {
			calls++
			return nil
		}, 3, time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, 1, attempts)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		attempts, err := RetryWithBackoff(ctx, func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		}, 5, time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("returns last error after exhausting attempts", func(t *testing.T) {
		calls := 0
		attempts, err := RetryWithBackoff(ctx, func() error {
			calls++
			return fmt.Errorf("failure %d", calls)
		}, 3, time.Millisecond)

		require.Error(t, err)
		assert.Equal(t, "failure 3", err.Error())
		assert.Equal(t, 3, attempts)
	})

	t.Run("configuration errors are not retried", func(t *testing.T) {
		calls := 0
		attempts, err := RetryWithBackoff(ctx, func() error {
			calls++
			return fmt.Errorf("%w: bad setting", core.ErrConfiguration)
		}, 5, time.Millisecond)

		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrConfiguration)
		assert.Equal(t, 1, calls)
		assert.Equal(t, 1, attempts)
	})

	t.Run("rejects non-positive max attempts", func(t *testing.T) {
		_, err := RetryWithBackoff(ctx, func() error { return nil }, 0, time.Millisecond)
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := RetryWithBackoff(cancelled, func() error { return nil }, 3, time.Millisecond)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
