package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")
var errFatal = errors.New("fatal")

func fastPolicy(maxRetries int) Policy {
	return Policy{
		MaxRetries: maxRetries,
		Delays:     []time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond},
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(3), func() error {
		calls++
		return nil
	}, func(error) bool { return true })

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(3), func() error {
		calls++
		if calls <= 2 {
			return errTransient
		}
		return nil
	}, func(err error) bool { return errors.Is(err, errTransient) })

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_FatalErrorPropagatesImmediately(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(3), func() error {
		calls++
		return errFatal
	}, func(err error) bool { return errors.Is(err, errTransient) })

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var attemptsErr *AttemptsError
	require.ErrorAs(t, err, &attemptsErr)
	assert.Equal(t, 1, attemptsErr.Attempts)
	assert.ErrorIs(t, err, errFatal)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(3), func() error {
		calls++
		return errTransient
	}, func(error) bool { return true })

	require.Error(t, err)
	assert.Equal(t, 4, calls)

	var attemptsErr *AttemptsError
	require.ErrorAs(t, err, &attemptsErr)
	assert.Equal(t, 4, attemptsErr.Attempts)
	assert.ErrorIs(t, err, errTransient)
}

func TestDo_ObservesDelaySchedule(t *testing.T) {
	policy := Policy{
		MaxRetries: 2,
		Delays:     []time.Duration{30 * time.Millisecond, 60 * time.Millisecond},
	}

	calls := 0
	start := time.Now()
	err := Do(context.Background(), policy, func() error {
		calls++
		if calls <= 2 {
			return errTransient
		}
		return nil
	}, func(error) bool { return true })
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
}

func TestDo_ContextCancelAbortsWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	policy := Policy{MaxRetries: 3, Delays: []time.Duration{time.Hour}}
	done := make(chan error, 1)
	go func() {
		done <- Do(ctx, policy, func() error { return errTransient },
			func(error) bool { return true })
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Do did not return after context cancellation")
	}
}
