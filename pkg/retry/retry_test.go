package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	cfg.Jitter = false
	return cfg
}

func TestDo_SucceedsAfterRetry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), "submit", func() error {
		calls++
		if calls < 3 {
			return errors.New("503 from endpoint")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUp(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxRetries = 2
	cause := errors.New("connection refused")

	calls := 0
	err := Do(context.Background(), cfg, "submit", func() error {
		calls++
		return cause
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), "submit", func() error {
		calls++
		return Permanent(errors.New("422 from endpoint"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "422 from endpoint", err.Error())
}

func TestDoWithResult_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DoWithResult(ctx, fastConfig(), "submit", func() (int, error) {
		t.Fatal("must not be called")
		return 0, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithResult_ReturnsValue(t *testing.T) {
	got, err := DoWithResult(context.Background(), fastConfig(), "lookup", func() (string, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(errors.New("timeout")))
	assert.False(t, IsRetryable(Permanent(errors.New("bad request"))))
	assert.False(t, IsRetryable(context.DeadlineExceeded))
	assert.Nil(t, Permanent(nil))
}

func TestCalculateDelay(t *testing.T) {
	cfg := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}

	assert.Equal(t, 100*time.Millisecond, calculateDelay(0, cfg))
	assert.Equal(t, 400*time.Millisecond, calculateDelay(2, cfg))
	assert.Equal(t, time.Second, calculateDelay(5, cfg))

	cfg.Jitter = true
	d := calculateDelay(0, cfg)
	assert.GreaterOrEqual(t, d, 75*time.Millisecond)
	assert.LessOrEqual(t, d, 125*time.Millisecond)
}
