package loanclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "loanreview/pkg/domain-errors"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond, MaxRetries: 3}
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, time.Second, p.BaseDelay)
	assert.Equal(t, 30*time.Second, p.MaxDelay)
	assert.Equal(t, uint64(3), p.MaxRetries)
}

func TestRetryPolicy_BackoffSchedule(t *testing.T) {
	cases := []struct {
		name   string
		policy RetryPolicy
		want   []time.Duration
	}{
		{
			"doubles then caps",
			RetryPolicy{BaseDelay: time.Second, MaxDelay: 3 * time.Second, MaxRetries: 5},
			[]time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second, 3 * time.Second},
		},
		{
			"default policy",
			DefaultRetryPolicy(),
			[]time.Duration{time.Second, 2 * time.Second, 4 * time.Second},
		},
		{
			"no retries",
			RetryPolicy{BaseDelay: time.Second, MaxDelay: time.Minute},
			nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := tc.policy.backoff()
			var got []time.Duration
			for {
				next, stop := b.Next()
				if stop {
					break
				}
				got = append(got, next)
				require.LessOrEqual(t, len(got), 10, "backoff never stopped")
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRetryPolicy_Do(t *testing.T) {
	t.Run("retryable error uses every retry", func(t *testing.T) {
		calls := 0
		err := fastPolicy().Do(context.Background(), func(context.Context) error {
			calls++
			return &ClientError{Code: dErrors.CodeAITimeout, Retryable: true}
		})

		var ce *ClientError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, dErrors.CodeAITimeout, ce.Code)
		assert.Equal(t, 4, calls)
	})

	t.Run("non retryable error stops immediately", func(t *testing.T) {
		calls := 0
		err := fastPolicy().Do(context.Background(), func(context.Context) error {
			calls++
			return &ClientError{Code: dErrors.CodeLegacyDataCorrupt}
		})

		assert.True(t, errors.As(err, new(*ClientError)))
		assert.Equal(t, 1, calls)
	})

	t.Run("plain errors are not retried", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		err := fastPolicy().Do(context.Background(), func(context.Context) error {
			calls++
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("recovers after transient failures", func(t *testing.T) {
		calls := 0
		err := fastPolicy().Do(context.Background(), func(context.Context) error {
			calls++
			if calls < 3 {
				return &ClientError{Code: CodeNetworkError, Retryable: true}
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("zero retries makes a single attempt", func(t *testing.T) {
		calls := 0
		p := fastPolicy()
		p.MaxRetries = 0
		_ = p.Do(context.Background(), func(context.Context) error {
			calls++
			return &ClientError{Code: dErrors.CodeAIUnavailable, Retryable: true}
		})
		assert.Equal(t, 1, calls)
	})
}

func TestRetryPolicy_DoCancellation(t *testing.T) {
	t.Run("cancel during backoff stops further attempts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		p := RetryPolicy{BaseDelay: time.Hour, MaxDelay: time.Hour, MaxRetries: 3}

		calls := 0
		done := make(chan error, 1)
		go func() {
			done <- p.Do(ctx, func(context.Context) error {
				calls++
				return &ClientError{Code: dErrors.CodeAITimeout, Retryable: true}
			})
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
			assert.Equal(t, 1, calls)
		case <-time.After(2 * time.Second):
			t.Fatal("retry loop did not stop after cancellation")
		}
	})

	t.Run("already cancelled context makes no attempt", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		calls := 0
		err := fastPolicy().Do(ctx, func(context.Context) error {
			calls++
			return nil
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, calls)
	})
}
