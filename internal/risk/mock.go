package risk

import (
	"context"
	"fmt"
	"time"

	"loanreview/internal/loans/models"
)

// Mode selects how the simulated scorer behaves.
type Mode string

const (
	ModeNormal      Mode = "normal"
	ModeTimeout     Mode = "timeout"
	ModeUnavailable Mode = "unavailable"
)

const (
	DefaultLatency = 50 * time.Millisecond
	DefaultTimeout = 5 * time.Second

	// timeoutOvershoot makes the simulated call outlive its advertised timeout.
	timeoutOvershoot = 100 * time.Millisecond

	mockSource = "mock"
)

// ParseMode validates a configured mode string.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeNormal, ModeTimeout, ModeUnavailable:
		return m, nil
	default:
		return "", fmt.Errorf("unknown risk mode %q", s)
	}
}

// MockClient simulates the external scorer for demos and tests.
type MockClient struct {
	mode    Mode
	latency time.Duration
	timeout time.Duration
	now     func() time.Time
}

var _ Client = (*MockClient)(nil)

// MockOption configures a MockClient.
type MockOption func(*MockClient)

// WithMode sets the failure mode. Default is ModeNormal.
func WithMode(m Mode) MockOption {
	return func(c *MockClient) {
		c.mode = m
	}
}

// WithLatency sets the simulated latency of a successful call.
func WithLatency(d time.Duration) MockOption {
	return func(c *MockClient) {
		if d >= 0 {
			c.latency = d
		}
	}
}

// WithTimeout sets the advertised timeout the timeout mode exceeds.
func WithTimeout(d time.Duration) MockOption {
	return func(c *MockClient) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithClock injects the clock used for loan age rules.
func WithClock(now func() time.Time) MockOption {
	return func(c *MockClient) {
		if now != nil {
			c.now = now
		}
	}
}

// NewMockClient creates a simulated scorer.
func NewMockClient(opts ...MockOption) *MockClient {
	c := &MockClient{
		mode:    ModeNormal,
		latency: DefaultLatency,
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode reports the configured mode.
func (c *MockClient) Mode() Mode {
	return c.mode
}

// Assess scores loan according to the configured mode.
func (c *MockClient) Assess(ctx context.Context, loan *models.Loan) (*models.Assessment, error) {
	switch c.mode {
	case ModeUnavailable:
		return nil, NewError(CategoryUnavailable, mockSource, "Risk scoring service is unavailable", nil)
	case ModeTimeout:
		if err := sleep(ctx, c.timeout+timeoutOvershoot); err != nil {
			return nil, err
		}
		return nil, NewError(CategoryTimeout, mockSource, "Risk scoring service timed out", nil)
	}

	if err := sleep(ctx, c.latency); err != nil {
		return nil, err
	}
	now := c.now()
	assessment := models.NewAssessment(Score(loan, now), Reasons(loan, now))
	return &assessment, nil
}

// sleep waits for d or until ctx is done. A cancelled wait is reported as a
// categorized error so callers see the same taxonomy either way.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return interrupted(ctx.Err())
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return interrupted(ctx.Err())
	}
}

func interrupted(err error) error {
	if err == nil {
		return nil
	}
	return NewError(Classify(err), mockSource, "scoring interrupted", err)
}
