package risk

import (
	"context"
	"log/slog"

	"loanreview/internal/loans/models"
	"loanreview/pkg/platform/circuit"
)

// BreakerClient fails fast as unavailable while the scorer keeps failing,
// instead of making every request wait out a dead dependency.
type BreakerClient struct {
	next    Client
	breaker *circuit.Breaker
	logger  *slog.Logger
}

var _ Client = (*BreakerClient)(nil)

// NewBreakerClient wraps next with breaker.
func NewBreakerClient(next Client, breaker *circuit.Breaker, logger *slog.Logger) *BreakerClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &BreakerClient{next: next, breaker: breaker, logger: logger}
}

func (c *BreakerClient) Assess(ctx context.Context, loan *models.Loan) (*models.Assessment, error) {
	if !c.breaker.Allow() {
		return nil, NewError(CategoryUnavailable, c.breaker.Name(), "Risk scoring service is unavailable", nil)
	}

	assessment, err := c.next.Assess(ctx, loan)
	if err != nil {
		// A caller giving up says nothing about the scorer's health.
		if ctx.Err() != nil && Classify(err) != CategoryTimeout {
			return nil, err
		}
		if change := c.breaker.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "risk circuit opened",
				"breaker", c.breaker.Name(),
				"category", string(Classify(err)),
			)
		}
		return nil, err
	}

	if change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "risk circuit closed", "breaker", c.breaker.Name())
	}
	return assessment, nil
}
