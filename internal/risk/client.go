// Package risk scores canonical loans through an external risk-assessment service.
package risk

import (
	"context"

	"loanreview/internal/loans/models"
)

// Client scores a canonical loan. Implementations must honor ctx cancellation
// and report every failure as a *Error (or an error Classify understands).
type Client interface {
	Assess(ctx context.Context, loan *models.Loan) (*models.Assessment, error)
}
