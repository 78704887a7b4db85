package risk

import (
	"time"

	"github.com/shopspring/decimal"

	"loanreview/internal/loans/models"
)

const (
	baseScore = 50
	minScore  = 0
	maxScore  = 100

	// year is a flat 365 days; loan age thresholds do not account for leap days.
	year = 365 * 24 * time.Hour
)

// Reason texts produced by the simulated scorer.
const (
	ReasonLargeAmount   = "Loan amount exceeds typical threshold"
	ReasonSmallAmount   = "Loan amount is unusually low"
	ReasonAging         = "Loan is aging"
	ReasonElevatedRate  = "Interest rate is elevated"
	ReasonStandardCheck = "Standard underwriting review required"
)

var (
	largeAmountReason = decimal.NewFromInt(10_000)
	smallAmountReason = decimal.NewFromInt(1_000)
	largeAmountScore  = decimal.NewFromInt(25_000)
	smallAmountScore  = decimal.NewFromInt(500)
)

// Score is a deterministic function of the loan and the evaluation instant.
func Score(loan *models.Loan, now time.Time) int {
	score := baseScore
	if loan.LoanAmountDollars.GreaterThan(largeAmountScore) {
		score += 15
	}
	if loan.LoanAmountDollars.LessThan(smallAmountScore) {
		score += 10
	}
	if age(loan, now) > 10*year {
		score += 10
	}
	if loan.InterestRatePercent > 8 {
		score += 5
	}
	return max(minScore, min(maxScore, score))
}

// Reasons lists every reason that applies, most salient first. The standard
// review reason is always last, so the list is never empty.
func Reasons(loan *models.Loan, now time.Time) []string {
	var reasons []string
	if loan.LoanAmountDollars.GreaterThan(largeAmountReason) {
		reasons = append(reasons, ReasonLargeAmount)
	}
	if loan.LoanAmountDollars.LessThan(smallAmountReason) {
		reasons = append(reasons, ReasonSmallAmount)
	}
	if age(loan, now) > 5*year {
		reasons = append(reasons, ReasonAging)
	}
	if loan.InterestRatePercent > 8 {
		reasons = append(reasons, ReasonElevatedRate)
	}
	return append(reasons, ReasonStandardCheck)
}

func age(loan *models.Loan, now time.Time) time.Duration {
	return now.Sub(loan.IssuedDate)
}
