package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan is the canonical, validated loan produced by normalization.
// Every field is present; LoanAmountDollars is never negative and IssuedDate
// is midnight UTC of a real calendar date.
type Loan struct {
	ID                  string
	BorrowerName        string
	LoanAmountDollars   decimal.Decimal
	IssuedDate          time.Time
	InterestRatePercent float64
	TermMonths          int
}

// Assessment is the result of a risk scoring call.
// TopReasons is the leading min(2, len(AllReasons)) entries of AllReasons.
type Assessment struct {
	Score      int
	TopReasons []string
	AllReasons []string
}

// Review is the all-or-nothing result of a loan review.
type Review struct {
	Loan Loan
	Risk Assessment
}

// MaxTopReasons is how many reasons are surfaced as most salient.
const MaxTopReasons = 2

// NewAssessment builds an Assessment, deriving TopReasons from reasons.
func NewAssessment(score int, reasons []string) Assessment {
	all := append([]string(nil), reasons...)
	n := min(MaxTopReasons, len(all))
	return Assessment{
		Score:      score,
		TopReasons: append([]string(nil), all[:n]...),
		AllReasons: all,
	}
}

// TimestampLayout renders UTC instants with millisecond precision, e.g.
// 2024-01-15T00:00:00.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
