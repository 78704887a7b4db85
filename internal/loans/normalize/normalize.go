// Package normalize turns untrusted legacy loan records into canonical loans.
//
// Validation is fail-fast and ordered: the amount is checked first (present,
// numeric, integral, non-negative), then the issue date (present, YYYY-MM-DD,
// real calendar date), then the remaining fields. Only the first violation is
// reported; later fields are not inspected.
package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"loanreview/internal/loans/legacy"
	"loanreview/internal/loans/models"
)

// MinorUnitsPerMajor is the number of cents in a dollar.
const MinorUnitsPerMajor = 100

var (
	minorUnitFactor = decimal.NewFromInt(MinorUnitsPerMajor)
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

const dateLayout = "2006-01-02"

// Loan validates raw and converts it to a canonical loan.
// The returned error is always a *ValidationFailure.
func Loan(raw legacy.Record) (*models.Loan, error) {
	dollars, vf := amount(raw.LoanAmountCents)
	if vf != nil {
		return nil, vf
	}
	issued, vf := issuedDate(raw.IssuedDate)
	if vf != nil {
		return nil, vf
	}
	id, vf := requiredString(FieldID, raw.ID, true)
	if vf != nil {
		return nil, vf
	}
	borrower, vf := requiredString(FieldBorrowerName, raw.BorrowerName, false)
	if vf != nil {
		return nil, vf
	}
	rate, vf := interestRate(raw.InterestRatePercent)
	if vf != nil {
		return nil, vf
	}
	term, vf := termMonths(raw.TermMonths)
	if vf != nil {
		return nil, vf
	}

	return &models.Loan{
		ID:                  id,
		BorrowerName:        borrower,
		LoanAmountDollars:   dollars,
		IssuedDate:          issued,
		InterestRatePercent: rate,
		TermMonths:          term,
	}, nil
}

// amount converts integral minor units to dollars. The division is exact:
// an integer divided by 100 never needs more than two decimal places.
func amount(v any) (decimal.Decimal, *ValidationFailure) {
	if v == nil {
		return decimal.Zero, fail(FieldLoanAmountCents, ReasonMissing)
	}
	cents, ok := toDecimal(v)
	if !ok {
		return decimal.Zero, failWith(FieldLoanAmountCents, ReasonWrongType, v)
	}
	if !cents.IsInteger() {
		return decimal.Zero, failWith(FieldLoanAmountCents, ReasonNonInteger, v)
	}
	if cents.IsNegative() {
		return decimal.Zero, failWith(FieldLoanAmountCents, ReasonNegative, v)
	}
	return cents.DivRound(minorUnitFactor, 2), nil
}

// issuedDate accepts only a bare YYYY-MM-DD calendar date and pins it to
// midnight UTC. Anything else is rejected rather than guessed at.
func issuedDate(v any) (time.Time, *ValidationFailure) {
	if v == nil {
		return time.Time{}, fail(FieldIssuedDate, ReasonMissing)
	}
	s, ok := v.(string)
	if !ok || !datePattern.MatchString(s) {
		return time.Time{}, failWith(FieldIssuedDate, ReasonMalformedDate, v)
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, failWith(FieldIssuedDate, ReasonMalformedDate, v)
	}
	return t, nil
}

// requiredString reads a non-blank string. Borrower names are personal data
// and are never echoed back, so echo controls whether Received is kept.
func requiredString(field string, v any, echo bool) (string, *ValidationFailure) {
	if v == nil {
		return "", fail(field, ReasonMissing)
	}
	s, ok := v.(string)
	if !ok {
		if echo {
			return "", failWith(field, ReasonWrongType, v)
		}
		return "", fail(field, ReasonWrongType)
	}
	if strings.TrimSpace(s) == "" {
		return "", fail(field, ReasonMissing)
	}
	return s, nil
}

func interestRate(v any) (float64, *ValidationFailure) {
	if v == nil {
		return 0, fail(FieldInterestRatePercent, ReasonMissing)
	}
	d, ok := toDecimal(v)
	if !ok {
		return 0, failWith(FieldInterestRatePercent, ReasonWrongType, v)
	}
	if d.IsNegative() {
		return 0, failWith(FieldInterestRatePercent, ReasonNegative, v)
	}
	return d.InexactFloat64(), nil
}

func termMonths(v any) (int, *ValidationFailure) {
	if v == nil {
		return 0, fail(FieldTermMonths, ReasonMissing)
	}
	d, ok := toDecimal(v)
	if !ok {
		return 0, failWith(FieldTermMonths, ReasonWrongType, v)
	}
	if !d.IsInteger() {
		return 0, failWith(FieldTermMonths, ReasonNonInteger, v)
	}
	if !d.IsPositive() {
		return 0, failWith(FieldTermMonths, ReasonNegative, v)
	}
	return int(d.IntPart()), nil
}

// toDecimal accepts the numeric shapes a decoded record can hold.
// Strings are not numbers, even when they look like one.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case int32:
		return decimal.NewFromInt32(n), true
	default:
		return decimal.Zero, false
	}
}
