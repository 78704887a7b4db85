package normalize

import "fmt"

// Reason is the closed set of ways a legacy field can be unusable.
type Reason string

const (
	ReasonMissing       Reason = "missing"
	ReasonWrongType     Reason = "wrong_type"
	ReasonNonInteger    Reason = "non_integer"
	ReasonNegative      Reason = "negative"
	ReasonMalformedDate Reason = "malformed_date"
)

// Legacy field names, as they appear in the upstream records.
const (
	FieldID                  = "id"
	FieldBorrowerName        = "borrower_name"
	FieldLoanAmountCents     = "loan_amount_cents"
	FieldIssuedDate          = "issued_date"
	FieldInterestRatePercent = "interest_rate_percent"
	FieldTermMonths          = "term_months"
)

// ValidationFailure describes the first rule a legacy record broke.
// Received holds the offending raw value only when it is safe to echo back.
type ValidationFailure struct {
	Field    string
	Reason   Reason
	Received any
	echo     bool
}

func (f *ValidationFailure) Error() string {
	switch {
	case f.Reason == ReasonMissing:
		return fmt.Sprintf("Missing required field: %s", f.Field)
	case f.Field == FieldIssuedDate:
		return "Invalid date format for issued_date: must be YYYY-MM-DD"
	case f.Field == FieldLoanAmountCents:
		return fmt.Sprintf("Invalid cents value: %s", f.Reason)
	default:
		return fmt.Sprintf("Invalid value for %s: %s", f.Field, f.Reason)
	}
}

// HasReceived reports whether Received may be shown to callers.
func (f *ValidationFailure) HasReceived() bool {
	return f.echo
}

// Details renders the failure as the structured payload of a domain error.
func (f *ValidationFailure) Details() map[string]any {
	d := map[string]any{
		"field":  f.Field,
		"reason": string(f.Reason),
	}
	if f.echo {
		d["received"] = f.Received
	}
	return d
}

func fail(field string, reason Reason) *ValidationFailure {
	return &ValidationFailure{Field: field, Reason: reason}
}

func failWith(field string, reason Reason, received any) *ValidationFailure {
	return &ValidationFailure{Field: field, Reason: reason, Received: received, echo: true}
}
