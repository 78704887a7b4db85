// Package legacy reads loan records as the upstream system stores them.
// Nothing about a Record is trusted; normalization decides what is usable.
package legacy

import (
	"encoding/json"
	"fmt"
	"io"
)

// Record is a raw legacy loan. Values are kept exactly as decoded from JSON
// (strings, json.Number, bools, nil) so that a missing field, a field of the
// wrong type and a malformed value stay distinguishable.
type Record struct {
	ID                  any `json:"id"`
	BorrowerName        any `json:"borrower_name"`
	LoanAmountCents     any `json:"loan_amount_cents"`
	IssuedDate          any `json:"issued_date"`
	InterestRatePercent any `json:"interest_rate_percent"`
	TermMonths          any `json:"term_months"`
}

// Key is the lookup key of the record: its id when that is a string.
func (r Record) Key() (string, bool) {
	id, ok := r.ID.(string)
	return id, ok && id != ""
}

// DecodeRecords reads a JSON array of legacy records. Numbers are preserved
// as json.Number so integer checks never go through float64.
func DecodeRecords(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode legacy records: %w", err)
	}
	return records, nil
}
