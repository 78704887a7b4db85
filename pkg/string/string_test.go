package string

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"ID":           "id",
		"LoanID":       "loan_id",
		"BorrowerName": "borrower_name",
		"TermMonths":   "term_months",
		"already":      "already",
	}
	for in, want := range cases {
		assert.Equal(t, want, ToSnakeCase(in), in)
	}
}
