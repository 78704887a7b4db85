package loanclient

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "loanreview/pkg/domain-errors"
)

func withBody(status int, code string) TransportError {
	return TransportError{
		HasResponse: true,
		Status:      status,
		Body:        &ErrorBody{Code: code, Message: "backend says " + code, RequestID: "req-1"},
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name      string
		in        TransportError
		code      dErrors.Code
		retryable bool
	}{
		{"not found", withBody(404, "NOT_FOUND"), dErrors.CodeNotFound, false},
		{"validation", withBody(400, "VALIDATION_FAILED"), dErrors.CodeValidation, false},
		{"corrupt", withBody(422, "LEGACY_DATA_CORRUPT"), dErrors.CodeLegacyDataCorrupt, false},
		{"ai timeout", withBody(503, "AI_TIMEOUT"), dErrors.CodeAITimeout, true},
		{"ai unavailable", withBody(503, "AI_UNAVAILABLE"), dErrors.CodeAIUnavailable, true},
		{"internal", withBody(500, "INTERNAL_SERVER_ERROR"), dErrors.CodeInternal, true},
		{"code wins over status", withBody(500, "NOT_FOUND"), dErrors.CodeNotFound, true},
		{"corrupt on 5xx is not retried", withBody(503, "LEGACY_DATA_CORRUPT"), dErrors.CodeLegacyDataCorrupt, false},
		{"unknown code falls back to status", withBody(503, "SOMETHING_ELSE"), dErrors.CodeAIUnavailable, true},
		{"method not allowed", withBody(405, "METHOD_NOT_ALLOWED"), dErrors.CodeMethodNotAllowed, false},
		{"no body 404", TransportError{HasResponse: true, Status: 404}, dErrors.CodeNotFound, false},
		{"no body 408", TransportError{HasResponse: true, Status: 408}, dErrors.CodeAITimeout, true},
		{"no body 502", TransportError{HasResponse: true, Status: 502}, CodeUnknown, true},
		{"no body 409", TransportError{HasResponse: true, Status: 409}, CodeUnknown, false},
		{"no body 401", TransportError{HasResponse: true, Status: 401}, CodeUnknown, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ce := Normalize(tc.in)
			assert.Equal(t, tc.code, ce.Code)
			assert.Equal(t, tc.retryable, ce.Retryable)
			assert.Equal(t, tc.in.Status, ce.Status)
			assert.NotEmpty(t, ce.Message)
		})
	}
}

func TestNormalize_PreservesBackendContext(t *testing.T) {
	in := withBody(422, "LEGACY_DATA_CORRUPT")
	in.Body.Details = map[string]any{"field": "issued_date", "reason": "malformed_date"}

	ce := Normalize(in)

	assert.Equal(t, "req-1", ce.RequestID)
	assert.Equal(t, "backend says LEGACY_DATA_CORRUPT", ce.OriginalMessage)
	assert.Equal(t, "issued_date", ce.Details["field"])
	assert.NotEqual(t, ce.OriginalMessage, ce.Message)
}

func TestNormalize_NetworkError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	ce := Normalize(TransportError{Err: cause})

	assert.Equal(t, CodeNetworkError, ce.Code)
	assert.True(t, ce.Retryable)
	assert.Zero(t, ce.Status)
	assert.ErrorIs(t, ce, cause)
	assert.Equal(t, "dial tcp: connection refused", ce.OriginalMessage)
	assert.Equal(t, "Network Error", Title(ce.Code))
}

func TestNormalize_OriginalMessageFallsBackToCause(t *testing.T) {
	t.Run("response without envelope", func(t *testing.T) {
		ce := Normalize(TransportError{HasResponse: true, Status: 502, Err: errors.New("decode response: EOF")})
		assert.Equal(t, "decode response: EOF", ce.OriginalMessage)
	})

	t.Run("backend message wins", func(t *testing.T) {
		in := withBody(503, "AI_TIMEOUT")
		in.Err = errors.New("transport detail")
		assert.Equal(t, "backend says AI_TIMEOUT", Normalize(in).OriginalMessage)
	})

	t.Run("nothing to report", func(t *testing.T) {
		assert.Empty(t, Normalize(TransportError{HasResponse: true, Status: 409}).OriginalMessage)
	})
}

func TestNormalize_TimeoutRoundTrip(t *testing.T) {
	status := dErrors.HTTPStatus(dErrors.CodeAITimeout)
	require.Equal(t, http.StatusServiceUnavailable, status)

	ce := Normalize(withBody(status, string(dErrors.CodeAITimeout)))
	assert.Equal(t, dErrors.CodeAITimeout, ce.Code)
	assert.True(t, ce.Retryable)
}

func TestClientError_Error(t *testing.T) {
	ce := &ClientError{Code: dErrors.CodeNotFound, Message: "gone", Status: 404}
	assert.Equal(t, "NOT_FOUND (status 404): gone", ce.Error())

	ce = &ClientError{Code: CodeNetworkError, Message: "offline"}
	assert.Equal(t, "NETWORK_ERROR: offline", ce.Error())
}

func TestTitle(t *testing.T) {
	cases := map[dErrors.Code]string{
		dErrors.CodeNotFound:          "Loan Not Found",
		dErrors.CodeValidation:        "Invalid Request",
		dErrors.CodeLegacyDataCorrupt: "Data Error",
		dErrors.CodeAITimeout:         "Service Timeout",
		dErrors.CodeAIUnavailable:     "Service Temporarily Unavailable",
		dErrors.CodeInternal:          "Server Error",
		CodeUnknown:                   "Unexpected Error",
	}
	for code, want := range cases {
		assert.Equal(t, want, Title(code), "code %s", code)
	}
}

func TestRiskLevel(t *testing.T) {
	cases := map[int]string{0: "low", 39: "low", 40: "medium", 69: "medium", 70: "high", 100: "high"}
	for score, want := range cases {
		assert.Equal(t, want, RiskLevel(score), "score %d", score)
	}
}
