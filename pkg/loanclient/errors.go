package loanclient

import (
	"fmt"
	"net/http"

	dErrors "loanreview/pkg/domain-errors"
)

// Client-only codes. Every other code comes from the backend taxonomy.
const (
	CodeUnknown      dErrors.Code = "UNKNOWN_ERROR"
	CodeNetworkError dErrors.Code = "NETWORK_ERROR"
)

// ErrorBody mirrors the error half of the backend failure envelope.
type ErrorBody struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"-"`
}

// TransportError is what the transport layer saw when a call failed.
// HasResponse is false when no HTTP response arrived at all.
type TransportError struct {
	HasResponse bool
	Status      int
	Body        *ErrorBody
	Err         error
}

// ClientError is the typed, user-facing form of a failed review call.
type ClientError struct {
	Code            dErrors.Code
	Message         string
	Retryable       bool
	Status          int
	RequestID       string
	OriginalMessage string
	Details         map[string]any
	Err             error
}

func (e *ClientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

var userMessages = map[dErrors.Code]string{
	dErrors.CodeValidation:        "Invalid request. Please check your input.",
	dErrors.CodeNotFound:          "Loan not found. Please check the loan ID and try again.",
	dErrors.CodeLegacyDataCorrupt: "Loan data is unavailable or corrupted. Please contact support with the request ID below.",
	dErrors.CodeAITimeout:         "Risk service timed out. Please retry in a moment.",
	dErrors.CodeAIUnavailable:     "Risk service is currently unavailable. Please retry in a moment.",
	dErrors.CodeInternal:          "Internal server error. Our team has been notified. Please retry.",
	dErrors.CodeMethodNotAllowed:  "The request could not be handled. Please try again or contact support.",
	CodeNetworkError:              "Network connection error. Please check your internet and retry.",
	CodeUnknown:                   "An unexpected error occurred. Please try again or contact support with the request ID below.",
}

// codeByStatus is used only when the backend sent no recognizable code.
var codeByStatus = map[int]dErrors.Code{
	http.StatusBadRequest:          dErrors.CodeValidation,
	http.StatusNotFound:            dErrors.CodeNotFound,
	http.StatusUnprocessableEntity: dErrors.CodeLegacyDataCorrupt,
	http.StatusRequestTimeout:      dErrors.CodeAITimeout,
	http.StatusServiceUnavailable:  dErrors.CodeAIUnavailable,
	http.StatusInternalServerError: dErrors.CodeInternal,
}

var titles = map[dErrors.Code]string{
	dErrors.CodeNotFound:          "Loan Not Found",
	dErrors.CodeValidation:        "Invalid Request",
	dErrors.CodeLegacyDataCorrupt: "Data Error",
	dErrors.CodeAITimeout:         "Service Timeout",
	dErrors.CodeAIUnavailable:     "Service Temporarily Unavailable",
	CodeNetworkError:              "Network Error",
	dErrors.CodeInternal:          "Server Error",
}

// Normalize maps a transport failure to a ClientError. The backend code wins
// when it is part of the taxonomy; otherwise the status decides; anything
// left over is UNKNOWN_ERROR.
func Normalize(te TransportError) *ClientError {
	if !te.HasResponse {
		return &ClientError{
			Code:            CodeNetworkError,
			Message:         userMessages[CodeNetworkError],
			Retryable:       dErrors.IsRetryable(false, 0, ""),
			OriginalMessage: causeMessage(te.Err),
			Err:             te.Err,
		}
	}

	var backend dErrors.Code
	ce := &ClientError{Status: te.Status, Err: te.Err}
	if te.Body != nil {
		backend = dErrors.Code(te.Body.Code)
		ce.RequestID = te.Body.RequestID
		ce.OriginalMessage = te.Body.Message
		ce.Details = te.Body.Details
	}
	if ce.OriginalMessage == "" {
		ce.OriginalMessage = causeMessage(te.Err)
	}

	switch code, ok := codeByStatus[te.Status]; {
	case dErrors.IsKnown(backend):
		ce.Code = backend
	case ok:
		ce.Code = code
	default:
		ce.Code = CodeUnknown
	}
	ce.Message = userMessages[ce.Code]
	ce.Retryable = dErrors.IsRetryable(true, te.Status, backend)
	return ce
}

func causeMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Title is the short heading shown above an error message.
func Title(code dErrors.Code) string {
	if t, ok := titles[code]; ok {
		return t
	}
	return "Unexpected Error"
}

// RiskLevel buckets a 0..100 risk score.
func RiskLevel(score int) string {
	switch {
	case score >= 70:
		return "high"
	case score >= 40:
		return "medium"
	default:
		return "low"
	}
}
