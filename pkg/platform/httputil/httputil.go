package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	dErrors "loanreview/pkg/domain-errors"
	"loanreview/pkg/requestcontext"
)

// internalErrorMessage is shown for failures that were never classified.
// The underlying cause stays in the logs.
const internalErrorMessage = "Internal server error"

// Meta is attached to every response body, success or failure.
type Meta struct {
	RequestID string `json:"requestId"`
}

// ErrorBody is the error half of the failure envelope.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the single wire shape for every failure.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
	Meta  Meta      `json:"meta"`
}

// NewMeta builds response metadata from the request context.
func NewMeta(ctx context.Context) Meta {
	return Meta{RequestID: requestcontext.RequestID(ctx)}
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteData writes a success body with meta.requestId added alongside its
// top-level fields. body must encode as a JSON object.
func WriteData(w http.ResponseWriter, r *http.Request, status int, body any) {
	fields, err := objectFields(body)
	if err != nil {
		WriteError(w, r, fmt.Errorf("encode response: %w", err))
		return
	}
	meta, err := json.Marshal(NewMeta(r.Context()))
	if err != nil {
		WriteError(w, r, fmt.Errorf("encode meta: %w", err))
		return
	}
	fields["meta"] = meta
	WriteJSON(w, status, fields)
}

func objectFields(body any) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// WriteError centralizes domain error translation to HTTP responses.
// Domain errors keep their code, message and details; anything else is reported
// as INTERNAL_SERVER_ERROR so no unclassified error crosses the wire.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := ErrorEnvelope(r.Context(), err)
	WriteJSON(w, status, body)
}

// ErrorEnvelope classifies err and returns the status and body WriteError would send.
func ErrorEnvelope(ctx context.Context, err error) (int, ErrorResponse) {
	body := ErrorBody{
		Code:    string(dErrors.CodeInternal),
		Message: internalErrorMessage,
	}

	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		body.Code = string(domainErr.Code)
		if domainErr.Message != "" {
			body.Message = domainErr.Message
		}
		body.Details = domainErr.Details
	}

	return dErrors.HTTPStatus(dErrors.Code(body.Code)), ErrorResponse{
		Error: body,
		Meta:  NewMeta(ctx),
	}
}
