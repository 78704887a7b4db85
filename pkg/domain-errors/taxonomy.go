package domainerrors

import "net/http"

// statusByCode is the closed code -> transport status table shared by the
// server's error writer and the client's normalizer.
var statusByCode = map[Code]int{
	CodeNotFound:          http.StatusNotFound,
	CodeValidation:        http.StatusBadRequest,
	CodeLegacyDataCorrupt: http.StatusUnprocessableEntity,
	CodeAITimeout:         http.StatusServiceUnavailable,
	CodeAIUnavailable:     http.StatusServiceUnavailable,
	CodeMethodNotAllowed:  http.StatusMethodNotAllowed,
}

// HTTPStatus translates a domain error code to its transport status.
// Unrecognized codes map to 500.
func HTTPStatus(code Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsKnown reports whether code belongs to the taxonomy.
func IsKnown(code Code) bool {
	if code == CodeInternal {
		return true
	}
	_, ok := statusByCode[code]
	return ok
}

// IsRetryable decides whether a failed call may be repeated unchanged.
// Rules are evaluated in priority order and never look at message text:
//  1. no transport response at all -> retry
//  2. 400, 404, 422 -> caller or data error, no retry
//  3. LEGACY_DATA_CORRUPT, VALIDATION_FAILED -> no retry, whatever the status
//  4. >= 500 or 408 -> retry
//  5. anything else -> no retry
func IsRetryable(hasResponse bool, status int, code Code) bool {
	if !hasResponse {
		return true
	}
	switch status {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
		return false
	}
	if code == CodeLegacyDataCorrupt || code == CodeValidation {
		return false
	}
	if status >= http.StatusInternalServerError || status == http.StatusRequestTimeout {
		return true
	}
	return false
}
