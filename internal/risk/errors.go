package risk

import (
	"context"
	"errors"
	"fmt"
)

// Category is the normalized failure taxonomy for risk scoring calls.
// The orchestrator maps it onto transport error codes without looking at messages.
type Category string

const (
	// CategoryTimeout means the scorer did not answer within its deadline.
	CategoryTimeout Category = "timeout"
	// CategoryUnavailable covers every other scorer failure.
	CategoryUnavailable Category = "unavailable"
)

// Error wraps risk scorer failures with a normalized category.
type Error struct {
	Category   Category
	Source     string
	Message    string
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("risk %s [%s]: %s: %v", e.Source, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("risk %s [%s]: %s", e.Source, e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewError creates a categorized risk error.
func NewError(category Category, source, message string, underlying error) *Error {
	return &Error{
		Category:   category,
		Source:     source,
		Message:    message,
		Underlying: underlying,
	}
}

// Classify reduces any scorer failure to a category. A *Error keeps its own
// category; a bare deadline is a timeout; anything else is unavailability.
func Classify(err error) Category {
	var re *Error
	if errors.As(err, &re) {
		return re.Category
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	return CategoryUnavailable
}
