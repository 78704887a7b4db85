// Package loanclient consumes the loan review API. Failures come back as
// *ClientError values that say whether retrying can help.
package loanclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const (
	defaultTimeout = 30 * time.Second
	reviewPath     = "/api/loans/{id}"
)

// Loan is the client-side view of a canonical loan.
type Loan struct {
	ID                  string          `json:"id"`
	BorrowerName        string          `json:"borrower_name"`
	LoanAmountDollars   decimal.Decimal `json:"loan_amount_dollars"`
	IssuedDate          time.Time       `json:"issued_date"`
	InterestRatePercent float64         `json:"interest_rate_percent"`
	TermMonths          int             `json:"term_months"`
}

// Risk is the client-side view of a risk assessment.
type Risk struct {
	Score      int      `json:"score"`
	TopReasons []string `json:"topReasons"`
	AllReasons []string `json:"allReasons,omitempty"`
}

// Meta carries the correlation id echoed by the server.
type Meta struct {
	RequestID string `json:"requestId"`
}

// Review is a successful GET /api/loans/{id} body.
type Review struct {
	Loan Loan `json:"loan"`
	Risk Risk `json:"risk"`
	Meta Meta `json:"meta"`
}

type errorEnvelope struct {
	Error ErrorBody `json:"error"`
	Meta  Meta      `json:"meta"`
}

// Client calls the loan review API.
type Client struct {
	http   *resty.Client
	policy RetryPolicy
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds a single attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// WithRetryPolicy replaces DefaultRetryPolicy for GetReviewWithRetry.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// New creates a client for the API at baseURL. Retries are driven by
// RetryPolicy, never by resty itself.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(defaultTimeout).
			SetHeader("Accept", "application/json").
			SetRetryCount(0),
		policy: DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetReview fetches one review. Every failure except caller cancellation is
// returned as a *ClientError.
func (c *Client) GetReview(ctx context.Context, id string) (*Review, error) {
	var (
		review Review
		failed errorEnvelope
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&review).
		SetError(&failed).
		Get(reviewPath)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	hasResponse := resp != nil && resp.RawResponse != nil
	if err != nil && !hasResponse {
		return nil, Normalize(TransportError{Err: err})
	}
	if err != nil {
		return nil, Normalize(TransportError{
			HasResponse: true,
			Status:      resp.StatusCode(),
			Err:         fmt.Errorf("decode response: %w", err),
		})
	}
	if resp.IsError() {
		body := failed.Error
		body.RequestID = failed.Meta.RequestID
		return nil, Normalize(TransportError{
			HasResponse: true,
			Status:      resp.StatusCode(),
			Body:        &body,
		})
	}
	return &review, nil
}

// GetReviewWithRetry repeats GetReview under the client's retry policy.
func (c *Client) GetReviewWithRetry(ctx context.Context, id string) (*Review, error) {
	var review *Review
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		r, err := c.GetReview(ctx, id)
		if err != nil {
			return err
		}
		review = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}
