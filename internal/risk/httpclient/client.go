// Package httpclient calls an external risk scoring API over HTTP.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"loanreview/internal/loans/models"
	"loanreview/internal/risk"
	strutil "loanreview/pkg/platform/strings"
)

const (
	source    = "risk-http"
	scorePath = "/v1/risk/score"
)

// maxResponseBytes bounds how much of a scorer response is read.
const maxResponseBytes = 1 << 20

// Client implements risk.Client against a remote scoring service.
type Client struct {
	http    *resty.Client
	timeout time.Duration
}

var _ risk.Client = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithTransport sets a custom round tripper (for testing).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.http.SetTransport(rt)
		}
	}
}

// New creates an HTTP scorer client. Every call is bounded by timeout.
// Retries are left to the API's callers.
func New(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = risk.DefaultTimeout
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	if apiKey != "" {
		httpClient.SetHeader("X-API-Key", apiKey)
	}
	c := &Client{http: httpClient, timeout: timeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type scoreRequest struct {
	LoanID              string  `json:"loan_id"`
	LoanAmountDollars   string  `json:"loan_amount_dollars"`
	IssuedDate          string  `json:"issued_date"`
	InterestRatePercent float64 `json:"interest_rate_percent"`
	TermMonths          int     `json:"term_months"`
}

type scoreResponse struct {
	Score   *int     `json:"score"`
	Reasons []string `json:"reasons"`
}

// Assess posts the loan to the scorer. The borrower name is never sent.
func (c *Client) Assess(ctx context.Context, loan *models.Loan) (*models.Assessment, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(scoreRequest{
			LoanID:              loan.ID,
			LoanAmountDollars:   loan.LoanAmountDollars.String(),
			IssuedDate:          loan.IssuedDate.Format(time.DateOnly),
			InterestRatePercent: loan.InterestRatePercent,
			TermMonths:          loan.TermMonths,
		}).
		SetDoNotParseResponse(true).
		Post(scorePath)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, risk.NewError(risk.CategoryTimeout, source, "Risk scoring service timed out", err)
		}
		return nil, risk.NewError(risk.CategoryUnavailable, source, "failed to execute request", err)
	}
	body := resp.RawBody()
	defer body.Close()

	switch status := resp.StatusCode(); status {
	case http.StatusOK:
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return nil, risk.NewError(risk.CategoryTimeout, source, "Risk scoring service timed out", nil)
	default:
		return nil, risk.NewError(risk.CategoryUnavailable, source,
			fmt.Sprintf("unexpected status code: %d", status), nil)
	}

	raw, err := io.ReadAll(io.LimitReader(body, maxResponseBytes))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, risk.NewError(risk.CategoryTimeout, source, "Risk scoring service timed out", err)
		}
		return nil, risk.NewError(risk.CategoryUnavailable, source, "failed to read response body", err)
	}

	var parsed scoreResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, risk.NewError(risk.CategoryUnavailable, source, "failed to parse response", err)
	}
	if parsed.Score == nil || *parsed.Score < 0 || *parsed.Score > 100 {
		return nil, risk.NewError(risk.CategoryUnavailable, source, "score missing or out of range", nil)
	}
	reasons := strutil.DedupeAndTrim(parsed.Reasons)
	if len(reasons) == 0 {
		return nil, risk.NewError(risk.CategoryUnavailable, source, "response carries no reasons", nil)
	}

	assessment := models.NewAssessment(*parsed.Score, reasons)
	return &assessment, nil
}
