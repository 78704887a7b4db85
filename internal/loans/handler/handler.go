package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"loanreview/internal/loans/models"
	"loanreview/pkg/platform/httputil"
	"loanreview/pkg/requestcontext"
	"loanreview/pkg/validation"
)

// LoanService defines the review operation used by the handler.
type LoanService interface {
	Review(ctx context.Context, id string) (*models.Review, error)
}

// Handler serves loan review endpoints.
type Handler struct {
	service LoanService
	logger  *slog.Logger
}

// New creates a new loans handler.
func New(service LoanService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Register mounts the handler routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/loans/{id}", h.HandleGetLoan)
}

// GetLoanRequest carries the path parameters of GET /api/loans/{id}.
type GetLoanRequest struct {
	LoanID string `validate:"required,max=64,loanid"`
}

// LoanResponse is the wire shape of a canonical loan.
type LoanResponse struct {
	ID                  string      `json:"id"`
	BorrowerName        string      `json:"borrower_name"`
	LoanAmountDollars   json.Number `json:"loan_amount_dollars"`
	IssuedDate          string      `json:"issued_date"`
	InterestRatePercent float64     `json:"interest_rate_percent"`
	TermMonths          int         `json:"term_months"`
}

// RiskResponse is the wire shape of a risk assessment.
type RiskResponse struct {
	Score      int      `json:"score"`
	TopReasons []string `json:"topReasons"`
	AllReasons []string `json:"allReasons"`
}

// ReviewResponse is the body of a successful review; meta is added on write.
type ReviewResponse struct {
	Loan LoanResponse `json:"loan"`
	Risk RiskResponse `json:"risk"`
}

// HandleGetLoan handles GET /api/loans/{id}.
func (h *Handler) HandleGetLoan(w http.ResponseWriter, r *http.Request) {
	req := GetLoanRequest{LoanID: chi.URLParam(r, "id")}
	if err := validation.Validate(&req); err != nil {
		h.logger.DebugContext(r.Context(), "rejected loan id",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, r, err)
		return
	}

	review, err := h.service.Review(r.Context(), req.LoanID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	httputil.WriteData(w, r, http.StatusOK, toReviewResponse(review))
}

func toReviewResponse(review *models.Review) ReviewResponse {
	loan := review.Loan
	return ReviewResponse{
		Loan: LoanResponse{
			ID:                  loan.ID,
			BorrowerName:        loan.BorrowerName,
			LoanAmountDollars:   json.Number(loan.LoanAmountDollars.String()),
			IssuedDate:          models.FormatTimestamp(loan.IssuedDate),
			InterestRatePercent: loan.InterestRatePercent,
			TermMonths:          loan.TermMonths,
		},
		Risk: RiskResponse{
			Score:      review.Risk.Score,
			TopReasons: nonNil(review.Risk.TopReasons),
			AllReasons: nonNil(review.Risk.AllReasons),
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
