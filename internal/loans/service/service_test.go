package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Repository,RiskClient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"loanreview/internal/loans/legacy"
	"loanreview/internal/loans/metrics"
	"loanreview/internal/loans/models"
	"loanreview/internal/loans/service/mocks"
	"loanreview/internal/risk"
	dErrors "loanreview/pkg/domain-errors"
	platformtestutil "loanreview/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	mockRepo *mocks.MockRepository
	mockRisk *mocks.MockRiskClient
	metrics  *metrics.Metrics
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRepo = mocks.NewMockRepository(s.ctrl)
	s.mockRisk = mocks.NewMockRiskClient(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = NewService(
		s.mockRepo,
		s.mockRisk,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithMetrics(s.metrics),
	)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func validRecord(id string) legacy.Record {
	return legacy.Record{
		ID:                  id,
		BorrowerName:        "Jane Roe",
		LoanAmountCents:     json.Number("100000"),
		IssuedDate:          "2024-01-15",
		InterestRatePercent: json.Number("5.5"),
		TermMonths:          json.Number("60"),
	}
}

func (s *ServiceSuite) requireCode(err error, code dErrors.Code) *dErrors.Error {
	s.Require().Error(err)
	var de *dErrors.Error
	s.Require().True(errors.As(err, &de), "expected domain error, got %T", err)
	s.Require().Equal(code, de.Code)
	return de
}

func (s *ServiceSuite) reviews(code string) float64 {
	return testutil.ToFloat64(s.metrics.ReviewsTotal.WithLabelValues(code))
}

func (s *ServiceSuite) TestReviewSuccess() {
	ctx := context.Background()
	assessment := models.NewAssessment(72, []string{"a", "b", "c"})
	s.mockRepo.EXPECT().FindByID(gomock.Any(), "LOAN-001").Return(validRecord("LOAN-001"), nil)
	s.mockRisk.EXPECT().Assess(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, loan *models.Loan) (*models.Assessment, error) {
			s.Equal("1000", loan.LoanAmountDollars.String())
			return &assessment, nil
		})

	review, err := s.service.Review(ctx, "LOAN-001")

	s.Require().NoError(err)
	s.Equal("LOAN-001", review.Loan.ID)
	s.Equal(72, review.Risk.Score)
	s.Equal([]string{"a", "b"}, review.Risk.TopReasons)
	s.Equal(1.0, s.reviews(metrics.OutcomeOK))
}

func (s *ServiceSuite) TestReviewNotFound() {
	s.mockRepo.EXPECT().FindByID(gomock.Any(), "LOAN-404").Return(legacy.Record{}, legacy.ErrNotFound)

	review, err := s.service.Review(context.Background(), "LOAN-404")

	s.Nil(review)
	de := s.requireCode(err, dErrors.CodeNotFound)
	s.Equal(`Loan with ID "LOAN-404" not found`, de.Message)
	s.Equal(1.0, s.reviews("NOT_FOUND"))
}

func (s *ServiceSuite) TestReviewRepositoryFailureIsUnclassified() {
	s.mockRepo.EXPECT().FindByID(gomock.Any(), "LOAN-001").Return(legacy.Record{}, errors.New("disk on fire"))

	_, err := s.service.Review(context.Background(), "LOAN-001")

	s.Require().Error(err)
	s.False(errors.As(err, new(*dErrors.Error)))
	s.Equal(dErrors.CodeInternal, dErrors.CodeOf(err))
}

func (s *ServiceSuite) TestReviewCorruptRecord() {
	s.Run("risk client is never called", func() {
		raw := validRecord("LOAN-003")
		raw.LoanAmountCents = json.Number("-500")
		s.mockRepo.EXPECT().FindByID(gomock.Any(), "LOAN-003").Return(raw, nil)
		s.mockRisk.EXPECT().Assess(gomock.Any(), gomock.Any()).Times(0)

		review, err := s.service.Review(context.Background(), "LOAN-003")

		s.Nil(review)
		de := s.requireCode(err, dErrors.CodeLegacyDataCorrupt)
		s.Equal("Invalid cents value: negative", de.Message)
		s.Equal("loan_amount_cents", de.Details["field"])
		s.Equal("negative", de.Details["reason"])
		s.Equal(json.Number("-500"), de.Details["received"])
	})

	s.Run("malformed date", func() {
		raw := validRecord("LOAN-006")
		raw.IssuedDate = "01-15-2024"
		s.mockRepo.EXPECT().FindByID(gomock.Any(), "LOAN-006").Return(raw, nil)

		_, err := s.service.Review(context.Background(), "LOAN-006")

		de := s.requireCode(err, dErrors.CodeLegacyDataCorrupt)
		s.Equal("issued_date", de.Details["field"])
		s.Equal("malformed_date", de.Details["reason"])
	})

	s.Run("borrower name not echoed", func() {
		raw := validRecord("LOAN-011")
		raw.BorrowerName = json.Number("42")
		s.mockRepo.EXPECT().FindByID(gomock.Any(), "LOAN-011").Return(raw, nil)

		_, err := s.service.Review(context.Background(), "LOAN-011")

		de := s.requireCode(err, dErrors.CodeLegacyDataCorrupt)
		s.NotContains(de.Details, "received")
	})
}

func (s *ServiceSuite) TestReviewRiskFailures() {
	cases := []struct {
		name    string
		riskErr error
		code    dErrors.Code
		message string
	}{
		{"categorized timeout", risk.NewError(risk.CategoryTimeout, "mock", "slow", nil), dErrors.CodeAITimeout, msgRiskTimeout},
		{"bare deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), dErrors.CodeAITimeout, msgRiskTimeout},
		{"categorized unavailable", risk.NewError(risk.CategoryUnavailable, "mock", "down", nil), dErrors.CodeAIUnavailable, msgRiskUnavailable},
		{"unknown failure", errors.New("connection reset"), dErrors.CodeAIUnavailable, msgRiskUnavailable},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.mockRepo.EXPECT().FindByID(gomock.Any(), "LOAN-001").Return(validRecord("LOAN-001"), nil)
			s.mockRisk.EXPECT().Assess(gomock.Any(), gomock.Any()).Return(nil, tc.riskErr)

			review, err := s.service.Review(context.Background(), "LOAN-001")

			s.Nil(review, "no partial result")
			de := s.requireCode(err, tc.code)
			s.Equal(tc.message, de.Message)
			s.ErrorIs(err, tc.riskErr)
		})
	}
}

func (s *ServiceSuite) TestReviewWithMockScorer() {
	svc := NewService(
		legacy.NewInMemoryRepository([]legacy.Record{validRecord("LOAN-001")}),
		risk.NewMockClient(risk.WithMode(risk.ModeUnavailable)),
		nil,
	)

	_, err := svc.Review(context.Background(), "LOAN-001")

	s.requireCode(err, dErrors.CodeAIUnavailable)
}

func (s *ServiceSuite) TestReviewConcurrentRequestsAreIndependent() {
	corrupt := validRecord("LOAN-BAD")
	corrupt.LoanAmountCents = json.Number("-1")
	svc := NewService(
		legacy.NewInMemoryRepository([]legacy.Record{validRecord("LOAN-001"), corrupt}),
		risk.NewMockClient(risk.WithLatency(time.Millisecond)),
		nil,
	)
	ids := []string{"LOAN-001", "LOAN-BAD", "LOAN-404"}

	result := platformtestutil.RunConcurrent(30, func(idx int) error {
		_, err := svc.Review(context.Background(), ids[idx%len(ids)])
		return err
	})

	s.Equal(int32(10), result.Successes)
	s.Equal(int32(10), result.Corrupt)
	s.Equal(int32(10), result.NotFounds)
	s.Zero(result.Errors)
}
