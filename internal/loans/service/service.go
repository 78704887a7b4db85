// Package service orchestrates a loan review: legacy lookup, normalization,
// then risk scoring. A review either fully succeeds or fails with exactly one
// domain error; partial results are never returned.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loanreview/internal/loans/legacy"
	"loanreview/internal/loans/metrics"
	"loanreview/internal/loans/models"
	"loanreview/internal/loans/normalize"
	"loanreview/internal/loans/tracer"
	"loanreview/internal/risk"
	dErrors "loanreview/pkg/domain-errors"
	"loanreview/pkg/requestcontext"
)

// Repository reads raw legacy records.
// Error Contract:
// - FindByID returns legacy.ErrNotFound when no record exists
// - Any other error is an infrastructure failure
type Repository interface {
	FindByID(ctx context.Context, id string) (legacy.Record, error)
}

// RiskClient scores canonical loans. Failures are classified with risk.Classify.
type RiskClient interface {
	Assess(ctx context.Context, loan *models.Loan) (*models.Assessment, error)
}

const (
	msgRiskTimeout     = "Risk scoring service timed out"
	msgRiskUnavailable = "Risk scoring service is unavailable"
)

type Option func(*Service)

// Service runs loan reviews.
type Service struct {
	repo    Repository
	risk    RiskClient
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
}

func NewService(repo Repository, riskClient RiskClient, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		repo:   repo,
		risk:   riskClient,
		logger: logger,
		tracer: tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer sets the tracer used for review spans.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// Review looks up, normalizes and scores the loan with the given id.
// Errors are *domainerrors.Error with code NOT_FOUND, LEGACY_DATA_CORRUPT,
// AI_TIMEOUT or AI_UNAVAILABLE; anything else is an unclassified failure.
// No retries happen here and no deadline is added beyond ctx.
func (s *Service) Review(ctx context.Context, id string) (review *models.Review, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanReview, tracer.String(tracer.AttrLoanID, id))
	defer func() {
		code := outcomeCode(err)
		span.SetAttributes(tracer.String(tracer.AttrErrorCode, code))
		span.End(err)
		if s.metrics != nil {
			s.metrics.IncReview(code)
		}
		if err != nil {
			s.logFailure(ctx, id, err)
		}
	}()

	raw, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	loan, err := s.normalize(ctx, raw)
	if err != nil {
		return nil, err
	}
	assessment, err := s.assess(ctx, loan)
	if err != nil {
		return nil, err
	}

	return &models.Review{Loan: *loan, Risk: *assessment}, nil
}

func (s *Service) lookup(ctx context.Context, id string) (raw legacy.Record, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanLookup)
	defer func() { span.End(err) }()

	raw, err = s.repo.FindByID(ctx, id)
	if errors.Is(err, legacy.ErrNotFound) {
		return legacy.Record{}, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("Loan with ID %q not found", id))
	}
	if err != nil {
		return legacy.Record{}, fmt.Errorf("find legacy loan %q: %w", id, err)
	}
	return raw, nil
}

func (s *Service) normalize(ctx context.Context, raw legacy.Record) (loan *models.Loan, err error) {
	_, span := s.tracer.Start(ctx, tracer.SpanNormalize)
	defer func() { span.End(err) }()

	loan, err = normalize.Loan(raw)
	var vf *normalize.ValidationFailure
	if errors.As(err, &vf) {
		span.SetAttributes(
			tracer.String(tracer.AttrFailedField, vf.Field),
			tracer.String(tracer.AttrFailedReason, string(vf.Reason)),
		)
		return nil, dErrors.WithDetails(dErrors.CodeLegacyDataCorrupt, vf.Error(), vf.Details())
	}
	if err != nil {
		return nil, fmt.Errorf("normalize loan: %w", err)
	}
	return loan, nil
}

func (s *Service) assess(ctx context.Context, loan *models.Loan) (assessment *models.Assessment, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanAssess)
	defer func() { span.End(err) }()

	start := time.Now()
	assessment, err = s.risk.Assess(ctx, loan)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		category := risk.Classify(err)
		span.SetAttributes(tracer.String(tracer.AttrRiskCategory, string(category)))
		s.observeRisk(string(category), elapsed)
		if category == risk.CategoryTimeout {
			return nil, &dErrors.Error{Code: dErrors.CodeAITimeout, Message: msgRiskTimeout, Err: err}
		}
		return nil, &dErrors.Error{Code: dErrors.CodeAIUnavailable, Message: msgRiskUnavailable, Err: err}
	}

	span.SetAttributes(tracer.Int(tracer.AttrRiskScore, assessment.Score))
	s.observeRisk("ok", elapsed)
	return assessment, nil
}

func (s *Service) observeRisk(outcome string, seconds float64) {
	if s.metrics != nil {
		s.metrics.ObserveRiskLatency(outcome, seconds)
	}
}

func (s *Service) logFailure(ctx context.Context, id string, err error) {
	code := dErrors.CodeOf(err)
	level := slog.LevelError
	switch code {
	case dErrors.CodeNotFound:
		level = slog.LevelInfo
	case dErrors.CodeLegacyDataCorrupt:
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "loan review failed",
		"request_id", requestcontext.RequestID(ctx),
		"loan_id", id,
		"code", string(code),
		"error", err,
	)
}

func outcomeCode(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	return string(dErrors.CodeOf(err))
}
