package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	loanshandler "loanreview/internal/loans/handler"
	"loanreview/internal/loans/legacy"
	"loanreview/internal/loans/metrics"
	"loanreview/internal/loans/service"
	"loanreview/internal/loans/tracer"
	"loanreview/internal/platform/config"
	"loanreview/internal/platform/health"
	"loanreview/internal/platform/logger"
	"loanreview/internal/risk"
	"loanreview/internal/risk/httpclient"
	httptransport "loanreview/internal/transport/http"
	"loanreview/pkg/platform/circuit"
	"loanreview/pkg/platform/middleware/request"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := logger.New(level)

	repo, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	scorer := buildScorer(cfg.Risk, log)
	svc := service.NewService(repo, scorer, log,
		service.WithMetrics(metrics.New(reg)),
		service.WithTracer(tracer.NewOTel()),
	)

	healthHandler := health.New(riskModeLabel(cfg.Risk))
	healthHandler.RegisterCheck("legacy_store", func(context.Context) error {
		if repo.Len() == 0 {
			return errors.New("no legacy records loaded")
		}
		return nil
	})

	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:   log,
		Loans:    loanshandler.New(svc, log),
		Health:   healthHandler,
		Metrics:  request.NewMetrics(reg),
		Gatherer: reg,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout,
	}

	log.Info("initializing loan review service",
		"addr", cfg.Addr,
		"risk", riskModeLabel(cfg.Risk),
		"legacy_records", repo.Len(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

func loadRepository(cfg config.Server) (*legacy.InMemoryRepository, error) {
	var (
		records []legacy.Record
		err     error
	)
	if cfg.LegacyFixturesPath != "" {
		records, err = legacy.LoadFile(cfg.LegacyFixturesPath)
	} else {
		records, err = legacy.LoadFixtures()
	}
	if err != nil {
		return nil, fmt.Errorf("load legacy records: %w", err)
	}
	return legacy.NewInMemoryRepository(records), nil
}

// buildScorer picks the HTTP scorer when a base URL is configured and the
// simulated one otherwise, optionally behind a circuit breaker.
func buildScorer(cfg config.Risk, log *slog.Logger) risk.Client {
	var scorer risk.Client
	if cfg.BaseURL != "" {
		scorer = httpclient.New(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
	} else {
		// Mode was validated by config.
		mode, _ := risk.ParseMode(cfg.Mode)
		scorer = risk.NewMockClient(
			risk.WithMode(mode),
			risk.WithLatency(cfg.Latency),
			risk.WithTimeout(cfg.Timeout),
		)
	}
	if cfg.BreakerThreshold > 0 {
		breaker := circuit.New("risk", circuit.WithFailureThreshold(cfg.BreakerThreshold))
		scorer = risk.NewBreakerClient(scorer, breaker, log)
	}
	return scorer
}

func riskModeLabel(cfg config.Risk) string {
	if cfg.BaseURL != "" {
		return "http"
	}
	return cfg.Mode
}
