package httptransport

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	loanshandler "loanreview/internal/loans/handler"
	"loanreview/internal/platform/health"
	dErrors "loanreview/pkg/domain-errors"
	"loanreview/pkg/platform/httputil"
	"loanreview/pkg/platform/middleware/request"
)

// Dependencies are the handlers and observability hooks the router mounts.
type Dependencies struct {
	Logger   *slog.Logger
	Loans    *loanshandler.Handler
	Health   *health.Handler
	Metrics  *request.Metrics
	Gatherer prometheus.Gatherer
}

// NewRouter wires all public endpoints with middleware. Every response,
// including unknown routes and recovered panics, uses the standard envelope.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(request.RequestID)
	r.Use(request.Recovery(deps.Logger))
	r.Use(request.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(request.LatencyMiddleware(deps.Metrics))
	}

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	deps.Health.Register(r)
	deps.Loans.Register(r)

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteError(w, r, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path)))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.WriteError(w, r, dErrors.New(dErrors.CodeMethodNotAllowed, fmt.Sprintf("Method %s not allowed", r.Method)))
}
