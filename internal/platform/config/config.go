package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr     string `env:"LOANREVIEW_ADDR"      envDefault:":8080"`
	LogLevel string `env:"LOANREVIEW_LOG_LEVEL" envDefault:"info"`

	// RequestTimeout bounds writing a response and draining on shutdown.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	// LegacyFixturesPath replaces the embedded fixtures when set.
	LegacyFixturesPath string `env:"LEGACY_FIXTURES_PATH"`

	Risk Risk
}

// Risk configures the scorer. A non-empty BaseURL selects the HTTP client;
// otherwise the simulated scorer runs in Mode.
type Risk struct {
	Mode    string        `env:"RISK_MODE"    envDefault:"normal"`
	Timeout time.Duration `env:"RISK_TIMEOUT" envDefault:"5s"`
	Latency time.Duration `env:"RISK_LATENCY" envDefault:"50ms"`
	BaseURL string        `env:"RISK_BASE_URL"`
	APIKey  string        `env:"RISK_API_KEY"`

	// BreakerThreshold is the consecutive failure count that opens the
	// circuit. Zero disables the breaker.
	BreakerThreshold int `env:"RISK_BREAKER_THRESHOLD" envDefault:"0"`
}

// riskResponseHeadroom is how much longer than the scorer timeout a request
// may take. It covers the simulated scorer overshooting its timeout and
// writing the error envelope, so the write deadline never fires first.
const riskResponseHeadroom = time.Second

// MinRequestTimeout is the shortest server write deadline that still lets a
// timed out scorer call be reported to the caller.
func (r Risk) MinRequestTimeout() time.Duration {
	return r.Timeout + riskResponseHeadroom
}

var riskModes = map[string]bool{"normal": true, "timeout": true, "unavailable": true}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg, err := env.ParseAs[Server]()
	if err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (s Server) Validate() error {
	if !riskModes[s.Risk.Mode] {
		return fmt.Errorf("RISK_MODE must be normal, timeout or unavailable, got %q", s.Risk.Mode)
	}
	if s.Risk.Timeout <= 0 {
		return fmt.Errorf("RISK_TIMEOUT must be positive, got %s", s.Risk.Timeout)
	}
	if s.Risk.Latency < 0 {
		return fmt.Errorf("RISK_LATENCY must not be negative, got %s", s.Risk.Latency)
	}
	if s.Risk.BreakerThreshold < 0 {
		return fmt.Errorf("RISK_BREAKER_THRESHOLD must not be negative, got %d", s.Risk.BreakerThreshold)
	}
	if s.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", s.RequestTimeout)
	}
	if minimum := s.Risk.MinRequestTimeout(); s.RequestTimeout < minimum {
		return fmt.Errorf("REQUEST_TIMEOUT must be at least RISK_TIMEOUT + %s (%s), got %s",
			riskResponseHeadroom, minimum, s.RequestTimeout)
	}
	return nil
}
