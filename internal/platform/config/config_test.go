package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "normal", cfg.Risk.Mode)
	assert.Equal(t, 5*time.Second, cfg.Risk.Timeout)
	assert.Equal(t, 50*time.Millisecond, cfg.Risk.Latency)
	assert.Empty(t, cfg.Risk.BaseURL)
	assert.Zero(t, cfg.Risk.BreakerThreshold)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("LOANREVIEW_ADDR", ":9090")
	t.Setenv("RISK_MODE", "timeout")
	t.Setenv("RISK_TIMEOUT", "250ms")
	t.Setenv("RISK_BASE_URL", "http://scorer:8081")
	t.Setenv("RISK_BREAKER_THRESHOLD", "3")
	t.Setenv("LEGACY_FIXTURES_PATH", "/data/loans.json")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "timeout", cfg.Risk.Mode)
	assert.Equal(t, 250*time.Millisecond, cfg.Risk.Timeout)
	assert.Equal(t, "http://scorer:8081", cfg.Risk.BaseURL)
	assert.Equal(t, 3, cfg.Risk.BreakerThreshold)
	assert.Equal(t, "/data/loans.json", cfg.LegacyFixturesPath)
}

func TestFromEnv_Errors(t *testing.T) {
	cases := map[string][2]string{
		"unparsable duration":                 {"RISK_TIMEOUT", "soon"},
		"unknown mode":                        {"RISK_MODE", "flaky"},
		"zero timeout":                        {"RISK_TIMEOUT", "0s"},
		"negative threshold":                  {"RISK_BREAKER_THRESHOLD", "-1"},
		"risk timeout beyond request timeout": {"RISK_TIMEOUT", "40s"},
		"risk timeout without headroom":       {"RISK_TIMEOUT", "29500ms"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestValidate_RequestTimeoutHeadroom(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	cfg.Risk.Timeout = 2 * time.Second
	cfg.RequestTimeout = 3 * time.Second
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, 3*time.Second, cfg.Risk.MinRequestTimeout())

	cfg.RequestTimeout = 2*time.Second + 100*time.Millisecond
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_TIMEOUT")
}
