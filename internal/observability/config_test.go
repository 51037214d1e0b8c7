package observability

import (
	"testing"

	"github.com/smallbiznis/campaignhub/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaultsFromAppConfig(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	cfg := LoadConfig(config.Config{AppName: "sites", Environment: "production", OTLPEndpoint: "collector:4317"})
	assert.Equal(t, "sites", cfg.ServiceName)
	assert.Equal(t, "collector:4317", cfg.OTLPEndpoint)
	assert.True(t, cfg.TracesEnabled)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.Debug())
}

func TestLoadConfigOtelDisabledTurnsOffBothSignals(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")
	t.Setenv("OTEL_METRICS_ENABLED", "true")

	cfg := LoadConfig(config.Config{})
	assert.Equal(t, "campaignhub", cfg.ServiceName)
	assert.False(t, cfg.TracesEnabled)
	assert.False(t, cfg.MetricsEnabled)
}

func TestDebugForDevelopmentEnvironments(t *testing.T) {
	assert.True(t, Config{Environment: "Development"}.Debug())
	assert.True(t, Config{LogLevel: "debug", Environment: "production"}.Debug())
	assert.False(t, Config{LogLevel: "info", Environment: "staging"}.Debug())
}
