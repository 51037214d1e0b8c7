package observability

import (
	"os"
	"strconv"
	"strings"

	"github.com/smallbiznis/campaignhub/internal/config"
)

// Config carries logging, tracing and metrics settings. Standard OTEL_* variables
// override the values derived from the application config.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	TracesEnabled  bool
	MetricsEnabled bool
	OTLPEndpoint   string
	OTLPProtocol   string
	SamplingRatio  float64
}

func LoadConfig(cfg config.Config) Config {
	otelEnabled := envBool("OTEL_ENABLED", true)

	protocol := envLower("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	if traces := envLower("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", ""); traces != "" {
		protocol = traces
	}

	return Config{
		ServiceName:    envOr("OTEL_SERVICE_NAME", firstNonEmpty(cfg.AppName, "campaignhub")),
		Environment:    envOr("DEPLOYMENT_ENV", cfg.Environment),
		Version:        envOr("SERVICE_VERSION", cfg.AppVersion),
		LogLevel:       envLower("LOG_LEVEL", "info"),
		LogFormat:      envLower("LOG_FORMAT", "json"),
		TracesEnabled:  otelEnabled && envBool("OTEL_TRACES_ENABLED", true),
		MetricsEnabled: otelEnabled && envBool("OTEL_METRICS_ENABLED", true),
		OTLPEndpoint:   envOr("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint),
		OTLPProtocol:   protocol,
		SamplingRatio:  envFloat("OTEL_SAMPLING_RATIO", 0.1),
	}
}

// Debug is true for debug logging or any non-production style environment.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func envOr(key, def string) string {
	return firstNonEmpty(os.Getenv(key), def)
}

func envLower(key, def string) string {
	return strings.ToLower(envOr(key, def))
}

func envBool(key string, def bool) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return parsed
}

func envFloat(key string, def float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return def
	}
	return parsed
}
