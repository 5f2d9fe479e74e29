package telemetry

import "fmt"

// Config contains the telemetry configuration for an orchestrator run.
type Config struct {
	// ServiceName identifies the service in traces.
	ServiceName string

	// ServiceVersion is the build version.
	ServiceVersion string

	// Logging contains logging configuration.
	Logging LoggingConfig

	// Tracing contains tracing configuration.
	Tracing TracingConfig

	// Metrics contains metrics configuration.
	Metrics MetricsConfig
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level sets the minimum log level (trace, debug, info, warn, error).
	Level string

	// Format specifies the log format (console, json).
	Format string

	// Color enables ANSI color in console format.
	Color bool

	// EnableCaller adds file:line caller information to logs.
	EnableCaller bool
}

// TracingConfig configures span export.
type TracingConfig struct {
	// Enabled turns tracing on. When false a no-op provider is installed.
	Enabled bool

	// Exporter selects the span exporter ("stdout" or "none").
	Exporter string

	// SamplingRate is the head sampling ratio in [0, 1].
	SamplingRate float64
}

// MetricsConfig configures Prometheus metric collection.
type MetricsConfig struct {
	// Enabled turns metric collection on.
	Enabled bool

	// Namespace prefixes every metric name.
	Namespace string
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Logging.Format)
	}
	switch c.Tracing.Exporter {
	case "", "stdout", "none":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", c.Tracing.Exporter)
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return fmt.Errorf("sampling rate must be in [0, 1], got %f", c.Tracing.SamplingRate)
	}
	return nil
}

// DefaultConfig returns the configuration used when no overrides are given:
// console logging at info, no tracing, metrics enabled.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "overture",
		ServiceVersion: "dev",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Color:  true,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "none",
			SamplingRate: 1.0,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "overture",
		},
	}
}
