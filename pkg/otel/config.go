package otel

import "time"

// Config 配置追踪、指标和日志三条输出。
//
// Enabled 为 false 时 Provider 使用空实现，日志仍按 Logging 输出。
type Config struct {
	Enabled        bool   `koanf:"enabled"`
	ServiceName    string `koanf:"service_name"`
	ServiceVersion string `koanf:"service_version"`
	Environment    string `koanf:"environment"`

	Tracing TracingConfig `koanf:"tracing"`
	Metrics MetricsConfig `koanf:"metrics"`
	Logging LoggingConfig `koanf:"logging"`
}

// TracingConfig 配置组装 Span 的导出。
type TracingConfig struct {
	Enabled  bool         `koanf:"enabled"`
	Exporter ExporterType `koanf:"exporter"`
	Endpoint string       `koanf:"endpoint"`
	Insecure bool         `koanf:"insecure"`
	// SampleRate 取值 [0, 1]，按 TraceID 比例采样。
	SampleRate float64       `koanf:"sample_rate"`
	Timeout    time.Duration `koanf:"timeout"`
}

// MetricsConfig 配置组装指标的周期导出。
type MetricsConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Exporter ExporterType  `koanf:"exporter"`
	Endpoint string        `koanf:"endpoint"`
	Insecure bool          `koanf:"insecure"`
	Interval time.Duration `koanf:"interval"`
}

// LoggingConfig 配置 slog 输出。Level 取 debug/info/warn/error，Format 取 text/json。
type LoggingConfig struct {
	Level          string `koanf:"level"`
	Format         string `koanf:"format"`
	IncludeTraceID bool   `koanf:"include_trace_id"`
}

// DefaultConfig 返回关闭导出、文本日志的默认配置。
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "contextengine",
		ServiceVersion: "0.1.0",
		Environment:    "development",
		Tracing: TracingConfig{
			Exporter:   ExporterOTLPGRPC,
			Endpoint:   "localhost:4317",
			Insecure:   true,
			SampleRate: 1.0,
			Timeout:    10 * time.Second,
		},
		Metrics: MetricsConfig{
			Exporter: ExporterOTLPGRPC,
			Endpoint: "localhost:4317",
			Insecure: true,
			Interval: 60 * time.Second,
		},
		Logging: LoggingConfig{
			Level:          "info",
			Format:         "text",
			IncludeTraceID: true,
		},
	}
}

// Validate 检查采样率和导出器类型。
func (c *Config) Validate() error {
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return ErrInvalidSampleRate
	}
	for _, t := range []ExporterType{c.Tracing.Exporter, c.Metrics.Exporter} {
		if !t.IsValid() {
			return ErrInvalidExporter
		}
	}
	return nil
}

// WithDefaults 用默认值填充零值字段。Enabled 等布尔开关保持原值。
func (c Config) WithDefaults() Config {
	d := DefaultConfig()

	fill(&c.ServiceName, d.ServiceName)
	fill(&c.ServiceVersion, d.ServiceVersion)
	fill(&c.Environment, d.Environment)

	fill(&c.Tracing.Exporter, d.Tracing.Exporter)
	fill(&c.Tracing.Endpoint, d.Tracing.Endpoint)
	fill(&c.Tracing.SampleRate, d.Tracing.SampleRate)
	fill(&c.Tracing.Timeout, d.Tracing.Timeout)

	fill(&c.Metrics.Exporter, d.Metrics.Exporter)
	fill(&c.Metrics.Endpoint, d.Metrics.Endpoint)
	fill(&c.Metrics.Interval, d.Metrics.Interval)

	fill(&c.Logging.Level, d.Logging.Level)
	fill(&c.Logging.Format, d.Logging.Format)
	return c
}

func fill[T comparable](dst *T, def T) {
	var zero T
	if *dst == zero {
		*dst = def
	}
}
