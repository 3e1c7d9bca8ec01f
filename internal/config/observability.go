package config

// TracingConfig configures OTLP trace export. Disabled by default; when
// enabled, spans from the generation pipeline are shipped to the configured
// collector endpoint over HTTP.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled" json:"enabled"`
	Endpoint    string `mapstructure:"endpoint" json:"endpoint"`
	ServiceName string `mapstructure:"service_name" json:"service_name"`
	Environment string `mapstructure:"environment" json:"environment"`
}
