// Package config loads application configuration and constructs the
// configured components.
package config

// Config is the root application configuration
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Hydra         HydraConfig         `koanf:"hydra"`
	Kratos        KratosConfig        `koanf:"kratos"`
	Mapping       MappingConfig       `koanf:"mapping"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	HTTPPort int `koanf:"http_port"`
}

// HydraConfig configures the connection to the Hydra admin API
type HydraConfig struct {
	AdminURL string `koanf:"admin_url"`
}

// KratosConfig configures the connection to the Kratos admin API
type KratosConfig struct {
	AdminURL string `koanf:"admin_url"`
}

// MappingConfig configures how identity schemas are turned into claims
type MappingConfig struct {
	// Keyword is the schema extension keyword carrying scope annotations
	// and the scope configuration block
	Keyword string `koanf:"keyword"`

	// DirectMapping enables mapping unannotated top-level traits to
	// scopes named after the trait
	DirectMapping bool `koanf:"direct_mapping"`

	// SchemaCacheSize bounds the number of walked schemas held in memory
	SchemaCacheSize int `koanf:"schema_cache_size"`

	// ClaimsFilter optionally restricts which top-level claims reach
	// the issued tokens
	ClaimsFilter ClaimsFilterConfig `koanf:"claims_filter"`
}

// ClaimsFilterConfig configures a claims filter
type ClaimsFilterConfig struct {
	// Type is one of "passthrough", "allow_list", or "deny_list".
	// Empty means passthrough.
	Type string `koanf:"type"`

	// Claims lists the claim names the filter applies to
	Claims []string `koanf:"claims"`
}

// ObservabilityConfig configures logging
type ObservabilityConfig struct {
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
}
