package config

import (
	"github.com/spf13/pflag"
)

// RegisterFlags registers the configuration override flags on the given
// flag set. The zero values here are placeholders; only flags the user
// explicitly sets override the loaded configuration.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.Int("http-port", 0, "HTTP port for the consent endpoints")
	flags.String("hydra-admin-url", "", "Base URL of the Hydra admin API")
	flags.String("kratos-admin-url", "", "Base URL of the Kratos admin API")
	flags.String("mapping-keyword", "", "Schema extension keyword for scope annotations")
	flags.Bool("direct-mapping", false, "Map unannotated top-level traits to scopes of the same name")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (text or json)")
}

// GetFlagMapping maps flag names to their configuration keys
func GetFlagMapping() map[string]string {
	return map[string]string{
		"http-port":        "server.http_port",
		"hydra-admin-url":  "hydra.admin_url",
		"kratos-admin-url": "kratos.admin_url",
		"mapping-keyword":  "mapping.keyword",
		"direct-mapping":   "mapping.direct_mapping",
		"log-level":        "observability.log_level",
		"log-format":       "observability.log_format",
	}
}
