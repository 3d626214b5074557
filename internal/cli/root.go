// Package cli wires the command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

// configFile holds the --config flag value shared by all commands
var configFile string

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spice",
		Short: "Schema-driven consent and claims mapping for Ory Hydra and Kratos",
		Long: `spice mediates OAuth2 consent between an authorization server (Ory Hydra)
and an identity server (Ory Kratos). It reads scope annotations from the
identity schema, maps identity traits to token claims, and answers consent
requests without user interaction.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to configuration file (YAML, JSON, or TOML)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewValidateCmd())

	return cmd
}
