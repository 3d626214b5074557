package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/project-kessel/spice/internal/config"
	"github.com/project-kessel/spice/internal/identity"
	"github.com/project-kessel/spice/internal/report"
)

// NewValidateCmd creates the validate command
func NewValidateCmd() *cobra.Command {
	var (
		schemaFile string
		schemaID   string
		format     string
		strict     bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the consent configuration of an identity schema",
		Long: `Validate the scope annotations and consent configuration embedded in an
identity schema, and print the scopes and trait mappings that would be used
at consent time.

The schema is read from a local file (--schema-file) or fetched from the
Kratos admin API (--schema-id). Warnings mark entries that would be ignored
at runtime.

Examples:
  # Validate a local schema file
  spice validate --schema-file ./identity.schema.json

  # Validate a schema served by Kratos, as YAML
  spice validate --schema-id customer --format yaml

  # Fail on any warning
  spice validate --schema-file ./identity.schema.json --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, schemaFile, schemaID, format, strict)
		},
	}

	cmd.Flags().StringVar(&schemaFile, "schema-file", "", "Path to an identity schema file")
	cmd.Flags().StringVar(&schemaID, "schema-id", "", "ID of an identity schema to fetch from Kratos")
	cmd.Flags().StringVar(&format, "format", "text", "Report format (text, json, or yaml)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error if the schema produces warnings")
	config.RegisterFlags(cmd.Flags())

	return cmd
}

func runValidate(cmd *cobra.Command, schemaFile, schemaID, format string, strict bool) error {
	if (schemaFile == "") == (schemaID == "") {
		return fmt.Errorf("exactly one of --schema-file or --schema-id is required")
	}

	configPath := configFile
	if configPath == "" {
		configPath = os.Getenv("SPICE_CONFIG")
	}

	loader, err := config.NewLoaderWithFlags(configPath, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg, err := loader.Get()
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	schemaJSON, err := loadSchema(cmd, cfg, schemaFile, schemaID)
	if err != nil {
		return err
	}

	result, err := report.Build(schemaJSON, cfg.Mapping.Keyword, cfg.Mapping.DirectMapping)
	if err != nil {
		return fmt.Errorf("failed to validate schema: %w", err)
	}

	if err := result.Render(cmd.OutOrStdout(), format); err != nil {
		return err
	}

	if strict && result.HasWarnings() {
		return fmt.Errorf("schema produced %d warning(s)", len(result.Warnings))
	}
	return nil
}

func loadSchema(cmd *cobra.Command, cfg *config.Config, schemaFile, schemaID string) ([]byte, error) {
	if schemaFile != "" {
		schemaJSON, err := os.ReadFile(schemaFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file: %w", err)
		}
		return schemaJSON, nil
	}

	gateway, err := identity.NewKratosGateway(identity.KratosGatewayConfig{
		AdminURL: cfg.Kratos.AdminURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kratos gateway: %w", err)
	}

	schemaJSON, err := gateway.GetIdentitySchema(cmd.Context(), schemaID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schema %s: %w", schemaID, err)
	}
	return schemaJSON, nil
}
