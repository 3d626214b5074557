package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/project-kessel/spice/internal/config"
	"github.com/project-kessel/spice/internal/server"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the spice consent server",
		Long: `Start the spice HTTP server.

The server will:
  - Serve the consent endpoint Hydra redirects browsers to
  - Resolve identity traits to token claims using the identity schema
  - Load configuration from file, environment variables, and command-line flags

Configuration precedence (highest to lowest):
  1. Command-line flags
  2. Environment variables (SPICE_*)
  3. Configuration file (if --config or SPICE_CONFIG is set)
  4. Built-in defaults

Examples:
  # Start with default settings
  spice serve

  # Override the listen port and admin endpoints
  spice serve --http-port 4489 --hydra-admin-url http://hydra:4445

  # Use custom config file
  spice serve --config /etc/spice/config.yaml`,
		RunE: runServe,
	}

	// Auto-register all config flags
	config.RegisterFlags(cmd.Flags())

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Determine config file path
	configPath := configFile
	if configPath == "" {
		// Check environment variable
		configPath = os.Getenv("SPICE_CONFIG")
	}
	// If still empty, configPath remains empty and we'll use env vars/flags only

	// 2. Load configuration (file + env vars + flags)
	loader, err := config.NewLoaderWithFlags(configPath, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg, err := loader.Get()
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	// 3. Create provider to build all components from config
	provider := config.NewProvider(cfg)

	// 4. Build server configuration with the consent handler wired
	serverCfg, err := provider.ServerConfig()
	if err != nil {
		return fmt.Errorf("failed to build components: %w", err)
	}

	// 5. Create and start server
	srv := server.New(serverCfg)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	fmt.Println("spice is running")
	fmt.Printf("  Consent endpoint:    http://localhost:%d/consent\n", serverCfg.HTTPPort)
	fmt.Printf("  Health (HTTP live):  http://localhost:%d/healthz/live\n", serverCfg.HTTPPort)
	fmt.Printf("  Health (HTTP ready): http://localhost:%d/healthz/ready\n", serverCfg.HTTPPort)
	fmt.Printf("  Hydra admin:         %s\n", cfg.Hydra.AdminURL)
	fmt.Printf("  Kratos admin:        %s\n", cfg.Kratos.AdminURL)
	fmt.Printf("  Config:              %s\n", configPath)

	// 6. Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down...")

	// 7. Graceful shutdown
	if err := srv.Stop(ctx); err != nil {
		return fmt.Errorf("error during shutdown: %w", err)
	}

	fmt.Println("Shutdown complete")
	return nil
}
