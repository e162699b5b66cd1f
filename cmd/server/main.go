package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"

	"github.com/ayush/portfolio-api/backend/internal/config"
	"github.com/ayush/portfolio-api/backend/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var env string

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Portfolio API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(env)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
	cmd.PersistentFlags().StringVar(&env, "env", "", "override APP_ENV (development or production)")

	cmd.AddCommand(serveCmd(&env), migrateCmd(&env))
	return cmd
}

func serveCmd(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*env)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func migrateCmd(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create MongoDB indexes and apply postgres migrations, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*env)
			if err != nil {
				return err
			}
			return migrate(cmd.Context(), cfg, log)
		},
	}
}

// setup loads and validates configuration. In development, missing
// secrets are replaced by random ones so the server can start.
func setup(env string) (*config.Config, logging.Logger, error) {
	cfg := config.Load()
	if env != "" {
		cfg.Env = env
	}
	log := logging.New(os.Stdout, cfg.IsProduction())

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	if cfg.SecretKey == "" {
		cfg.SecretKey = string(securecookie.GenerateRandomKey(32))
		log.Warn(context.Background(), "SECRET_KEY not set, using a random key; tokens will not survive a restart")
	}
	if cfg.CookieSecretKey == "" {
		cfg.CookieSecretKey = string(securecookie.GenerateRandomKey(32))
		log.Warn(context.Background(), "COOKIE_SECRET_KEY not set, using a random key; cookies will not survive a restart")
	}
	return cfg, log, nil
}
