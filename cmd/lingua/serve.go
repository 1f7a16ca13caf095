package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/aussiebroadwan/lingua/internal/lingua/app"
	"github.com/spf13/cobra"
)

func newServeCmd(cfg *app.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Starts the API, page and probe endpoints. Auth initialises in the
background once the listener is up; readyz reports 503 until it finishes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(*cfg)
			if err != nil {
				return err
			}
			return application.Run(ctx)
		},
	}

	f := cmd.Flags()
	f.IntVar(&cfg.Port, "port", cfg.Port, "HTTP port (env: PORT)")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error (env: LOG_LEVEL)")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "json or text (env: LOG_FORMAT)")
	f.DurationVar(&cfg.GuardTimeout, "guard-timeout", cfg.GuardTimeout, "how long navigations wait for auth (env: LINGUA_GUARD_TIMEOUT)")
	f.StringVar(&cfg.PepperFile, "pepper", cfg.PepperFile, "password pepper file (env: LINGUA_PEPPER_FILE)")
	return cmd
}
