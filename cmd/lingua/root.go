package main

import (
	"github.com/aussiebroadwan/lingua/internal/lingua/app"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cfg := app.LoadConfig()

	root := &cobra.Command{
		Use:   "lingua",
		Short: "Lingua language learning service",
		Long: `Lingua serves graded stories, SM-2 vocabulary review and offline sync
for language learners, behind a navigation guard driven by a YAML route table.

Configuration comes from the environment (PORT, LINGUA_DATABASE_FILE, ...);
flags override it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfg.DatabaseFile, "db", cfg.DatabaseFile, "SQLite database file (env: LINGUA_DATABASE_FILE)")
	root.PersistentFlags().StringVar(&cfg.RoutesFile, "routes", cfg.RoutesFile, "route table file, empty for the embedded table (env: LINGUA_ROUTES_FILE)")

	root.AddCommand(
		newServeCmd(&cfg),
		newMigrateCmd(&cfg),
		newRoutesCmd(&cfg),
	)
	return root
}
