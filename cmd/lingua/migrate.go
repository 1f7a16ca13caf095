package main

import (
	"fmt"
	"strconv"

	"github.com/aussiebroadwan/lingua/internal/lingua/app"
	"github.com/spf13/cobra"
)

func newMigrateCmd(cfg *app.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  `serve applies pending migrations on start; these commands manage the schema by hand.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := app.OpenStore(cfg.DatabaseFile)
				if err != nil {
					return fmt.Errorf("failed to open database: %w", err)
				}
				defer func() { _ = db.Close() }()

				if err := db.ApplyMigrations(); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				return printVersion(cmd, db)
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n < 1 {
						return fmt.Errorf("steps must be a positive integer, got %q", args[0])
					}
					steps = n
				}

				db, err := app.OpenStore(cfg.DatabaseFile)
				if err != nil {
					return fmt.Errorf("failed to open database: %w", err)
				}
				defer func() { _ = db.Close() }()

				if err := db.MigrateDown(steps); err != nil {
					return fmt.Errorf("rollback failed: %w", err)
				}
				return printVersion(cmd, db)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := app.OpenStore(cfg.DatabaseFile)
				if err != nil {
					return fmt.Errorf("failed to open database: %w", err)
				}
				defer func() { _ = db.Close() }()
				return printVersion(cmd, db)
			},
		},
	)
	return cmd
}

type versioner interface {
	SchemaVersion() (uint, bool, error)
}

func printVersion(cmd *cobra.Command, db versioner) error {
	v, dirty, err := db.SchemaVersion()
	if err != nil {
		return err
	}
	if dirty {
		cmd.Printf("schema version %d (dirty)\n", v)
		return nil
	}
	cmd.Printf("schema version %d\n", v)
	return nil
}
