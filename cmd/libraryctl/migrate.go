package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"libraryapi/internal/config"
	"libraryapi/internal/platform/postgres"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema with goose",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrationDB(cmd.Context(), opts.cfg, func(db *sql.DB) error {
				if err := goose.Up(db, opts.cfg.MigrationsDir); err != nil {
					return fmt.Errorf("failed to run migrations: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied successfully")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrationDB(cmd.Context(), opts.cfg, func(db *sql.DB) error {
				if err := goose.Down(db, opts.cfg.MigrationsDir); err != nil {
					return fmt.Errorf("failed to rollback migrations: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations rolled back successfully")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the status of every migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrationDB(cmd.Context(), opts.cfg, func(db *sql.DB) error {
				return goose.Status(db, opts.cfg.MigrationsDir)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create NAME",
		Short: "Create a new SQL migration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := goose.Create(nil, opts.cfg.MigrationsDir, args[0], "sql"); err != nil {
				return fmt.Errorf("failed to create migration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migration created: %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func withMigrationDB(ctx context.Context, cfg *config.Config, fn func(db *sql.DB) error) error {
	if cfg.Store.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations only apply to the postgres driver, STORE_DRIVER is %q", cfg.Store.Driver)
	}

	pool, err := postgres.Open(ctx, cfg.Store.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	db := postgres.StdDB(pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return fn(db)
}
