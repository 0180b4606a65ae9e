// Command migrate manages the embedded database schema.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"jobconnect/config"
	"jobconnect/internal/infra/persistence/postgres"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or inspect the jobconnect database migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newDBCommand("up", "Apply all pending migrations", postgres.MigrateUp),
		newDBCommand("down", "Roll back the latest migration", postgres.MigrateDown),
		newDBCommand("status", "Print the state of every migration", postgres.MigrateStatus),
		newVersionCommand(),
	)

	return cmd
}

func newDBCommand(use, short string, run func(context.Context, *sql.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), run)
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, db *sql.DB) error {
				version, err := postgres.MigrationVersion(ctx, db)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)

				return nil
			})
		},
	}
}

func withDB(ctx context.Context, run func(context.Context, *sql.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	db, err := postgres.OpenSQL(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return run(ctx, db)
}
