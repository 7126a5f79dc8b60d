package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/signup-service/internal/persistence"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations to the configured Postgres database",
		Long: `Apply every .sql file of the migrations directory in lexical order.

Migrations are written to be idempotent, so running the command twice is safe.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(rootOpts)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if dir == "" {
				dir = cfg.Postgres.MigrationsDir
			}

			ctx := cmd.Context()
			pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pg.Close()

			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), dir, logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations in %s applied\n", dir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "migrations directory (defaults to POSTGRES_MIGRATIONS_DIR)")
	return cmd
}
