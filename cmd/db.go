package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun/migrate"

	"github.com/HeorhiiKortunov/CoreTask/cmd/cmdutil"
	"github.com/HeorhiiKortunov/CoreTask/internal/logging"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management commands",
	Long:  `Commands for managing database migrations and schema.`,
}

// withMigrator opens the database and runs fn with a migrator over it.
func withMigrator(fn func(ctx context.Context, m *migrate.Migrator) error) error {
	stack, err := cmdutil.Open(cfg)
	if err != nil {
		return err
	}
	defer stack.Close()
	return fn(context.Background(), stack.Migrator())
}

// locked runs fn while holding the migration lock.
func locked(ctx context.Context, m *migrate.Migrator, fn func() error) error {
	if err := m.Lock(ctx); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer func() {
		if err := m.Unlock(ctx); err != nil {
			logging.Op().Warn("failed to release migration lock", "error", err)
		}
	}()
	return fn()
}

// applyMigrations runs every pending migration under the lock.
func applyMigrations(ctx context.Context, m *migrate.Migrator) error {
	if err := m.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migrator: %w", err)
	}
	return locked(ctx, m, func() error {
		group, err := m.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if group.IsZero() {
			logging.Op().Info("no new migrations to apply")
		} else {
			logging.Op().Info("applied migration group", "group", group.ID, "migrations", len(group.Migrations))
		}
		return nil
	})
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize migration tables",
	Long:  `Creates the migration tracking tables in the database. Run this once during initial setup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(ctx context.Context, m *migrate.Migrator) error {
			if err := m.Init(ctx); err != nil {
				return fmt.Errorf("failed to initialize migrator: %w", err)
			}
			logging.Op().Info("migration tables initialized")
			return nil
		})
	},
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  `Applies all pending migrations to the database with locking to prevent concurrent migrations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(applyMigrations)
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Long:  `Displays the current migration status and pending migrations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(ctx context.Context, m *migrate.Migrator) error {
			ms, err := m.MigrationsWithStatus(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Migrations:")
			for _, mig := range ms {
				status := "pending"
				if mig.GroupID > 0 {
					status = fmt.Sprintf("applied (group %d)", mig.GroupID)
				}
				fmt.Fprintf(out, "  %s: %s\n", mig.Name, status)
			}
			return nil
		})
	},
}

var dbRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Rollback last migration group",
	Long:  `Rolls back the most recently applied migration group with locking to prevent concurrent operations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(ctx context.Context, m *migrate.Migrator) error {
			return locked(ctx, m, func() error {
				group, err := m.Rollback(ctx)
				if err != nil {
					return fmt.Errorf("rollback failed: %w", err)
				}
				if group.IsZero() {
					logging.Op().Info("no migrations to roll back")
				} else {
					logging.Op().Info("rolled back migration group", "group", group.ID)
				}
				return nil
			})
		})
	},
}

var dbUnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Force release migration lock",
	Long:  `Force releases the migration lock. Use this if a migration crashed while holding the lock.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(ctx context.Context, m *migrate.Migrator) error {
			if err := m.Unlock(ctx); err != nil {
				return fmt.Errorf("failed to release migration lock: %w", err)
			}
			logging.Op().Info("migration lock released")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbRollbackCmd)
	dbCmd.AddCommand(dbUnlockCmd)
}
