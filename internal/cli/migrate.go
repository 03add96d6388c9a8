package cli

import (
	"context"
	"fmt"

	"bonitx-quiz-service/internal/config"
	"bonitx-quiz-service/internal/domain"
	pgstore "bonitx-quiz-service/internal/infra/postgres"
	pgmigrations "bonitx-quiz-service/internal/infra/postgres/migrations"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath, seed)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "upsert the built-in question bank after migrating")
	return cmd
}

func runMigrations(ctx context.Context, configPath string, seed bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return runMigrationsWithConfig(ctx, cfg, seed)
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, seed bool) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	db := pgstore.OpenDB(cfg.Postgres.URL)
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		logger.Info("no new migrations")
	} else {
		logger.Info("migrations applied", zap.String("group", group.String()))
	}

	if seed {
		bank := domain.DefaultBank()
		if err := pgstore.SeedBank(ctx, db, bank); err != nil {
			return fmt.Errorf("seed bank %q: %w", bank.ID, err)
		}
		logger.Info("question bank seeded", zap.String("bank", bank.ID), zap.Int("questions", bank.Len()))
	}
	return nil
}
