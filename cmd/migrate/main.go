// Command migrate converts the flat form_groups collection into nested forms.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/negocios-forms/core/internal/config"
	"github.com/negocios-forms/core/internal/database"
	"github.com/negocios-forms/core/internal/modules/form"
	"github.com/negocios-forms/core/internal/modules/legacy"
	"github.com/negocios-forms/core/internal/modules/negocio"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Path to YAML config file")
	dryRun := flag.Bool("dry-run", false, "Print the plan without writing")
	timeout := flag.Duration("timeout", 5*time.Minute, "Overall deadline")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer store.Close(context.Background())

	if !*dryRun {
		if err := database.EnsureIndexes(ctx, store.DB, logger); err != nil {
			logger.Fatal("indexes", zap.Error(err))
		}
	}

	m := legacy.NewMigrator(
		legacy.NewSource(store.DB),
		form.NewRepository(store.DB),
		negocio.NewRepository(store.DB),
		logger,
	)
	report, err := m.Run(ctx, *dryRun)
	if err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	logger.Info("migration finished",
		zap.Bool("dry_run", *dryRun),
		zap.Int("migrated", report.Count(legacy.OutcomeMigrated)),
		zap.Int("planned", report.Count(legacy.OutcomePlanned)),
		zap.Int("already_migrated", report.Count(legacy.OutcomeExisting)),
		zap.Int("orphan", report.Count(legacy.OutcomeOrphan)),
		zap.Int("invalid", report.Count(legacy.OutcomeInvalid)),
	)
}
