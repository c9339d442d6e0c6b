// Package cmd wires the mart-engine CLI: refresh, check, status, version.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shoplytics/mart-engine/pkg/config"
	"github.com/shoplytics/mart-engine/pkg/database"
	"github.com/shoplytics/mart-engine/pkg/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:          "mart-engine",
	Short:        "Build and verify the eCommerce analytics views",
	Long:         "mart-engine materializes the raw alias layer and the analytics metric views over the loaded theLook tables.",
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles the pieces every database-touching command needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *database.DB
}

// newApp loads configuration, builds the logger, connects the pool and
// applies pending migrations.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(Version)
	if err != nil {
		return nil, err
	}

	var logger *zap.Logger
	if cfg.Env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	logger.Info("Connecting to database",
		zap.String("url", logging.SanitizeConnectionString(cfg.Database.URL())),
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version))

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %s", logging.SanitizeError(err))
	}

	// Dedicated handle: RunMigrations closes it on the way out.
	if err := database.RunMigrations(db.SQLDB(), cfg.MigrationsPath, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, db: db}, nil
}

func (a *app) close() {
	a.db.Close()
	_ = a.logger.Sync()
}
