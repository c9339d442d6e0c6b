package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shoplytics/mart-engine/pkg/apperrors"
	"github.com/shoplytics/mart-engine/pkg/logging"
	"github.com/shoplytics/mart-engine/pkg/models"
	"github.com/shoplytics/mart-engine/pkg/repositories"
	enginesql "github.com/shoplytics/mart-engine/pkg/sql"
	"github.com/shoplytics/mart-engine/pkg/views"
)

// RefreshService (re)materializes all view definitions.
type RefreshService interface {
	// Refresh applies the alias layer and then the analytics layer, records
	// the run in the audit table, and returns the run record. The returned
	// run is non-nil even when the refresh failed.
	Refresh(ctx context.Context) (*models.RefreshRun, error)
}

type refreshService struct {
	exec   *sql.DB
	runs   repositories.RefreshRunRepository
	source views.Source
	logger *zap.Logger
}

// NewRefreshService creates a new RefreshService. The exec handle is a
// plain database/sql connection; DDL needs no pgx-native features.
func NewRefreshService(exec *sql.DB, runs repositories.RefreshRunRepository, source views.Source, logger *zap.Logger) RefreshService {
	return &refreshService{
		exec:   exec,
		runs:   runs,
		source: source,
		logger: logger.Named("refresh"),
	}
}

var _ RefreshService = (*refreshService)(nil)

func (s *refreshService) Refresh(ctx context.Context) (*models.RefreshRun, error) {
	run := &models.RefreshRun{StartedAt: time.Now()}

	err := s.refresh(ctx, run)
	run.FinishedAt = time.Now()

	if err != nil {
		run.Status = models.RefreshStatusFailed
		run.Error = logging.SanitizeError(err)
	} else {
		run.Status = models.RefreshStatusSucceeded
	}

	if recordErr := s.runs.Record(ctx, run); recordErr != nil {
		// The views themselves may be fine; losing the audit row is worth a
		// warning, not a failed refresh.
		s.logger.Warn("Failed to record refresh run", zap.Error(recordErr))
		if err == nil {
			err = recordErr
		}
	}

	if err != nil {
		return run, fmt.Errorf("%w: %v", apperrors.ErrRefreshFailed, err)
	}

	s.logger.Info("Refresh complete",
		zap.Int("views_applied", run.ViewsApplied),
		zap.Duration("duration", run.Duration()))
	return run, nil
}

func (s *refreshService) refresh(ctx context.Context, run *models.RefreshRun) error {
	if results := enginesql.CheckSourceNaming(map[string]string{
		"schema":       s.source.Schema,
		"table_prefix": s.source.TablePrefix,
	}); len(results) > 0 {
		return fmt.Errorf("%w: source %s %q looks like SQL injection (fingerprint %s)",
			apperrors.ErrInvalidDefinition, results[0].Field, results[0].Value, results[0].Fingerprint)
	}

	alias := views.AliasViews(s.source)
	analytics := views.AnalyticsViews()

	for _, v := range append(append([]views.View{}, alias...), analytics...) {
		if err := enginesql.ValidateViewBody(v.Body); err != nil {
			return fmt.Errorf("%w: %s: %v", apperrors.ErrInvalidDefinition, v.Qualified(), err)
		}
	}

	// Alias views first: the analytics layer reads raw.*.
	applied, err := s.applyLayer(ctx, views.SchemaRaw, alias)
	run.ViewsApplied += applied
	if err != nil {
		return err
	}

	applied, err = s.applyLayer(ctx, views.SchemaAnalytics, analytics)
	run.ViewsApplied += applied
	return err
}

// applyLayer executes a layer's definitions inside one transaction.
// Each statement is atomic on its own; the transaction keeps a failure from
// leaving the layer half old, half new. Returns the number of views applied.
func (s *refreshService) applyLayer(ctx context.Context, layer string, defs []views.View) (int, error) {
	tx, err := s.exec.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction for %s layer: %w", layer, err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on defer is best-effort

	for _, v := range defs {
		for _, stmt := range v.Statements() {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				s.logger.Error("Statement failed",
					zap.String("view", v.Qualified()),
					zap.String("statement", logging.SanitizeStatement(stmt)),
					zap.String("error", logging.SanitizeError(err)))
				return 0, fmt.Errorf("failed to apply %s: %w", v.Qualified(), err)
			}
		}
		s.logger.Debug("Applied view", zap.String("view", v.Qualified()))
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit %s layer: %w", layer, err)
	}

	s.logger.Info("Layer applied", zap.String("layer", layer), zap.Int("views", len(defs)))
	return len(defs), nil
}
