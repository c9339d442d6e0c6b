package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shoplytics/mart-engine/pkg/database"
	"github.com/shoplytics/mart-engine/pkg/models"
)

// RefreshRunRepository provides data access for the refresh audit log.
type RefreshRunRepository interface {
	// Record inserts a finished refresh run.
	Record(ctx context.Context, run *models.RefreshRun) error

	// Recent returns the most recent runs, newest first.
	Recent(ctx context.Context, limit int) ([]*models.RefreshRun, error)
}

type refreshRunRepository struct {
	db *database.DB
}

// NewRefreshRunRepository creates a new RefreshRunRepository.
func NewRefreshRunRepository(db *database.DB) RefreshRunRepository {
	return &refreshRunRepository{db: db}
}

var _ RefreshRunRepository = (*refreshRunRepository)(nil)

func (r *refreshRunRepository) Record(ctx context.Context, run *models.RefreshRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}

	query := `
		INSERT INTO mart_refresh_runs (id, started_at, finished_at, views_applied, status, error)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Pool.Exec(ctx, query,
		run.ID, run.StartedAt, run.FinishedAt, run.ViewsApplied, run.Status, run.Error)
	if err != nil {
		return fmt.Errorf("failed to record refresh run: %w", err)
	}
	return nil
}

func (r *refreshRunRepository) Recent(ctx context.Context, limit int) ([]*models.RefreshRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, started_at, finished_at, views_applied, status, error
		FROM mart_refresh_runs
		ORDER BY started_at DESC
		LIMIT $1`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query refresh runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.RefreshRun
	for rows.Next() {
		run := &models.RefreshRun{}
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.ViewsApplied, &run.Status, &run.Error); err != nil {
			return nil, fmt.Errorf("failed to scan refresh run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
