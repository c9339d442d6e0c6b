package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shoplytics/mart-engine/pkg/apperrors"
	"github.com/shoplytics/mart-engine/pkg/database"
	"github.com/shoplytics/mart-engine/pkg/models"
)

// AnalyticsRepository provides typed read access to the analytics views.
// The views re-aggregate on every read, so results always reflect the
// current contents of the source tables.
type AnalyticsRepository interface {
	// DailyKPIs returns analytics.kpi_daily, date ascending.
	DailyKPIs(ctx context.Context) ([]*models.DailyKPI, error)

	// CategoryAlltime returns analytics.category_alltime, revenue descending.
	CategoryAlltime(ctx context.Context) ([]*models.CategoryRevenue, error)

	// CategoryDaily returns analytics.category_daily, date then category ascending.
	CategoryDaily(ctx context.Context) ([]*models.CategoryDaily, error)

	// RepeatRate returns the single analytics.customer_repeat_rate row.
	RepeatRate(ctx context.Context) (*models.RepeatRate, error)

	// FulfillmentTimes returns analytics.fulfillment_times, date ascending.
	FulfillmentTimes(ctx context.Context) ([]*models.FulfillmentDay, error)
}

type analyticsRepository struct {
	db *database.DB
}

// NewAnalyticsRepository creates a new AnalyticsRepository.
func NewAnalyticsRepository(db *database.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

var _ AnalyticsRepository = (*analyticsRepository)(nil)

func (r *analyticsRepository) DailyKPIs(ctx context.Context) ([]*models.DailyKPI, error) {
	rows, err := r.db.Pool.Query(ctx,
		"SELECT order_date, orders, items, revenue, aov FROM analytics.kpi_daily")
	if err != nil {
		return nil, fmt.Errorf("failed to query kpi_daily: %w", err)
	}
	defer rows.Close()

	var kpis []*models.DailyKPI
	for rows.Next() {
		kpi := &models.DailyKPI{}
		if err := rows.Scan(&kpi.OrderDate, &kpi.Orders, &kpi.Items, &kpi.Revenue, &kpi.AOV); err != nil {
			return nil, fmt.Errorf("failed to scan kpi_daily row: %w", err)
		}
		kpis = append(kpis, kpi)
	}
	return kpis, rows.Err()
}

func (r *analyticsRepository) CategoryAlltime(ctx context.Context) ([]*models.CategoryRevenue, error) {
	rows, err := r.db.Pool.Query(ctx,
		"SELECT category, revenue, items FROM analytics.category_alltime")
	if err != nil {
		return nil, fmt.Errorf("failed to query category_alltime: %w", err)
	}
	defer rows.Close()

	var cats []*models.CategoryRevenue
	for rows.Next() {
		c := &models.CategoryRevenue{}
		if err := rows.Scan(&c.Category, &c.Revenue, &c.Items); err != nil {
			return nil, fmt.Errorf("failed to scan category_alltime row: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *analyticsRepository) CategoryDaily(ctx context.Context) ([]*models.CategoryDaily, error) {
	rows, err := r.db.Pool.Query(ctx,
		"SELECT order_date, category, items, revenue FROM analytics.category_daily")
	if err != nil {
		return nil, fmt.Errorf("failed to query category_daily: %w", err)
	}
	defer rows.Close()

	var cats []*models.CategoryDaily
	for rows.Next() {
		c := &models.CategoryDaily{}
		if err := rows.Scan(&c.OrderDate, &c.Category, &c.Items, &c.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan category_daily row: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *analyticsRepository) RepeatRate(ctx context.Context) (*models.RepeatRate, error) {
	rate := &models.RepeatRate{}
	err := r.db.Pool.QueryRow(ctx,
		"SELECT users, pct_one_time, pct_repeat FROM analytics.customer_repeat_rate").
		Scan(&rate.Users, &rate.PctOneTime, &rate.PctRepeat)
	if errors.Is(err, pgx.ErrNoRows) {
		// The view aggregates without grouping, so it always yields one row;
		// no rows means the view has been redefined out from under us.
		return nil, fmt.Errorf("customer_repeat_rate returned no row: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query customer_repeat_rate: %w", err)
	}
	return rate, nil
}

func (r *analyticsRepository) FulfillmentTimes(ctx context.Context) ([]*models.FulfillmentDay, error) {
	rows, err := r.db.Pool.Query(ctx,
		"SELECT order_date, orders, avg_hours_to_ship FROM analytics.fulfillment_times")
	if err != nil {
		return nil, fmt.Errorf("failed to query fulfillment_times: %w", err)
	}
	defer rows.Close()

	var days []*models.FulfillmentDay
	for rows.Next() {
		d := &models.FulfillmentDay{}
		if err := rows.Scan(&d.OrderDate, &d.Orders, &d.AvgHoursToShip); err != nil {
			return nil, fmt.Errorf("failed to scan fulfillment_times row: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
