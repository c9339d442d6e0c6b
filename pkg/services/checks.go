package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shoplytics/mart-engine/pkg/database"
	"github.com/shoplytics/mart-engine/pkg/logging"
)

// CheckResult is the outcome of one consistency check.
type CheckResult struct {
	Name    string
	Passed  bool
	Details string
}

// ChecksService runs read-only consistency checks over the analytics views
// against the current source data. A failing check signals either bad source
// data or a broken definition; it never mutates anything.
type ChecksService interface {
	Run(ctx context.Context) []CheckResult
}

type checksService struct {
	db     *database.DB
	logger *zap.Logger
}

// NewChecksService creates a new ChecksService.
func NewChecksService(db *database.DB, logger *zap.Logger) ChecksService {
	return &checksService{db: db, logger: logger.Named("checks")}
}

var _ ChecksService = (*checksService)(nil)

// violationCheck counts rows violating an invariant; zero violations passes.
type violationCheck struct {
	name        string
	description string
	query       string
}

var checks = []violationCheck{
	{
		name:        "orders_not_exceeding_items",
		description: "every order has at least one item, so daily orders <= items",
		query:       `SELECT COUNT(*) FROM analytics.kpi_daily WHERE orders > items`,
	},
	{
		name:        "aov_guarded_division",
		description: "aov equals revenue/orders when orders > 0 and is NULL otherwise",
		query: `SELECT COUNT(*) FROM analytics.kpi_daily
			WHERE (orders > 0 AND (aov IS NULL OR ABS(aov - revenue / orders) > 1e-9))
			   OR (orders = 0 AND aov IS NOT NULL)`,
	},
	{
		name:        "category_revenue_reconciles",
		description: "summed category revenue equals item revenue for items with a known product",
		query: `SELECT CASE WHEN ABS(
				COALESCE((SELECT SUM(revenue) FROM analytics.category_alltime), 0) -
				COALESCE((SELECT SUM(COALESCE(oi.sale_price::numeric, 0))
					FROM raw.order_items oi
					JOIN raw.products p ON p.id = oi.product_id), 0)
			) > 1e-6 THEN 1 ELSE 0 END`,
	},
	{
		name:        "repeat_fractions_partition",
		description: "one-time and repeat fractions sum to 1 whenever any user is counted",
		query: `SELECT COUNT(*) FROM analytics.customer_repeat_rate
			WHERE users > 0 AND ABS(pct_one_time + pct_repeat - 1.0) > 1e-9`,
	},
	{
		name:        "fulfillment_hours_non_negative",
		description: "average hours to ship is never negative",
		query:       `SELECT COUNT(*) FROM analytics.fulfillment_times WHERE avg_hours_to_ship < 0`,
	},
}

func (s *checksService) Run(ctx context.Context) []CheckResult {
	results := make([]CheckResult, 0, len(checks))

	for _, c := range checks {
		var violations int64
		err := s.db.Pool.QueryRow(ctx, c.query).Scan(&violations)
		if err != nil {
			s.logger.Error("Check query failed",
				zap.String("check", c.name),
				zap.String("error", logging.SanitizeError(err)))
			results = append(results, CheckResult{
				Name:    c.name,
				Passed:  false,
				Details: fmt.Sprintf("query failed: %s", logging.SanitizeError(err)),
			})
			continue
		}

		result := CheckResult{Name: c.name, Passed: violations == 0}
		if violations > 0 {
			result.Details = fmt.Sprintf("%d violating row(s): %s", violations, c.description)
			s.logger.Warn("Check failed",
				zap.String("check", c.name),
				zap.Int64("violations", violations))
		}
		results = append(results, result)
	}

	return results
}
