//go:build integration

package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplytics/mart-engine/pkg/apperrors"
	"github.com/shoplytics/mart-engine/pkg/repositories"
	"github.com/shoplytics/mart-engine/pkg/testhelpers"
)

// seedAndRefresh loads the default seed and applies all views. The seed is
// small enough that every expected figure below is checkable by hand; see
// the comments in testdata/seed.yaml for the deliberate edge rows.
func seedAndRefresh(t *testing.T) *testhelpers.TestDB {
	t.Helper()
	testDB := testhelpers.GetTestDB(t)
	ctx := context.Background()

	fixture, err := testhelpers.LoadFixture("../testhelpers/testdata/seed.yaml")
	require.NoError(t, err)
	require.NoError(t, testhelpers.ResetAndSeed(ctx, testDB.DB, fixture))
	require.NoError(t, testhelpers.ApplyViews(ctx, testDB.DB))
	return testDB
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestDailyKPIs(t *testing.T) {
	testDB := seedAndRefresh(t)
	repo := repositories.NewAnalyticsRepository(testDB.DB)

	kpis, err := repo.DailyKPIs(context.Background())
	require.NoError(t, err)
	require.Len(t, kpis, 3)

	// Date ascending.
	for i, want := range []struct {
		orders, items int64
		revenue, aov  float64
	}{
		{2, 3, 120.50, 60.25},
		{2, 2, 20.00, 10.00}, // NULL sale_price coalesced to zero
		{2, 2, 55.00, 27.50}, // includes the orphaned item's revenue
	} {
		kpi := kpis[i]
		assert.True(t, kpi.OrderDate.Equal(day(i+1)), "row %d date = %v", i, kpi.OrderDate)
		assert.Equal(t, want.orders, kpi.Orders)
		assert.Equal(t, want.items, kpi.Items)
		assert.InDelta(t, want.revenue, kpi.Revenue, 1e-9)
		require.NotNil(t, kpi.AOV)
		assert.InDelta(t, want.aov, *kpi.AOV, 1e-9)

		// An order always has at least one item.
		assert.LessOrEqual(t, kpi.Orders, kpi.Items)
	}
}

func TestCategoryAlltime(t *testing.T) {
	testDB := seedAndRefresh(t)
	repo := repositories.NewAnalyticsRepository(testDB.DB)

	cats, err := repo.CategoryAlltime(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 3)

	// Revenue descending; the orphaned item (product 99) is dropped by the
	// inner join and appears in no category.
	assert.Equal(t, "Swim", cats[0].Category)
	assert.InDelta(t, 90.00, cats[0].Revenue, 1e-9)
	assert.Equal(t, int64(2), cats[0].Items)

	assert.Equal(t, "Jeans", cats[1].Category)
	assert.InDelta(t, 60.00, cats[1].Revenue, 1e-9)

	assert.Equal(t, "Accessories", cats[2].Category)
	assert.InDelta(t, 35.50, cats[2].Revenue, 1e-9)

	// Category totals reconcile with item revenue for known products:
	// 195.50 total item revenue minus the 10.00 orphan.
	var total float64
	for _, c := range cats {
		total += c.Revenue
	}
	assert.InDelta(t, 185.50, total, 1e-9)
}

func TestCategoryDaily(t *testing.T) {
	testDB := seedAndRefresh(t)
	repo := repositories.NewAnalyticsRepository(testDB.DB)

	rows, err := repo.CategoryDaily(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 6)

	// Date then category ascending.
	assert.Equal(t, "Accessories", rows[0].Category)
	assert.True(t, rows[0].OrderDate.Equal(day(1)))
	assert.InDelta(t, 15.50, rows[0].Revenue, 1e-9)

	assert.Equal(t, "Accessories", rows[3].Category)
	assert.True(t, rows[3].OrderDate.Equal(day(2)))
	assert.InDelta(t, 20.00, rows[3].Revenue, 1e-9)

	assert.Equal(t, "Jeans", rows[4].Category)
	assert.True(t, rows[4].OrderDate.Equal(day(2)))
	assert.InDelta(t, 0.0, rows[4].Revenue, 1e-9, "NULL sale_price counts as zero")

	assert.Equal(t, "Swim", rows[5].Category)
	assert.True(t, rows[5].OrderDate.Equal(day(3)))
	assert.InDelta(t, 45.00, rows[5].Revenue, 1e-9)
}

func TestRepeatRate(t *testing.T) {
	testDB := seedAndRefresh(t)
	repo := repositories.NewAnalyticsRepository(testDB.DB)

	rate, err := repo.RepeatRate(context.Background())
	require.NoError(t, err)

	// Users 1 and 3 ordered once, user 2 three times; the NULL-user order
	// (104) is in neither bucket.
	assert.Equal(t, int64(3), rate.Users)
	require.NotNil(t, rate.PctOneTime)
	require.NotNil(t, rate.PctRepeat)
	assert.InDelta(t, 2.0/3.0, *rate.PctOneTime, 1e-9)
	assert.InDelta(t, 1.0/3.0, *rate.PctRepeat, 1e-9)
	assert.InDelta(t, 1.0, *rate.PctOneTime+*rate.PctRepeat, 1e-9)
}

func TestRepeatRate_NoRowMapsToNotFound(t *testing.T) {
	testDB := seedAndRefresh(t)
	ctx := context.Background()

	// Redefine the view to yield zero rows, as a broken manual edit would.
	// The next refresh restores the real definition.
	_, err := testDB.DB.Pool.Exec(ctx, `DROP VIEW analytics.customer_repeat_rate`)
	require.NoError(t, err)
	_, err = testDB.DB.Pool.Exec(ctx, `CREATE VIEW analytics.customer_repeat_rate AS
		SELECT 0::bigint AS users, NULL::numeric AS pct_one_time, NULL::numeric AS pct_repeat
		WHERE false`)
	require.NoError(t, err)

	_, err = repositories.NewAnalyticsRepository(testDB.DB).RepeatRate(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestFulfillmentTimes(t *testing.T) {
	testDB := seedAndRefresh(t)
	repo := repositories.NewAnalyticsRepository(testDB.DB)

	days, err := repo.FulfillmentTimes(context.Background())
	require.NoError(t, err)
	require.Len(t, days, 3)

	// Order 102 (never shipped) contributes nowhere.
	assert.Equal(t, int64(2), days[0].Orders)
	assert.InDelta(t, 15.0, days[0].AvgHoursToShip, 1e-9) // (24h + 6h) / 2

	assert.Equal(t, int64(1), days[1].Orders)
	assert.InDelta(t, 24.0, days[1].AvgHoursToShip, 1e-9)

	assert.Equal(t, int64(2), days[2].Orders)
	assert.InDelta(t, 24.0, days[2].AvgHoursToShip, 1e-9) // (36h + 12h) / 2

	for _, d := range days {
		assert.GreaterOrEqual(t, d.AvgHoursToShip, 0.0)
	}
}

func TestRefreshRunRepository_RecordAndRecent(t *testing.T) {
	testDB := seedAndRefresh(t)
	ctx := context.Background()

	runs := repositories.NewRefreshRunRepository(testDB.DB)
	recent, err := runs.Recent(ctx, 5)
	require.NoError(t, err)
	require.NotEmpty(t, recent, "ApplyViews records a run")

	newest := recent[0]
	assert.NotEqual(t, "", newest.Status)
	assert.Equal(t, 12, newest.ViewsApplied)
	assert.False(t, newest.FinishedAt.Before(newest.StartedAt))
}
