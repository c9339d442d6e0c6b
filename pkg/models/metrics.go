// Package models defines the row types read back from the analytics views
// and the refresh audit record.
package models

import "time"

// DailyKPI is one row of analytics.kpi_daily.
type DailyKPI struct {
	OrderDate time.Time
	Orders    int64
	Items     int64
	Revenue   float64
	// AOV is nil on dates with zero distinct orders; the view guards the
	// division instead of erroring.
	AOV *float64
}

// CategoryRevenue is one row of analytics.category_alltime.
type CategoryRevenue struct {
	Category string
	Revenue  float64
	Items    int64
}

// CategoryDaily is one row of analytics.category_daily.
type CategoryDaily struct {
	OrderDate time.Time
	Category  string
	Items     int64
	Revenue   float64
}

// RepeatRate is the single row of analytics.customer_repeat_rate.
// Both percentages are nil when no user with a non-null id has ordered.
type RepeatRate struct {
	Users      int64
	PctOneTime *float64
	PctRepeat  *float64
}

// FulfillmentDay is one row of analytics.fulfillment_times. Only orders with
// both creation and ship timestamps contribute.
type FulfillmentDay struct {
	OrderDate      time.Time
	Orders         int64
	AvgHoursToShip float64
}
