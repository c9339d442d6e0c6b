package views

// Metric view bodies. All of them read only from the raw alias views, never
// from each other, so within the analytics layer order does not matter.
//
// Two conventions apply everywhere:
//   - revenue sums COALESCE(sale_price::numeric, 0) so NULL prices count as
//     zero instead of nulling the whole sum;
//   - every division is guarded (CASE / NULLIF) and yields NULL rather than
//     a division-by-zero error.
//
// The ::timestamp / ::numeric casts keep the definitions valid against
// loaders that stage every column as TEXT.

const kpiDailySQL = `SELECT
    DATE(oi.created_at::timestamp) AS order_date,
    COUNT(DISTINCT oi.order_id) AS orders,
    COUNT(*) AS items,
    SUM(COALESCE(oi.sale_price::numeric, 0)) AS revenue,
    CASE
        WHEN COUNT(DISTINCT oi.order_id) > 0
        THEN SUM(COALESCE(oi.sale_price::numeric, 0)) / COUNT(DISTINCT oi.order_id)
    END AS aov
FROM raw.order_items oi
GROUP BY 1
ORDER BY 1`

const categoryAlltimeSQL = `SELECT
    p.category AS category,
    SUM(COALESCE(oi.sale_price::numeric, 0)) AS revenue,
    COUNT(*) AS items
FROM raw.order_items oi
JOIN raw.products p ON p.id = oi.product_id
GROUP BY 1
ORDER BY 2 DESC`

const categoryDailySQL = `SELECT
    DATE(oi.created_at::timestamp) AS order_date,
    p.category AS category,
    COUNT(*) AS items,
    SUM(COALESCE(oi.sale_price::numeric, 0)) AS revenue
FROM raw.order_items oi
JOIN raw.products p ON p.id = oi.product_id
GROUP BY 1, 2
ORDER BY 1, 2`

// Orders with a NULL user_id never enter per_user, so they land in neither
// bucket. With zero counted users NULLIF turns both ratios into NULL.
const customerRepeatRateSQL = `WITH per_user AS (
    SELECT o.user_id, COUNT(*) AS order_count
    FROM raw.orders o
    WHERE o.user_id IS NOT NULL
    GROUP BY o.user_id
)
SELECT
    COUNT(*) AS users,
    SUM(CASE WHEN order_count = 1 THEN 1 ELSE 0 END)::numeric / NULLIF(COUNT(*), 0) AS pct_one_time,
    SUM(CASE WHEN order_count >= 2 THEN 1 ELSE 0 END)::numeric / NULLIF(COUNT(*), 0) AS pct_repeat
FROM per_user`

// Orders never shipped are excluded up front, not treated as zero-latency.
const fulfillmentTimesSQL = `SELECT
    DATE(o.created_at::timestamp) AS order_date,
    COUNT(*) AS orders,
    AVG(EXTRACT(EPOCH FROM (o.shipped_at::timestamp - o.created_at::timestamp)) / 3600.0) AS avg_hours_to_ship
FROM raw.orders o
WHERE o.created_at IS NOT NULL
  AND o.shipped_at IS NOT NULL
GROUP BY 1
ORDER BY 1`

// AnalyticsViews returns the derived metric views in their canonical order.
func AnalyticsViews() []View {
	return []View{
		{
			Schema:  SchemaAnalytics,
			Name:    "kpi_daily",
			Body:    kpiDailySQL,
			Comment: "Per-day order, item, revenue and AOV figures from order_items",
		},
		{
			Schema:  SchemaAnalytics,
			Name:    "category_alltime",
			Body:    categoryAlltimeSQL,
			Comment: "All-time revenue and item count per product category",
		},
		{
			Schema:  SchemaAnalytics,
			Name:    "category_daily",
			Body:    categoryDailySQL,
			Comment: "Per-day revenue and item count per product category",
		},
		{
			Schema:  SchemaAnalytics,
			Name:    "customer_repeat_rate",
			Body:    customerRepeatRateSQL,
			Comment: "Share of customers with exactly one vs two-or-more orders",
		},
		{
			Schema:  SchemaAnalytics,
			Name:    "fulfillment_times",
			Body:    fulfillmentTimesSQL,
			Comment: "Per-day average hours from order creation to shipment",
		},
	}
}
