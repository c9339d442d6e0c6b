// Package testhelpers provides a shared PostgreSQL container plus source
// table fixtures for integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/shoplytics/mart-engine/pkg/database"
)

// postgresImage is the database the integration suite runs against.
const postgresImage = "postgres:16-alpine"

// MigrationsPath is relative to the package under test; overridable for
// packages nested at a different depth.
var MigrationsPath = "../../migrations"

// TestDB holds the shared test database container and connection.
type TestDB struct {
	Container testcontainers.Container
	DB        *database.DB
	ConnStr   string
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared PostgreSQL container for integration tests.
// The container is created once per test binary: migrations applied, physical
// source tables created empty. Tests seed whatever data they need.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB()
	})

	if sharedTestDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedTestDBErr)
	}

	return sharedTestDB
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "ecommerce_test",
			"POSTGRES_USER":     "mart",
			"POSTGRES_PASSWORD": "test_password",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://mart:test_password@%s:%s/ecommerce_test?sslmode=disable",
		host, port.Port())

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            connStr,
		MaxConnections: 5,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Dedicated handle: RunMigrations closes it on the way out.
	if err := database.RunMigrations(db.SQLDB(), MigrationsPath, zap.NewNop()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createSourceTables(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to create source tables: %w", err)
	}

	return &TestDB{
		Container: container,
		DB:        db,
		ConnStr:   connStr,
	}, nil
}

// Typed renditions of the seven theLook tables as a loader would stage them.
// Only the columns the analytics layer touches matter for tests; the rest
// exist so SELECT * passthroughs stay honest about shape.
var sourceTableDDL = []string{
	`CREATE TABLE IF NOT EXISTS public.thelook_distribution_centers (
		id INTEGER PRIMARY KEY,
		name TEXT,
		latitude NUMERIC,
		longitude NUMERIC
	)`,
	`CREATE TABLE IF NOT EXISTS public.thelook_events (
		id INTEGER PRIMARY KEY,
		user_id INTEGER,
		session_id TEXT,
		created_at TIMESTAMPTZ,
		event_type TEXT,
		uri TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS public.thelook_inventory_items (
		id INTEGER PRIMARY KEY,
		product_id INTEGER,
		created_at TIMESTAMPTZ,
		sold_at TIMESTAMPTZ,
		cost NUMERIC,
		product_distribution_center_id INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS public.thelook_order_items (
		id INTEGER PRIMARY KEY,
		order_id INTEGER,
		user_id INTEGER,
		product_id INTEGER,
		inventory_item_id INTEGER,
		status TEXT,
		created_at TIMESTAMPTZ,
		sale_price NUMERIC
	)`,
	`CREATE TABLE IF NOT EXISTS public.thelook_orders (
		id INTEGER PRIMARY KEY,
		user_id INTEGER,
		status TEXT,
		created_at TIMESTAMPTZ,
		shipped_at TIMESTAMPTZ,
		delivered_at TIMESTAMPTZ,
		num_of_item INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS public.thelook_products (
		id INTEGER PRIMARY KEY,
		cost NUMERIC,
		category TEXT,
		name TEXT,
		brand TEXT,
		retail_price NUMERIC,
		department TEXT,
		sku TEXT,
		distribution_center_id INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS public.thelook_users (
		id INTEGER PRIMARY KEY,
		first_name TEXT,
		last_name TEXT,
		email TEXT,
		age INTEGER,
		gender TEXT,
		city TEXT,
		country TEXT,
		created_at TIMESTAMPTZ
	)`,
}

func createSourceTables(ctx context.Context, db *database.DB) error {
	for _, ddl := range sourceTableDDL {
		if _, err := db.Pool.Exec(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}
