package testhelpers

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shoplytics/mart-engine/pkg/database"
)

// Fixture is a seedable snapshot of the four source tables the analytics
// layer reads. The remaining tables only matter for the alias passthrough
// and stay empty.
type Fixture struct {
	Products   []ProductRow   `yaml:"products"`
	Users      []UserRow      `yaml:"users"`
	Orders     []OrderRow     `yaml:"orders"`
	OrderItems []OrderItemRow `yaml:"order_items"`
}

type ProductRow struct {
	ID       int     `yaml:"id"`
	Category string  `yaml:"category"`
	Name     string  `yaml:"name"`
	Price    float64 `yaml:"price"`
}

type UserRow struct {
	ID        int       `yaml:"id"`
	Email     string    `yaml:"email"`
	CreatedAt time.Time `yaml:"created_at"`
}

type OrderRow struct {
	ID        int        `yaml:"id"`
	UserID    *int       `yaml:"user_id"`
	Status    string     `yaml:"status"`
	CreatedAt time.Time  `yaml:"created_at"`
	ShippedAt *time.Time `yaml:"shipped_at"`
}

type OrderItemRow struct {
	ID        int       `yaml:"id"`
	OrderID   *int      `yaml:"order_id"`
	ProductID int       `yaml:"product_id"`
	SalePrice *float64  `yaml:"sale_price"`
	CreatedAt time.Time `yaml:"created_at"`
}

// LoadFixture reads a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", path, err)
	}

	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// TruncateSource empties all seeded source tables so a test starts clean.
func TruncateSource(ctx context.Context, db *database.DB) error {
	_, err := db.Pool.Exec(ctx, `TRUNCATE
		public.thelook_products,
		public.thelook_users,
		public.thelook_orders,
		public.thelook_order_items`)
	if err != nil {
		return fmt.Errorf("failed to truncate source tables: %w", err)
	}
	return nil
}

// Apply inserts the fixture rows into the physical source tables.
func (f *Fixture) Apply(ctx context.Context, db *database.DB) error {
	for _, p := range f.Products {
		_, err := db.Pool.Exec(ctx,
			`INSERT INTO public.thelook_products (id, category, name, retail_price) VALUES ($1, $2, $3, $4)`,
			p.ID, p.Category, p.Name, p.Price)
		if err != nil {
			return fmt.Errorf("failed to insert product %d: %w", p.ID, err)
		}
	}

	for _, u := range f.Users {
		_, err := db.Pool.Exec(ctx,
			`INSERT INTO public.thelook_users (id, email, created_at) VALUES ($1, $2, $3)`,
			u.ID, u.Email, u.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert user %d: %w", u.ID, err)
		}
	}

	for _, o := range f.Orders {
		_, err := db.Pool.Exec(ctx,
			`INSERT INTO public.thelook_orders (id, user_id, status, created_at, shipped_at) VALUES ($1, $2, $3, $4, $5)`,
			o.ID, o.UserID, o.Status, o.CreatedAt, o.ShippedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order %d: %w", o.ID, err)
		}
	}

	for _, oi := range f.OrderItems {
		_, err := db.Pool.Exec(ctx,
			`INSERT INTO public.thelook_order_items (id, order_id, product_id, sale_price, created_at) VALUES ($1, $2, $3, $4, $5)`,
			oi.ID, oi.OrderID, oi.ProductID, oi.SalePrice, oi.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order item %d: %w", oi.ID, err)
		}
	}

	return nil
}

// ResetAndSeed truncates the source tables and applies the fixture.
func ResetAndSeed(ctx context.Context, db *database.DB, f *Fixture) error {
	if err := TruncateSource(ctx, db); err != nil {
		return err
	}
	return f.Apply(ctx, db)
}
