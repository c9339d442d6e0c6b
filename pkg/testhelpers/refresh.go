package testhelpers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shoplytics/mart-engine/pkg/database"
	"github.com/shoplytics/mart-engine/pkg/repositories"
	"github.com/shoplytics/mart-engine/pkg/services"
	"github.com/shoplytics/mart-engine/pkg/views"
)

// TestSource matches the physical naming createSourceTables uses.
var TestSource = views.Source{Schema: "public", TablePrefix: "thelook_"}

// ApplyViews runs a full refresh against the test database so tests can
// query the raw and analytics views.
func ApplyViews(ctx context.Context, db *database.DB) error {
	exec := db.SQLDB()
	defer exec.Close()

	svc := services.NewRefreshService(exec, repositories.NewRefreshRunRepository(db), TestSource, zap.NewNop())
	if _, err := svc.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to apply views: %w", err)
	}
	return nil
}
