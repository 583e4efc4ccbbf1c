package aggregates

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	domainagg "github.com/quildacademy/quild-backend/internal/domain/aggregates"
	"github.com/quildacademy/quild-backend/internal/data/repos/testutil"
	"github.com/quildacademy/quild-backend/internal/platform/dbctx"
)

func TestRequireVersionMatch(t *testing.T) {
	if err := RequireVersionMatch(3, 3); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := RequireVersionMatch(2, 3); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if err := RequireVersionMatch(0, -1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRequireCASSuccess(t *testing.T) {
	if err := RequireCASSuccess(true, "ok"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	err := RequireCASSuccess(false, "stale ledger")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict error")
	}
	if !domainagg.IsCode(MapError("op", err), domainagg.CodeConflict) {
		t.Fatalf("expected conflict code after mapping")
	}
}

func TestUpdateByVersion(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "user_cas")
	ledger := testutil.SeedLedger(t, ctx, db, u.ID)

	guard := NewCASGuard(db)
	dbc := dbctx.Context{Ctx: ctx}

	ok, err := guard.UpdateByVersion(dbc, "user_progress", ledger.ID, 0, map[string]any{"total_points": 10})
	if err != nil {
		t.Fatalf("UpdateByVersion: %v", err)
	}
	if !ok {
		t.Fatalf("expected first update to apply")
	}

	ok, err = guard.UpdateByVersion(dbc, "user_progress", ledger.ID, 0, map[string]any{"total_points": 99})
	if err != nil {
		t.Fatalf("UpdateByVersion(stale): %v", err)
	}
	if ok {
		t.Fatalf("expected stale update to be rejected")
	}

	var row struct {
		TotalPoints int
		Version     int
	}
	if err := db.Table("user_progress").Select("total_points, version").Where("id = ?", ledger.ID).Scan(&row).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if row.TotalPoints != 10 || row.Version != 1 {
		t.Fatalf("unexpected row: %+v", row)
	}

	if _, err := guard.UpdateByVersion(dbc, "", uuid.Nil, 0, nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
