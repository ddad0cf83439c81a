package inventory

import (
	"context"
	"testing"

	"github.com/fidgetclicks/fidgetclicks-backend/pkg/db/models"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/enums"
	pkgerrors "github.com/fidgetclicks/fidgetclicks-backend/pkg/errors"
)

func newSnapshotService(t *testing.T) (Service, func(kind enums.ComponentKind, qty int) models.Component) {
	t.Helper()
	db := newTestDB(t)
	repository, err := NewRepository(db)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	svc, err := NewService(repository)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, func(kind enums.ComponentKind, qty int) models.Component {
		return seedComponent(t, db, kind, qty)
	}
}

func TestSnapshotCounts(t *testing.T) {
	t.Parallel()

	svc, seed := newSnapshotService(t)
	ctx := context.Background()

	seed(enums.ComponentKindBaseColor, 0)  // out of stock
	seed(enums.ComponentKindKeycap, 3)     // low
	seed(enums.ComponentKindSwitch, 9)     // low
	seed(enums.ComponentKindSwitch, 10)    // at threshold, still low
	seed(enums.ComponentKindFidget, 50)    // healthy

	snap, err := svc.Snapshot(ctx, nil)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(snap.Items))
	}
	if snap.OutOfStockCount != 1 {
		t.Fatalf("expected 1 out of stock, got %d", snap.OutOfStockCount)
	}
	if snap.LowStockCount != 3 {
		t.Fatalf("expected 3 low stock, got %d", snap.LowStockCount)
	}
}

func TestSnapshotKindFilter(t *testing.T) {
	t.Parallel()

	svc, seed := newSnapshotService(t)
	ctx := context.Background()

	seed(enums.ComponentKindKeycap, 3)
	seed(enums.ComponentKindSwitch, 0)

	kind := enums.ComponentKindSwitch
	snap, err := svc.Snapshot(ctx, &kind)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(snap.Items))
	}
	if snap.Items[0].Component.Kind != enums.ComponentKindSwitch {
		t.Fatalf("unexpected kind %s", snap.Items[0].Component.Kind)
	}
	if snap.OutOfStockCount != 1 || snap.LowStockCount != 0 {
		t.Fatalf("unexpected counts: %+v", snap)
	}
}

func TestSnapshotInvalidKind(t *testing.T) {
	t.Parallel()

	svc, _ := newSnapshotService(t)
	kind := enums.ComponentKind("doohickey")

	_, err := svc.Snapshot(context.Background(), &kind)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}
