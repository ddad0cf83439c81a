package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fidgetclicks/fidgetclicks-backend/pkg/enums"
	pkgerrors "github.com/fidgetclicks/fidgetclicks-backend/pkg/errors"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/logger"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/pagination"
)

type stubRefresher struct {
	calls []uuid.UUID
	err   error
}

func (s *stubRefresher) RecalculateForComponent(_ context.Context, componentID uuid.UUID) error {
	s.calls = append(s.calls, componentID)
	return s.err
}

const componentsSchema = `
CREATE TABLE IF NOT EXISTS components (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  color_hex TEXT,
  image_url TEXT,
  price NUMERIC NOT NULL DEFAULT 0,
  cost NUMERIC NOT NULL DEFAULT 0,
  quantity INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`

func newTestService(t *testing.T) (Service, *stubRefresher, *gorm.DB) {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Exec(componentsSchema).Error; err != nil {
		t.Fatalf("create components table: %v", err)
	}

	refresher := &stubRefresher{}
	svc, err := NewService(NewRepository(db), refresher, logger.New(logger.Options{Level: zerolog.Disabled}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, refresher, db
}

func TestCreateComponent(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateComponentInput{
		Kind:     enums.ComponentKindBaseColor,
		Name:     "  Midnight Blue  ",
		Price:    decimal.RequireFromString("15.00"),
		Cost:     decimal.RequireFromString("5.00"),
		Quantity: 12,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
	if created.Name != "Midnight Blue" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if !created.IsActive {
		t.Fatal("new components must start active")
	}
}

func TestCreateComponentRejectsBadInput(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := map[string]CreateComponentInput{
		"bad kind":       {Kind: "widget", Name: "x", Price: decimal.NewFromInt(1), Cost: decimal.NewFromInt(1)},
		"empty name":     {Kind: enums.ComponentKindKeycap, Name: "   ", Price: decimal.NewFromInt(1), Cost: decimal.NewFromInt(1)},
		"negative price": {Kind: enums.ComponentKindKeycap, Name: "x", Price: decimal.NewFromInt(-1), Cost: decimal.NewFromInt(1)},
		"negative qty":   {Kind: enums.ComponentKindKeycap, Name: "x", Price: decimal.NewFromInt(1), Cost: decimal.NewFromInt(1), Quantity: -2},
	}
	for name, input := range cases {
		_, err := svc.Create(ctx, input)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
	}
}

func TestUpdateComponentCostTriggersKeyboardRefresh(t *testing.T) {
	t.Parallel()

	svc, refresher, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateComponentInput{
		Kind:  enums.ComponentKindSwitch,
		Name:  "Linear Red",
		Price: decimal.RequireFromString("5.00"),
		Cost:  decimal.RequireFromString("2.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newCost := decimal.RequireFromString("2.50")
	updated, err := svc.Update(ctx, created.ID, UpdateComponentInput{Cost: &newCost})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Cost.Equal(newCost) {
		t.Fatalf("expected cost 2.50, got %s", updated.Cost)
	}
	if len(refresher.calls) != 1 || refresher.calls[0] != created.ID {
		t.Fatalf("expected one refresh call for component, got %v", refresher.calls)
	}
}

func TestUpdateComponentSameCostSkipsRefresh(t *testing.T) {
	t.Parallel()

	svc, refresher, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateComponentInput{
		Kind:  enums.ComponentKindKeycap,
		Name:  "PBT Blanks",
		Price: decimal.RequireFromString("8.00"),
		Cost:  decimal.RequireFromString("3.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	sameCost := decimal.RequireFromString("3.00")
	if _, err := svc.Update(ctx, created.ID, UpdateComponentInput{Cost: &sameCost}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(refresher.calls) != 0 {
		t.Fatalf("unchanged cost must not refresh keyboards, got %v", refresher.calls)
	}
}

func TestUpdateComponentFidgetCostSkipsRefresh(t *testing.T) {
	t.Parallel()

	svc, refresher, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateComponentInput{
		Kind:  enums.ComponentKindFidget,
		Name:  "Spinner Cube",
		Price: decimal.RequireFromString("6.00"),
		Cost:  decimal.RequireFromString("2.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newCost := decimal.RequireFromString("4.00")
	if _, err := svc.Update(ctx, created.ID, UpdateComponentInput{Cost: &newCost}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(refresher.calls) != 0 {
		t.Fatalf("fidget components do not participate in keyboards, got %v", refresher.calls)
	}
}

func TestUpdateComponentSurvivesRefreshFailure(t *testing.T) {
	t.Parallel()

	svc, refresher, _ := newTestService(t)
	refresher.err = context.DeadlineExceeded
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateComponentInput{
		Kind:  enums.ComponentKindBaseColor,
		Name:  "Sage Green",
		Price: decimal.RequireFromString("15.00"),
		Cost:  decimal.RequireFromString("5.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newCost := decimal.RequireFromString("6.00")
	updated, err := svc.Update(ctx, created.ID, UpdateComponentInput{Cost: &newCost})
	if err != nil {
		t.Fatalf("refresh failure must not fail the update: %v", err)
	}
	if !updated.Cost.Equal(newCost) {
		t.Fatalf("expected cost persisted, got %s", updated.Cost)
	}
}

func TestSoftDelete(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateComponentInput{
		Kind:  enums.ComponentKindFidget,
		Name:  "Magnet Rings",
		Price: decimal.RequireFromString("9.00"),
		Cost:  decimal.RequireFromString("3.50"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.SoftDelete(ctx, created.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	loaded, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if loaded.IsActive {
		t.Fatal("expected is_active false after soft delete")
	}
}

func TestAdjustQuantity(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateComponentInput{
		Kind:     enums.ComponentKindSwitch,
		Name:     "Tactile Brown",
		Price:    decimal.RequireFromString("5.00"),
		Cost:     decimal.RequireFromString("2.00"),
		Quantity: 1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.AdjustQuantity(ctx, created.ID, 40)
	if err != nil {
		t.Fatalf("adjust quantity: %v", err)
	}
	if updated.Quantity != 40 {
		t.Fatalf("expected quantity 40, got %d", updated.Quantity)
	}

	if _, err := svc.AdjustQuantity(ctx, created.ID, -1); err == nil {
		t.Fatal("expected rejection of negative quantity")
	}
	if _, err := svc.AdjustQuantity(ctx, uuid.New(), 5); err == nil {
		t.Fatal("expected not found for unknown component")
	}
}

func TestListComponents(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, CreateComponentInput{
			Kind:     enums.ComponentKindKeycap,
			Name:     "Set " + uuid.NewString()[:8],
			Price:    decimal.RequireFromString("8.00"),
			Cost:     decimal.RequireFromString("3.00"),
			Quantity: i,
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	inactive, err := svc.Create(ctx, CreateComponentInput{
		Kind:  enums.ComponentKindKeycap,
		Name:  "Retired Set",
		Price: decimal.RequireFromString("8.00"),
		Cost:  decimal.RequireFromString("3.00"),
	})
	if err != nil {
		t.Fatalf("seed inactive: %v", err)
	}
	if err := svc.SoftDelete(ctx, inactive.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	kind := enums.ComponentKindKeycap
	page, err := svc.List(ctx, ListComponentsInput{Kind: &kind})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf("expected 3 active keycap sets, got %d", len(page.Items))
	}
	for _, item := range page.Items {
		if item.Quantity == 0 && !item.OutOfStock {
			t.Fatalf("expected out-of-stock flag on %s", item.Name)
		}
		if item.Quantity > 0 && item.Quantity <= 10 && !item.LowStock {
			t.Fatalf("expected low-stock flag on %s", item.Name)
		}
	}

	withInactive, err := svc.List(ctx, ListComponentsInput{Kind: &kind, IncludeInactive: true})
	if err != nil {
		t.Fatalf("list inactive: %v", err)
	}
	if len(withInactive.Items) != 4 {
		t.Fatalf("expected 4 with inactive, got %d", len(withInactive.Items))
	}
}

func TestListComponentsPagination(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.Create(ctx, CreateComponentInput{
			Kind:  enums.ComponentKindFidget,
			Name:  "Fidget " + uuid.NewString()[:8],
			Price: decimal.RequireFromString("6.00"),
			Cost:  decimal.RequireFromString("2.00"),
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	first, err := svc.List(ctx, ListComponentsInput{Pagination: pagination.Params{Limit: 2}})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Items) != 2 || first.NextCursor == nil {
		t.Fatalf("expected full first page with cursor, got %d items", len(first.Items))
	}

	seen := map[uuid.UUID]bool{}
	for _, item := range first.Items {
		seen[item.ID] = true
	}

	second, err := svc.List(ctx, ListComponentsInput{Pagination: pagination.Params{Limit: 2, Cursor: *first.NextCursor}})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	for _, item := range second.Items {
		if seen[item.ID] {
			t.Fatalf("page overlap on %s", item.ID)
		}
	}
}
