package keyboards

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fidgetclicks/fidgetclicks-backend/internal/catalog"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/db/models"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/enums"
	pkgerrors "github.com/fidgetclicks/fidgetclicks-backend/pkg/errors"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/logger"
)

type fixture struct {
	svc Service
	db  *gorm.DB
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

const keyboardsSchema = `
CREATE TABLE IF NOT EXISTS keyboards (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  image_url TEXT,
  base_color_id TEXT NOT NULL,
  keycap_id TEXT NOT NULL,
  switch_id TEXT NOT NULL,
  price NUMERIC NOT NULL DEFAULT 0,
  original_price NUMERIC NOT NULL DEFAULT 0,
  discount NUMERIC NOT NULL DEFAULT 0,
  cost NUMERIC NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:keyboards_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	for _, schema := range []string{componentsSchema, keyboardsSchema} {
		if err := db.Exec(schema).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}

	svc, err := NewService(NewRepository(db), catalog.NewRepository(db), logger.New(logger.Options{Level: zerolog.Disabled}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{svc: svc, db: db}
}

func (f *fixture) seedComponent(t *testing.T, kind enums.ComponentKind, cost string, qty int) models.Component {
	t.Helper()
	component := models.Component{
		ID:       uuid.New(),
		Kind:     kind,
		Name:     string(kind) + "-" + uuid.NewString()[:8],
		Price:    decimal.RequireFromString(cost).Mul(decimal.NewFromInt(3)),
		Cost:     decimal.RequireFromString(cost),
		Quantity: qty,
		IsActive: true,
	}
	if err := f.db.Create(&component).Error; err != nil {
		t.Fatalf("seed component: %v", err)
	}
	return component
}

func (f *fixture) seedTrio(t *testing.T) (models.Component, models.Component, models.Component) {
	t.Helper()
	base := f.seedComponent(t, enums.ComponentKindBaseColor, "5.00", 15)
	keycap := f.seedComponent(t, enums.ComponentKindKeycap, "3.00", 8)
	sw := f.seedComponent(t, enums.ComponentKindSwitch, "2.00", 5)
	return base, keycap, sw
}

func TestCreateKeyboard(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	base, keycap, sw := f.seedTrio(t)

	keyboard, err := f.svc.Create(ctx, CreateKeyboardInput{
		Name:        "Cloud Nine",
		BaseColorID: base.ID,
		KeycapID:    keycap.ID,
		SwitchID:    sw.ID,
		Price:       decimal.RequireFromString("23.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !keyboard.Cost.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected derived cost 10.00, got %s", keyboard.Cost)
	}
	if keyboard.BaseColor == nil || keyboard.Keycap == nil || keyboard.Switch == nil {
		t.Fatal("expected components preloaded")
	}
}

func TestCreateKeyboardRejectsWrongSlotKind(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	base, keycap, _ := f.seedTrio(t)
	fidget := f.seedComponent(t, enums.ComponentKindFidget, "2.00", 5)

	_, err := f.svc.Create(ctx, CreateKeyboardInput{
		Name:        "Bad Build",
		BaseColorID: base.ID,
		KeycapID:    keycap.ID,
		SwitchID:    fidget.ID,
		Price:       decimal.RequireFromString("23.00"),
	})
	if err == nil {
		t.Fatal("expected validation error for fidget in switch slot")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateKeyboardRejectsMissingComponent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	base, keycap, _ := f.seedTrio(t)

	_, err := f.svc.Create(ctx, CreateKeyboardInput{
		Name:        "Ghost Switches",
		BaseColorID: base.ID,
		KeycapID:    keycap.ID,
		SwitchID:    uuid.New(),
		Price:       decimal.RequireFromString("23.00"),
	})
	if err == nil {
		t.Fatal("expected not-found error for unknown component")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRecalculateCost(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	base, keycap, sw := f.seedTrio(t)

	keyboard, err := f.svc.Create(ctx, CreateKeyboardInput{
		Name:        "Workhorse",
		BaseColorID: base.ID,
		KeycapID:    keycap.ID,
		SwitchID:    sw.ID,
		Price:       decimal.RequireFromString("23.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.db.Model(&models.Component{}).
		Where("id = ?", sw.ID).
		UpdateColumn("cost", decimal.RequireFromString("2.75")).Error; err != nil {
		t.Fatalf("bump component cost: %v", err)
	}

	recalced, err := f.svc.RecalculateCost(ctx, keyboard.ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if !recalced.Cost.Equal(decimal.RequireFromString("10.75")) {
		t.Fatalf("expected cost 10.75, got %s", recalced.Cost)
	}

	// Idempotent: a second pass is a no-op.
	again, err := f.svc.RecalculateCost(ctx, keyboard.ID)
	if err != nil {
		t.Fatalf("recalculate again: %v", err)
	}
	if !again.Cost.Equal(recalced.Cost) {
		t.Fatalf("expected stable cost, got %s", again.Cost)
	}
}

func TestRecalculateForComponent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	base, keycap, sw := f.seedTrio(t)
	otherKeycap := f.seedComponent(t, enums.ComponentKindKeycap, "4.00", 8)

	first, err := f.svc.Create(ctx, CreateKeyboardInput{
		Name: "A", BaseColorID: base.ID, KeycapID: keycap.ID, SwitchID: sw.ID,
		Price: decimal.RequireFromString("23.00"),
	})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := f.svc.Create(ctx, CreateKeyboardInput{
		Name: "B", BaseColorID: base.ID, KeycapID: otherKeycap.ID, SwitchID: sw.ID,
		Price: decimal.RequireFromString("24.00"),
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	if err := f.db.Model(&models.Component{}).
		Where("id = ?", base.ID).
		UpdateColumn("cost", decimal.RequireFromString("6.00")).Error; err != nil {
		t.Fatalf("bump base cost: %v", err)
	}

	if err := f.svc.RecalculateForComponent(ctx, base.ID); err != nil {
		t.Fatalf("recalculate for component: %v", err)
	}

	firstReloaded, err := f.svc.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("reload first: %v", err)
	}
	secondReloaded, err := f.svc.Get(ctx, second.ID)
	if err != nil {
		t.Fatalf("reload second: %v", err)
	}
	if !firstReloaded.Cost.Equal(decimal.RequireFromString("11.00")) {
		t.Fatalf("expected first cost 11.00, got %s", firstReloaded.Cost)
	}
	if !secondReloaded.Cost.Equal(decimal.RequireFromString("12.00")) {
		t.Fatalf("expected second cost 12.00, got %s", secondReloaded.Cost)
	}
}

func TestUpdateKeyboardRepointRecomputesCost(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	base, keycap, sw := f.seedTrio(t)
	premiumKeycap := f.seedComponent(t, enums.ComponentKindKeycap, "7.00", 20)

	keyboard, err := f.svc.Create(ctx, CreateKeyboardInput{
		Name: "Swappable", BaseColorID: base.ID, KeycapID: keycap.ID, SwitchID: sw.ID,
		Price: decimal.RequireFromString("23.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := f.svc.Update(ctx, keyboard.ID, UpdateKeyboardInput{KeycapID: &premiumKeycap.ID})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.KeycapID != premiumKeycap.ID {
		t.Fatalf("expected keycap repointed")
	}
	if !updated.Cost.Equal(decimal.RequireFromString("14.00")) {
		t.Fatalf("expected cost 14.00 after repoint, got %s", updated.Cost)
	}
}

func TestAvailability(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	base, keycap, sw := f.seedTrio(t) // quantities 15 / 8 / 5

	keyboard, err := f.svc.Create(ctx, CreateKeyboardInput{
		Name: "Scarce", BaseColorID: base.ID, KeycapID: keycap.ID, SwitchID: sw.ID,
		Price: decimal.RequireFromString("23.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	availability, err := f.svc.Availability(ctx, keyboard.ID)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if availability.AvailableQuantity != 5 {
		t.Fatalf("expected min quantity 5, got %d", availability.AvailableQuantity)
	}
	if !availability.LowStock || availability.OutOfStock {
		t.Fatalf("expected low stock, got %+v", availability)
	}

	if err := f.db.Model(&models.Component{}).
		Where("id = ?", sw.ID).
		UpdateColumn("quantity", 0).Error; err != nil {
		t.Fatalf("drain switch stock: %v", err)
	}

	availability, err = f.svc.Availability(ctx, keyboard.ID)
	if err != nil {
		t.Fatalf("availability after drain: %v", err)
	}
	if !availability.OutOfStock || availability.AvailableQuantity != 0 {
		t.Fatalf("expected out of stock, got %+v", availability)
	}
}
