package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fidgetclicks/fidgetclicks-backend/pkg/db/models"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:orders_repo_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	for _, schema := range []string{componentsSchema, keyboardsSchema, ordersSchema, orderItemsSchema} {
		require.NoError(t, db.Exec(schema).Error)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, name string, status enums.OrderStatus, createdAt time.Time) models.Order {
	t.Helper()
	order := models.Order{
		ID:              uuid.New(),
		CustomerName:    name,
		CustomerEmail:   "test@example.com",
		ShippingAddress: testAddress(),
		Status:          status,
		TotalAmount:     decimal.RequireFromString("10.00"),
		TotalCost:       decimal.RequireFromString("4.00"),
		TotalProfit:     decimal.RequireFromString("6.00"),
		ShippingCost:    decimal.Zero,
		Source:          enums.OrderSourceStorefront,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestFindStalePendingFiltersByStatusAndAge(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	old := seedOrder(t, db, "Old Pending", enums.OrderStatusPending, now.Add(-72*time.Hour))
	older := seedOrder(t, db, "Older Pending", enums.OrderStatusPending, now.Add(-96*time.Hour))
	seedOrder(t, db, "Fresh Pending", enums.OrderStatusPending, now.Add(-1*time.Hour))
	seedOrder(t, db, "Old Confirmed", enums.OrderStatusConfirmed, now.Add(-72*time.Hour))

	stale, err := repo.FindStalePending(ctx, now.Add(-48*time.Hour))
	require.NoError(t, err)

	require.Len(t, stale, 2)
	assert.Equal(t, older.ID, stale[0].ID, "oldest order first")
	assert.Equal(t, old.ID, stale[1].ID)
}

func TestUpdateOrderStatusMergesStamps(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, "Stamped", enums.OrderStatusPending, time.Now().UTC())
	deliveredAt := time.Now().UTC().Truncate(time.Second)

	err := repo.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusDelivered, map[string]any{
		"delivered_at": deliveredAt,
	})
	require.NoError(t, err)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusDelivered, reloaded.Status)
	require.NotNil(t, reloaded.DeliveredAt)
	assert.WithinDuration(t, deliveredAt, *reloaded.DeliveredAt, time.Second)
}

func TestFindComponentExcludesInactive(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	retired := models.Component{
		ID:       uuid.New(),
		Kind:     enums.ComponentKindSwitch,
		Name:     "Retired Switch",
		Price:    decimal.RequireFromString("3.00"),
		Cost:     decimal.RequireFromString("1.00"),
		Quantity: 10,
	}
	require.NoError(t, db.Create(&retired).Error)
	// gorm drops a false IsActive on insert (zero value vs default:true),
	// so flip the column after the fact.
	require.NoError(t, db.Model(&models.Component{}).Where("id = ?", retired.ID).
		UpdateColumn("is_active", false).Error)

	_, err := repo.FindComponent(ctx, retired.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
