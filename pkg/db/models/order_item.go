package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fidgetclicks/fidgetclicks-backend/pkg/enums"
)

// OrderItem captures one line of an order. Financial fields are frozen at
// creation time; the component/keyboard ids are weak references kept for
// display and for stock restoration on cancellation, never re-resolved for
// pricing.
type OrderItem struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID           `gorm:"column:order_id;type:uuid;not null"`
	Type        enums.OrderItemType `gorm:"column:type;not null"`
	Name        string              `gorm:"column:name;not null"`
	Quantity    int                 `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal     `gorm:"column:unit_price;type:numeric(12,2);not null"`
	TotalPrice  decimal.Decimal     `gorm:"column:total_price;type:numeric(12,2);not null"`
	UnitCost    decimal.Decimal     `gorm:"column:unit_cost;type:numeric(12,2);not null"`
	TotalCost   decimal.Decimal     `gorm:"column:total_cost;type:numeric(12,2);not null"`
	Profit      decimal.Decimal     `gorm:"column:profit;type:numeric(12,2);not null"`
	KeyboardID  *uuid.UUID          `gorm:"column:keyboard_id;type:uuid"`
	BaseColorID *uuid.UUID          `gorm:"column:base_color_id;type:uuid"`
	KeycapID    *uuid.UUID          `gorm:"column:keycap_id;type:uuid"`
	SwitchID    *uuid.UUID          `gorm:"column:switch_id;type:uuid"`
	FidgetID    *uuid.UUID          `gorm:"column:fidget_id;type:uuid"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
