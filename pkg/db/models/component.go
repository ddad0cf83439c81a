package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fidgetclicks/fidgetclicks-backend/pkg/enums"
)

// Component is an independently stocked sellable part: a base color shell,
// a keycap set, a switch set, or a standalone fidget item.
type Component struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind        enums.ComponentKind `gorm:"column:kind;not null"`
	Name        string              `gorm:"column:name;not null"`
	Description *string             `gorm:"column:description"`
	ColorHex    *string             `gorm:"column:color_hex"`
	ImageURL    *string             `gorm:"column:image_url"`
	Price       decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	Cost        decimal.Decimal     `gorm:"column:cost;type:numeric(12,2);not null"`
	Quantity    int                 `gorm:"column:quantity;not null;default:0"`
	IsActive    bool                `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
