package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Keyboard is a prebuilt bundle referencing exactly one base color, one
// keycap set, and one switch set. Its cost column is a stored aggregate of
// the three referenced components' costs; it carries no stock of its own.
type Keyboard struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string          `gorm:"column:name;not null"`
	Description   *string         `gorm:"column:description"`
	ImageURL      *string         `gorm:"column:image_url"`
	BaseColorID   uuid.UUID       `gorm:"column:base_color_id;type:uuid;not null"`
	KeycapID      uuid.UUID       `gorm:"column:keycap_id;type:uuid;not null"`
	SwitchID      uuid.UUID       `gorm:"column:switch_id;type:uuid;not null"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	OriginalPrice decimal.Decimal `gorm:"column:original_price;type:numeric(12,2);not null;default:0"`
	Discount      decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	Cost          decimal.Decimal `gorm:"column:cost;type:numeric(12,2);not null;default:0"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	BaseColor     *Component      `gorm:"foreignKey:BaseColorID"`
	Keycap        *Component      `gorm:"foreignKey:KeycapID"`
	Switch        *Component      `gorm:"foreignKey:SwitchID"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
