package keyboards

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fidgetclicks/fidgetclicks-backend/pkg/pagination"
)

// CreateKeyboardInput carries the fields required to publish a prebuilt keyboard.
type CreateKeyboardInput struct {
	Name          string
	Description   *string
	ImageURL      *string
	BaseColorID   uuid.UUID
	KeycapID      uuid.UUID
	SwitchID      uuid.UUID
	Price         decimal.Decimal
	OriginalPrice decimal.Decimal
	Discount      decimal.Decimal
}

// UpdateKeyboardInput applies a partial update; nil fields keep the stored value.
// Re-pointing any component reference re-derives the stored cost.
type UpdateKeyboardInput struct {
	Name          *string
	Description   *string
	ImageURL      *string
	BaseColorID   *uuid.UUID
	KeycapID      *uuid.UUID
	SwitchID      *uuid.UUID
	Price         *decimal.Decimal
	OriginalPrice *decimal.Decimal
	Discount      *decimal.Decimal
	IsActive      *bool
}

// ListKeyboardsInput filters and paginates the keyboard listing.
type ListKeyboardsInput struct {
	IncludeInactive bool
	Pagination      pagination.Params
}

// Availability is the read-time stock position of a prebuilt keyboard,
// derived from the scarcest of its three components.
type Availability struct {
	AvailableQuantity int  `json:"availableQuantity"`
	OutOfStock        bool `json:"outOfStock"`
	LowStock          bool `json:"lowStock"`
}
