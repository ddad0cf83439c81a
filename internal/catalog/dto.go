package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fidgetclicks/fidgetclicks-backend/pkg/enums"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/pagination"
)

// CreateComponentInput carries the fields required to add a catalog component.
type CreateComponentInput struct {
	Kind        enums.ComponentKind
	Name        string
	Description *string
	ColorHex    *string
	ImageURL    *string
	Price       decimal.Decimal
	Cost        decimal.Decimal
	Quantity    int
}

// UpdateComponentInput applies a partial update; nil fields keep the stored value.
type UpdateComponentInput struct {
	Name        *string
	Description *string
	ColorHex    *string
	ImageURL    *string
	Price       *decimal.Decimal
	Cost        *decimal.Decimal
	IsActive    *bool
}

// ListComponentsInput filters and paginates the catalog listing.
type ListComponentsInput struct {
	Kind            *enums.ComponentKind
	IncludeInactive bool
	Pagination      pagination.Params
}

// ComponentPage is one cursor page of catalog components.
type ComponentPage struct {
	Items      []ComponentView
	NextCursor *string
}

// ComponentView decorates a component with its read-time stock flags.
type ComponentView struct {
	ID          uuid.UUID           `json:"id"`
	Kind        enums.ComponentKind `json:"kind"`
	Name        string              `json:"name"`
	Description *string             `json:"description,omitempty"`
	ColorHex    *string             `json:"colorHex,omitempty"`
	ImageURL    *string             `json:"imageUrl,omitempty"`
	Price       decimal.Decimal     `json:"price"`
	Cost        decimal.Decimal     `json:"cost"`
	Quantity    int                 `json:"quantity"`
	IsActive    bool                `json:"isActive"`
	LowStock    bool                `json:"lowStock"`
	OutOfStock  bool                `json:"outOfStock"`
}
