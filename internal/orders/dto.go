package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fidgetclicks/fidgetclicks-backend/pkg/enums"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/pagination"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/types"
)

// LineItemInput is one requested order line. The populated reference fields
// depend on the type: custom lines name three components, prebuilt lines one
// keyboard, fidget lines one standalone component.
type LineItemInput struct {
	Type        enums.OrderItemType
	Quantity    int
	KeyboardID  *uuid.UUID
	BaseColorID *uuid.UUID
	KeycapID    *uuid.UUID
	SwitchID    *uuid.UUID
	FidgetID    *uuid.UUID
}

// CreateOrderInput is a full checkout submission.
type CreateOrderInput struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   *string
	ShippingAddress types.Address
	Items           []LineItemInput
	ShippingCost    decimal.Decimal
	Source          enums.OrderSource
	Notes           *string
}

// ListOrdersInput filters and paginates the order ledger.
type ListOrdersInput struct {
	Status     *enums.OrderStatus
	Search     string
	Pagination pagination.Params
}

// RestorationOutcome records the fate of one component restoration during
// cancellation. Failures are reported for logging, never raised to callers.
type RestorationOutcome struct {
	ComponentID uuid.UUID
	Quantity    int
	Err         error
}
