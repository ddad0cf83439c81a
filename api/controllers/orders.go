package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/fidgetclicks/fidgetclicks-backend/api/responses"
	"github.com/fidgetclicks/fidgetclicks-backend/api/validators"
	ordersvc "github.com/fidgetclicks/fidgetclicks-backend/internal/orders"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/enums"
	pkgerrors "github.com/fidgetclicks/fidgetclicks-backend/pkg/errors"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/logger"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/pagination"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/types"
)

// CreateOrder validates, prices, and commits a checkout submission. Stock is
// decremented atomically with the order; any shortage rejects the whole order.
func CreateOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// GetOrder returns one order with its frozen line items.
func GetOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// ListOrders returns a filtered, cursor-paginated slice of the order ledger.
func ListOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := ordersvc.ListOrdersInput{
			Search: validators.SanitizeString(r.URL.Query().Get("search"), 120),
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseOrderStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status"))
				return
			}
			input.Status = &status
		}

		orders, nextCursor, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"orders":      orders,
			"next_cursor": nextCursor,
		})
	}
}

// UpdateOrderStatus moves an order along its lifecycle.
func UpdateOrderStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		order, err := svc.TransitionStatus(r.Context(), id, status, nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// CancelOrder cancels an order and restores component stock on a best-effort
// basis. Restoration failures never block the cancellation itself.
func CancelOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.TransitionStatus(r.Context(), id, enums.OrderStatusCancelled, nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

type createOrderRequest struct {
	CustomerName    string                 `json:"customer_name" validate:"required,min=2,max=120"`
	CustomerEmail   string                 `json:"customer_email" validate:"required,email"`
	CustomerPhone   *string                `json:"customer_phone,omitempty"`
	ShippingAddress types.Address          `json:"shipping_address" validate:"required"`
	Items           []orderLineItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingCost    string                 `json:"shipping_cost,omitempty"`
	Source          string                 `json:"source,omitempty"`
	Notes           *string                `json:"notes,omitempty"`
}

type orderLineItemRequest struct {
	Type        string  `json:"type" validate:"required,oneof=custom prebuilt fidget"`
	Quantity    int     `json:"quantity" validate:"required,min=1"`
	KeyboardID  *string `json:"keyboard_id,omitempty" validate:"omitempty,uuid"`
	BaseColorID *string `json:"base_color_id,omitempty" validate:"omitempty,uuid"`
	KeycapID    *string `json:"keycap_id,omitempty" validate:"omitempty,uuid"`
	SwitchID    *string `json:"switch_id,omitempty" validate:"omitempty,uuid"`
	FidgetID    *string `json:"fidget_id,omitempty" validate:"omitempty,uuid"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (r createOrderRequest) toCreateInput() (ordersvc.CreateOrderInput, error) {
	input := ordersvc.CreateOrderInput{
		CustomerName:    validators.SanitizeString(r.CustomerName, 120),
		CustomerEmail:   strings.ToLower(strings.TrimSpace(r.CustomerEmail)),
		CustomerPhone:   r.CustomerPhone,
		ShippingAddress: r.ShippingAddress,
		Notes:           r.Notes,
	}

	if raw := strings.TrimSpace(r.ShippingCost); raw != "" {
		shipping, err := parseMoney(raw, "shipping_cost")
		if err != nil {
			return ordersvc.CreateOrderInput{}, err
		}
		input.ShippingCost = shipping
	}

	if raw := strings.TrimSpace(r.Source); raw != "" {
		source, err := enums.ParseOrderSource(raw)
		if err != nil {
			return ordersvc.CreateOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid source")
		}
		input.Source = source
	}

	for _, item := range r.Items {
		line, err := item.toLineInput()
		if err != nil {
			return ordersvc.CreateOrderInput{}, err
		}
		input.Items = append(input.Items, line)
	}

	return input, nil
}

func (r orderLineItemRequest) toLineInput() (ordersvc.LineItemInput, error) {
	itemType, err := enums.ParseOrderItemType(strings.TrimSpace(r.Type))
	if err != nil {
		return ordersvc.LineItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item type")
	}

	line := ordersvc.LineItemInput{
		Type:     itemType,
		Quantity: r.Quantity,
	}

	refs := []struct {
		raw   *string
		field string
		dest  **uuid.UUID
	}{
		{r.KeyboardID, "keyboard_id", &line.KeyboardID},
		{r.BaseColorID, "base_color_id", &line.BaseColorID},
		{r.KeycapID, "keycap_id", &line.KeycapID},
		{r.SwitchID, "switch_id", &line.SwitchID},
		{r.FidgetID, "fidget_id", &line.FidgetID},
	}
	for _, ref := range refs {
		id, parseErr := parseOptionalUUID(ref.raw, ref.field)
		if parseErr != nil {
			return ordersvc.LineItemInput{}, parseErr
		}
		*ref.dest = id
	}

	return line, nil
}
