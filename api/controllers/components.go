package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fidgetclicks/fidgetclicks-backend/api/responses"
	"github.com/fidgetclicks/fidgetclicks-backend/api/validators"
	catalogsvc "github.com/fidgetclicks/fidgetclicks-backend/internal/catalog"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/enums"
	pkgerrors "github.com/fidgetclicks/fidgetclicks-backend/pkg/errors"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/logger"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/pagination"
)

// CreateComponent handles catalog component creation.
func CreateComponent(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createComponentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		component, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, component)
	}
}

// GetComponent returns a single component by id.
func GetComponent(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "componentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		component, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, component)
	}
}

// UpdateComponent applies a partial update to a component.
func UpdateComponent(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "componentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateComponentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		component, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, component)
	}
}

// DeleteComponent soft-deletes a component from the storefront catalog.
func DeleteComponent(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "componentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SoftDelete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// SetComponentQuantity replaces a component's on-hand stock level.
func SetComponentQuantity(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "componentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		component, err := svc.AdjustQuantity(r.Context(), id, *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, component)
	}
}

// ListComponents returns a filtered, cursor-paginated catalog page.
func ListComponents(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalogsvc.ListComponentsInput{
			IncludeInactive: r.URL.Query().Get("include_inactive") == "true",
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("kind")); raw != "" {
			kind, parseErr := enums.ParseComponentKind(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid kind"))
				return
			}
			input.Kind = &kind
		}

		page, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"components":  page.Items,
			"next_cursor": page.NextCursor,
		})
	}
}

type createComponentRequest struct {
	Kind        string  `json:"kind" validate:"required"`
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	Description *string `json:"description,omitempty"`
	ColorHex    *string `json:"color_hex,omitempty" validate:"omitempty,hexcolor"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
	Price       string  `json:"price" validate:"required"`
	Cost        string  `json:"cost" validate:"required"`
	Quantity    int     `json:"quantity" validate:"min=0"`
}

func (r createComponentRequest) toCreateInput() (catalogsvc.CreateComponentInput, error) {
	kind, err := enums.ParseComponentKind(strings.TrimSpace(r.Kind))
	if err != nil {
		return catalogsvc.CreateComponentInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind")
	}

	price, err := parseMoney(r.Price, "price")
	if err != nil {
		return catalogsvc.CreateComponentInput{}, err
	}

	cost, err := parseMoney(r.Cost, "cost")
	if err != nil {
		return catalogsvc.CreateComponentInput{}, err
	}

	return catalogsvc.CreateComponentInput{
		Kind:        kind,
		Name:        validators.SanitizeString(r.Name, 120),
		Description: r.Description,
		ColorHex:    r.ColorHex,
		ImageURL:    r.ImageURL,
		Price:       price,
		Cost:        cost,
		Quantity:    r.Quantity,
	}, nil
}

type updateComponentRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Description *string `json:"description,omitempty"`
	ColorHex    *string `json:"color_hex,omitempty" validate:"omitempty,hexcolor"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
	Price       *string `json:"price,omitempty"`
	Cost        *string `json:"cost,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (r updateComponentRequest) toUpdateInput() (catalogsvc.UpdateComponentInput, error) {
	input := catalogsvc.UpdateComponentInput{
		Name:        r.Name,
		Description: r.Description,
		ColorHex:    r.ColorHex,
		ImageURL:    r.ImageURL,
		IsActive:    r.IsActive,
	}
	if r.Price != nil {
		price, err := parseMoney(*r.Price, "price")
		if err != nil {
			return catalogsvc.UpdateComponentInput{}, err
		}
		input.Price = &price
	}
	if r.Cost != nil {
		cost, err := parseMoney(*r.Cost, "cost")
		if err != nil {
			return catalogsvc.UpdateComponentInput{}, err
		}
		input.Cost = &cost
	}
	return input, nil
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0"`
}

func parseMoney(raw, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	if value.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, field+" cannot be negative")
	}
	return value, nil
}

func parsePathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param)
	}
	return id, nil
}
