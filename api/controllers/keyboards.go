package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fidgetclicks/fidgetclicks-backend/api/responses"
	"github.com/fidgetclicks/fidgetclicks-backend/api/validators"
	keyboardsvc "github.com/fidgetclicks/fidgetclicks-backend/internal/keyboards"
	pkgerrors "github.com/fidgetclicks/fidgetclicks-backend/pkg/errors"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/logger"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/pagination"
)

// CreateKeyboard publishes a prebuilt keyboard assembled from catalog components.
func CreateKeyboard(svc keyboardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "keyboard service unavailable"))
			return
		}

		var payload createKeyboardRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		keyboard, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, keyboard)
	}
}

// GetKeyboard returns one keyboard with its component slots preloaded.
func GetKeyboard(svc keyboardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "keyboardID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		keyboard, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, keyboard)
	}
}

// UpdateKeyboard applies a partial update; re-pointing a component slot
// re-derives the stored cost.
func UpdateKeyboard(svc keyboardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "keyboardID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateKeyboardRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		keyboard, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, keyboard)
	}
}

// DeleteKeyboard soft-deletes a keyboard from the storefront.
func DeleteKeyboard(svc keyboardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "keyboardID")
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

// ListKeyboards returns a cursor-paginated keyboard listing.
func ListKeyboards(svc keyboardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		keyboards, nextCursor, err := svc.List(r.Context(), keyboardsvc.ListKeyboardsInput{
			IncludeInactive: r.URL.Query().Get("include_inactive") == "true",
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"keyboards":   keyboards,
			"next_cursor": nextCursor,
		})
	}
}

// RecalculateKeyboardCost forces a keyboard's stored cost back in sync with
// its current component costs.
func RecalculateKeyboardCost(svc keyboardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "keyboardID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		keyboard, err := svc.RecalculateCost(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, keyboard)
	}
}

// KeyboardAvailability returns the stock position derived from the scarcest
// of the keyboard's three components.
func KeyboardAvailability(svc keyboardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "keyboardID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		availability, err := svc.Availability(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, availability)
	}
}

type createKeyboardRequest struct {
	Name          string  `json:"name" validate:"required,min=2,max=120"`
	Description   *string `json:"description,omitempty"`
	ImageURL      *string `json:"image_url,omitempty" validate:"omitempty,url"`
	BaseColorID   string  `json:"base_color_id" validate:"required,uuid"`
	KeycapID      string  `json:"keycap_id" validate:"required,uuid"`
	SwitchID      string  `json:"switch_id" validate:"required,uuid"`
	Price         string  `json:"price" validate:"required"`
	OriginalPrice *string `json:"original_price,omitempty"`
	Discount      *string `json:"discount,omitempty"`
}

func (r createKeyboardRequest) toCreateInput() (keyboardsvc.CreateKeyboardInput, error) {
	baseColorID, _ := uuid.Parse(r.BaseColorID)
	keycapID, _ := uuid.Parse(r.KeycapID)
	switchID, _ := uuid.Parse(r.SwitchID)

	price, err := parseMoney(r.Price, "price")
	if err != nil {
		return keyboardsvc.CreateKeyboardInput{}, err
	}

	input := keyboardsvc.CreateKeyboardInput{
		Name:          validators.SanitizeString(r.Name, 120),
		Description:   r.Description,
		ImageURL:      r.ImageURL,
		BaseColorID:   baseColorID,
		KeycapID:      keycapID,
		SwitchID:      switchID,
		Price:         price,
		OriginalPrice: price,
	}

	if r.OriginalPrice != nil {
		original, moneyErr := parseMoney(*r.OriginalPrice, "original_price")
		if moneyErr != nil {
			return keyboardsvc.CreateKeyboardInput{}, moneyErr
		}
		input.OriginalPrice = original
	}

	if r.Discount != nil {
		discount, moneyErr := parseMoney(*r.Discount, "discount")
		if moneyErr != nil {
			return keyboardsvc.CreateKeyboardInput{}, moneyErr
		}
		input.Discount = discount
	}

	return input, nil
}

type updateKeyboardRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Description   *string `json:"description,omitempty"`
	ImageURL      *string `json:"image_url,omitempty" validate:"omitempty,url"`
	BaseColorID   *string `json:"base_color_id,omitempty" validate:"omitempty,uuid"`
	KeycapID      *string `json:"keycap_id,omitempty" validate:"omitempty,uuid"`
	SwitchID      *string `json:"switch_id,omitempty" validate:"omitempty,uuid"`
	Price         *string `json:"price,omitempty"`
	OriginalPrice *string `json:"original_price,omitempty"`
	Discount      *string `json:"discount,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

func (r updateKeyboardRequest) toUpdateInput() (keyboardsvc.UpdateKeyboardInput, error) {
	input := keyboardsvc.UpdateKeyboardInput{
		Name:        r.Name,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		IsActive:    r.IsActive,
	}

	if id, err := parseOptionalUUID(r.BaseColorID, "base_color_id"); err != nil {
		return keyboardsvc.UpdateKeyboardInput{}, err
	} else {
		input.BaseColorID = id
	}
	if id, err := parseOptionalUUID(r.KeycapID, "keycap_id"); err != nil {
		return keyboardsvc.UpdateKeyboardInput{}, err
	} else {
		input.KeycapID = id
	}
	if id, err := parseOptionalUUID(r.SwitchID, "switch_id"); err != nil {
		return keyboardsvc.UpdateKeyboardInput{}, err
	} else {
		input.SwitchID = id
	}

	if err := assignOptionalMoney(r.Price, "price", &input.Price); err != nil {
		return keyboardsvc.UpdateKeyboardInput{}, err
	}
	if err := assignOptionalMoney(r.OriginalPrice, "original_price", &input.OriginalPrice); err != nil {
		return keyboardsvc.UpdateKeyboardInput{}, err
	}
	if err := assignOptionalMoney(r.Discount, "discount", &input.Discount); err != nil {
		return keyboardsvc.UpdateKeyboardInput{}, err
	}

	return input, nil
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return &id, nil
}

func assignOptionalMoney(raw *string, field string, dest **decimal.Decimal) error {
	if raw == nil {
		return nil
	}
	value, err := parseMoney(*raw, field)
	if err != nil {
		return err
	}
	*dest = &value
	return nil
}
