package keyboards

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/fidgetclicks/fidgetclicks-backend/internal/inventory"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/db/models"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/enums"
	pkgerrors "github.com/fidgetclicks/fidgetclicks-backend/pkg/errors"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/logger"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/pagination"
)

// ComponentReader resolves catalog components for slot validation. Satisfied
// by the catalog repository.
type ComponentReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Component, error)
}

// Service defines prebuilt keyboard operations.
type Service interface {
	Create(ctx context.Context, input CreateKeyboardInput) (*models.Keyboard, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateKeyboardInput) (*models.Keyboard, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Keyboard, error)
	List(ctx context.Context, input ListKeyboardsInput) ([]models.Keyboard, *string, error)
	RecalculateCost(ctx context.Context, id uuid.UUID) (*models.Keyboard, error)
	RecalculateForComponent(ctx context.Context, componentID uuid.UUID) error
	Availability(ctx context.Context, id uuid.UUID) (*Availability, error)
}

type service struct {
	repo       Repository
	components ComponentReader
	logg       *logger.Logger
}

// NewService builds the keyboards service.
func NewService(repo Repository, components ComponentReader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("keyboards repository required")
	}
	if components == nil {
		return nil, fmt.Errorf("component reader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, components: components, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateKeyboardInput) (*models.Keyboard, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() || input.OriginalPrice.IsNegative() || input.Discount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices must be non-negative")
	}

	cost, err := s.sumSlotCosts(ctx, input.BaseColorID, input.KeycapID, input.SwitchID)
	if err != nil {
		return nil, err
	}

	keyboard := &models.Keyboard{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		ImageURL:      input.ImageURL,
		BaseColorID:   input.BaseColorID,
		KeycapID:      input.KeycapID,
		SwitchID:      input.SwitchID,
		Price:         input.Price,
		OriginalPrice: input.OriginalPrice,
		Discount:      input.Discount,
		Cost:          cost,
		IsActive:      true,
	}
	created, err := s.repo.Create(ctx, keyboard)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create keyboard")
	}
	return s.loadKeyboard(ctx, created.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateKeyboardInput) (*models.Keyboard, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "keyboard id required")
	}
	existing, err := s.loadKeyboard(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
		}
		updates["price"] = *input.Price
	}
	if input.OriginalPrice != nil {
		updates["original_price"] = *input.OriginalPrice
	}
	if input.Discount != nil {
		updates["discount"] = *input.Discount
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	baseColorID := existing.BaseColorID
	keycapID := existing.KeycapID
	switchID := existing.SwitchID
	repointed := false
	if input.BaseColorID != nil && *input.BaseColorID != baseColorID {
		baseColorID = *input.BaseColorID
		updates["base_color_id"] = baseColorID
		repointed = true
	}
	if input.KeycapID != nil && *input.KeycapID != keycapID {
		keycapID = *input.KeycapID
		updates["keycap_id"] = keycapID
		repointed = true
	}
	if input.SwitchID != nil && *input.SwitchID != switchID {
		switchID = *input.SwitchID
		updates["switch_id"] = switchID
		repointed = true
	}
	if repointed {
		cost, err := s.sumSlotCosts(ctx, baseColorID, keycapID, switchID)
		if err != nil {
			return nil, err
		}
		updates["cost"] = cost
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update keyboard")
		}
	}
	return s.loadKeyboard(ctx, id)
}

func (s *service) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "keyboard id required")
	}
	if _, err := s.loadKeyboard(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, map[string]any{"is_active": false}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate keyboard")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Keyboard, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "keyboard id required")
	}
	return s.loadKeyboard(ctx, id)
}

func (s *service) List(ctx context.Context, input ListKeyboardsInput) ([]models.Keyboard, *string, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Pagination.Limit)

	keyboards, err := s.repo.List(ctx, input, limit+1, cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list keyboards")
	}

	var nextCursor *string
	if len(keyboards) > limit {
		keyboards = keyboards[:limit]
		last := keyboards[len(keyboards)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		nextCursor = &next
	}
	return keyboards, nextCursor, nil
}

// RecalculateCost re-derives the stored cost from the three live component
// costs. Safe to call repeatedly.
func (s *service) RecalculateCost(ctx context.Context, id uuid.UUID) (*models.Keyboard, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "keyboard id required")
	}
	keyboard, err := s.loadKeyboard(ctx, id)
	if err != nil {
		return nil, err
	}

	cost, err := s.sumSlotCosts(ctx, keyboard.BaseColorID, keyboard.KeycapID, keyboard.SwitchID)
	if err != nil {
		return nil, err
	}
	if !cost.Equal(keyboard.Cost) {
		if err := s.repo.SetCost(ctx, id, cost); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store recalculated cost")
		}
	}
	return s.loadKeyboard(ctx, id)
}

// RecalculateForComponent refreshes every keyboard bundling the component.
// Per-keyboard failures are collected so one broken row cannot stop the rest.
func (s *service) RecalculateForComponent(ctx context.Context, componentID uuid.UUID) error {
	if componentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "component id required")
	}
	keyboards, err := s.repo.FindByComponent(ctx, componentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list keyboards by component")
	}

	var failures error
	for _, keyboard := range keyboards {
		if _, err := s.RecalculateCost(ctx, keyboard.ID); err != nil {
			failures = multierr.Append(failures, fmt.Errorf("keyboard %s: %w", keyboard.ID, err))
		}
	}
	if failures != nil {
		ctx := s.logg.WithComponentID(ctx, componentID.String())
		s.logg.Warn(s.logg.WithField(ctx, "failedKeyboards", len(multierr.Errors(failures))),
			"partial keyboard cost refresh")
	}
	return failures
}

// Availability reports how many complete units can be assembled right now:
// the scarcest of the three component quantities.
func (s *service) Availability(ctx context.Context, id uuid.UUID) (*Availability, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "keyboard id required")
	}
	keyboard, err := s.loadKeyboard(ctx, id)
	if err != nil {
		return nil, err
	}
	if keyboard.BaseColor == nil || keyboard.Keycap == nil || keyboard.Switch == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "keyboard components not resolvable")
	}

	available := keyboard.BaseColor.Quantity
	if keyboard.Keycap.Quantity < available {
		available = keyboard.Keycap.Quantity
	}
	if keyboard.Switch.Quantity < available {
		available = keyboard.Switch.Quantity
	}

	return &Availability{
		AvailableQuantity: available,
		OutOfStock:        available == 0,
		LowStock:          available > 0 && available <= inventory.LowStockThreshold,
	}, nil
}

// sumSlotCosts validates the three slot references and returns their combined cost.
func (s *service) sumSlotCosts(ctx context.Context, baseColorID, keycapID, switchID uuid.UUID) (decimal.Decimal, error) {
	slots := []struct {
		id   uuid.UUID
		kind enums.ComponentKind
	}{
		{baseColorID, enums.ComponentKindBaseColor},
		{keycapID, enums.ComponentKindKeycap},
		{switchID, enums.ComponentKindSwitch},
	}

	cost := decimal.Zero
	for _, slot := range slots {
		if slot.id == uuid.Nil {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("%s component required", slot.kind))
		}
		component, err := s.components.FindByID(ctx, slot.id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound,
					fmt.Sprintf("%s component not found", slot.kind)).
					WithDetails(map[string]any{"componentId": slot.id.String()})
			}
			return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load component")
		}
		if component.Kind != slot.kind {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("component %s is a %s, expected %s", slot.id, component.Kind, slot.kind))
		}
		cost = cost.Add(component.Cost)
	}
	return cost, nil
}

func (s *service) loadKeyboard(ctx context.Context, id uuid.UUID) (*models.Keyboard, error) {
	keyboard, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "keyboard not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load keyboard")
	}
	return keyboard, nil
}
