package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fidgetclicks/fidgetclicks-backend/internal/inventory"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/db"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/db/models"
	pkgerrors "github.com/fidgetclicks/fidgetclicks-backend/pkg/errors"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/logger"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/pagination"
)

// KeyboardCostRefresher re-derives stored keyboard costs after one of their
// components changes price. Implemented by the keyboards service.
type KeyboardCostRefresher interface {
	RecalculateForComponent(ctx context.Context, componentID uuid.UUID) error
}

// Service defines catalog component operations.
type Service interface {
	Create(ctx context.Context, input CreateComponentInput) (*models.Component, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateComponentInput) (*models.Component, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	AdjustQuantity(ctx context.Context, id uuid.UUID, quantity int) (*models.Component, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Component, error)
	List(ctx context.Context, input ListComponentsInput) (*ComponentPage, error)
}

type service struct {
	repo      Repository
	keyboards KeyboardCostRefresher
	logg      *logger.Logger
}

// NewService builds the catalog service. The keyboard refresher is optional
// so the catalog can run standalone in tests.
func NewService(repo Repository, keyboards KeyboardCostRefresher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, keyboards: keyboards, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateComponentInput) (*models.Component, error) {
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid component kind").
			WithDetails(map[string]any{"kind": string(input.Kind)})
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() || input.Cost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price and cost must be non-negative")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}

	component := &models.Component{
		ID:          uuid.New(),
		Kind:        input.Kind,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		ColorHex:    input.ColorHex,
		ImageURL:    input.ImageURL,
		Price:       input.Price,
		Cost:        input.Cost,
		Quantity:    input.Quantity,
		IsActive:    true,
	}
	created, err := s.repo.Create(ctx, component)
	if err != nil {
		if db.IsUniqueViolation(err, "uniq_components_kind_name") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a component with this kind and name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create component")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateComponentInput) (*models.Component, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "component id required")
	}

	existing, err := s.loadComponent(ctx, id)
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
	if input.ColorHex != nil {
		updates["color_hex"] = *input.ColorHex
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
	costChanged := false
	if input.Cost != nil {
		if input.Cost.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost must be non-negative")
		}
		costChanged = !input.Cost.Equal(existing.Cost)
		updates["cost"] = *input.Cost
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update component")
		}
	}

	// Cost changes ripple into every keyboard that bundles this component.
	// The refresh is best effort: a failure is logged and the component
	// update above still stands.
	if costChanged && existing.Kind.IsKeyboardSlot() && s.keyboards != nil {
		if err := s.keyboards.RecalculateForComponent(ctx, id); err != nil {
			ctx := s.logg.WithComponentID(ctx, id.String())
			s.logg.Error(ctx, "keyboard cost refresh failed after component update", err)
		}
	}

	return s.loadComponent(ctx, id)
}

func (s *service) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "component id required")
	}
	if _, err := s.loadComponent(ctx, id); err != nil {
		return err
	}
	// Deactivation is permissive: keyboards and historical order items keep
	// their weak references, they simply stop resolving for new orders.
	if err := s.repo.Update(ctx, id, map[string]any{"is_active": false}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate component")
	}
	return nil
}

func (s *service) AdjustQuantity(ctx context.Context, id uuid.UUID, quantity int) (*models.Component, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "component id required")
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}

	affected, err := s.repo.SetQuantity(ctx, id, quantity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set component quantity")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "component not found")
	}
	return s.loadComponent(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Component, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "component id required")
	}
	return s.loadComponent(ctx, id)
}

func (s *service) List(ctx context.Context, input ListComponentsInput) (*ComponentPage, error) {
	if input.Kind != nil && !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid component kind").
			WithDetails(map[string]any{"kind": string(*input.Kind)})
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Pagination.Limit)

	components, err := s.repo.List(ctx, input, limit+1, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list components")
	}

	page := &ComponentPage{}
	if len(components) > limit {
		components = components[:limit]
		last := components[len(components)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &next
	}
	page.Items = make([]ComponentView, 0, len(components))
	for _, component := range components {
		page.Items = append(page.Items, newComponentView(component))
	}
	return page, nil
}

func (s *service) loadComponent(ctx context.Context, id uuid.UUID) (*models.Component, error) {
	component, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "component not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load component")
	}
	return component, nil
}

func newComponentView(component models.Component) ComponentView {
	return ComponentView{
		ID:          component.ID,
		Kind:        component.Kind,
		Name:        component.Name,
		Description: component.Description,
		ColorHex:    component.ColorHex,
		ImageURL:    component.ImageURL,
		Price:       component.Price,
		Cost:        component.Cost,
		Quantity:    component.Quantity,
		IsActive:    component.IsActive,
		LowStock:    component.Quantity > 0 && component.Quantity <= inventory.LowStockThreshold,
		OutOfStock:  component.Quantity == 0,
	}
}
