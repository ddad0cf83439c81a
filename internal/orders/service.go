package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/fidgetclicks/fidgetclicks-backend/internal/inventory"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/db/models"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/enums"
	pkgerrors "github.com/fidgetclicks/fidgetclicks-backend/pkg/errors"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/logger"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/metrics"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the order ledger plus the consistency engine around it: order
// creation snapshots financials and decrements stock in one transaction,
// cancellation restores stock best effort before flipping the status.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	TransitionStatus(ctx context.Context, orderID uuid.UUID, newStatus enums.OrderStatus, itemSnapshot []models.OrderItem) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, input ListOrdersInput) ([]models.Order, *string, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	logg    *logger.Logger
	metrics *metrics.OrderEngineMetrics
}

// NewService builds the order service with the required dependencies.
func NewService(repo Repository, tx txRunner, logg *logger.Logger, engineMetrics *metrics.OrderEngineMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if engineMetrics == nil {
		return nil, fmt.Errorf("engine metrics required")
	}
	return &service{repo: repo, tx: tx, logg: logg, metrics: engineMetrics}, nil
}

// resolvedLine pairs a snapshotted order item with the stock decrements the
// line will consume when the order commits.
type resolvedLine struct {
	item       models.OrderItem
	decrements []decrement
}

type decrement struct {
	componentID uuid.UUID
	name        string
	qty         int
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	start := time.Now()
	source := input.Source
	if source == "" {
		source = enums.OrderSourceStorefront
	}

	if err := validateCreateInput(input, source); err != nil {
		return nil, err
	}

	var orderID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		lines := make([]resolvedLine, 0, len(input.Items))
		for i, item := range input.Items {
			line, err := s.resolveLine(ctx, repo, item)
			if err != nil {
				return annotateLine(err, i)
			}
			lines = append(lines, *line)
		}

		totalPrice := decimal.Zero
		totalCost := decimal.Zero
		for _, line := range lines {
			totalPrice = totalPrice.Add(line.item.TotalPrice)
			totalCost = totalCost.Add(line.item.TotalCost)
		}

		order := &models.Order{
			ID:              uuid.New(),
			CustomerName:    strings.TrimSpace(input.CustomerName),
			CustomerEmail:   strings.TrimSpace(input.CustomerEmail),
			CustomerPhone:   input.CustomerPhone,
			ShippingAddress: input.ShippingAddress.Normalized(),
			Status:          enums.OrderStatusPending,
			TotalAmount:     totalPrice.Add(input.ShippingCost),
			TotalCost:       totalCost,
			TotalProfit:     totalPrice.Sub(totalCost),
			ShippingCost:    input.ShippingCost,
			Source:          source,
			Notes:           input.Notes,
		}
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}

		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			line.item.ID = uuid.New()
			line.item.OrderID = order.ID
			items = append(items, line.item)
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order items")
		}

		// Conditional decrements back the earlier sufficiency checks: a
		// concurrent order that drained stock between check and decrement
		// surfaces here as zero rows affected and rolls everything back.
		for _, line := range lines {
			for _, dec := range line.decrements {
				if err := inventory.Decrement(ctx, tx, dec.componentID, dec.qty); err != nil {
					if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeInsufficientStock {
						return insufficientStock(dec.name, dec.componentID, dec.qty)
					}
					return err
				}
			}
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeInsufficientStock {
			s.metrics.IncInsufficientStock(source.String())
		}
		return nil, err
	}

	created, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload created order")
	}

	s.metrics.IncCreated(source.String())
	s.metrics.ObserveCreateDuration(source.String(), time.Since(start))
	s.logg.Info(s.logg.WithOrderID(ctx, created.ID.String()), "order created")
	return created, nil
}

func (s *service) resolveLine(ctx context.Context, repo Repository, input LineItemInput) (*resolvedLine, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
	}

	switch input.Type {
	case enums.OrderItemTypeCustom:
		return s.resolveCustomLine(ctx, repo, input)
	case enums.OrderItemTypePrebuilt:
		return s.resolvePrebuiltLine(ctx, repo, input)
	case enums.OrderItemTypeFidget:
		return s.resolveFidgetLine(ctx, repo, input)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid line item type").
			WithDetails(map[string]any{"type": string(input.Type)})
	}
}

func (s *service) resolveCustomLine(ctx context.Context, repo Repository, input LineItemInput) (*resolvedLine, error) {
	slots := []struct {
		id   *uuid.UUID
		kind enums.ComponentKind
	}{
		{input.BaseColorID, enums.ComponentKindBaseColor},
		{input.KeycapID, enums.ComponentKindKeycap},
		{input.SwitchID, enums.ComponentKindSwitch},
	}

	unitPrice := decimal.Zero
	unitCost := decimal.Zero
	names := make([]string, 0, len(slots))
	decrements := make([]decrement, 0, len(slots))
	for _, slot := range slots {
		component, err := resolveComponent(ctx, repo, slot.id, slot.kind)
		if err != nil {
			return nil, err
		}
		if component.Quantity < input.Quantity {
			return nil, insufficientStock(component.Name, component.ID, input.Quantity)
		}
		unitPrice = unitPrice.Add(component.Price)
		unitCost = unitCost.Add(component.Cost)
		names = append(names, component.Name)
		decrements = append(decrements, decrement{componentID: component.ID, name: component.Name, qty: input.Quantity})
	}

	item, err := snapshotItem(enums.OrderItemTypeCustom, "Custom build: "+strings.Join(names, " / "), input.Quantity, unitPrice, unitCost)
	if err != nil {
		return nil, err
	}
	item.BaseColorID = input.BaseColorID
	item.KeycapID = input.KeycapID
	item.SwitchID = input.SwitchID
	return &resolvedLine{item: *item, decrements: decrements}, nil
}

func (s *service) resolvePrebuiltLine(ctx context.Context, repo Repository, input LineItemInput) (*resolvedLine, error) {
	if input.KeyboardID == nil || *input.KeyboardID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "keyboard reference required")
	}
	keyboard, err := repo.FindKeyboard(ctx, *input.KeyboardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "keyboard not found").
				WithDetails(map[string]any{"keyboardId": input.KeyboardID.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load keyboard")
	}
	if keyboard.BaseColor == nil || keyboard.Keycap == nil || keyboard.Switch == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "keyboard components not found").
			WithDetails(map[string]any{"keyboardId": keyboard.ID.String()})
	}

	components := []*models.Component{keyboard.BaseColor, keyboard.Keycap, keyboard.Switch}
	decrements := make([]decrement, 0, len(components))
	for _, component := range components {
		if component.Quantity < input.Quantity {
			return nil, insufficientStock(component.Name, component.ID, input.Quantity)
		}
		decrements = append(decrements, decrement{componentID: component.ID, name: component.Name, qty: input.Quantity})
	}

	// A zero stored cost means the aggregate was never derived or is stale;
	// fall back to the live component sum rather than recording free goods.
	unitCost := keyboard.Cost
	if unitCost.IsZero() {
		unitCost = keyboard.BaseColor.Cost.Add(keyboard.Keycap.Cost).Add(keyboard.Switch.Cost)
	}

	item, err := snapshotItem(enums.OrderItemTypePrebuilt, keyboard.Name, input.Quantity, keyboard.Price, unitCost)
	if err != nil {
		return nil, err
	}
	item.KeyboardID = &keyboard.ID
	item.BaseColorID = &keyboard.BaseColorID
	item.KeycapID = &keyboard.KeycapID
	item.SwitchID = &keyboard.SwitchID
	return &resolvedLine{item: *item, decrements: decrements}, nil
}

func (s *service) resolveFidgetLine(ctx context.Context, repo Repository, input LineItemInput) (*resolvedLine, error) {
	component, err := resolveComponent(ctx, repo, input.FidgetID, enums.ComponentKindFidget)
	if err != nil {
		return nil, err
	}
	if component.Quantity < input.Quantity {
		return nil, insufficientStock(component.Name, component.ID, input.Quantity)
	}

	item, err := snapshotItem(enums.OrderItemTypeFidget, component.Name, input.Quantity, component.Price, component.Cost)
	if err != nil {
		return nil, err
	}
	item.FidgetID = &component.ID
	return &resolvedLine{
		item:       *item,
		decrements: []decrement{{componentID: component.ID, name: component.Name, qty: input.Quantity}},
	}, nil
}

func (s *service) TransitionStatus(ctx context.Context, orderID uuid.UUID, newStatus enums.OrderStatus, itemSnapshot []models.OrderItem) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !newStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": string(newStatus)})
	}
	for _, item := range itemSnapshot {
		if item.OrderID != orderID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "snapshot item does not belong to order")
		}
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrderByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if !canTransition(order.Status, newStatus) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot transition order from %s to %s", order.Status, newStatus)).
				WithDetails(map[string]any{"from": order.Status.String(), "to": newStatus.String()})
		}

		now := time.Now().UTC()
		stamps := map[string]any{}
		switch newStatus {
		case enums.OrderStatusDelivered:
			stamps["delivered_at"] = now
		case enums.OrderStatusCancelled:
			stamps["canceled_at"] = now
			items := itemSnapshot
			if len(items) == 0 {
				items = order.Items
			}
			outcomes := s.restoreItems(ctx, tx, items)
			s.reportRestoration(ctx, order.ID, outcomes)
		}

		if err := repo.UpdateOrderStatus(ctx, order.ID, newStatus, stamps); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if newStatus == enums.OrderStatusCancelled {
		s.metrics.IncCanceled()
	}
	return s.Get(ctx, orderID)
}

// restoreItems puts consumed stock back line by line. Every component gets
// its own outcome so a stale reference on one line cannot block the rest.
func (s *service) restoreItems(ctx context.Context, tx *gorm.DB, items []models.OrderItem) []RestorationOutcome {
	var outcomes []RestorationOutcome
	for _, item := range items {
		for _, ref := range restorationRefs(item) {
			outcome := RestorationOutcome{ComponentID: ref, Quantity: item.Quantity}
			outcome.Err = inventory.Restore(ctx, tx, ref, item.Quantity)
			outcomes = append(outcomes, outcome)
		}
	}
	return outcomes
}

func (s *service) reportRestoration(ctx context.Context, orderID uuid.UUID, outcomes []RestorationOutcome) {
	var failures error
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failures = multierr.Append(failures,
				fmt.Errorf("component %s qty %d: %w", outcome.ComponentID, outcome.Quantity, outcome.Err))
			s.metrics.IncRestoreFailure()
		}
	}
	if failures == nil {
		return
	}
	ctx = s.logg.WithOrderID(ctx, orderID.String())
	ctx = s.logg.WithField(ctx, "failedRestorations", len(multierr.Errors(failures)))
	s.logg.Warn(ctx, "partial stock restoration on cancellation: "+failures.Error())
}

// restorationRefs lists the component ids a line consumed, using the weak
// references frozen on the item at creation time.
func restorationRefs(item models.OrderItem) []uuid.UUID {
	var refs []uuid.UUID
	switch item.Type {
	case enums.OrderItemTypeCustom, enums.OrderItemTypePrebuilt:
		for _, ref := range []*uuid.UUID{item.BaseColorID, item.KeycapID, item.SwitchID} {
			if ref != nil && *ref != uuid.Nil {
				refs = append(refs, *ref)
			}
		}
	case enums.OrderItemTypeFidget:
		if item.FidgetID != nil && *item.FidgetID != uuid.Nil {
			refs = append(refs, *item.FidgetID)
		}
	}
	return refs
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, input ListOrdersInput) ([]models.Order, *string, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": string(*input.Status)})
	}
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Pagination.Limit)

	ordersList, err := s.repo.List(ctx, input, limit+1, cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	var nextCursor *string
	if len(ordersList) > limit {
		ordersList = ordersList[:limit]
		last := ordersList[len(ordersList)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		nextCursor = &next
	}
	return ordersList, nextCursor, nil
}

// allowedTransitions is the order status machine. Terminal states map to
// nothing.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:  {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusShipped},
	enums.OrderStatusShipped:    {enums.OrderStatusDelivered},
}

func canTransition(from, to enums.OrderStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

func validateCreateInput(input CreateOrderInput, source enums.OrderSource) error {
	if strings.TrimSpace(input.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if strings.TrimSpace(input.CustomerEmail) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}
	if missing := input.ShippingAddress.Validate(); missing != "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address missing "+missing)
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one line item")
	}
	if input.ShippingCost.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping cost must be non-negative")
	}
	if !source.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order source").
			WithDetails(map[string]any{"source": string(source)})
	}
	return nil
}

// snapshotItem freezes the financials for one line. Malformed pricing on the
// source rows (negative price or cost) aborts the order instead of
// persisting a corrupted snapshot.
func snapshotItem(itemType enums.OrderItemType, name string, qty int, unitPrice, unitCost decimal.Decimal) (*models.OrderItem, error) {
	if unitPrice.IsNegative() || unitCost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "corrupt pricing data on referenced item").
			WithDetails(map[string]any{"item": name})
	}
	quantity := decimal.NewFromInt(int64(qty))
	totalPrice := unitPrice.Mul(quantity)
	totalCost := unitCost.Mul(quantity)
	return &models.OrderItem{
		Type:       itemType,
		Name:       name,
		Quantity:   qty,
		UnitPrice:  unitPrice,
		TotalPrice: totalPrice,
		UnitCost:   unitCost,
		TotalCost:  totalCost,
		Profit:     totalPrice.Sub(totalCost),
	}, nil
}

func resolveComponent(ctx context.Context, repo Repository, id *uuid.UUID, kind enums.ComponentKind) (*models.Component, error) {
	if id == nil || *id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s reference required", kind))
	}
	component, err := repo.FindComponent(ctx, *id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s component not found", kind)).
				WithDetails(map[string]any{"componentId": id.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load component")
	}
	if component.Kind != kind {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("component %s is a %s, expected %s", component.ID, component.Kind, kind))
	}
	return component, nil
}

func insufficientStock(name string, componentID uuid.UUID, requested int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock,
		fmt.Sprintf("insufficient stock for %s", name)).
		WithDetails(map[string]any{
			"componentId":   componentID.String(),
			"componentName": name,
			"requested":     requested,
		})
}

func annotateLine(err error, index int) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return fmt.Errorf("line %d: %w", index, err)
}
