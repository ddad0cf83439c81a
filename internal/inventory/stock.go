// Package inventory holds the shared stock mutation primitives. Every write
// path that touches component quantities (order creation, cancellation
// restock, manual adjustments) funnels through these helpers so the
// non-negative stock guarantee lives in exactly one place.
package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fidgetclicks/fidgetclicks-backend/pkg/db/models"
	pkgerrors "github.com/fidgetclicks/fidgetclicks-backend/pkg/errors"
)

// LowStockThreshold marks components the dashboard should flag for reorder.
const LowStockThreshold = 10

// Decrement atomically subtracts qty from a component's on-hand quantity.
// The guard clause in the WHERE prevents the row from ever going negative:
// zero rows affected means another transaction drained the stock first, and
// the caller must roll back.
func Decrement(ctx context.Context, tx *gorm.DB, componentID uuid.UUID, qty int) error {
	if tx == nil {
		return fmt.Errorf("tx is required")
	}
	if componentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "componentID is required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "qty must be positive")
	}

	result := tx.WithContext(ctx).
		Model(&models.Component{}).
		Where("id = ? AND quantity >= ?", componentID, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "decrementing component stock")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{
				"componentId": componentID.String(),
				"requested":   qty,
			})
	}
	return nil
}

// Restore adds qty back to a component's on-hand quantity. Used when a line
// is released after cancellation; the component must still exist.
func Restore(ctx context.Context, tx *gorm.DB, componentID uuid.UUID, qty int) error {
	if tx == nil {
		return fmt.Errorf("tx is required")
	}
	if componentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "componentID is required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "qty must be positive")
	}

	result := tx.WithContext(ctx).
		Model(&models.Component{}).
		Where("id = ?", componentID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", qty))
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "restoring component stock")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "component not found").
			WithDetails(map[string]any{"componentId": componentID.String()})
	}
	return nil
}
