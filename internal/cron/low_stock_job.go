package cron

import (
	"context"
	"fmt"

	"github.com/fidgetclicks/fidgetclicks-backend/internal/inventory"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/logger"
)

// NewLowStockJob builds the cron job that reports components running low so
// restocking happens before checkouts start failing.
func NewLowStockJob(logg *logger.Logger, svc inventory.Service) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if svc == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	return &lowStockJob{logg: logg, inventory: svc}, nil
}

type lowStockJob struct {
	logg      *logger.Logger
	inventory inventory.Service
}

func (j *lowStockJob) Name() string { return "low-stock-report" }

func (j *lowStockJob) Run(ctx context.Context) error {
	snapshot, err := j.inventory.Snapshot(ctx, nil)
	if err != nil {
		return fmt.Errorf("take inventory snapshot: %w", err)
	}

	for _, item := range snapshot.Items {
		if !item.LowStock && !item.OutOfStock {
			continue
		}
		itemCtx := j.logg.WithFields(ctx, map[string]any{
			"component_id": item.Component.ID,
			"kind":         item.Component.Kind,
			"name":         item.Component.Name,
			"quantity":     item.Component.Quantity,
			"out_of_stock": item.OutOfStock,
		})
		j.logg.Warn(itemCtx, "component stock running low")
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"components":   len(snapshot.Items),
		"low_stock":    snapshot.LowStockCount,
		"out_of_stock": snapshot.OutOfStockCount,
	})
	j.logg.Info(logCtx, "low stock report complete")
	return nil
}
