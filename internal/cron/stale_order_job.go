package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/fidgetclicks/fidgetclicks-backend/pkg/db/models"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/enums"
	pkgerrors "github.com/fidgetclicks/fidgetclicks-backend/pkg/errors"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/logger"
)

const staleOrderExpirationDays = 10

type stalePendingReader interface {
	FindStalePending(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}

type orderCanceller interface {
	TransitionStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, snapshot []models.OrderItem) (*models.Order, error)
}

// StaleOrderJobParams configure the pending order expiration job.
type StaleOrderJobParams struct {
	Logger *logger.Logger
	Reader stalePendingReader
	Orders orderCanceller
	MaxAge time.Duration
}

// NewStaleOrderJob builds the cron job that cancels pending orders nobody
// ever confirmed. Cancellation goes through the order engine so component
// stock is restored with the status change.
func NewStaleOrderJob(params StaleOrderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reader == nil {
		return nil, fmt.Errorf("pending order reader required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order canceller required")
	}
	maxAge := params.MaxAge
	if maxAge <= 0 {
		maxAge = staleOrderExpirationDays * 24 * time.Hour
	}
	return &staleOrderJob{
		logg:   params.Logger,
		reader: params.Reader,
		orders: params.Orders,
		maxAge: maxAge,
		now:    time.Now,
	}, nil
}

type staleOrderJob struct {
	logg   *logger.Logger
	reader stalePendingReader
	orders orderCanceller
	maxAge time.Duration
	now    func() time.Time
}

func (j *staleOrderJob) Name() string { return "stale-order-expiration" }

func (j *staleOrderJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.maxAge)
	stale, err := j.reader.FindStalePending(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale pending orders: %w", err)
	}

	var errs []error
	cancelled := 0
	for _, order := range stale {
		if _, err := j.orders.TransitionStatus(ctx, order.ID, enums.OrderStatusCancelled, nil); err != nil {
			// Another actor may have moved the order on since the query.
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeStateConflict {
				continue
			}
			errs = append(errs, fmt.Errorf("cancel order %s: %w", order.ID, err))
			continue
		}
		cancelled++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"stale":     len(stale),
		"cancelled": cancelled,
	})
	j.logg.Info(logCtx, "stale order expiration loop complete")
	return multierr.Combine(errs...)
}
