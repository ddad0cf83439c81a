package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fidgetclicks/fidgetclicks-backend/pkg/db/models"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/enums"
	pkgerrors "github.com/fidgetclicks/fidgetclicks-backend/pkg/errors"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/logger"
	"github.com/rs/zerolog"
)

type stubPendingReader struct {
	orders []models.Order
	err    error
	cutoff time.Time
}

func (s *stubPendingReader) FindStalePending(_ context.Context, cutoff time.Time) ([]models.Order, error) {
	s.cutoff = cutoff
	return s.orders, s.err
}

type stubCanceller struct {
	cancelled []uuid.UUID
	errs      map[uuid.UUID]error
}

func (s *stubCanceller) TransitionStatus(_ context.Context, orderID uuid.UUID, status enums.OrderStatus, _ []models.OrderItem) (*models.Order, error) {
	if err, ok := s.errs[orderID]; ok {
		return nil, err
	}
	s.cancelled = append(s.cancelled, orderID)
	return &models.Order{ID: orderID, Status: status}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Level: zerolog.Disabled})
}

func TestStaleOrderJobCancelsPendingOrders(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	reader := &stubPendingReader{orders: []models.Order{{ID: first}, {ID: second}}}
	canceller := &stubCanceller{}

	job, err := NewStaleOrderJob(StaleOrderJobParams{
		Logger: testLogger(),
		Reader: reader,
		Orders: canceller,
		MaxAge: 48 * time.Hour,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}
	if len(canceller.cancelled) != 2 {
		t.Fatalf("expected 2 cancellations, got %d", len(canceller.cancelled))
	}
	if time.Since(reader.cutoff) < 48*time.Hour {
		t.Fatalf("cutoff not pushed back by max age: %s", reader.cutoff)
	}
}

func TestStaleOrderJobSkipsAlreadyTransitioned(t *testing.T) {
	moved := uuid.New()
	fresh := uuid.New()
	reader := &stubPendingReader{orders: []models.Order{{ID: moved}, {ID: fresh}}}
	canceller := &stubCanceller{errs: map[uuid.UUID]error{
		moved: pkgerrors.New(pkgerrors.CodeStateConflict, "order already delivered"),
	}}

	job, err := NewStaleOrderJob(StaleOrderJobParams{
		Logger: testLogger(),
		Reader: reader,
		Orders: canceller,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("state conflicts should not fail the job: %v", err)
	}
	if len(canceller.cancelled) != 1 || canceller.cancelled[0] != fresh {
		t.Fatalf("expected only the fresh order cancelled, got %v", canceller.cancelled)
	}
}

func TestStaleOrderJobSurfacesHardFailures(t *testing.T) {
	broken := uuid.New()
	reader := &stubPendingReader{orders: []models.Order{{ID: broken}}}
	canceller := &stubCanceller{errs: map[uuid.UUID]error{
		broken: errors.New("db gone"),
	}}

	job, err := NewStaleOrderJob(StaleOrderJobParams{
		Logger: testLogger(),
		Reader: reader,
		Orders: canceller,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected cancellation failure to surface")
	}
}
