package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestOrderEngineMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewOrderEngineMetrics(reg)
	source := "storefront"
	metrics.ObserveCreateDuration(source, 120*time.Millisecond)
	metrics.IncCreated(source)
	metrics.IncInsufficientStock(source)
	metrics.IncCanceled()
	metrics.IncRestoreFailure()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "orders_created", "source", source); err != nil {
		t.Fatalf("fetch created: %v", err)
	} else if got != 1 {
		t.Fatalf("expected created=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "order_insufficient_stock", "source", source); err != nil {
		t.Fatalf("fetch insufficient: %v", err)
	} else if got != 1 {
		t.Fatalf("expected insufficient=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "order_create_duration_seconds", "source", source); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestOrderEngineMetricsNilRegistererIsNoop(t *testing.T) {
	metrics := NewOrderEngineMetrics(nil)
	metrics.IncCreated("storefront")
	metrics.IncCanceled()
	metrics.IncRestoreFailure()
}
