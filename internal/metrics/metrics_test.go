package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	// Reset collectors for testing purposes.
	scrapePagesTotal = nil
	scrapeItemsTotal = nil
	httpRequestsTotal = nil
	httpRequestDurationSeconds = nil

	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if scrapePagesTotal == nil || scrapeItemsTotal == nil ||
		httpRequestsTotal == nil || httpRequestDurationSeconds == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}

	ObservePage("example", "ok")
	if val := testutil.ToFloat64(scrapePagesTotal.WithLabelValues("example", "ok")); val != 1 {
		t.Errorf("Expected scrapePagesTotal to be 1, got %f", val)
	}

	ObserveItem("example", "ADDED")
	ObserveItem("example", "ADDED")
	if val := testutil.ToFloat64(scrapeItemsTotal.WithLabelValues("example", "ADDED")); val != 2 {
		t.Errorf("Expected scrapeItemsTotal to be 2, got %f", val)
	}

	ObserveRun("example", "completed", 3*time.Second)
	if val := testutil.ToFloat64(scrapeRunsTotal.WithLabelValues("example", "completed")); val != 1 {
		t.Errorf("Expected scrapeRunsTotal to be 1, got %f", val)
	}
	if val := testutil.CollectAndCount(scrapeRunDurationSeconds); val <= 0 {
		t.Errorf("Expected scrapeRunDurationSeconds to be observed, got %d", val)
	}
}
