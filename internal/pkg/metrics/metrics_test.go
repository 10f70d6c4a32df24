package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordReport(t *testing.T) {
	accepted := testutil.ToFloat64(ReportsTotal.WithLabelValues("accepted"))
	blocked := testutil.ToFloat64(ReportsTotal.WithLabelValues("blocked"))

	RecordReport(true)
	RecordReport(false)
	RecordReport(false)

	if got := testutil.ToFloat64(ReportsTotal.WithLabelValues("accepted")) - accepted; got != 1 {
		t.Fatalf("expected 1 accepted, got %v", got)
	}
	if got := testutil.ToFloat64(ReportsTotal.WithLabelValues("blocked")) - blocked; got != 2 {
		t.Fatalf("expected 2 blocked, got %v", got)
	}
}

func TestRecordExport(t *testing.T) {
	before := testutil.ToFloat64(ExportsTotal.WithLabelValues("failure"))
	RecordExport(false)
	if got := testutil.ToFloat64(ExportsTotal.WithLabelValues("failure")) - before; got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
}
