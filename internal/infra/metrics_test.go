package infra

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.StreamURLIssued()
	m.StreamURLIssued()
	m.StreamRejected("expired")
	m.StreamRejected("missing")
	m.StreamRejected("expired")
	m.ViewRecorded()
	m.ReportComputed("7d", 3*time.Millisecond)

	if got := testutil.ToFloat64(m.urlsIssued); got != 2 {
		t.Fatalf("urls issued: got %v", got)
	}
	if got := testutil.ToFloat64(m.streamRejected.WithLabelValues("expired")); got != 2 {
		t.Fatalf("expired rejections: got %v", got)
	}
	if got := testutil.ToFloat64(m.streamRejected.WithLabelValues("missing")); got != 1 {
		t.Fatalf("missing rejections: got %v", got)
	}
	if got := testutil.ToFloat64(m.viewsRecorded); got != 1 {
		t.Fatalf("views recorded: got %v", got)
	}
	if got := testutil.CollectAndCount(m.reportDuration); got != 1 {
		t.Fatalf("report histogram series: got %d", got)
	}
}

func TestMetricsRegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()

	if err := m.Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Register(reg); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}
