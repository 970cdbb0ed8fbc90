package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Vovarama1992/mediavault/internal/infra"
	"github.com/Vovarama1992/mediavault/internal/models"
)

type countingQuerier struct {
	inner *infra.MemoryStore
	calls int
}

func (q *countingQuerier) ListViews(ctx context.Context, mediaID string, since *time.Time) ([]models.ViewEvent, error) {
	q.calls++
	return q.inner.ListViews(ctx, mediaID, since)
}

func newTestAnalytics(store *infra.MemoryStore) (*AnalyticsService, *countingQuerier, *metricsStub) {
	q := &countingQuerier{inner: store}
	m := newMetricsStub()
	svc := NewAnalyticsService(store, q, m)
	svc.now = fixedClock(fixedNow)
	return svc, q, m
}

func TestParseRange(t *testing.T) {
	for _, ok := range []string{"7d", "30d", "90d", "all"} {
		if _, err := ParseRange(ok); err != nil {
			t.Fatalf("ParseRange(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"", "15d", "ALL", "7"} {
		if _, err := ParseRange(bad); !errors.Is(err, ErrValidation) {
			t.Fatalf("ParseRange(%q): expected ErrValidation, got %v", bad, err)
		}
	}
}

func TestReportRejectsRangeBeforeReading(t *testing.T) {
	store := infra.NewMemoryStore()
	media := seedMedia(t, store, "clip")
	svc, q, _ := newTestAnalytics(store)

	_, err := svc.Report(context.Background(), media.ID, "15d")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if q.calls != 0 {
		t.Fatalf("view log read %d times for invalid range", q.calls)
	}
}

func TestReportUnknownAsset(t *testing.T) {
	svc, q, _ := newTestAnalytics(infra.NewMemoryStore())

	_, err := svc.Report(context.Background(), "missing", "all")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if q.calls != 0 {
		t.Fatalf("view log read for unknown asset")
	}
}

func TestReportSevenDayWindow(t *testing.T) {
	store := infra.NewMemoryStore()
	media := seedMedia(t, store, "clip")
	other := seedMedia(t, store, "other")

	seedView(t, store, media.ID, "1.1.1.1", fixedNow.Add(-1*time.Hour))
	seedView(t, store, media.ID, "1.1.1.1", fixedNow.Add(-25*time.Hour))
	seedView(t, store, media.ID, "2.2.2.2", fixedNow.Add(-26*time.Hour))
	seedView(t, store, media.ID, "3.3.3.3", fixedNow.AddDate(0, 0, -8))
	seedView(t, store, other.ID, "9.9.9.9", fixedNow.Add(-time.Hour))

	svc, _, metrics := newTestAnalytics(store)

	report, err := svc.Report(context.Background(), media.ID, "7d")
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if report.TotalViews != 3 {
		t.Fatalf("unexpected total: %d", report.TotalViews)
	}
	if report.UniqueIPs != 2 {
		t.Fatalf("unexpected unique ips: %d", report.UniqueIPs)
	}
	want := map[string]int{"2026-03-10": 1, "2026-03-09": 2}
	if len(report.ViewsPerDay) != len(want) {
		t.Fatalf("unexpected days: %v", report.ViewsPerDay)
	}
	for day, n := range want {
		if report.ViewsPerDay[day] != n {
			t.Fatalf("day %s: got %d want %d", day, report.ViewsPerDay[day], n)
		}
	}
	if report.ViewsByCountry == nil || len(report.ViewsByCountry) != 0 {
		t.Fatalf("views by country must be an empty map, got %v", report.ViewsByCountry)
	}
	if report.Start == nil || !report.Start.Equal(fixedNow.AddDate(0, 0, -7)) {
		t.Fatalf("unexpected start: %v", report.Start)
	}
	if !report.End.Equal(fixedNow) {
		t.Fatalf("unexpected end: %v", report.End)
	}
	if report.Media.ID != media.ID || report.Range != Range7d {
		t.Fatalf("unexpected header: %+v %s", report.Media, report.Range)
	}
	if len(metrics.reports) != 1 || metrics.reports[0] != "7d" {
		t.Fatalf("unexpected report metrics: %v", metrics.reports)
	}
}

func TestReportAllWithNoViews(t *testing.T) {
	store := infra.NewMemoryStore()
	media := seedMedia(t, store, "clip")
	svc, _, _ := newTestAnalytics(store)

	report, err := svc.Report(context.Background(), media.ID, "all")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.TotalViews != 0 || report.UniqueIPs != 0 || len(report.ViewsPerDay) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
	if report.Start != nil {
		t.Fatalf("all range must have nil start, got %v", report.Start)
	}
	if len(report.RecentViews) != 0 {
		t.Fatalf("unexpected recent views: %v", report.RecentViews)
	}
}

func TestAggregateRecentViewsNewestFirst(t *testing.T) {
	var views []models.ViewEvent
	for i := 0; i < 15; i++ {
		views = append(views, models.ViewEvent{
			ID:         string(rune('a' + i)),
			ViewedByIP: "1.1.1.1",
			Timestamp:  fixedNow.Add(-time.Duration(i) * time.Minute),
		})
	}
	// shuffle a little; input order must not matter
	views[0], views[14] = views[14], views[0]

	report := Aggregate(views, nil, fixedNow)

	if report.TotalViews != 15 || report.UniqueIPs != 1 {
		t.Fatalf("unexpected counters: %d %d", report.TotalViews, report.UniqueIPs)
	}
	if len(report.RecentViews) != recentViewsLimit {
		t.Fatalf("unexpected recent count: %d", len(report.RecentViews))
	}
	for i := 1; i < len(report.RecentViews); i++ {
		if report.RecentViews[i].Timestamp.After(report.RecentViews[i-1].Timestamp) {
			t.Fatalf("recent views not newest first at %d", i)
		}
	}
	if !report.RecentViews[0].Timestamp.Equal(fixedNow) {
		t.Fatalf("newest view missing: %v", report.RecentViews[0].Timestamp)
	}
}

func TestAggregateStartIsInclusive(t *testing.T) {
	start := fixedNow.AddDate(0, 0, -7)
	views := []models.ViewEvent{
		{ViewedByIP: "a", Timestamp: start},
		{ViewedByIP: "b", Timestamp: start.Add(-time.Millisecond)},
	}

	report := Aggregate(views, &start, fixedNow)
	if report.TotalViews != 1 || report.UniqueIPs != 1 {
		t.Fatalf("boundary view mishandled: %+v", report)
	}
}

func TestReportDaysAscending(t *testing.T) {
	r := &Report{ViewsPerDay: map[string]int{"2026-03-09": 2, "2026-01-01": 1, "2026-03-10": 4}}

	days := r.Days()
	want := []string{"2026-01-01", "2026-03-09", "2026-03-10"}
	if len(days) != len(want) {
		t.Fatalf("unexpected days: %+v", days)
	}
	for i, d := range days {
		if d.Date != want[i] {
			t.Fatalf("day %d: got %s want %s", i, d.Date, want[i])
		}
	}
}

func TestReportAllTwoDaysTwoIPs(t *testing.T) {
	store := infra.NewMemoryStore()
	media := seedMedia(t, store, "clip")

	day := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	seedView(t, store, media.ID, "10.0.0.1", day)
	seedView(t, store, media.ID, "10.0.0.1", day.Add(time.Hour))
	seedView(t, store, media.ID, "10.0.0.2", day.Add(2*time.Hour))
	seedView(t, store, media.ID, "10.0.0.1", day.AddDate(0, 0, 1))
	seedView(t, store, media.ID, "10.0.0.2", day.AddDate(0, 0, 1).Add(time.Hour))

	svc, _, _ := newTestAnalytics(store)

	report, err := svc.Report(context.Background(), media.ID, "all")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.TotalViews != 5 || report.UniqueIPs != 2 {
		t.Fatalf("unexpected counters: total=%d unique=%d", report.TotalViews, report.UniqueIPs)
	}
	if len(report.ViewsPerDay) != 2 || report.ViewsPerDay["2026-03-01"] != 3 || report.ViewsPerDay["2026-03-02"] != 2 {
		t.Fatalf("unexpected days: %v", report.ViewsPerDay)
	}
}

func TestReportRangesAreNested(t *testing.T) {
	store := infra.NewMemoryStore()
	media := seedMedia(t, store, "clip")

	seedView(t, store, media.ID, "a", fixedNow.AddDate(0, 0, -1))
	seedView(t, store, media.ID, "b", fixedNow.AddDate(0, 0, -10))
	seedView(t, store, media.ID, "c", fixedNow.AddDate(0, 0, -40))
	seedView(t, store, media.ID, "d", fixedNow.AddDate(0, 0, -100))

	svc, _, _ := newTestAnalytics(store)

	want := map[string]int{"7d": 1, "30d": 2, "90d": 3, "all": 4}
	prev := -1
	for _, rng := range []string{"7d", "30d", "90d", "all"} {
		report, err := svc.Report(context.Background(), media.ID, rng)
		if err != nil {
			t.Fatalf("report %s: %v", rng, err)
		}
		if report.TotalViews != want[rng] {
			t.Fatalf("%s: got %d views, want %d", rng, report.TotalViews, want[rng])
		}
		if report.TotalViews < prev {
			t.Fatalf("%s total %d is below the narrower range (%d)", rng, report.TotalViews, prev)
		}
		prev = report.TotalViews
	}
}
