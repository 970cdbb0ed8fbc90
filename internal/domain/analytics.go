package domain

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Vovarama1992/mediavault/internal/models"
	"github.com/Vovarama1992/mediavault/internal/ports"
)

const (
	dayLayout        = "2006-01-02"
	recentViewsLimit = 10
)

type Range string

const (
	Range7d  Range = "7d"
	Range30d Range = "30d"
	Range90d Range = "90d"
	RangeAll Range = "all"
)

func ParseRange(s string) (Range, error) {
	switch r := Range(s); r {
	case Range7d, Range30d, Range90d, RangeAll:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unsupported range %q", ErrValidation, s)
	}
}

// Days is the window length; 0 means unbounded.
func (r Range) Days() int {
	switch r {
	case Range7d:
		return 7
	case Range30d:
		return 30
	case Range90d:
		return 90
	default:
		return 0
	}
}

// Window returns the inclusive start of the range (nil for all) and its end.
// The end is now, not the end of the current day.
func (r Range) Window(now time.Time) (*time.Time, time.Time) {
	days := r.Days()
	if days == 0 {
		return nil, now
	}
	start := now.AddDate(0, 0, -days)
	return &start, now
}

type Report struct {
	Media      *models.MediaAsset
	Range      Range
	TotalViews int
	UniqueIPs  int
	// ViewsPerDay is sparse: days without views are absent.
	ViewsPerDay map[string]int
	// ViewsByCountry is always empty. No geolocation is performed.
	ViewsByCountry map[string]int
	Start          *time.Time
	End            time.Time
	RecentViews    []models.ViewEvent
}

type AnalyticsService struct {
	media   ports.MediaRepository
	views   ports.ViewQuerier
	metrics ports.MediaMetrics
	now     func() time.Time
}

func NewAnalyticsService(media ports.MediaRepository, views ports.ViewQuerier, metrics ports.MediaMetrics) *AnalyticsService {
	return &AnalyticsService{
		media:   media,
		views:   views,
		metrics: metricsOrNoop(metrics),
		now:     time.Now,
	}
}

// Report aggregates the view log of one asset over rangeParam. The range is
// rejected before anything is read.
func (s *AnalyticsService) Report(ctx context.Context, assetID, rangeParam string) (*Report, error) {
	rng, err := ParseRange(rangeParam)
	if err != nil {
		return nil, err
	}

	started := time.Now()

	media, err := s.media.GetMediaByID(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("get media: %w", err)
	}
	if media == nil {
		return nil, ErrNotFound
	}

	start, end := rng.Window(s.now().UTC())

	views, err := s.views.ListViews(ctx, media.ID, start)
	if err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}

	report := Aggregate(views, start, end)
	report.Media = media
	report.Range = rng

	s.metrics.ReportComputed(string(rng), time.Since(started))

	return report, nil
}

// Aggregate computes the report counters over views with timestamp >= start
// (all views when start is nil). Input order does not matter.
func Aggregate(views []models.ViewEvent, start *time.Time, end time.Time) *Report {
	report := &Report{
		ViewsPerDay:    map[string]int{},
		ViewsByCountry: map[string]int{},
		Start:          start,
		End:            end,
	}

	ips := make(map[string]struct{})
	kept := make([]models.ViewEvent, 0, len(views))

	for _, v := range views {
		if start != nil && v.Timestamp.Before(*start) {
			continue
		}
		kept = append(kept, v)
		ips[v.ViewedByIP] = struct{}{}
		report.ViewsPerDay[v.Timestamp.UTC().Format(dayLayout)]++
	}

	report.TotalViews = len(kept)
	report.UniqueIPs = len(ips)

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Timestamp.After(kept[j].Timestamp)
	})
	if len(kept) > recentViewsLimit {
		kept = kept[:recentViewsLimit]
	}
	report.RecentViews = kept

	return report
}

type DayCount struct {
	Date  string
	Views int
}

// Days returns ViewsPerDay ascending by date.
func (r *Report) Days() []DayCount {
	out := make([]DayCount, 0, len(r.ViewsPerDay))
	for day, n := range r.ViewsPerDay {
		out = append(out, DayCount{Date: day, Views: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
