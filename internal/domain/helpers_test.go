package domain

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Vovarama1992/mediavault/internal/infra"
	"github.com/Vovarama1992/mediavault/internal/models"
)

var fixedNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type metricsStub struct {
	mu       sync.Mutex
	issued   int
	rejected map[string]int
	views    int
	reports  []string
}

func newMetricsStub() *metricsStub {
	return &metricsStub{rejected: map[string]int{}}
}

func (m *metricsStub) StreamURLIssued() {
	m.mu.Lock()
	m.issued++
	m.mu.Unlock()
}

func (m *metricsStub) StreamRejected(reason string) {
	m.mu.Lock()
	m.rejected[reason]++
	m.mu.Unlock()
}

func (m *metricsStub) ViewRecorded() {
	m.mu.Lock()
	m.views++
	m.mu.Unlock()
}

func (m *metricsStub) ReportComputed(rangeName string, _ time.Duration) {
	m.mu.Lock()
	m.reports = append(m.reports, rangeName)
	m.mu.Unlock()
}

func seedMedia(t *testing.T, store *infra.MemoryStore, title string) *models.MediaAsset {
	t.Helper()
	media, err := store.InsertMedia(context.Background(), &models.MediaAsset{
		Title:       title,
		Type:        models.MediaTypeVideo,
		FileLocator: "/uploads/media/" + title + ".mp4",
		UploadedBy:  "admin-1",
	})
	if err != nil {
		t.Fatalf("seed media: %v", err)
	}
	return media
}

func seedView(t *testing.T, store *infra.MemoryStore, mediaID, ip string, at time.Time) {
	t.Helper()
	if _, err := store.AppendView(context.Background(), &models.ViewEvent{
		MediaID:    mediaID,
		ViewedByIP: ip,
		Timestamp:  at,
	}); err != nil {
		t.Fatalf("seed view: %v", err)
	}
}
