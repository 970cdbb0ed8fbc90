package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Vovarama1992/mediavault/internal/models"
	"github.com/Vovarama1992/mediavault/internal/ports"
	"github.com/google/uuid"
)

const UnknownIP = "unknown"

type ViewRecorder struct {
	media   ports.MediaRepository
	views   ports.ViewAppender
	metrics ports.MediaMetrics
	now     func() time.Time
	events  chan models.ViewEvent
}

func NewViewRecorder(media ports.MediaRepository, views ports.ViewAppender, metrics ports.MediaMetrics) *ViewRecorder {
	return &ViewRecorder{
		media:   media,
		views:   views,
		metrics: metricsOrNoop(metrics),
		now:     time.Now,
		events:  make(chan models.ViewEvent, 100),
	}
}

// Events carries every appended view for the live feed. Sends never block:
// when the buffer is full the event is only in the log.
func (r *ViewRecorder) Events() <-chan models.ViewEvent { return r.events }

// Record appends a view for assetID after checking the asset exists.
func (r *ViewRecorder) Record(ctx context.Context, assetID, sourceIP string) (*models.ViewEvent, error) {
	media, err := r.media.GetMediaByID(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("get media: %w", err)
	}
	if media == nil {
		return nil, ErrNotFound
	}
	return r.RecordAsset(ctx, media, sourceIP)
}

// RecordAsset appends a view for an asset the caller already resolved.
// Storage failures are returned as-is and never retried.
func (r *ViewRecorder) RecordAsset(ctx context.Context, media *models.MediaAsset, sourceIP string) (*models.ViewEvent, error) {
	if media == nil {
		return nil, ErrNotFound
	}

	ip := strings.TrimSpace(sourceIP)
	if ip == "" {
		ip = UnknownIP
	}

	view, err := r.views.AppendView(ctx, &models.ViewEvent{
		ID:         uuid.NewString(),
		MediaID:    media.ID,
		ViewedByIP: ip,
		Timestamp:  r.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("append view: %w", err)
	}

	r.metrics.ViewRecorded()

	select {
	case r.events <- *view:
	default:
	}

	return view, nil
}
