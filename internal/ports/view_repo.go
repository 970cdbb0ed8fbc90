package ports

import (
	"context"
	"time"

	"github.com/Vovarama1992/mediavault/internal/models"
)

type ViewAppender interface {
	AppendView(ctx context.Context, view *models.ViewEvent) (*models.ViewEvent, error)
}

type ViewQuerier interface {
	// ListViews returns the views of one asset newest first. A nil since
	// means the whole log.
	ListViews(ctx context.Context, mediaID string, since *time.Time) ([]models.ViewEvent, error)
}

type ViewRepository interface {
	ViewAppender
	ViewQuerier
}
