package ports

import (
	"context"

	"github.com/Vovarama1992/mediavault/internal/models"
)

type MediaRepository interface {
	InsertMedia(ctx context.Context, media *models.MediaAsset) (*models.MediaAsset, error)
	// GetMediaByID returns nil, nil when the asset does not exist.
	GetMediaByID(ctx context.Context, id string) (*models.MediaAsset, error)
}
