package infra

import (
	"context"
	"errors"
	"fmt"

	"github.com/Vovarama1992/mediavault/internal/models"
	"github.com/Vovarama1992/mediavault/internal/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresMediaRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresMediaRepo(pool *pgxpool.Pool) ports.MediaRepository {
	return &PostgresMediaRepo{pool: pool}
}

func (r *PostgresMediaRepo) InsertMedia(ctx context.Context, media *models.MediaAsset) (*models.MediaAsset, error) {
	if media.ID == "" {
		media.ID = uuid.NewString()
	}
	query := `
		INSERT INTO media_assets (id, title, media_type, file_url, uploaded_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	row := r.pool.QueryRow(ctx, query,
		media.ID, media.Title, string(media.Type), media.FileLocator, media.UploadedBy,
	)
	if err := row.Scan(&media.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert media: %w", err)
	}
	return media, nil
}

func (r *PostgresMediaRepo) GetMediaByID(ctx context.Context, id string) (*models.MediaAsset, error) {
	// ids are uuids; anything else cannot exist
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	query := `
		SELECT id::text, title, media_type, file_url, uploaded_by::text, created_at
		FROM media_assets
		WHERE id = $1
	`

	var m models.MediaAsset
	var mediaType string

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.Title,
		&mediaType,
		&m.FileLocator,
		&m.UploadedBy,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get media by id: %w", err)
	}

	m.Type = models.MediaType(mediaType)
	return &m, nil
}
