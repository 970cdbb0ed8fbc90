package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/Vovarama1992/mediavault/internal/models"
	"github.com/Vovarama1992/mediavault/internal/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresViewRepo is the durable view log. Every append is one INSERT; no
// counters are kept.
type PostgresViewRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresViewRepo(pool *pgxpool.Pool) ports.ViewRepository {
	return &PostgresViewRepo{pool: pool}
}

func (r *PostgresViewRepo) AppendView(ctx context.Context, view *models.ViewEvent) (*models.ViewEvent, error) {
	if view.ID == "" {
		view.ID = uuid.NewString()
	}
	if view.Timestamp.IsZero() {
		view.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO media_view_logs (id, media_id, viewed_by_ip, viewed_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.pool.Exec(ctx, query, view.ID, view.MediaID, view.ViewedByIP, view.Timestamp); err != nil {
		return nil, fmt.Errorf("insert view: %w", err)
	}
	return view, nil
}

func (r *PostgresViewRepo) ListViews(ctx context.Context, mediaID string, since *time.Time) ([]models.ViewEvent, error) {
	query := `
		SELECT id::text AS id, media_id::text AS media_id, viewed_by_ip, viewed_at
		FROM media_view_logs
		WHERE media_id = $1
		  AND ($2::timestamptz IS NULL OR viewed_at >= $2)
		ORDER BY viewed_at DESC
	`
	rows, err := r.pool.Query(ctx, query, mediaID, since)
	if err != nil {
		return nil, fmt.Errorf("query views: %w", err)
	}

	views, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.ViewEvent])
	if err != nil {
		return nil, fmt.Errorf("scan views: %w", err)
	}
	return views, nil
}
