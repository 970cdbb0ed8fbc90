package infra

import (
	"context"
	"errors"
	"fmt"

	"github.com/Vovarama1992/mediavault/internal/models"
	"github.com/Vovarama1992/mediavault/internal/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PostgresAdminRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresAdminRepo(pool *pgxpool.Pool) ports.AdminRepository {
	return &PostgresAdminRepo{pool: pool}
}

func (r *PostgresAdminRepo) InsertAdmin(ctx context.Context, admin *models.AdminUser) (*models.AdminUser, error) {
	query := `
		INSERT INTO admin_users (id, email, hashed_password)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query, admin.ID, admin.Email, admin.HashedPassword).Scan(&admin.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ports.ErrDuplicate
		}
		return nil, fmt.Errorf("insert admin: %w", err)
	}
	return admin, nil
}

func (r *PostgresAdminRepo) GetAdminByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	query := `
		SELECT id::text, email, hashed_password, created_at
		FROM admin_users
		WHERE email = $1
	`

	var a models.AdminUser
	err := r.pool.QueryRow(ctx, query, email).Scan(&a.ID, &a.Email, &a.HashedPassword, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get admin by email: %w", err)
	}
	return &a, nil
}
