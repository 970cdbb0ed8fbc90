package ports

import (
	"context"
	"errors"

	"github.com/Vovarama1992/mediavault/internal/models"
)

// ErrDuplicate is returned by repositories when a unique key already exists.
var ErrDuplicate = errors.New("duplicate record")

type AuthService interface {
	Signup(ctx context.Context, email, password string) (*models.AdminUser, string, error)
	Login(ctx context.Context, email, password string) (*models.AdminUser, string, error)
	// ValidateToken returns the admin id carried by a session token.
	ValidateToken(ctx context.Context, token string) (string, error)
}

type AdminRepository interface {
	InsertAdmin(ctx context.Context, admin *models.AdminUser) (*models.AdminUser, error)
	// GetAdminByEmail returns nil, nil when no admin has this email.
	GetAdminByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}
