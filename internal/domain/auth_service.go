package domain

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Vovarama1992/mediavault/internal/config"
	"github.com/Vovarama1992/mediavault/internal/models"
	"github.com/Vovarama1992/mediavault/internal/ports"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type authService struct {
	admins         ports.AdminRepository
	secret         []byte
	ttl            time.Duration
	cost           int
	minPasswordLen int
	now            func() time.Time
}

func NewAuthService(admins ports.AdminRepository, cfg config.AuthConfig) ports.AuthService {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	ttl := cfg.JWTTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &authService{
		admins:         admins,
		secret:         []byte(cfg.JWTSecret),
		ttl:            ttl,
		cost:           cost,
		minPasswordLen: cfg.MinPasswordLength,
		now:            time.Now,
	}
}

func (s *authService) Signup(ctx context.Context, email, password string) (*models.AdminUser, string, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(password) < s.minPasswordLen {
		return nil, "", fmt.Errorf("%w: password must be at least %d characters", ErrValidation, s.minPasswordLen)
	}

	existing, err := s.admins.GetAdminByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("get admin: %w", err)
	}
	if existing != nil {
		return nil, "", ErrConflict
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	admin, err := s.admins.InsertAdmin(ctx, &models.AdminUser{
		ID:             uuid.NewString(),
		Email:          email,
		HashedPassword: string(hashed),
	})
	if err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, "", ErrConflict
		}
		return nil, "", fmt.Errorf("insert admin: %w", err)
	}

	token, err := s.sign(admin.ID)
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.AdminUser, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	admin, err := s.admins.GetAdminByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("get admin: %w", err)
	}
	if admin == nil {
		return nil, "", ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.HashedPassword), []byte(password)); err != nil {
		return nil, "", ErrUnauthorized
	}

	token, err := s.sign(admin.ID)
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

func (s *authService) ValidateToken(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", ErrUnauthorized
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || parsed == nil || !parsed.Valid {
		return "", ErrUnauthorized
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrUnauthorized
	}
	return claims.Subject, nil
}

func (s *authService) sign(adminID string) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("jwt secret is empty")
	}
	now := s.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   adminID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
