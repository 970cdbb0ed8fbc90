package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/mediavault/internal/config"
	"github.com/Vovarama1992/mediavault/internal/domain"
	"github.com/Vovarama1992/mediavault/internal/infra"
)

// seedadmin creates the first admin account in Postgres.
func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to yaml config")
	email := flag.String("email", envOr("ADMIN_EMAIL", "admin@medacess.com"), "admin email")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail("load config: %v", err)
	}
	if cfg.Postgres.DSN == "" {
		fail("DATABASE_URL is not set")
	}
	if *password == "" {
		fail("password is required (-password or ADMIN_PASSWORD)")
	}

	zl, err := infra.NewLogger(cfg.Log.Level)
	if err != nil {
		fail("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := infra.NewPgxPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		fail("postgres: %v", err)
	}
	defer pool.Close()

	auth := domain.NewAuthService(infra.NewPostgresAdminRepo(pool), cfg.Auth)

	admin, _, err := auth.Signup(ctx, *email, *password)
	switch {
	case errors.Is(err, domain.ErrConflict):
		fmt.Println("admin already exists")
		return
	case err != nil:
		fail("create admin: %v", err)
	}

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "admin created",
		Fields:  map[string]any{"adminID": admin.ID, "email": admin.Email},
	})
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
