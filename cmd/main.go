package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/mediavault/internal/config"
	"github.com/Vovarama1992/mediavault/internal/delivery"
	ws "github.com/Vovarama1992/mediavault/internal/delivery/ws"
	"github.com/Vovarama1992/mediavault/internal/domain"
	"github.com/Vovarama1992/mediavault/internal/infra"
	"github.com/Vovarama1992/mediavault/internal/ports"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to yaml config")
	flag.Parse()

	// CONFIG
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("load config: " + err.Error())
	}

	// LOGGER
	zl, err := infra.NewLogger(cfg.Log.Level)
	if err != nil {
		panic(err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, zl)
	stop()

	if err != nil {
		zl.Log(logger.LogEntry{
			Level:   "error",
			Message: "server crashed",
			Error:   err,
		})
		os.Exit(1)
	}

	zl.Log(logger.LogEntry{Level: "info", Message: "server stopped"})
}

// run serves until ctx is done. It owns every resource of the process and
// releases them before returning.
func run(ctx context.Context, cfg config.Config, zl *logger.ZapLogger) error {
	// REPOSITORIES
	var (
		mediaRepo ports.MediaRepository
		viewRepo  ports.ViewRepository
		adminRepo ports.AdminRepository
	)
	if cfg.Postgres.DSN != "" {
		pool, err := infra.NewPgxPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()

		mediaRepo = infra.NewPostgresMediaRepo(pool)
		viewRepo = infra.NewPostgresViewRepo(pool)
		adminRepo = infra.NewPostgresAdminRepo(pool)
	} else {
		zl.Log(logger.LogEntry{
			Level:   "warn",
			Message: "DATABASE_URL is not set; using in-memory store, data is lost on restart",
		})
		mem := infra.NewMemoryStore()
		mediaRepo, viewRepo, adminRepo = mem, mem, mem
	}

	storage, err := infra.NewFileStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	// METRICS
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := infra.NewMetrics()
	if err := metrics.Register(reg); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	// SERVICES
	authService := domain.NewAuthService(adminRepo, cfg.Auth)
	signer := domain.NewURLSigner(cfg.Stream, domain.NewTokenCodec())
	recorder := domain.NewViewRecorder(mediaRepo, viewRepo, metrics)
	analytics := domain.NewAnalyticsService(mediaRepo, viewRepo, metrics)
	mediaService := domain.NewMediaService(
		mediaRepo,
		storage,
		signer,
		domain.NewURLValidator(),
		recorder,
		metrics,
	)

	// WS HUB
	hub := ws.NewHub(zl)

	// HANDLERS
	authHandler := delivery.NewAuthHandler(authService, zl)
	mediaHandler := delivery.NewMediaHandler(mediaService, recorder, analytics, cfg.Storage.MaxUploadBytes, zl)

	// ROUTER
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(delivery.RequestLogger(zl))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	delivery.RegisterRoutes(r, delivery.Handlers{
		Auth:      authHandler,
		Media:     mediaHandler,
		Views:     ws.ViewFeedHandler(hub, authService, mediaRepo, zl),
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		AuthSvc:   authService,
		RateLimit: cfg.RateLimit,
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	// BROADCAST LISTENER
	g.Go(func() error {
		ws.Broadcast(gctx, hub, recorder.Events(), zl)
		return nil
	})

	g.Go(func() error {
		zl.Log(logger.LogEntry{
			Level:   "info",
			Message: "server started",
			Fields:  map[string]any{"addr": cfg.HTTP.Addr, "env": cfg.Env, "storage": cfg.Storage.Driver},
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
