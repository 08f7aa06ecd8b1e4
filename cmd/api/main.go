// Package main is the entry point for the room reservation API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/roombook/internal/config"
	"github.com/pkordes/roombook/internal/handler"
	"github.com/pkordes/roombook/internal/middleware"
	"github.com/pkordes/roombook/internal/queue"
	"github.com/pkordes/roombook/internal/repo"
	"github.com/pkordes/roombook/internal/service"
	"github.com/pkordes/roombook/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Store ------------------------------------------------------------
	var (
		rooms        repo.RoomRepo
		reservations repo.ReservationRepo
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		store := repo.NewMemStore(nil)
		rooms, reservations = store.Rooms(), store.Reservations()
		slog.Warn("using in-memory store; data is lost on restart")
	default:
		if cfg.AutoMigrate {
			if err := migrate(ctx, cfg.DatabaseURL); err != nil {
				slog.Error("failed to apply migrations", "error", err)
				os.Exit(1)
			}
		}

		// pgxpool.New does not open connections; the first query does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		// Verify the DB is reachable before accepting traffic.
		if err := pool.Ping(ctx); err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		slog.Info("database connection established")
		rooms, reservations = repo.NewRoomRepo(pool), repo.NewReservationRepo(pool)
	}

	// --- Events (optional) ------------------------------------------------
	opts := []service.ReservationOption{service.WithStoreTimeout(cfg.StoreTimeout)}
	if cfg.AMQPURL != "" {
		pub, err := queue.Dial(cfg.AMQPURL, cfg.EventsQueue)
		if err != nil {
			slog.Error("failed to connect to message broker", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		opts = append(opts, service.WithEvents(pub, logger))
		slog.Info("publishing reservation events", "queue", cfg.EventsQueue)
	}

	// --- Rate limiting (optional) -----------------------------------------
	mw := handler.Middlewares{Authenticate: middleware.NewAuthenticator([]byte(cfg.JWTSecret))}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// The limiter fails open, so an unreachable Redis only disables it.
			slog.Warn("redis unreachable at startup", "addr", cfg.RedisAddr, "error", err)
		}
		mw.RateLimit = middleware.NewRateLimiter(rdb, middleware.RateLimitConfig{
			Capacity:       cfg.RateLimitCapacity,
			RefillInterval: cfg.RateLimitRefillEvery,
		}, logger)
	}

	// --- Services ---------------------------------------------------------
	clock := service.RealClock{}
	srv := handler.NewServer(
		service.NewRoomService(rooms),
		service.NewReservationService(rooms, reservations, clock, opts...),
		service.NewStatsService(reservations, clock),
		logger,
	)

	// --- Router -----------------------------------------------------------
	// RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Mount("/", srv.Routes(mw))

	// --- HTTP Server ------------------------------------------------------
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr, "store", cfg.StoreDriver)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending migrations over a short-lived database/sql handle.
func migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	results, err := migrations.Up(ctx, db)
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("migration applied", "version", res.Source.Version, "duration", res.Duration)
	}
	return nil
}
