package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/config"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/beds"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/pipeline"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/schedule"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/triage"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/auth"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/db"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/metrics"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/middleware"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/narrative"
)

const appName = "hospital-rm"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          appName,
		Short:        "Hospital resource manager: triage, bed allocation and surgery scheduling",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(scoreCmd())
	return rootCmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func newLogger(w io.Writer, dev bool) zerolog.Logger {
	if dev {
		return zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// app holds the engines built from configuration. The server and the CLI
// commands share it.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	metrics  *metrics.Recorder
	scorer   *triage.Scorer
	ward     beds.Ward
	solver   *schedule.Solver
	pipeline *pipeline.Service
}

func newApp(cfg *config.Config, logger zerolog.Logger) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	walls, err := cfg.Walls()
	if err != nil {
		return nil, err
	}
	strategy, err := beds.ParseStrategy(cfg.BedStrategy)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewRecorder(),
		ward: beds.Ward{
			GridSize:    cfg.GridSize,
			MaxGridSize: cfg.MaxGridSize,
			Walls:       walls,
			Strategy:    strategy,
		},
	}
	a.scorer = triage.NewScorer(
		triage.WithLogger(logger),
		triage.WithMetrics(a.metrics),
	)
	a.solver = schedule.NewSolver(
		schedule.WithCatalog(schedule.Catalog{
			Doctors:   cfg.ScheduleDoctors,
			Rooms:     cfg.ScheduleRooms,
			Timeslots: cfg.ScheduleTimeslots,
		}),
		schedule.WithCandidates(cfg.ScheduleCandidates),
		schedule.WithMaxNodes(cfg.ScheduleMaxNodes),
		schedule.WithLogger(logger),
		schedule.WithMetrics(a.metrics),
	)

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(a.metrics),
	}
	// A nil *Client must not reach the Narrator interface.
	if narrator := narrative.New(narrative.Config{
		BaseURL: cfg.NarrativeURL,
		APIKey:  cfg.NarrativeAPIKey,
		Model:   cfg.NarrativeModel,
		Timeout: cfg.NarrativeTimeout,
		Retries: 2,
	}, logger); narrator != nil {
		opts = append(opts, pipeline.WithNarrator(narrator))
	}
	a.pipeline = pipeline.NewService(a.scorer, a.ward, a.solver, opts...)
	return a, nil
}

// openPool connects when DATABASE_URL is set and returns nil otherwise.
func (a *app) openPool(ctx context.Context) (*pgxpool.Pool, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, nil
	}
	return db.NewPool(ctx, db.PoolConfig{
		URL:             a.cfg.DatabaseURL,
		MaxConns:        a.cfg.DBMaxConns,
		MinConns:        a.cfg.DBMinConns,
		ApplicationName: appName,
	})
}

func (a *app) newServer(pool *pgxpool.Pool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(a.logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders(!a.cfg.IsDev()))
	e.Use(middleware.Logger(a.logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: a.cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.BodyLimit(a.cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(a.cfg.RequestTimeout))

	e.GET("/health", db.HealthHandler(pool))
	e.GET("/metrics", a.metrics.Handler())

	apiV1 := e.Group("/api/v1")
	if a.cfg.IsDev() && a.cfg.AuthSigningKey == "" {
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     a.cfg.AuthIssuer,
			Audience:   a.cfg.AuthAudience,
			SigningKey: []byte(a.cfg.AuthSigningKey),
		}))
	}
	apiV1.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: a.cfg.RateLimitRPS,
		BurstSize:         a.cfg.RateLimitBurst,
	}))

	triage.NewHandler(a.scorer).RegisterRoutes(apiV1)
	beds.NewHandler(a.ward, a.logger, a.metrics).RegisterRoutes(apiV1)
	schedule.NewHandler(a.solver).RegisterRoutes(apiV1)
	pipeline.NewHandler(a.pipeline).RegisterRoutes(apiV1)
	return e
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stdout, cfg.IsDev())

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.IsDev() && cfg.AuthSigningKey == "" {
		logger.Warn().Msg("development mode: API authentication is disabled, every caller is admin")
	}

	// Database
	ctx := context.Background()
	pool, err := a.openPool(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if pool != nil {
		defer pool.Close()
		logger.Info().Msg("connected to database")
	}

	e := a.newServer(pool)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Int("grid_size", cfg.GridSize).Str("strategy", string(a.ward.Strategy)).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
