package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/immunitrack/immunitrack/internal/config"
	"github.com/immunitrack/immunitrack/internal/domain/catalog"
	"github.com/immunitrack/immunitrack/internal/domain/child"
	"github.com/immunitrack/immunitrack/internal/domain/facility"
	"github.com/immunitrack/immunitrack/internal/domain/reports"
	"github.com/immunitrack/immunitrack/internal/domain/vaccination"
	"github.com/immunitrack/immunitrack/internal/platform/auth"
	"github.com/immunitrack/immunitrack/internal/platform/db"
	"github.com/immunitrack/immunitrack/internal/platform/middleware"
	"github.com/immunitrack/immunitrack/internal/platform/notification"
	"github.com/immunitrack/immunitrack/internal/platform/reporting"
)

// childDirectory adapts the child repository to the notification package's
// ChildDirectory interface, avoiding an import from platform into domain.
type childDirectory struct {
	repo child.Repository
}

func (d *childDirectory) ChildInfo(ctx context.Context, id uuid.UUID) (*notification.ChildInfo, error) {
	c, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &notification.ChildInfo{
		UID:              c.UID,
		FullName:         c.FullName,
		CaregiverContact: c.CaregiverContact,
	}, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "immunitrack-server",
		Short: "Child immunization tracking API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(cfg.AuthSecret, cfg.AuthIssuer))
	}

	// Health check
	e.GET("/health", db.HealthHandler(pool))

	// API group
	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	// -- Register domain handlers --

	// Vaccine catalog
	catalogRepo := catalog.NewRepoPG(pool)
	catalogSvc := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(catalogSvc)
	catalogHandler.RegisterRoutes(apiV1)

	// Facilities
	facilityRepo := facility.NewRepoPG(pool)
	facilitySvc := facility.NewService(facilityRepo)
	facilityHandler := facility.NewHandler(facilitySvc)
	facilityHandler.RegisterRoutes(apiV1)

	// Vaccination ledger
	vaccinationRepo := vaccination.NewRepoPG(pool)
	vaccinationSvc := vaccination.NewService(vaccinationRepo)
	vaccinationHandler := vaccination.NewHandler(vaccinationSvc)
	vaccinationHandler.RegisterRoutes(apiV1)

	// Children: registration writes the child row, bumps the facility
	// counter, and inserts the full schedule in one transaction.
	runInTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.RunInTx(ctx, pool, fn)
	}
	childRepo := child.NewRepoPG(pool)
	childSvc := child.NewService(childRepo, facilityRepo, catalogRepo, vaccinationRepo, runInTx)
	childHandler := child.NewHandler(childSvc)
	childHandler.RegisterRoutes(apiV1)

	// Reports
	reportsSvc := reports.NewService(vaccinationRepo, catalogRepo, childRepo)
	reportsHandler := reports.NewHandler(reportsSvc)
	reportsHandler.RegisterRoutes(apiV1)

	// Notifications (mock senders; swap for gateway integrations in prod)
	notifyMgr := notification.NewManager(&notification.MockSMSSender{}, &notification.MockEmailSender{}, notification.NewTemplateEngine())
	notifyHandler := notification.NewHandler(notifyMgr, &childDirectory{repo: childRepo})
	notifyHandler.RegisterRoutes(apiV1)

	// Aggregate measures
	reportingHandler := reporting.NewHandler(pool)
	reportingHandler.RegisterRoutes(apiV1)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
