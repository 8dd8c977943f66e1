package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/thanhldv/store-backoffice/internal"
	"github.com/thanhldv/store-backoffice/internal/auth"
	authPostgres "github.com/thanhldv/store-backoffice/internal/auth/postgres"
	"github.com/thanhldv/store-backoffice/internal/core/events"
	"github.com/thanhldv/store-backoffice/internal/transport/rest"
	"github.com/thanhldv/store-backoffice/internal/user"
	userPostgres "github.com/thanhldv/store-backoffice/internal/user/postgres"
	"github.com/thanhldv/store-backoffice/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config      *internal.Config
	DB          *sqlx.DB
	Router      *chi.Mux
	AuthHandler *auth.Handler
	UserHandler *user.Handler
	Logger      *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		deps.AuthHandler,
		deps.UserHandler,
		deps.Config.Server.AllowedOrigins,
		deps.Logger,
	)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	appLogger := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm shares the pgx connection pool opened above
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{
		Conn: db.DB,
	}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	eventBus := events.NewEventBus(appLogger)
	registerAuditSubscribers(eventBus, appLogger)

	authRepo := authPostgres.NewRepository(gormDB)
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.JWTSecret,
		config.Security.TokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen, config.Security.BCryptCost, eventBus)
	authHandler := auth.NewHandler(authService)

	userRepo := userPostgres.NewUserRepository(gormDB)
	userService := user.NewService(userRepo, authService, eventBus)
	userHandler := user.NewHandler(userService)

	return &Dependencies{
		Config:      config,
		Logger:      appLogger,
		DB:          db,
		Router:      chi.NewRouter(),
		AuthHandler: authHandler,
		UserHandler: userHandler,
	}, nil
}

// registerAuditSubscribers writes authentication and role-assignment
// activity to the structured log as a minimal audit trail.
func registerAuditSubscribers(bus *events.EventBus, log *slog.Logger) {
	audit := log.With("component", "audit")

	bus.Subscribe(events.EventTypeLoginSucceeded, func(ctx context.Context, e events.Event) error {
		if ev, ok := e.(*events.LoginSucceededEvent); ok {
			audit.Info("login succeeded", "user_id", ev.UserID, "code", ev.Code)
		}
		return nil
	})

	bus.Subscribe(events.EventTypeLoginFailed, func(ctx context.Context, e events.Event) error {
		if ev, ok := e.(*events.LoginFailedEvent); ok {
			audit.Warn("login failed", "code", ev.Code)
		}
		return nil
	})

	bus.Subscribe(events.EventTypeRolesReassigned, func(ctx context.Context, e events.Event) error {
		if ev, ok := e.(*events.RolesReassignedEvent); ok {
			audit.Info("roles reassigned", "user_id", ev.UserID, "role_ids", ev.RoleIDs)
		}
		return nil
	})

	bus.Subscribe(events.EventTypeUserDeleted, func(ctx context.Context, e events.Event) error {
		if ev, ok := e.(*events.UserDeletedEvent); ok {
			audit.Info("user deleted", "user_id", ev.UserID)
		}
		return nil
	})
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
