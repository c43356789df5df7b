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
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/teamchat/internal"
	"github.com/frahmantamala/teamchat/internal/auth"
	authPostgres "github.com/frahmantamala/teamchat/internal/auth/postgres"
	"github.com/frahmantamala/teamchat/internal/company"
	companyPostgres "github.com/frahmantamala/teamchat/internal/company/postgres"
	"github.com/frahmantamala/teamchat/internal/core/events"
	"github.com/frahmantamala/teamchat/internal/department"
	departmentPostgres "github.com/frahmantamala/teamchat/internal/department/postgres"
	"github.com/frahmantamala/teamchat/internal/group"
	groupPostgres "github.com/frahmantamala/teamchat/internal/group/postgres"
	"github.com/frahmantamala/teamchat/internal/message"
	messagePostgres "github.com/frahmantamala/teamchat/internal/message/postgres"
	"github.com/frahmantamala/teamchat/internal/metrics"
	"github.com/frahmantamala/teamchat/internal/realtime"
	"github.com/frahmantamala/teamchat/internal/transport/rest"
	"github.com/frahmantamala/teamchat/internal/user"
	userPostgres "github.com/frahmantamala/teamchat/internal/user/postgres"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests and realtime connections`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Router *chi.Mux
	Hub    *realtime.Hub
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	// WriteTimeout is not set: it would cut long-lived websocket connections.
	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
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
		deps.Logger.Info("Received signal, shutting down...", "signal", sig, "sessions", deps.Hub.Len())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := setupLogger(config)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	bus := events.NewEventBus(log)
	var m *metrics.Metrics
	if config.Observability.Metrics.Enabled {
		m = metrics.New()
	}

	tokens := auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.TokenTTL)
	authService := auth.NewService(authPostgres.NewRepository(gormDB), tokens, log)
	companyService := company.NewService(companyPostgres.NewCompanyRepository(gormDB), log)
	departmentService := department.NewService(departmentPostgres.NewDepartmentRepository(gormDB), log)
	groupService := group.NewService(groupPostgres.NewGroupRepository(gormDB), log)
	userService := user.NewService(userPostgres.NewUserRepository(gormDB), bus, config.Security.BCryptCost, log)
	messageService := message.NewService(messagePostgres.NewMessageRepository(gormDB), groupService, bus, log)

	hub := realtime.NewHub()
	manager := realtime.NewManager(hub, authService, groupService, messageService, m, log)
	manager.Subscribe(bus)
	origins := config.Server.Origins()

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Auth:        auth.NewHandler(authService),
		Company:     company.NewHandler(companyService),
		Department:  department.NewHandler(departmentService),
		Group:       group.NewHandler(groupService),
		User:        user.NewHandler(userService),
		Message:     message.NewHandler(messageService, m),
		Realtime:    realtime.NewServer(manager, authService, config.Realtime, origins, m),
		Health:      rest.NewHealthHandler(db, hub),
		Metrics:     m,
		MetricsPath: config.Observability.Metrics.Path,
	}, origins, log)

	return &Dependencies{
		Config: config,
		Logger: log,
		DB:     db,
		Gorm:   gormDB,
		Router: router,
		Hub:    hub,
	}, nil
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
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the pgx pool opened by initDB.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
}
