package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"library-admin/internal/admin"
	"library-admin/internal/api"
	"library-admin/internal/bot"
	"library-admin/internal/config"
	"library-admin/internal/logger"
	"library-admin/internal/storage"
	"library-admin/internal/storage/ch"
	"library-admin/internal/storage/rdb"
	"library-admin/internal/storage/stubs"
)

// App represents the application
type App struct {
	config     *config.Config
	logger     *zap.Logger
	logCloser  io.Closer
	registry   *prometheus.Registry
	apiMetrics *api.Metrics
	db         storage.Storage
	bot        *bot.Bot
	server     *http.Server
}

// New creates and initializes a new application instance
func New() (*App, error) {
	// Load .env file if it exists
	envErr := godotenv.Load()

	// Load configuration from environment variables
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, closer, err := logger.New(logger.Options{
		Level:          cfg.LogLevel,
		File:           cfg.LogFile,
		FileMaxSize:    cfg.LogFileMaxSize,
		FileMaxBackups: cfg.LogFileMaxBackups,
		FileMaxAge:     cfg.LogFileMaxAge,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if envErr != nil {
		log.Info("No .env file found, using system environment variables")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := &App{
		config:     cfg,
		logger:     log,
		logCloser:  closer,
		registry:   registry,
		apiMetrics: api.NewMetrics(registry),
	}

	log.Info("Starting library admin console...", zap.String("api_base_url", cfg.APIBaseURL))

	// Initialize database
	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	// Initialize bot
	if err := app.initBot(); err != nil {
		return nil, err
	}

	// Initialize HTTP server
	if err := app.initHTTPServer(); err != nil {
		return nil, err
	}

	return app, nil
}

// initDatabase opens the session store selected by the configuration
func (a *App) initDatabase() error {
	var db storage.Storage
	switch a.config.SessionStore {
	case config.StoreMemory:
		a.logger.Info("Using in-memory session store")
		db = stubs.NewMockDB()
	case config.StoreRedis:
		a.logger.Info("Connecting to Redis", zap.Duration("session_ttl", a.config.SessionTTL))
		redisDB, err := rdb.NewRedisDB(a.config.RedisURL, a.config.SessionTTL)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		db = redisDB
	default:
		a.logger.Info("Connecting to ClickHouse",
			zap.String("host", a.config.ClickHouseHost),
			zap.Int("port", a.config.ClickHousePort),
			zap.String("database", a.config.ClickHouseDatabase),
			zap.String("user", a.config.ClickHouseUser),
			zap.Bool("tls", a.config.ClickHouseUseTLS),
		)
		clickhouseDB, err := ch.NewClickHouseDB(
			a.config.ClickHouseHost,
			a.config.ClickHousePort,
			a.config.ClickHouseDatabase,
			a.config.ClickHouseUser,
			a.config.ClickHousePassword,
			a.config.ClickHouseUseTLS,
		)
		if err != nil {
			return fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		db = clickhouseDB
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	a.logger.Info("Session store initialized successfully")

	a.db = db
	return nil
}

// newBackend creates an API client with its own cookie jar
func (a *App) newBackend() (admin.Backend, error) {
	client, err := api.NewClient(a.config.APIBaseURL,
		api.WithTimeout(a.config.APITimeout),
		api.WithLogger(a.logger.Named("api")),
		api.WithMetrics(a.apiMetrics),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// initBot initializes the Telegram bot
func (a *App) initBot() error {
	telegramBot, err := bot.NewBot(a.config.TelegramToken, a.db, a.newBackend, bot.Options{
		AllowedUserIDs: a.config.AllowedUserIDs,
		SendRateLimit:  a.config.SendRateLimit,
		SuccessDelay:   a.config.SuccessDelay,
		Registerer:     a.registry,
	}, a.logger.Named("bot"))
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	a.logger.Info("Bot created successfully", zap.Int64s("allowed_users", a.config.AllowedUserIDs))

	a.bot = telegramBot
	return nil
}

// initHTTPServer builds the HTTP server for health checks, metrics, the
// webhook and the web console
func (a *App) initHTTPServer() error {
	backend, err := a.newBackend()
	if err != nil {
		return fmt.Errorf("failed to create web console API client: %w", err)
	}
	hs, err := bot.NewHTTPServer(a.bot, backend, a.registry, a.config.WebhookMode)
	if err != nil {
		return err
	}

	a.server = &http.Server{
		Addr:         ":" + a.config.Port,
		Handler:      hs.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return nil
}

// Run serves until ctx is done, then shuts everything down
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("Starting HTTP server", zap.String("port", a.config.Port))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if a.config.WebhookMode {
			// Webhook mode: configure webhook and wait for HTTP requests
			if err := a.bot.StartWebhook(gctx, a.config.WebhookURL); err != nil {
				return fmt.Errorf("failed to setup webhook: %w", err)
			}
			a.logger.Info("Webhook configured. Bot will receive updates via HTTP endpoint /telegram-webhook")
			<-gctx.Done()
			return nil
		}
		// Polling mode: actively poll Telegram servers
		return a.bot.Start(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("HTTP server shutdown error", zap.Error(err))
		}
		return nil
	})

	runErr := g.Wait()
	return a.shutdown(runErr)
}

// shutdown releases what New acquired once the servers have stopped
func (a *App) shutdown(runErr error) error {
	a.bot.Wait()

	if err := a.db.Close(); err != nil {
		a.logger.Error("Error closing session store", zap.Error(err))
		if runErr == nil {
			runErr = err
		}
	}

	a.logger.Info("Shutdown complete")
	_ = a.logger.Sync()
	if err := a.logCloser.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
