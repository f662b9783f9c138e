package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	chatbotapp "github.com/paydesk/backend/internal/application/chatbot"
	appinvoicing "github.com/paydesk/backend/internal/application/invoicing"
	partnerapp "github.com/paydesk/backend/internal/application/partner"
	"github.com/paydesk/backend/internal/domain/invoicing"
	"github.com/paydesk/backend/internal/domain/partner"
	"github.com/paydesk/backend/internal/infrastructure/bot"
	"github.com/paydesk/backend/internal/infrastructure/config"
	"github.com/paydesk/backend/internal/infrastructure/extraction"
	"github.com/paydesk/backend/internal/infrastructure/logger"
	"github.com/paydesk/backend/internal/infrastructure/persistence"
	"github.com/paydesk/backend/internal/infrastructure/printing"
	"github.com/paydesk/backend/internal/infrastructure/session"
	"github.com/paydesk/backend/internal/infrastructure/storage"
	"github.com/paydesk/backend/internal/infrastructure/telemetry"
	"github.com/paydesk/backend/internal/interfaces/http/handler"
	"github.com/paydesk/backend/internal/interfaces/http/middleware"
	"github.com/paydesk/backend/internal/interfaces/http/router"
)

func main() {
	// Load .env if present; real env vars still win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting PayDesk Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing (no-op when disabled)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DefaultDBTracingConfig(), log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Repositories. The mirror wrappers keep an in-process read cache in
	// front of Postgres.
	var customerRepo partner.CustomerRepository = persistence.NewGormCustomerRepository(db.DB)
	var invoiceRepo invoicing.InvoiceRepository = persistence.NewGormInvoiceRepository(db.DB)
	customerRepo = persistence.NewMirroredCustomerRepository(customerRepo, log)
	invoiceRepo = persistence.NewMirroredInvoiceRepository(invoiceRepo, log)

	// Application services
	customerService := partnerapp.NewCustomerService(customerRepo)
	invoiceService := appinvoicing.NewInvoiceService(invoiceRepo, customerRepo)
	paymentRecorder := appinvoicing.NewPaymentRecorder(invoiceRepo, customerRepo)

	// Chat-driven payment recording: extractor + pending store + conversation
	extractor, err := extraction.NewOpenAIExtractor(cfg.OpenAI, log)
	if err != nil {
		log.Fatal("Failed to initialize payment extractor", zap.Error(err))
	}

	var pendingStore chatbotapp.PendingStore
	switch cfg.Session.Store {
	case "redis":
		redisStore, err := session.NewRedisPendingStore(session.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Session.PendingTTL)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisStore.Close(); err != nil {
				log.Error("Error closing Redis store", zap.Error(err))
			}
		}()
		pendingStore = redisStore
		log.Info("Using Redis pending payment store", zap.String("addr", cfg.Redis.RedisAddr()))
	default:
		memStore := session.NewInMemoryPendingStore(cfg.Session.PendingTTL)
		defer memStore.Close()
		pendingStore = memStore
		log.Info("Using in-memory pending payment store")
	}

	conversation := chatbotapp.NewConversation(extractor, paymentRecorder, pendingStore, "Telegram Bot", log)

	// Telegram transport. A startup failure must not take the API down.
	botCtx, botCancel := context.WithCancel(context.Background())
	defer botCancel()
	if cfg.Telegram.Enabled {
		telegramBot, err := bot.NewTelegramBot(cfg.Telegram, conversation, log)
		if err != nil {
			log.Error("Telegram bot failed to start, continuing without it", zap.Error(err))
		} else {
			telegramBot.Start(botCtx)
			defer telegramBot.Stop()
			log.Info("Telegram bot started")
		}
	}

	// Screenshot storage
	var screenshots appinvoicing.ObjectStorage
	if cfg.Storage.Provider == "s3" {
		s3Storage, err := storage.NewS3ScreenshotStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize screenshot storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(context.Background()); err != nil {
			log.Warn("Could not ensure screenshot bucket exists", zap.Error(err))
		}
		screenshots = s3Storage
		log.Info("Using S3 screenshot storage", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		screenshots = storage.NewStubScreenshotStorage()
		log.Info("Using in-memory screenshot storage")
	}

	// Invoice PDF rendering
	pdfRenderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
		DefaultTimeout: cfg.PDF.Timeout,
		RemoteURL:      cfg.PDF.RemoteURL,
		NoSandbox:      cfg.App.Env != "development",
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer func() {
		if err := pdfRenderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()

	invoicePrinter := printing.NewInvoicePrinter(pdfRenderer, printing.CompanyInfo{
		Name:    cfg.Company.Name,
		Address: cfg.Company.Address,
		Phone:   cfg.Company.Phone,
		Email:   cfg.Company.Email,
	}, log)

	// HTTP handlers
	customerHandler := handler.NewCustomerHandler(customerService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, screenshots, invoicePrinter)
	systemHandler := handler.NewSystemHandler(db)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(customerHandler)
	r.Register(invoiceHandler)
	r.Register(systemHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	botCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
