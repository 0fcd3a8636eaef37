package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/meeting-enrichment/pkg/validator"

	"github.com/johnquangdev/meeting-enrichment/internal/adapter/handler"
	"github.com/johnquangdev/meeting-enrichment/internal/adapter/repository"
	"github.com/johnquangdev/meeting-enrichment/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-enrichment/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-enrichment/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-enrichment/internal/usecase/enrichment"
	pkgai "github.com/johnquangdev/meeting-enrichment/pkg/ai"
	"github.com/johnquangdev/meeting-enrichment/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	log.Println("🔧 Initializing dependencies...")

	// Initialize Database
	log.Printf("📦 Connecting to database (%s)...", cfg.Database.Driver)
	db, err := database.NewDB(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// SQLite databases are always created with AutoMigrate; PostgreSQL only
	// when explicitly enabled. Production schemas are managed by cmd/migrate.
	if cfg.Database.AutoMigrate || cfg.Database.Driver == "sqlite" {
		if cfg.IsProduction() && cfg.Database.Driver != "sqlite" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or run cmd/migrate.")
		}
		log.Println("🔄 Running GORM AutoMigrate (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run AutoMigrate: %v", err)
		}
	} else {
		log.Println("🔄 Skipping GORM AutoMigrate; use cmd/migrate for schema migrations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Poll lease: Redis when configured, otherwise in-process
	var locker cache.Locker
	if cfg.Redis.Host != "" {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		locker = cache.NewRedisLocker(redisClient)
	} else {
		log.Println("⚠️  REDIS_HOST not set, poll lease is local to this process")
		memStore := cache.NewMemoryStore()
		defer memStore.Close()
		locker = cache.NewMemoryLocker(memStore)
	}

	// Object storage is optional; submission and transcript archiving need it
	var objects enrichment.ObjectStore
	log.Println("🗄️  Connecting to object storage...")
	minioClient, err := storage.NewMinIOClient(ctx, &cfg.Storage)
	if err != nil {
		log.Printf("⚠️  Object storage unavailable, submission disabled: %v", err)
	} else {
		objects = minioClient
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	store := repository.NewGormStore(db)

	// Initialize AI clients
	log.Println("🤖 Initializing AI components...")
	prompts, err := pkgai.LoadPrompts(cfg.Groq.PromptsFile)
	if err != nil {
		log.Fatalf("Failed to load prompts: %v", err)
	}

	deps := enrichment.Dependencies{
		Store:   store,
		Objects: objects,
		Logger:  logger,
	}
	if cfg.Assembly.APIKey != "" {
		deps.Transcriber = pkgai.NewAssemblyAIClient(&cfg.Assembly)
	} else {
		log.Println("⚠️  ASSEMBLYAI_API_KEY not set, transcription disabled")
	}
	if cfg.Groq.APIKey != "" {
		groqClient := pkgai.NewGroqClient(&cfg.Groq)
		deps.Scorer = enrichment.NewLLMScorer(groqClient, prompts, logger)
		deps.Rewriter = enrichment.NewLLMRewriter(groqClient, prompts, logger)
		deps.Summarizer = enrichment.NewLLMSummarizer(groqClient, prompts)
	} else {
		log.Println("⚠️  GROQ_API_KEY not set, language-model stages use neutral fallbacks")
	}

	pipeline := enrichment.NewPipeline(deps, enrichment.Options{
		BatchLimit:    cfg.Pipeline.BatchLimit,
		StageTimeout:  cfg.Pipeline.StageTimeout,
		StagesPerTick: cfg.Pipeline.StagesPerTick,
		TitleBlocks:   cfg.Pipeline.TitleBlocks,
		MaxRetries:    cfg.Pipeline.MaxRetries,
		RetryDelay:    cfg.Pipeline.RetryDelay,
	})

	scheduler := enrichment.NewScheduler(pipeline, locker, enrichment.SchedulerConfig{
		Interval:   cfg.Pipeline.PollInterval,
		LeaseTTL:   cfg.Pipeline.LeaseTTL,
		RunOnStart: cfg.Pipeline.RunOnStart,
	}, logger)

	meetingService := enrichment.NewMeetingService(store, deps.Transcriber, objects, pipeline, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	meetingHandler := handler.NewMeetingHandler(meetingService, logger)
	pipelineHandler := handler.NewPipelineHandler(scheduler, logger)
	if cfg.Ops.Secret == "" {
		log.Println("⚠️  OPS_SECRET not set, /v1 requests are not signature checked")
	}

	router := handler.NewRouter(cfg, meetingHandler, pipelineHandler)
	router.Setup(e)

	// Start the poll loop
	log.Printf("⏱️  Polling every %s (stages per tick: %d)", cfg.Pipeline.PollInterval, cfg.Pipeline.StagesPerTick)
	scheduler.Start(ctx)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()

	log.Println("🛑 Shutting down...")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
