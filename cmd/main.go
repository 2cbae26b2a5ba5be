package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vnkhanh/study-notes-backend/config"
	"github.com/vnkhanh/study-notes-backend/controllers"
	"github.com/vnkhanh/study-notes-backend/middleware"
	"github.com/vnkhanh/study-notes-backend/repository"
	"github.com/vnkhanh/study-notes-backend/routes"
	"github.com/vnkhanh/study-notes-backend/services"
	"github.com/vnkhanh/study-notes-backend/utils"
	"github.com/vnkhanh/study-notes-backend/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := config.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	db, err := config.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	completion, closeCompletion, err := newCompletionClient(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("completion client init failed", zap.Error(err))
	}
	defer closeCompletion()

	repo := repository.New(db)
	hub := ws.NewHub(logger)
	pipeline := services.NewPipeline(completion, repo, hub, logger)

	var archive controllers.Archiver
	if cfg.StorageEnabled() {
		archive = utils.NewStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.StorageBucket)
	} else {
		logger.Warn("SUPABASE_URL/SUPABASE_KEY not set, uploaded files will not be archived")
	}

	handler := controllers.NewHandler(controllers.Options{
		Repo:           repo,
		Pipeline:       pipeline,
		Archive:        archive,
		Events:         hub,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logger,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.ZapLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Auth-Token", "apikey", "x-client-info"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
	}))
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	r = routes.SetupRouter(r, handler, hub, cfg.JWTSecret)

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// three sequential completion calls at most
		WriteTimeout: 3*cfg.AITimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port), zap.String("provider", cfg.LLMProvider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("server exited")
}

func newCompletionClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (services.CompletionClient, func(), error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		client, err := services.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AITimeout, logger)
		if err != nil {
			return nil, nil, err
		}
		return client, func() { client.Close() }, nil
	default:
		client := services.NewGatewayClient(services.GatewayConfig{
			BaseURL: cfg.AIBaseURL,
			APIKey:  cfg.AIAPIKey,
			Model:   cfg.AIModel,
			Timeout: cfg.AITimeout,
		}, logger)
		return client, func() {}, nil
	}
}
