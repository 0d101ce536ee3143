package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/ahmednasr/blogsage/internal/config"
	"github.com/ahmednasr/blogsage/internal/handler"
	"github.com/ahmednasr/blogsage/internal/logger"
	"github.com/ahmednasr/blogsage/internal/middleware"
	"github.com/ahmednasr/blogsage/internal/repository"
	"github.com/ahmednasr/blogsage/internal/service"
	blogsession "github.com/ahmednasr/blogsage/internal/session"
	"github.com/ahmednasr/blogsage/web"
)

// main is the single entry-point for the blog web server.
func main() {
	logger.InitFromEnv("LOG_LEVEL")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Errorf("Invalid configuration: %v", err)
		os.Exit(1)
	}
	logger.InfoWithFields("Configuration loaded", logger.Fields{
		"store":    cfg.StoreDriver,
		"embedder": cfg.Embedder,
		"llm":      cfg.LLMProvider,
		"model":    cfg.LLMModel,
		"cache":    cfg.RedisAddr != "",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Log.Warnf("Shutdown: %v", err)
			}
		}
	}()

	// Initialize repositories
	st, err := repository.Open(ctx, repository.Options{
		Driver:     cfg.StoreDriver,
		SQLitePath: cfg.SQLitePath,
		MongoURI:   cfg.MongoURI,
		MongoDB:    cfg.DBName,
	})
	if err != nil {
		logger.Log.Errorf("Failed to open %s store: %v", cfg.StoreDriver, err)
		return
	}
	closers = append(closers, st.Close)

	// Initialize embedder (optionally cached in Redis) and LLM
	emb, err := buildEmbedder(ctx, cfg)
	if err != nil {
		logger.Log.Errorf("Failed to initialize embedder: %v", err)
		return
	}
	closers = append(closers, emb.close)

	llm, closeLLM, err := buildLLM(ctx, cfg)
	if err != nil {
		logger.Log.Errorf("Failed to initialize LLM: %v", err)
		return
	}
	closers = append(closers, closeLLM)

	// Initialize services
	embedder := service.WithTimeout(emb.embedder, cfg.EmbedTimeout)
	blogSvc := service.NewBlogService(st.Blog, service.NewRecommender(embedder, nil))
	ragSvc := service.NewRAGService(embedder, llm, service.RAGConfig{
		MinScore: float32(cfg.RAGMinScore),
		Timeout:  cfg.EmbedTimeout + cfg.LLMTimeout,
	})
	authSvc := service.NewAuthService(st.Users)

	sessions := blogsession.NewManager(session.New(session.Config{
		Expiration:     cfg.SessionTTL,
		CookieSecure:   cfg.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	}), cfg.ChatHistoryMax)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "blogsage",
		Views:        web.NewEngine(),
		ErrorHandler: handler.ErrorHandler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Add middleware
	app.Use(recover.New())
	app.Use(middleware.RequestTrace())

	// Register routes
	handler.RegisterRoutes(app, blogSvc, ragSvc, authSvc, sessions, map[string]handler.Pinger{
		"store": st.Pinger,
		"cache": emb.pinger,
	})

	go func() {
		<-ctx.Done()
		logger.Log.Infof("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Log.Warnf("Shutdown: %v", err)
		}
	}()

	// Start server
	logger.Log.Infof("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.Errorf("Server failed: %v", err)
	}
}
