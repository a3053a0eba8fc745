package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/iron-and-snow/internal/config"
	"github.com/jwebster45206/iron-and-snow/internal/handlers"
	"github.com/jwebster45206/iron-and-snow/internal/logger"
	"github.com/jwebster45206/iron-and-snow/internal/metrics"
	"github.com/jwebster45206/iron-and-snow/internal/middleware"
	"github.com/jwebster45206/iron-and-snow/internal/services"
	"github.com/jwebster45206/iron-and-snow/internal/services/events"
	"github.com/jwebster45206/iron-and-snow/internal/session"
	"github.com/jwebster45206/iron-and-snow/pkg/engine"
	"github.com/jwebster45206/iron-and-snow/pkg/script"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Iron & Snow API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"choice_delay", cfg.ChoiceDelay,
		"compress_delay", cfg.CompressDelay)

	sc, err := loadScript(cfg.ScriptPath)
	if err != nil {
		log.Error("Failed to load narrative script", "error", err, "path", cfg.ScriptPath)
		os.Exit(1)
	}

	m := metrics.New()
	registry := session.NewRegistry(sc, engine.Options{
		Narrator:      services.StaticNarrator{},
		Observers:     []engine.Observer{m},
		Logger:        log,
		ChoiceDelay:   cfg.ChoiceDelay,
		CompressDelay: cfg.CompressDelay,
	}, log)
	registry.Track(m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is optional; without it the API serves games but no event stream.
	var (
		redisService *services.RedisService
		redisClient  *redis.Client
		pinger       services.Pinger
		publisher    handlers.GameEndedPublisher
	)
	if cfg.RedisURL != "" {
		redisService, err = services.NewRedisService(cfg.RedisURL, log)
		if err != nil {
			log.Error("Invalid Redis configuration", "error", err)
			os.Exit(1)
		}

		waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Minute)
		err = redisService.WaitForConnection(waitCtx)
		waitCancel()
		if err != nil {
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}

		redisClient = redisService.Client()
		pinger = redisService

		broadcaster := events.NewBroadcaster(redisClient, log)
		go broadcaster.Run(ctx)
		registry.OnCreate(func(e *engine.Engine) {
			e.Subscribe(broadcaster.Subscriber())
		})
		publisher = broadcaster
		log.Info("Event broadcast enabled")
	} else {
		log.Info("REDIS_URL not set, event broadcast disabled")
	}

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(pinger, registry, log))

	gamesHandler := handlers.NewGamesHandler(registry, publisher, log)
	mux.Handle("/v1/games", gamesHandler)
	mux.Handle("/v1/games/", gamesHandler)

	mux.Handle("/v1/events/games/", handlers.NewEventsHandler(redisClient, registry, log))

	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(log, mux),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the SSE endpoint streams for the life of the connection
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	registry.CloseAll()
	cancel()

	if redisService != nil {
		if err := redisService.Close(); err != nil {
			log.Error("Error closing Redis connection", "error", err)
		}
	}

	log.Info("Server exited")
}

func loadScript(path string) (*script.Script, error) {
	if path == "" {
		return script.Default()
	}
	return script.LoadFile(path)
}
