package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mossy-p/chat-gateway/config"
	"github.com/mossy-p/chat-gateway/internal/bus"
	"github.com/mossy-p/chat-gateway/internal/gateway"
	"github.com/mossy-p/chat-gateway/internal/history"
	"github.com/mossy-p/chat-gateway/internal/httpapi"
	"github.com/mossy-p/chat-gateway/internal/presence"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	hub := gateway.NewHub()
	ring := history.NewRing(cfg.CacheSize, cfg.CacheTTL)

	// Redis backs shared presence and the message cache. An unreachable
	// store degrades the instance to local-only state, it never prevents
	// serving connections.
	var store presence.Store
	var cache history.Cache

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = redisClient.Ping(pingCtx).Err()
	cancel()
	if err != nil {
		log.Warn("redis unreachable, running with local-only presence and history", "addr", cfg.Redis.Addr(), "error", err)
		store = presence.NewMemoryStore(cfg.PresenceTTL)
		cache = ring
	} else {
		log.Info("connected to redis", "addr", cfg.Redis.Addr())
		store = presence.NewDegrading(presence.NewRedisStore(redisClient, cfg.PresenceTTL), hub, log)
		cache = history.NewDegrading(history.NewRedisCache(redisClient, cfg.CacheSize, cfg.CacheTTL), ring, log)
	}
	defer redisClient.Close()

	// The bus links gateway instances. Without it, fanout is local only.
	var fanout bus.Bus
	natsBus, err := bus.ConnectNATS(cfg.NATS.URL, cfg.NATS.Name, cfg.PublishQueueSize, log)
	if err != nil {
		log.Warn("nats unreachable, running with single-instance fanout", "url", cfg.NATS.URL, "error", err)
		fanout = bus.NewLocalBus()
	} else {
		log.Info("connected to nats", "url", cfg.NATS.URL)
		fanout = natsBus
	}
	defer fanout.Close()

	gw := gateway.New(hub, store, cache, fanout, log)
	if err := gw.SubscribeBus(); err != nil {
		log.Error("failed to subscribe to fanout topics", "error", err)
		os.Exit(1)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpapi.OriginFilter(cfg.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/rooms/:roomId/users", httpapi.RoomUsers(store))
	}

	ws := router.Group("/ws")
	{
		ws.GET("/chat", gw.Handler(gateway.NamespaceChat, cfg.JWTSecret))
		ws.GET("/webrtc", gw.Handler(gateway.NamespaceWebRTC, cfg.JWTSecret))
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("gateway listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown incomplete", "error", err)
	}
}
