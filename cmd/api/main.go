package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"authrelay/internal/cache"
	"authrelay/internal/config"
	"authrelay/internal/httpserver"
	"authrelay/internal/logger"
	"authrelay/internal/models"
	"authrelay/internal/queue"
)

func main() {
	_ = godotenv.Load()
	lg := logger.New()
	defer lg.Sync()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		lg.Fatalw("DATABASE_URL is empty")
	}
	if cfg.SecretKey == "" {
		lg.Fatalw("SECRET_KEY is empty")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.ApiKey{}, &models.Action{}, &models.WebHook{}); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		lg.Fatalw("invalid redis url", "error", err)
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	q, err := queue.Connect(cfg.RabbitMQURL, rdb, cfg.TaskQueue, lg)
	if err != nil {
		lg.Fatalw("rabbitmq connect failed", "error", err)
	}
	defer q.Close()

	c := cache.New(rdb, cfg.CacheTTL, cfg.CachePrefix, lg)
	router := httpserver.NewRouter(db, cfg, c, q, lg)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		lg.Infow("listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatalw("server failed", "error", err)
		}
	}()

	<-done
	lg.Infow("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Errorw("shutdown failed", "error", err)
	}
}
