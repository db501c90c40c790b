package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"officehours-backend/config"
	"officehours-backend/internal/api"
	"officehours-backend/internal/catalog"
	"officehours-backend/internal/db"
	"officehours-backend/internal/device"
	"officehours-backend/internal/kv"
	"officehours-backend/internal/logger"
	"officehours-backend/internal/notification"
	"officehours-backend/internal/reminder"
	"officehours-backend/internal/store"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	zlog, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zlog.Sync()
	zlog.Info("configuration loaded", zap.String("path", configPath))

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		zlog.Warn("VAPID keys are not configured, fired reminders will not be pushed")
	}

	gormDB, err := db.Init(&cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}
	zlog.Info("database initialized", zap.String("driver", cfg.Database.Driver))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage := kv.NewCachedStorage(
		kv.NewGormStorage(gormDB),
		cache.New(cfg.Storage.CacheTTL, 2*cfg.Storage.CacheTTL),
	)
	cat := catalog.New(cfg.Offices)
	gateway := device.NewLocalGateway(gormDB, zlog, cfg.Push.Enabled())

	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions, zlog)
	pool.Start(ctx)
	dispatcher := device.NewDispatcher(gateway, pool, zlog, time.Local)

	svc := reminder.NewService(
		cat,
		store.NewPreferenceStore(storage, zlog),
		store.NewEnablementStore(storage, zlog),
		notification.NewScheduler(gateway, zlog),
		gateway,
		dispatcher,
		zlog,
	)

	if err := dispatcher.Start(ctx); err != nil {
		zlog.Fatal("failed to start dispatcher", zap.Error(err))
	}

	count, err := svc.Start(ctx)
	if err != nil {
		if errors.Is(err, reminder.ErrUnavailable) {
			zlog.Fatal("failed to start reminders", zap.Error(err))
		}
		zlog.Warn("initial resync incomplete", zap.Error(err))
	}
	zlog.Info("reminders scheduled", zap.Int("count", count), zap.Int("offices", cat.Len()))

	handler := api.NewHandler(svc, cat, gormDB, webpushOptions, zlog)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(handler, &cfg.Server),
	}

	go func() {
		zlog.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	zlog.Info("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("HTTP server Shutdown", zap.Error(err))
	}
	cancel()
	dispatcher.Stop()

	zlog.Info("server gracefully stopped")
}
