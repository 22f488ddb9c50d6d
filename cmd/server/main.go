package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/borrowhub/internal/adapter/handler"
	"github.com/rl1809/borrowhub/internal/adapter/identity"
	"github.com/rl1809/borrowhub/internal/adapter/storage"
	"github.com/rl1809/borrowhub/internal/config"
	"github.com/rl1809/borrowhub/internal/core/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := config.Load()

	// MySQL
	db, err := sqlx.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Error("failed to open mysql", "error", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to ping mysql", "error", err)
		os.Exit(1)
	}
	log.Info("connected to mysql")

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to redis")

	// Adapters
	store := storage.NewMySQLStore(db)
	cache := storage.NewRedisAdapter(rdb, cfg.SnapshotTTL)
	id := identity.NewJWTIdentity(cfg.JWTSecret)

	// Services
	inventoryService := service.NewInventoryService(store, cache, log)
	cartService := service.NewCartService(store, cache, log)
	historyService := service.NewHistoryService(store, log)
	borrowers := service.NewBorrowerDirectory(store)

	// Keep the inventory snapshot warm so the listing stays fast even
	// when no borrower has hit it recently.
	go func() {
		ticker := time.NewTicker(cfg.SnapshotTTL)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := inventoryService.List(ctx); err != nil {
					log.Warn("inventory snapshot refresh failed", "error", err)
				}
			}
		}
	}()

	// HTTP server
	httpHandler := handler.NewHTTPHandler(id, borrowers, inventoryService, cartService, historyService, log)
	mux := http.NewServeMux()
	httpHandler.Register(mux)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.LogRequests(log, mux),
	}

	go func() {
		log.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info("http server stopped")

	cancel()
	rdb.Close()
	db.Close()
	log.Info("connections closed")
}
