package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/soletra/ig2tg/internal/config"
	"github.com/soletra/ig2tg/internal/geo"
	"github.com/soletra/ig2tg/internal/handlers"
	"github.com/soletra/ig2tg/internal/logger"
	"github.com/soletra/ig2tg/internal/store"
	"github.com/soletra/ig2tg/internal/telegram"
	"github.com/soletra/ig2tg/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	// Backend selection happens exactly once, here.
	var st store.Store
	if cfg.UsePostgres() {
		st, err = store.OpenPostgres(ctx, cfg.DatabaseURL)
	} else {
		st, err = store.OpenSQLite(cfg.DBPath)
	}
	if err != nil {
		zlog.Fatal("storage", zap.Error(err))
	}
	defer st.Close()
	if cfg.UsePostgres() {
		zlog.Info("storage backend", zap.String("kind", "postgres"))
	} else {
		zlog.Info("storage backend", zap.String("kind", "sqlite"), zap.String("path", cfg.DBPath))
	}

	tg, err := telegram.New(cfg.BotToken, cfg.ChannelURL)
	if err != nil {
		zlog.Fatal("telegram", zap.Error(err))
	}

	geoReader, err := geo.Open(cfg.GeoIPPath)
	if err != nil {
		zlog.Warn("geo lookups disabled", zap.Error(err))
		geoReader, _ = geo.Open("")
	}
	defer geoReader.Close()

	redirectHandler := &handlers.RedirectHandler{Store: st, Cfg: cfg, Log: zlog}
	webhookHandler := &handlers.WebhookHandler{Store: st, TG: tg, Log: zlog}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(handlers.RequestLogger(zlog))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", handlers.Health)
	r.Get("/privacy", handlers.Privacy)
	r.Get("/ig", redirectHandler.ServeHTTP)
	r.Post("/tg/webhook", webhookHandler.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())

	adminHandler, err := web.NewAdminHandler(st, cfg, tg, geoReader, zlog)
	if err != nil {
		zlog.Fatal("admin", zap.Error(err))
	}
	adminHandler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zlog.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server", zap.Error(err))
		}
	}()

	<-stop
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown", zap.Error(err))
	}
}
