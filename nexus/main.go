package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nexus/nexus/chat"
	"nexus/nexus/config"
	"nexus/nexus/controllers"
	"nexus/nexus/routes"
	"nexus/nexus/services/assistant"
	"nexus/nexus/sources/psql"
	"nexus/nexus/sources/store"
	"nexus/nexus/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	logging.InitLogger()
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.ErrorLogger.Error("config load error", zap.Error(err))
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snapStore, cleanup, err := newStore(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("store setup error", zap.String("backend", cfg.StoreBackend), zap.Error(err))
		os.Exit(1)
	}
	defer cleanup()

	presets := chat.LoadPresets(cfg.PresetsFile, logging.AppLogger)
	dispatcher := assistant.NewDispatcher(cfg.SchedulingAgentURL, cfg.DocumentQAAgentURL, logging.AppLogger)
	manager := chat.NewManager(snapStore, dispatcher, presets, logging.AppLogger)
	manager.Bootstrap(ctx)

	chatCtrl := controllers.NewChatController(manager)
	healthCtrl := controllers.NewHealthController()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Mount("/health", routes.HealthRoutes(healthCtrl))
	r.Mount("/chat", routes.ChatRoutes(chatCtrl, cfg))

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}

// newStore picks the snapshot backend from config. The file store is
// the default and needs no external services.
func newStore(ctx context.Context, cfg config.Config) (chat.Store, func(), error) {
	switch cfg.StoreBackend {
	case "postgres":
		db, err := psql.NewDatabase(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return psql.NewSnapshotStore(db, logging.AppLogger), db.Close, nil
	case "minio":
		s, err := store.NewMinIOStore(cfg, logging.AppLogger)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	default:
		return store.NewFileStore(cfg.StorePath, logging.AppLogger), func() {}, nil
	}
}
