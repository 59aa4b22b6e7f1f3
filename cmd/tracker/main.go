package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/valeriaulyamaeva/business-tracker/internal/analytics"
	"github.com/valeriaulyamaeva/business-tracker/internal/appdata"
	"github.com/valeriaulyamaeva/business-tracker/internal/auth"
	"github.com/valeriaulyamaeva/business-tracker/internal/backup"
	"github.com/valeriaulyamaeva/business-tracker/internal/config"
	"github.com/valeriaulyamaeva/business-tracker/internal/database"
	"github.com/valeriaulyamaeva/business-tracker/internal/remote"
	"github.com/valeriaulyamaeva/business-tracker/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, closeDB, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Ошибка подключения к БД: %v", err)
	}
	defer closeDB()

	manager := auth.NewManager(db, []byte(cfg.JWTSecret), cfg.TokenTTL)
	adapter := remote.NewAdapter(db, db)
	store := appdata.New(adapter)
	observer := session.NewObserver(manager, store)

	srv := &server{
		auth:        manager,
		store:       store,
		remote:      adapter,
		observer:    observer,
		calendar:    analytics.Calendar{Location: cfg.Location, FirstWeekday: cfg.WeekStart},
		origins:     cfg.AllowedOrigins,
		sessionFile: cfg.SessionFile,
		now:         time.Now,
	}
	srv.restoreSession(ctx)
	observer.Start(ctx)
	defer observer.Close()

	if cfg.BackupDir != "" {
		scheduler := backup.NewScheduler(store, cfg.BackupDir, cfg.Location)
		if err := scheduler.Start(cfg.BackupSchedule); err != nil {
			log.Fatalf("Резервное копирование не запущено: %v", err)
		}
		defer scheduler.Stop()
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Ошибка остановки сервера: %v", err)
		}
	}()

	log.Printf("Сервер запущен на порту %s (хранилище: %s)", cfg.Port, cfg.StoreDriver)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
