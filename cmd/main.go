package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"nimbus/internal/config"
	"nimbus/internal/eventbus"
	"nimbus/internal/httphandlers"
	"nimbus/internal/integrations/rclone"
	"nimbus/internal/manager"
	"nimbus/internal/osched"
	"nimbus/internal/reconcile"
	"nimbus/internal/service"
	"nimbus/internal/store"
	"nimbus/logger"
)

const version = "0.3.0"

func main() {
	_ = godotenv.Load()

	cfg := config.New()
	if err := logger.InitLogger(cfg.Mode); err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		return
	}
	defer logger.Sync()

	srv, teardown, err := setup(cfg)
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		logger.Info("serving http", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server closed: ", err)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	<-done
	log.Println("Shutting down...")

	if teardown != nil {
		if err := teardown(); err != nil {
			logger.Error("teardown failed", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %s\n", err)
	}
}

func setup(cfg config.Config) (*http.Server, func() error, error) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	bus := eventbus.New()
	st := store.NewJSONStore(cfg.StateFile(), version)
	rcloneClient := rclone.NewClient(rclone.NewCommandRunner())

	homeDir, err := os.UserHomeDir()
	if err != nil {
		cancel()
		return nil, nil, err
	}
	adapter := osched.ForPlatform(runtime.GOOS, homeDir, osched.NewCommandRunner())

	profileService := service.NewProfileService(st, cfg, rcloneClient, bus)
	backupService := service.NewBackupService(st, rcloneClient, bus)
	scheduleService := service.NewScheduleService(st, cfg, adapter, bus)

	reconciler := reconcile.NewReconciler(st, cfg)
	syncService, err := service.NewSyncService(st, reconciler, bus, cfg.SyncInterval)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	if err := scheduleService.RestoreRegistrations(ctx); err != nil {
		logger.Error("failed to restore schedule registrations", zap.Error(err))
	}
	if err := syncService.Start(ctx); err != nil {
		cancel()
		return nil, nil, err
	}

	mn := manager.New(cfg, profileService, backupService, scheduleService, syncService, rcloneClient, bus, version)
	apiHandler := httphandlers.NewApiHandler(mn)
	routes := httphandlers.Routes(apiHandler)

	return &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: routes,
		}, func() error {
			cancel()
			return syncService.Stop()
		}, nil
}
