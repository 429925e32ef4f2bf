package main

import (
	"context"
	"errors"
	"fitcoach/admin/internal/api"
	"fitcoach/admin/internal/config"
	"fitcoach/admin/internal/jobs"
	"fitcoach/admin/internal/logger"
	"fitcoach/admin/internal/repository"
	"fitcoach/admin/internal/repository/mongo"
	"fitcoach/admin/internal/repository/postgres"
	"fitcoach/admin/internal/service"
	"fitcoach/admin/internal/storage"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// stores bundles the repositories of the selected database backend.
type stores struct {
	users         repository.UserRepository
	schedules     repository.ScheduleRepository
	notifications repository.NotificationRepository
	close         func() error
}

// @title FitCoach Admin API
// @version 1.0
// @description Session scheduling and roster management for trainers and administrators.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARN: could not read .env: %v", err)
	}

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg config.Config, zl *zap.Logger) error {
	zl.Info("Starting FitCoach admin server", zap.String("driver", cfg.Database.Driver))

	loc, err := cfg.Schedule.Location()
	if err != nil {
		return err
	}

	// --- Database Connection ---
	st, err := openStores(cfg.Database, zl)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			zl.Error("failed to close database", zap.Error(err))
		}
	}()

	// --- Initialize Storage ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	fileStorage, err := storage.NewS3Storage(ctx, cfg.S3, zl)
	cancel()
	if errors.Is(err, storage.ErrStorageNotConfigured) {
		zl.Warn("S3 bucket not configured, profile image uploads are disabled")
		fileStorage = nil
	} else if err != nil {
		return fmt.Errorf("initialize S3 storage: %w", err)
	}

	// --- Initialize Services ---
	scheduleService := service.NewScheduleService(st.schedules, st.users, st.notifications, fileStorage, service.ScheduleOptions{
		Location:        loc,
		DefaultPageSize: cfg.Schedule.DefaultPageSize,
		MaxPageSize:     cfg.Schedule.MaxPageSize,
		MeetingBaseURL:  cfg.Meeting.BaseURL,
	}, zl)
	services := api.Services{
		Auth:     service.NewAuthService(st.users, cfg.JWT.Secret, cfg.JWT.Expiration, zl),
		Schedule: scheduleService,
		User:     service.NewUserService(st.users, fileStorage, zl),
		Export:   service.NewExportService(st.schedules, st.users, loc, zl),
	}

	// --- Background Jobs ---
	if cfg.Sweep.Enabled {
		sweep, err := jobs.NewCompletionSweep(scheduleService, cfg.Sweep.Cron, zl)
		if err != nil {
			return err
		}
		sweep.Start()
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			sweep.Stop(stopCtx)
		}()
	}

	// --- Initialize Gin Engine ---
	if cfg.Log.Format != "console" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := api.NewRouter(cfg.JWT.Secret, services, zl)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful Shutdown ---
	serverErr := make(chan error, 1)
	go func() {
		zl.Info("Server starting", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	zl.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	zl.Info("Server exiting.")
	return nil
}

func openStores(cfg config.DatabaseConfig, zl *zap.Logger) (*stores, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.NewDB(cfg, zl)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		if err := postgres.RunMigrations(sqlDB, zl); err != nil {
			return nil, err
		}
		return &stores{
			users:         postgres.NewUserRepo(db),
			schedules:     postgres.NewScheduleRepo(db),
			notifications: postgres.NewNotificationRepo(db),
			close:         func() error { return postgres.Close(db) },
		}, nil

	default:
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		appDB := client.Database(cfg.Name)
		zl.Info("Connected to MongoDB", zap.String("database", cfg.Name))

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			mongo.EnsureIndexes(ctx, appDB, zl)
		}()

		return &stores{
			users:         mongo.NewMongoUserRepository(appDB),
			schedules:     mongo.NewMongoScheduleRepository(appDB),
			notifications: mongo.NewMongoNotificationRepository(appDB),
			close:         func() error { return mongo.DisconnectDB(client) },
		}, nil
	}
}
