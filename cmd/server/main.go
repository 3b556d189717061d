package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/adapter/repository/cache"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/adapter/rest"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/adapter/storage/gridfs"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/adapter/storage/s3"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/dashboard"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/listing/domain"
	listingUsecase "github.com/Abdurahmanit/GroupProject/classifieds-service/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/mailer"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/platform/auth"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/platform/tracer"
	userUsecase "github.com/Abdurahmanit/GroupProject/classifieds-service/internal/user/usecase"
	"go.uber.org/zap"
)

const serviceName = "classifieds-service"

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewLogger(&logger.LoggerConfig{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputFile: cfg.Log.Output,
	})
	defer func() { _ = appLogger.Sync() }()
	appLogger.Info("Application starting...", zap.String("service_name", serviceName),
		zap.String("http_port", cfg.HTTP.Port), zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("log_level", appLogger.Config().Level))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracer.InitTracer(ctx, &cfg.Tracing)
	if err != nil {
		appLogger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	metricsManager := metrics.NewMetricsManager("classifieds")
	metricsSrv := metrics.NewMetricsServer(cfg.Metrics.Port, appLogger, metricsManager.Registry)
	go metrics.Serve(metricsSrv, appLogger)

	mongoClient, err := mongodb.NewMongoDBConnection(&cfg.Mongo)
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	db := mongoClient.Database(cfg.Mongo.Database)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		appLogger.Fatal("Failed to create MongoDB indexes", zap.Error(err))
	}
	appLogger.Info("Connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	listingRepo := mongodb.NewListingRepository(db, appLogger)
	userRepo := mongodb.NewUserRepository(db, appLogger)

	var listingCache listingUsecase.ListingCache
	if cfg.Redis.Address != "" {
		c, err := cache.NewListingCache(ctx, &cfg.Redis)
		if err != nil {
			appLogger.Warn("Redis unavailable, listing cache disabled", zap.Error(err))
		} else {
			defer c.Close()
			listingCache = c
		}
	}

	var publisher listingUsecase.EventPublisher
	if cfg.NATS.URL != "" {
		p, err := nats.NewPublisher(&cfg.NATS, appLogger)
		if err != nil {
			appLogger.Warn("NATS unavailable, listing events disabled", zap.Error(err))
		} else {
			defer p.Close()
			publisher = p
		}
	}

	var (
		assets       domain.AssetStore
		assetHandler *rest.AssetHandler
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverGridFS:
		store := gridfs.NewStore(db, &cfg.Storage.GridFS, appLogger)
		assets = store
		assetHandler = rest.NewAssetHandler(store, appLogger)
	default:
		store, err := s3.NewS3Storage(ctx, &cfg.Storage.MinIO, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize MinIO storage", zap.Error(err))
		}
		assets = store
	}

	var mail rest.Mailer
	if cfg.SMTP.Host != "" {
		mail = mailer.NewSMTPMailer(&cfg.SMTP)
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	listings := listingUsecase.NewListingUsecase(listingRepo, assets, listingCache, publisher, metricsManager, appLogger)
	users := userUsecase.NewUserUsecase(userRepo, assets, tokens, appLogger)
	dash := dashboard.NewService(listings, listingRepo, users, appLogger)

	router := rest.NewRouter(rest.RouterDeps{
		Listings:       rest.NewListingHandler(listings, users, mail, cfg.HTTP.MaxUploadBytes, appLogger),
		Users:          rest.NewUserHandler(users, dash, cfg.HTTP.MaxUploadBytes, appLogger),
		Assets:         assetHandler,
		Tokens:         tokens,
		Metrics:        metricsManager,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Logger:         appLogger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Metrics server shutdown failed", zap.Error(err))
		}
	}
	appLogger.Info("Application stopped")
}
