package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/adapter/cache"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/adapter/email"
	natsadapter "github.com/Abdurahmanit/GroupProject/village-market/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/adapter/storage/local"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/adapter/storage/s3"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/auth"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/config"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/handler"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/health"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/tracer"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/router"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/usecase"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const uploadsPrefix = "uploads"

type App struct {
	cfg            *config.Config
	log            *logger.Logger
	server         *http.Server
	grpcHealth     *health.GRPCServer
	mongoClient    *mongo.Client
	redisClient    *redis.Client
	localCache     *cache.TieredCache
	publisher      *natsadapter.Publisher
	tracerProvider *sdktrace.TracerProvider
}

// New connects every collaborator and assembles the HTTP server. Optional
// collaborators (Redis, NATS, SMTP, OTLP, gRPC health) stay off when unset.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	appLogger := logger.New(cfg.Log)
	appLogger.Info("Logger initialized", zap.String("env", cfg.Env), zap.String("port", cfg.Server.Port))

	a := &App{cfg: cfg, log: appLogger}
	a.tracerProvider = tracer.InitTracer(cfg.Otel.ServiceName, cfg.Otel.ExporterOTLPEndpoint, appLogger)

	appLogger.Info("Initializing MongoDB client...")
	mongoClient, err := mongodb.NewMongoDBConnection(ctx, cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	a.mongoClient = mongoClient
	appLogger.Info("MongoDB client initialized successfully", zap.String("database", cfg.Mongo.Database))
	db := mongoClient.Database(cfg.Mongo.Database)
	pinger := mongodb.NewPinger(mongoClient)

	var remote domain.Cache
	if cfg.Redis.Address != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis, appLogger)
		if err != nil {
			a.shutdownClients(ctx)
			return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
		}
		a.redisClient = rdb
		remote = cache.NewRedisCache(rdb, appLogger)
	} else {
		appLogger.Info("Redis is not configured; using the in-process cache and rate limiter only")
	}
	a.localCache = cache.NewTieredCache(cfg.Cache.LocalSize, remote, appLogger)

	var publisher domain.EventPublisher
	if cfg.NATS.URL != "" {
		p, err := natsadapter.NewPublisher(cfg.NATS, cfg.Otel.ServiceName, appLogger)
		if err != nil {
			a.shutdownClients(ctx)
			return nil, fmt.Errorf("failed to initialize NATS publisher: %w", err)
		}
		a.publisher = p
		publisher = p
	} else {
		appLogger.Info("NATS is not configured; domain events are not published")
	}

	storage, uploadRoot, err := newStorage(ctx, cfg, appLogger)
	if err != nil {
		a.shutdownClients(ctx)
		return nil, err
	}

	var sender email.Sender
	if cfg.SMTP.Enabled() {
		if sender, err = email.NewSMTPSender(cfg.SMTP, appLogger); err != nil {
			a.shutdownClients(ctx)
			return nil, fmt.Errorf("failed to initialize SMTP sender: %w", err)
		}
	} else {
		appLogger.Info("SMTP is not configured; mails are written to the log")
		sender = email.NewLogSender(appLogger)
	}
	mailer := email.NewMailer(sender, cfg.SMTP.Timeout)

	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	if err != nil {
		a.shutdownClients(ctx)
		return nil, err
	}

	var metricsManager *metrics.MetricsManager
	deps := usecase.Deps{
		Storage:   storage,
		Cache:     a.localCache,
		CacheTTL:  cfg.Cache.TTL,
		Publisher: publisher,
		Logger:    appLogger,
	}
	if cfg.Metrics.Enabled {
		metricsManager = metrics.NewMetricsManager("village_market")
		deps.Metrics = metricsManager
	}

	properties := usecase.NewListingUsecase[domain.Property](mongodb.NewListingRepository[domain.Property](ctx, db, appLogger), deps)
	lands := usecase.NewListingUsecase[domain.LandProperty](mongodb.NewListingRepository[domain.LandProperty](ctx, db, appLogger), deps)
	hotels := usecase.NewListingUsecase[domain.Hotel](mongodb.NewListingRepository[domain.Hotel](ctx, db, appLogger), deps)
	cars := usecase.NewListingUsecase[domain.Car](mongodb.NewListingRepository[domain.Car](ctx, db, appLogger), deps)
	packages := usecase.NewListingUsecase[domain.Package](mongodb.NewListingRepository[domain.Package](ctx, db, appLogger), deps)
	accessories := usecase.NewListingUsecase[domain.Accessory](mongodb.NewListingRepository[domain.Accessory](ctx, db, appLogger), deps)
	events := usecase.NewEventUsecase(mongodb.NewEventRepository(ctx, db, appLogger), deps)

	users := mongodb.NewUserRepository(ctx, db, appLogger)
	authUC := usecase.NewAuthUsecase(users, tokens, auth.NewPasswordHasher(auth.DefaultCost), mailer, properties, events, deps)
	adminUC := usecase.NewAdminUsecase(users, mailer, []usecase.ListingModerator{
		properties, lands, hotels, cars, packages, accessories, events,
	}, deps)
	notificationUC := usecase.NewNotificationUsecase(cfg.Twilio.Configured(), deps)

	if cfg.Admin.Email != "" {
		if err := authUC.SeedAdmin(ctx, usecase.AdminSeed{
			Name:     cfg.Admin.Name,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
			Phone:    cfg.Admin.Phone,
		}); err != nil {
			a.shutdownClients(ctx)
			return nil, fmt.Errorf("failed to seed admin account: %w", err)
		}
	}

	rs := handler.NewResponder(appLogger, cfg.IsProduction())
	imageMax := cfg.Upload.MaxImageSize
	handlers := router.Handlers{
		Listings: []router.ListingRoutes{
			handler.NewListingHandler(properties, storage, imageMax, rs),
			handler.NewListingHandler(lands, storage, imageMax, rs),
			handler.NewListingHandler(hotels, storage, imageMax, rs),
			handler.NewListingHandler(cars, storage, imageMax, rs),
			handler.NewListingHandler(packages, storage, imageMax, rs),
			handler.NewListingHandler(accessories, storage, imageMax, rs),
			handler.NewEventHandler(events, storage, imageMax, rs),
		},
		Auth:         handler.NewAuthHandler(authUC, storage, imageMax, cfg.Upload.MaxDocumentSize, rs),
		Admin:        handler.NewAdminHandler(adminUC, rs),
		Notification: handler.NewNotificationHandler(notificationUC, rs),
		Health:       handler.NewHealthHandler(pinger),
	}
	opts := router.Options{
		Config:     cfg,
		Logger:     appLogger,
		Verifier:   tokens,
		Redis:      a.redisClient,
		UploadRoot: uploadRoot,
	}
	if metricsManager != nil {
		opts.Metrics = metricsManager
	}

	a.server = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.New(handlers, opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	if cfg.GRPC.HealthPort != "" {
		a.grpcHealth = health.NewGRPCServer(cfg.GRPC.HealthPort, cfg.Otel.ServiceName, pinger, appLogger)
	}
	return a, nil
}

func newStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (domain.FileStorage, string, error) {
	switch cfg.Storage.Driver {
	case config.StorageMinio:
		st, err := s3.NewS3Storage(ctx, cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Bucket, cfg.Minio.UseSSL, log)
		if err != nil {
			return nil, "", fmt.Errorf("failed to initialize MinIO storage: %w", err)
		}
		log.Info("Using MinIO file storage", zap.String("bucket", cfg.Minio.Bucket))
		return st, "", nil
	default:
		st, err := local.NewDiskStorage(cfg.Upload.Dir, uploadsPrefix, log)
		if err != nil {
			return nil, "", fmt.Errorf("failed to initialize local storage: %w", err)
		}
		log.Info("Using local file storage", zap.String("root", st.Root()))
		return st, st.Root(), nil
	}
}

// Run serves until SIGINT or SIGTERM, then shuts everything down gracefully.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		a.log.Info("Starting HTTP server", zap.String("address", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	if a.grpcHealth != nil {
		go func() {
			if err := a.grpcHealth.Start(ctx); err != nil {
				errCh <- fmt.Errorf("grpc health server: %w", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		a.log.Info("Received shutdown signal, shutting down application...", zap.String("signal", sig.String()))
	case runErr = <-errCh:
		a.log.Error("Server failed, shutting down application...", zap.Error(runErr))
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout+5*time.Second)
	defer shutdownCancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Error("Error during HTTP server graceful shutdown", zap.Error(err))
	} else {
		a.log.Info("HTTP server stopped successfully")
	}
	if a.grpcHealth != nil {
		a.grpcHealth.Stop()
	}
	a.shutdownClients(shutdownCtx)

	a.log.Info("Application shut down successfully")
	_ = a.log.Sync()
	return runErr
}

func (a *App) shutdownClients(ctx context.Context) {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.localCache != nil {
		a.localCache.Close()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis client", zap.Error(err))
		} else {
			a.log.Info("Redis client closed successfully")
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.log.Error("Error disconnecting from MongoDB", zap.Error(err))
		} else {
			a.log.Info("MongoDB connection closed successfully")
		}
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}
}
