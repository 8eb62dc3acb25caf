package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_grocery/internal/cache"
	"github.com/fjod/go_grocery/internal/cart"
	"github.com/fjod/go_grocery/internal/catalog"
	"github.com/fjod/go_grocery/internal/checkout"
	"github.com/fjod/go_grocery/internal/clients"
	"github.com/fjod/go_grocery/internal/config"
	"github.com/fjod/go_grocery/internal/domain"
	h "github.com/fjod/go_grocery/internal/http"
	"github.com/fjod/go_grocery/internal/logger"
	"github.com/fjod/go_grocery/internal/notify"
	"github.com/fjod/go_grocery/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Service: cfg.ServiceName,
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	if err := run(cfg, log); err != nil {
		log.Error("grocery-api stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx := context.Background()

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	// Cart store: in memory, optionally backed by MongoDB and Redis
	storeOpts := []cart.Option{
		cart.WithLogger(log),
		cart.WithMixedVendorPolicy(cfg.MixedVendorPolicy),
	}
	if cfg.MongoURI != "" {
		mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return err
		}
		closers = append(closers, func() { _ = mongoDB.Client().Disconnect(context.Background()) })

		repo, err := repository.NewIndexedMongoRepository(ctx, mongoDB)
		if err != nil {
			return fmt.Errorf("failed to prepare cart collection: %w", err)
		}
		storeOpts = append(storeOpts, cart.WithRepository(repo))
		log.Info("connected to MongoDB", "db", cfg.MongoDB)
	}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		storeOpts = append(storeOpts, cart.WithCache(cache.NewRedisCache(redisClient).WithTTL(cfg.CartCacheTTL)))
		log.Info("redis ping succeeded", "addr", cfg.RedisAddr)
	}
	store := cart.NewStore(storeOpts...)

	var products catalog.Catalog
	switch cfg.CatalogSource {
	case config.CatalogHTTP:
		products = clients.NewCatalogClient(clients.NewClient(cfg.CatalogURL, cfg.ClientTimeout))
	default:
		repo, err := catalog.NewRepository(cfg.CatalogDBPath)
		if err != nil {
			return err
		}
		closers = append(closers, func() { _ = repo.Close() })
		if err := repo.RunMigrations(cfg.CatalogMigrations); err != nil {
			return fmt.Errorf("catalog migrations: %w", err)
		}
		products = repo
	}
	log.Info("catalog ready", "source", cfg.CatalogSource)

	var attempts repository.AttemptRepository = repository.NewMemoryAttemptRepository()
	if cfg.PostgresHost != "" {
		cred := &repository.Credentials{
			Host:              cfg.PostgresHost,
			Port:              cfg.PostgresPort,
			User:              cfg.PostgresUser,
			Password:          cfg.PostgresPassword,
			DBName:            cfg.PostgresDB,
			MigrationsDirPath: cfg.PostgresMigrations,
		}
		pg, err := repository.NewPostgresRepository(cred)
		if err != nil {
			return err
		}
		closers = append(closers, func() { _ = pg.Close() })
		if err := pg.RunMigrations(cred); err != nil {
			return fmt.Errorf("postgres migrations: %w", err)
		}
		attempts = pg
		log.Info("connected to Postgres", "host", cfg.PostgresHost, "db", cfg.PostgresDB)
	}

	// With Kafka the latest-notification view is fed from the topic, so
	// every instance sees notifications raised by its peers.
	latest := notify.NewLatest()
	emitters := notify.Fanout{notify.NewLogEmitter(log)}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaEmitter := notify.NewKafkaEmitter(log, cfg.KafkaBrokers...)
		closers = append(closers, func() { _ = kafkaEmitter.Close() })
		emitters = append(emitters, kafkaEmitter)

		subscriber := notify.NewSubscriber(log, latest, subscriberGroup(cfg), cfg.KafkaBrokers...)
		subCtx, stopSubscriber := context.WithCancel(ctx)
		closers = append(closers, func() {
			stopSubscriber()
			_ = subscriber.Close()
		})
		go subscriber.Run(subCtx)
		log.Info("publishing notifications to kafka", "brokers", cfg.KafkaBrokers, "topic", notify.NotificationsTopic)
	} else {
		emitters = append(emitters, latest)
	}

	navigator := checkout.NavigatorFunc(func(userID string, order *domain.PlacedOrder) {
		orderID := ""
		if order != nil {
			orderID = order.ID
		}
		log.Info("order confirmation ready", "user_id", userID, "order_id", orderID)
	})

	orders := clients.NewOrderClient(clients.NewClient(cfg.OrdersURL, cfg.ClientTimeout))
	orchestrator := checkout.NewOrchestrator(
		store,
		checkout.NewVendorHandler(products, cfg.VendorTimeout),
		checkout.NewOrderHandler(orders, cfg.SubmitTimeout),
		emitters,
		checkout.WithAttemptRecorder(attempts),
		checkout.WithNavigator(navigator, cfg.NavigationDelay),
		checkout.WithRequireCoordinates(cfg.RequireCoordinates),
		checkout.WithLogger(log),
	)

	handlers := h.Handlers{
		Cart:          h.NewCartHandler(store, products, cfg.RequestTimeout),
		Vendors:       h.NewVendorHandler(products, cfg.RequestTimeout),
		Checkout:      h.NewCheckoutHandler(orchestrator, attempts, cfg.SubmitTimeout+cfg.VendorTimeout+5*time.Second),
		Notifications: h.NewNotificationHandler(latest),
	}
	if cfg.FavoritesURL != "" {
		favorites := clients.NewFavoritesClient(clients.NewClient(cfg.FavoritesURL, cfg.ClientTimeout))
		handlers.Favorites = h.NewFavoritesHandler(favorites, cfg.RequestTimeout)
	}
	router := h.NewRouter(h.NewAuthenticator(cfg.JWTSecret), handlers, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      otelhttp.NewHandler(router, cfg.ServiceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// gRPC carries health checks and reflection only
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(cfg.ServiceName, healthpb.HealthCheckResponse_SERVING)

	// Enable reflection for grpcurl/grpcui
	reflection.Register(grpcServer)

	errCh := make(chan error, 2)
	go func() {
		log.Info("http server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		log.Info("grpc server starting", "port", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	case serveErr = <-errCh:
	}

	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server forced to shutdown", "error", err)
	}
	grpcServer.GracefulStop()

	log.Info("grocery-api exited")
	return serveErr
}

func subscriberGroup(cfg config.Config) string {
	if cfg.KafkaGroupID != "" {
		return cfg.KafkaGroupID
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "local"
	}
	return cfg.ServiceName + "-" + host
}
