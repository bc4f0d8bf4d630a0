package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fjod/go_foodcourt/internal/catalog"
	"github.com/fjod/go_foodcourt/internal/checkout"
	"github.com/fjod/go_foodcourt/internal/config"
	foodgrpc "github.com/fjod/go_foodcourt/internal/grpc"
	h "github.com/fjod/go_foodcourt/internal/http"
	"github.com/fjod/go_foodcourt/internal/order"
	"github.com/fjod/go_foodcourt/internal/payment"
	"github.com/fjod/go_foodcourt/internal/publisher"
	"github.com/fjod/go_foodcourt/internal/session"
	"github.com/fjod/go_foodcourt/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if err := run(cfg, log); err != nil {
		log.Fatal("foodcourt stopped with error", zap.Error(err))
	}
	log.Info("foodcourt stopped")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var probes []foodgrpc.Probe

	// Catalog
	catalogRepo, closeCatalog, err := openCatalog(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeCatalog()
	if p, ok := catalogRepo.(interface{ Ping(context.Context) error }); ok {
		probes = append(probes, foodgrpc.Probe{Name: "mongodb", Check: p.Ping})
	}

	var menuCache catalog.MenuCache = catalog.NopCache{}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		log.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))
		redisCache := catalog.NewRedisCache(redisClient)
		menuCache = redisCache
		probes = append(probes, foodgrpc.Probe{Name: "redis", Check: redisCache.Ping})
	}
	catalogService := catalog.NewService(catalogRepo, menuCache, log)

	// Orders
	orderRepo, err := openOrders(cfg, log)
	if err != nil {
		return err
	}
	defer orderRepo.Close()
	if p, ok := orderRepo.(interface{ Ping(context.Context) error }); ok {
		probes = append(probes, foodgrpc.Probe{Name: "postgres", Check: p.Ping})
	}
	orderService := order.NewService(orderRepo)

	// Checkout
	gateway := payment.NewBreakerGateway(payment.NewMockGateway(statusSource(cfg.PaymentMode)), cfg.PaymentTimeout, log)
	checkoutService := checkout.NewService(orderService, gateway, cfg.Pricing)

	sessions := session.NewStore(session.WithTTL(cfg.CartSessionTTL), session.WithPolicy(cfg.CartPolicy))
	defer sessions.Close()

	var wg sync.WaitGroup

	// Order events
	if len(cfg.KafkaBrokers) > 0 {
		poller := publisher.NewOutboxPoller(orderRepo, cfg.OrderEventsTopic, log, cfg.KafkaBrokers...)
		defer poller.Close()
		wg.Add(1)
		go func() {
			defer wg.Done()
			poller.Run(ctx)
		}()
		log.Info("outbox poller started", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.OrderEventsTopic))
	} else {
		log.Warn("KAFKA_BROKERS is empty, order events stay in the outbox")
	}

	// gRPC health
	grpcServer, healthServer := foodgrpc.NewServer()
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port: %w", err)
	}
	prober := foodgrpc.NewProber(healthServer, cfg.ProbeInterval, log, probes...)
	wg.Add(1)
	go func() {
		defer wg.Done()
		prober.Run(ctx)
	}()
	go func() {
		log.Info("grpc health server listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("grpc server error", zap.Error(err))
		}
	}()

	// HTTP
	router := h.NewRouter(h.Handlers{
		Cart:     h.NewCartHandler(sessions, catalogService, cfg.RequestTimeout),
		Menu:     h.NewMenuHandler(catalogService, cfg.RequestTimeout),
		Checkout: h.NewCheckoutHandler(checkoutService, sessions, cfg.RequestTimeout),
		Orders:   h.NewOrdersHandler(orderService, cfg.RequestTimeout),
	}, log, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "foodcourt"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		stop()
		grpcServer.Stop()
		wg.Wait()
		return fmt.Errorf("http server error: %w", err)
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server forced to shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	wg.Wait()
	return nil
}

func openCatalog(ctx context.Context, cfg *config.Config, log *zap.Logger) (catalog.Repository, func(), error) {
	if cfg.CatalogStore == config.StoreMemory {
		log.Warn("using in-memory catalog")
		return catalog.NewMemoryRepository(), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	mongoDB, err := catalog.ConnectMongoDB(connectCtx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return nil, nil, err
	}
	repo := catalog.NewMongoRepository(mongoDB)
	if err := repo.CreateIndexes(connectCtx); err != nil {
		_ = mongoDB.Client().Disconnect(context.Background())
		return nil, nil, err
	}
	log.Info("connected to mongodb", zap.String("db", cfg.MongoDBName))

	return repo, func() {
		_ = mongoDB.Client().Disconnect(context.Background())
	}, nil
}

func openOrders(cfg *config.Config, log *zap.Logger) (order.Repository, error) {
	if cfg.OrderStore == config.StoreMemory {
		log.Warn("using in-memory order store")
		return order.NewMemoryRepository(), nil
	}

	repo, err := order.NewPostgresRepository(&cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := repo.RunMigrations(&cfg.Postgres); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database migrations completed")
	return repo, nil
}

func statusSource(mode string) payment.StatusSource {
	switch mode {
	case "approve":
		return payment.FixedStatus{Approved: true}
	case "decline":
		return payment.FixedStatus{Reason: payment.RefusalUnknown, Message: "declined by PAYMENT_MODE"}
	default:
		return payment.RandomStatus{}
	}
}
