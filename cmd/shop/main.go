package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/tienda/gateway"
	"github.com/example/tienda/pkg/analytics"
	"github.com/example/tienda/pkg/auth"
	"github.com/example/tienda/pkg/config"
	"github.com/example/tienda/pkg/discovery"
	"github.com/example/tienda/pkg/health"
	"github.com/example/tienda/pkg/logging"
	"github.com/example/tienda/pkg/notify"
	"github.com/example/tienda/pkg/payment"
	"github.com/example/tienda/pkg/repository"
	"github.com/example/tienda/pkg/repository/memory"
	"github.com/example/tienda/pkg/shop"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := logging.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting shop API",
		zap.String("name", cfg.Server.Name),
		zap.Int("port", cfg.Gateway.Port),
		zap.String("store", cfg.Store.Driver))

	ctx := context.Background()
	checks := map[string]health.Checker{}

	// Document store
	var store shop.Store
	switch cfg.Store.Driver {
	case "memory":
		mem := memory.NewStore()
		store = mem
		checks["store"] = mem
	default:
		mongoRepo, err := repository.NewMongoRepository(&cfg.MongoDB)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer mongoRepo.Close(context.Background())
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			logger.Warn("Failed to create indexes", zap.Error(err))
		}
		store = mongoRepo
		checks["mongodb"] = mongoRepo
	}

	// Redis cache and cart lock
	var cache shop.ProductCache
	cartOpts := []shop.CartOption{shop.WithMissingCartPolicy(shop.MissingCartPolicy(cfg.Cart.MissingPolicy))}
	if cfg.Redis.Enabled {
		redisRepo := repository.NewRedisRepository(&cfg.Redis)
		defer redisRepo.Close()
		cache = redisRepo
		cartOpts = append(cartOpts, shop.WithLocker(redisRepo, cfg.Cart.LockTTL))
		checks["redis"] = redisRepo
	}

	// MySQL sales ledger
	var ledger *repository.SalesLedger
	var orderOpts []shop.OrderOption
	var recorder shop.SalesRecorder
	var statsLedger analytics.Ledger
	if cfg.MySQL.Enabled {
		ledger, err = repository.NewSalesLedger(&cfg.MySQL)
		if err != nil {
			logger.Warn("Failed to open sales ledger, dashboard will scan orders", zap.Error(err))
		} else {
			defer ledger.Close()
			recorder = ledger
			statsLedger = ledger
			orderOpts = append(orderOpts, shop.WithSalesRecorder(ledger))
		}
	}

	// Email notifications
	var mailer notify.Mailer
	if cfg.Mail.SendGridAPIKey != "" {
		sg, err := notify.NewSendGridMailer(cfg.Mail.SendGridAPIKey, cfg.Mail.FromName, cfg.Mail.FromAddress)
		if err != nil {
			logger.Fatal("Failed to configure SendGrid", zap.Error(err))
		}
		mailer = sg
	} else {
		logger.Warn("No SendGrid key configured, status emails will only be logged")
		mailer = notify.NewLogMailer(logger.Named("mail"))
	}
	notifier, err := notify.NewService(mailer, cfg.Mail.Timeout, logger)
	if err != nil {
		logger.Fatal("Failed to start notification service", zap.Error(err))
	}
	defer notifier.Shutdown()

	// Shop services
	catalog := shop.NewCatalogService(store, cache, logger.Named("catalog"))
	carts := shop.NewCartService(store, catalog, logger.Named("cart"), cartOpts...)
	deps := gateway.Deps{
		Carts:   carts,
		Orders:  shop.NewOrderService(store, carts, logger.Named("orders"), orderOpts...),
		Notify:  shop.NewNotifyService(store, notifier, recorder, logger.Named("notify")),
		Catalog: catalog,
		Content: shop.NewContentService(store, logger.Named("content")),
		Users:   shop.NewUserService(store, carts, logger.Named("users")),
		Stats:   analytics.NewService(statsLedger, store, logger.Named("analytics")),
	}

	// Payments
	if p, err := payment.NewStripeProvider(cfg.Stripe, logger.Named("stripe")); err != nil {
		logger.Warn("Stripe disabled", zap.Error(err))
	} else {
		deps.Stripe = p
	}
	if p, err := payment.NewPayPalProvider(cfg.PayPal, logger.Named("paypal")); err != nil {
		logger.Warn("PayPal disabled", zap.Error(err))
	} else {
		deps.PayPal = p
	}

	// Token verification
	if v, err := auth.NewFirebaseVerifier(ctx, cfg.Auth); err != nil {
		logger.Warn("Token verification disabled, admin routes will answer 401", zap.Error(err))
	} else {
		deps.Verifier = v
	}

	// gRPC health
	hs := health.NewServer(cfg.Server.Name, checks, 15*time.Second, logger.Named("health"))
	if err := hs.Start(cfg.Server.Host, cfg.Server.GRPCPort); err != nil {
		logger.Fatal("Failed to start health server", zap.Error(err))
	}
	defer hs.Stop()
	deps.Health = hs

	// Create gateway
	gw := gateway.NewGateway(cfg, logger, deps)

	// Start gateway in goroutine
	gwErr := make(chan error, 1)
	go func() {
		if err := gw.Start(); err != nil {
			gwErr <- err
		}
	}()

	// Setup service discovery
	var sd *discovery.ServiceDiscovery
	instance := &discovery.ServiceInstance{
		Name:     cfg.Server.Name,
		Host:     cfg.Server.Host,
		Port:     cfg.Gateway.Port,
		GRPCPort: cfg.Server.GRPCPort,
	}
	if cfg.Etcd.Enabled {
		sd, err = discovery.NewServiceDiscovery(&cfg.Etcd, logger.Named("discovery"))
		if err != nil {
			logger.Warn("Failed to connect to etcd, continuing without service discovery", zap.Error(err))
		} else if err := sd.Register(ctx, instance); err != nil {
			logger.Warn("Failed to register with etcd", zap.Error(err))
		}
	}

	logger.Info("Shop API started successfully")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-gwErr:
		logger.Error("Gateway error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if sd != nil {
		if err := sd.Deregister(shutdownCtx, instance); err != nil {
			logger.Warn("Failed to deregister", zap.Error(err))
		}
		sd.Close()
	}
	if err := gw.Shutdown(shutdownCtx); err != nil {
		logger.Error("Gateway shutdown failed", zap.Error(err))
	}

	logger.Info("Shop API stopped")
}
