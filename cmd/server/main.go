package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ecommerce-platform/internal/cache"
	"ecommerce-platform/internal/config"
	"ecommerce-platform/internal/database"
	"ecommerce-platform/internal/handlers"
	"ecommerce-platform/internal/notifications"
	"ecommerce-platform/internal/repositories"
	"ecommerce-platform/internal/services"
)

// @title E-commerce Platform API
// @version 1.0
// @description Catalog, cart and checkout API with atomic stock management.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Server.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewConnection(database.Config{Path: cfg.Database.Path})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	productRepo := repositories.NewProductRepository(db.DB)
	cartRepo := repositories.NewCartRepository(db.DB, productRepo)
	ticketRepo := repositories.NewTicketRepository(db.DB)
	userRepo := repositories.NewUserRepository(db.DB)

	var idempotency services.IdempotencyStore
	if cfg.Redis.Addr != "" {
		store, err := cache.NewRedisIdempotencyStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer store.Close()
		idempotency = store
		logger.Info("using redis idempotency store", zap.String("addr", cfg.Redis.Addr))
	} else {
		idempotency = services.NewMemoryIdempotencyStore()
		logger.Info("using in-memory idempotency store")
	}

	var notifier services.Notifier
	switch {
	case cfg.AMQP.URL != "":
		amqpNotifier, err := notifications.NewAMQPNotifier(cfg.AMQP.URL, cfg.AMQP.QueueName)
		if err != nil {
			logger.Fatal("failed to connect to rabbitmq", zap.Error(err))
		}
		defer amqpNotifier.Close()
		notifier = amqpNotifier
		logger.Info("using amqp notifier", zap.String("queue", cfg.AMQP.QueueName))
	case cfg.Email.SMTPHost != "":
		notifier = notifications.NewEmailNotifier(notifications.EmailConfig{
			SMTPHost:     cfg.Email.SMTPHost,
			SMTPPort:     strconv.Itoa(cfg.Email.SMTPPort),
			SMTPUsername: cfg.Email.SMTPUser,
			SMTPPassword: cfg.Email.SMTPPassword,
			FromEmail:    cfg.Email.FromEmail,
			FromName:     cfg.Email.FromName,
		})
		logger.Info("using smtp notifier", zap.String("host", cfg.Email.SMTPHost))
	default:
		notifier = notifications.NewLogNotifier(logger)
		logger.Info("using log notifier")
	}

	checkoutEngine := services.NewCheckoutEngine(
		productRepo, cartRepo, ticketRepo, idempotency, notifier, logger)
	productService := services.NewProductService(productRepo, logger)
	cartService := services.NewCartService(cartRepo, logger)
	ticketService := services.NewTicketService(ticketRepo, logger)
	authService := services.NewAuthService(
		userRepo, cartRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLMin)*time.Minute,
		logger,
	)

	router := handlers.NewRouter(
		handlers.NewAuthHandler(authService),
		handlers.NewProductHandler(productService),
		handlers.NewCartHandler(cartService, checkoutEngine),
		handlers.NewTicketHandler(ticketService),
		authService,
		logger,
	)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}
