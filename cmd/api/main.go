package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	accountUseCase "github.com/arman-rahimi/credit-ledger/internal/domain/usecase/account"
	billingUseCase "github.com/arman-rahimi/credit-ledger/internal/domain/usecase/billing"
	paymentUseCase "github.com/arman-rahimi/credit-ledger/internal/domain/usecase/payment"
	queryUseCase "github.com/arman-rahimi/credit-ledger/internal/domain/usecase/query"

	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/api/routes"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/database"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/gateway"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/lock"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/logger"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/mq"
	timeProvider "github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/time"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/config"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/job"
	"github.com/arman-rahimi/credit-ledger/pkg/idgen"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create logger
	appLogger := logger.NewZapLogger(cfg.Environment == config.Production)
	defer func() { _ = appLogger.Flush() }()

	// Initialize time provider
	tp := timeProvider.NewRealTimeProvider()

	// Connect to the database
	dbConfig := &database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		QueryTimeout:    cfg.Database.QueryTimeout,
		LogLevel:        cfg.Logger.Level,
	}

	conn, err := database.NewConnection(dbConfig)
	if err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer func() { _ = conn.Close() }()

	// Run migrations and seed the pricing catalog
	if err := database.Migrate(conn.DB, appLogger); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	if err := database.SeedPrices(conn.DB, database.DefaultPrices(), appLogger); err != nil {
		appLogger.Error("Failed to seed prices", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Unit of work, replayed on lock contention and transient failures
	uow := database.NewRetryingUnitOfWork(
		database.NewUnitOfWork(conn.DB, appLogger, tp),
		database.DefaultRetryConfig(),
		appLogger,
	)

	// Payment gateway client and trade number generator
	gatewayClient := gateway.NewHTTPGateway(gateway.Config{
		BaseURL:    cfg.Payment.BaseURL,
		MerchantID: cfg.Payment.MerchantID,
		Secret:     cfg.Payment.Secret,
		NotifyURL:  cfg.Payment.NotifyURL,
	}, appLogger)

	tradeNoGen, err := idgen.New(cfg.Payment.WorkerID)
	if err != nil {
		appLogger.Error("Failed to create id generator", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Initialize use cases
	accountService := accountUseCase.NewService(uow, tp, appLogger, cfg.Business.StartingBalanceCents)
	billingService := billingUseCase.NewService(uow, tp, appLogger)
	paymentService := paymentUseCase.NewService(uow, gatewayClient, tp, appLogger, paymentUseCase.OrderPolicy{
		Provider:  cfg.Payment.Provider,
		MinAmount: cfg.Payment.MinAmountCents,
		MaxAmount: cfg.Payment.MaxAmountCents,
		TTL:       cfg.Payment.OrderTTL,
	}, tradeNoGen.GenerateTradeNo)
	queryFacade := queryUseCase.NewFacade(uow, tp)

	// Background jobs, coordinated through Redis locks when available
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	var sweepLock, outboxLock *lock.DistributedLock
	redisClient, err := lock.NewClient(
		fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err != nil {
		appLogger.Warn("Redis unavailable, background jobs run unguarded", map[string]any{
			"error": err.Error(),
		})
	} else {
		defer func() { _ = redisClient.Close() }()
		hostname, _ := os.Hostname()
		sweepLock = lock.NewSweepLock(redisClient, hostname, cfg.Business.SweepInterval)
		outboxLock = lock.NewOutboxLock(redisClient, hostname, cfg.Business.OutboxInterval)
	}

	sweeper := job.NewOrderSweeper(uow, paymentService, sweepLock, tp, appLogger,
		cfg.Business.SweepInterval, cfg.Business.SweepBatchSize)
	go sweeper.Start(jobCtx)

	if cfg.Kafka.Enabled {
		producer, err := mq.NewKafkaProducer(cfg.Kafka.Brokers)
		if err != nil {
			appLogger.Error("Failed to connect to kafka", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		defer func() { _ = producer.Close() }()

		sender := job.NewOutboxSender(uow, producer, outboxLock, appLogger,
			cfg.Business.OutboxInterval, cfg.Business.OutboxBatchSize, cfg.Business.OutboxMaxRetry)
		go sender.Start(jobCtx)
	} else {
		appLogger.Warn("Kafka disabled, ledger events stay in the outbox", nil)
	}

	// Initialize API handlers
	accountHandler := handler.NewAccountHandler(accountService, queryFacade, appLogger)
	billingHandler := handler.NewBillingHandler(billingService, appLogger)
	paymentHandler := handler.NewPaymentHandler(paymentService, gatewayClient, appLogger)

	// Initialize Gin router
	router := gin.New()
	routes.SetupMiddlewares(router, appLogger)
	routes.SetupRoutes(router, accountHandler, billingHandler, paymentHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"port": cfg.Server.Port,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)
	cancelJobs()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited gracefully", nil)
}
