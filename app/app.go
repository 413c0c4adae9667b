// File: app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"go-wallet-ledger/config"
	"go-wallet-ledger/db"
	"go-wallet-ledger/events"
	"go-wallet-ledger/handler"
	"go-wallet-ledger/logger"
	"go-wallet-ledger/repository"
	"go-wallet-ledger/router"
	"go-wallet-ledger/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// App is a fully wired server. Close releases whatever Build opened.
type App struct {
	Router  http.Handler
	Service *service.AccountService
	closers []func() error
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

type stores struct {
	accounts repository.IAccountStore
	txLog    repository.ITransactionLog
}

// Build wires every layer from cfg.
func Build(cfg *config.Config) (*App, error) {
	a := &App{}

	s, err := openStores(cfg, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	var cache service.ICacheClient
	redisClient, err := db.ConnectRedis(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	if redisClient != nil {
		cache = redisClient
		a.closers = append(a.closers, redisClient.Close)
		logger.Log.Info("Profile cache enabled")
	}

	var publisher service.EventPublisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		a.closers = append(a.closers, kafkaPublisher.Close)
		publisher = kafkaPublisher
		logger.Log.WithField("brokers", cfg.Kafka.Brokers).Info("Transaction events enabled")
	}

	auth, err := service.NewAuthGateway(cfg.JWT.SecretKey, cfg.JWT.TTL)
	if err != nil {
		a.Close()
		return nil, err
	}
	hasher := service.NewBcryptHasher(cfg.Bcrypt.Cost)

	engine := service.NewLedgerEngine(s.accounts, s.txLog, hasher, publisher, service.LedgerConfig{
		MaxRetries:     cfg.Ledger.MaxRetries,
		AttemptTimeout: cfg.Ledger.AttemptTimeout,
		BackoffInitial: cfg.Ledger.BackoffInitial,
		BackoffMax:     cfg.Ledger.BackoffMax,
	})
	a.Service = service.NewAccountService(s.accounts, engine, auth, hasher, cache, cfg.IsAdminHandle)

	a.Router = router.NewRouter(
		handler.NewUserHandler(a.Service),
		handler.NewAccountHandler(a.Service),
		handler.NewTransactionHandler(a.Service),
		auth,
	)
	return a, nil
}

func openStores(cfg *config.Config, a *App) (stores, error) {
	switch cfg.Store.Driver {
	case "memory":
		logger.Log.Warn("Using in-memory store; balances are lost on restart")
		return stores{
			accounts: repository.NewMemoryAccountStore(),
			txLog:    repository.NewMemoryTransactionLog(),
		}, nil
	case "postgres":
		database, err := db.Connect(cfg)
		if err != nil {
			return stores{}, fmt.Errorf("connect to database: %w", err)
		}
		a.closers = append(a.closers, database.Close)
		if err := db.RunMigrations(database, cfg.Store.MigrationsDir); err != nil {
			return stores{}, err
		}
		return stores{
			accounts: repository.NewAccountRepository(database),
			txLog:    repository.NewTransactionRepository(database),
		}, nil
	default:
		return stores{}, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func Run() {
	config.LoadConfig(".")
	logger.Init(config.AppConfig.Log.Level)
	logger.Log.Info("Configuration loaded successfully")

	application, err := Build(&config.AppConfig)
	if err != nil {
		logger.Log.Fatalf("Failed to initialise application: %v", err)
	}
	defer application.Close()

	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           application.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
