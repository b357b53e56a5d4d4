package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirbootoo/minishop-test/internal/config"
	"github.com/sirbootoo/minishop-test/internal/shop"
	shophttp "github.com/sirbootoo/minishop-test/internal/shop/http"
	"github.com/sirbootoo/minishop-test/internal/shop/messaging"
	"github.com/sirbootoo/minishop-test/internal/shop/pagination"
	"github.com/sirbootoo/minishop-test/internal/shop/repository"
	"github.com/sirbootoo/minishop-test/internal/shop/service"

	_ "github.com/sirbootoo/minishop-test/docs"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	metricOrdersTotal   = "shop_orders_created_total"
	metricCommentsTotal = "shop_comments_created_total"
	migrateSourcePrefix = "file://"
	postgresDriverName  = "postgres"
)

// @title        Minishop API
// @version      1.0
// @description  Storefront service: product listings, cart, orders, invoices and comments.
// @host         localhost:8080
// @BasePath     /
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadShop()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	if err := runMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		logger.Error("run migrations", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.InvoiceDir, 0o755); err != nil {
		logger.Error("create invoice dir", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open(postgresDriverName, cfg.DatabaseURL)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), cfg.DBPingTimeout)
	defer pingCancel()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Error("ping database", "error", err)
		os.Exit(1)
	}

	rabbitConn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("connect rabbitmq", "error", err)
		os.Exit(1)
	}
	defer rabbitConn.Close()

	publisher, err := messaging.NewRabbitPublisher(rabbitConn, shop.OrderEventsQueue)
	if err != nil {
		logger.Error("init publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	ordersCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: metricOrdersTotal,
		Help: "Total number of orders created",
	})
	commentsCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: metricCommentsTotal,
		Help: "Total number of comments created",
	})
	prometheus.MustRegister(ordersCounter, commentsCounter)

	repo := repository.NewPostgres(db)
	pager := pagination.NewPager(cfg.PageSize)
	svc := service.New(repo, publisher, pager, logger, ordersCounter, commentsCounter)
	handler := shophttp.NewHandler(svc, cfg.InvoiceDir, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(shophttp.RequestIDMiddleware())
	router.Use(shophttp.AccessLogMiddleware(logger))
	shophttp.RegisterRoutes(router, handler, repo, repo)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("shop service started", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("http server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("shop service stopped")
}

func runMigrations(databaseURL, migrationsPath string) error {
	m, err := migrate.New(migrateSourcePrefix+migrationsPath, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
