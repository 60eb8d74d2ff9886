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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/vishal-1207/zapify/internal/config"
	"github.com/vishal-1207/zapify/internal/gateway"
	"github.com/vishal-1207/zapify/internal/guestcart"
	"github.com/vishal-1207/zapify/internal/httpserver"
	"github.com/vishal-1207/zapify/internal/logging"
	"github.com/vishal-1207/zapify/internal/notify"
	"github.com/vishal-1207/zapify/internal/repo"
	"github.com/vishal-1207/zapify/internal/service"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := repo.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Error("database init failed", "error", err)
		os.Exit(1)
	}
	if err := repo.AutoMigrate(db); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
	r := repo.New(db)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	guests := guestcart.NewStore(rdb)

	producer := notify.NewProducer(cfg.KafkaBrokers)
	pay := gateway.NewClient(cfg.GatewayURL, cfg.GatewayAPIKey)

	cartSvc := &service.CartService{Repo: r, Guest: guests, Events: producer}
	checkoutSvc := &service.CheckoutService{Repo: r, Addresses: r, Events: producer}
	paymentSvc := &service.PaymentService{Repo: r, Gateway: pay, Events: producer, Currency: cfg.Currency}
	fulfillSvc := &service.FulfillmentService{
		Repo:         r,
		Events:       producer,
		ReturnWindow: time.Duration(cfg.ReturnWindowDays) * 24 * time.Hour,
	}
	offerSvc := &service.OfferService{Repo: r}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), httpserver.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		JWTSecret: cfg.JWTAccessSecret,
		Cart:      &httpserver.CartHTTP{Svc: cartSvc},
		Order:     &httpserver.OrderHTTP{Checkout: checkoutSvc, Fulfillment: fulfillSvc},
		Payment:   &httpserver.PaymentHTTP{Svc: paymentSvc},
		Seller:    &httpserver.SellerHTTP{Offers: offerSvc, Fulfillment: fulfillSvc},
		Catalog:   &httpserver.CatalogHTTP{Offers: offerSvc},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := rdb.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
