package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/openmerch/storefront/internal/backend"
	"github.com/openmerch/storefront/internal/cache"
	"github.com/openmerch/storefront/internal/cart"
	"github.com/openmerch/storefront/internal/catalog"
	"github.com/openmerch/storefront/internal/config"
	"github.com/openmerch/storefront/internal/events"
	"github.com/openmerch/storefront/internal/httpserver"
	"github.com/openmerch/storefront/internal/logging"
	"github.com/openmerch/storefront/internal/order"
	"github.com/openmerch/storefront/internal/profile"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.BackendURL, "BACKEND_URL")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	client := backend.NewHTTPClient(cfg.BackendURL)
	bus := cache.NewBus()
	store := cache.New(bus, time.Minute)
	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)

	reader := catalog.NewReader(client, store)
	cartStore := cart.NewStore(client, reader, store)

	deps := &httpserver.Deps{
		Backend: client,
		Cache:   store,
		Catalog: reader,
		Admin:   catalog.NewAdminMutator(client, store, producer),
		Cart:    cartStore,
		Orders:  order.NewLookup(client, store),
		Profile: profile.NewService(client, store),
		Logger:  logger,
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()
	logger.Info("storefront listening", "port", cfg.ServerPort, "backend", cfg.BackendURL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}
}
