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

	"github.com/openmerch/storefront/internal/config"
	"github.com/openmerch/storefront/internal/logging"
	"github.com/openmerch/storefront/internal/shopbackend"
)

func main() {
	cfg := config.Load()
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", "shopbackend")

	ctx := context.Background()
	db, err := shopbackend.OpenDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init: %v", err)
	}

	search, err := shopbackend.NewSearchIndex(cfg.ESURL, cfg.ESUser, cfg.ESPassword, logger)
	if err != nil {
		log.Fatalf("search init: %v", err)
	}

	// Dev seed: one admin, one regular user. Harmless to rerun.
	if _, err := shopbackend.EnsureUser(ctx, db, "admin", config.EnvDefault("ADMIN_PASSWORD", "admin"), "admin"); err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	if _, err := shopbackend.EnsureUser(ctx, db, "alice", config.EnvDefault("USER_PASSWORD", "alice"), "user"); err != nil {
		log.Fatalf("seed user: %v", err)
	}

	server := &shopbackend.Server{
		Service:   &shopbackend.Service{Repo: &shopbackend.GormRepo{DB: db}, Search: search},
		JWTSecret: cfg.JWTSecret,
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	server.Register(e)

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
	logger.Info("shopbackend listening", "port", cfg.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}
}
