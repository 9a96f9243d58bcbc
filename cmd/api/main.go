package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"contentboard/cmd/app"
	"contentboard/internal/config"
	handlers "contentboard/internal/handler"
	"contentboard/internal/logger"
)

func main() {
	// setting up config
	cfg := config.LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}
	defer log.Sync()

	if cfg.JWTSecretKey == "" {
		log.Fatal("JWT_SECRET_KEY is not set")
	}

	db, services, err := app.App(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer db.CloseDB()

	h := handlers.NewHandlers(services, db, cfg, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           app.NewRouter(h, services.Auth, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server started", "addr", srv.Addr, "database", cfg.DB.DbNAME)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
