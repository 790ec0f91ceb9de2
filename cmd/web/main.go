package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/pricetracker/web/internal/config"
	"github.com/pricetracker/web/internal/handler"
	"github.com/pricetracker/web/internal/integrations/backend"
	"github.com/pricetracker/web/internal/loader"
	"github.com/pricetracker/web/internal/middleware"
	"github.com/pricetracker/web/internal/monitor"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil {
		logger.Debugf("No .env file loaded: %v", err)
	}

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize layers
	api := backend.NewClient(cfg, logger)
	h := handler.NewHandler(loader.New(api, logger), cfg.SessionCookie, logger)

	if cfg.ProbeSchedule != "" {
		probe, err := monitor.NewProbe(api, cfg.ProbePath, cfg.ProbeSchedule, logger)
		if err != nil {
			logger.Fatalf("Failed to create upstream probe: %v", err)
		}
		probe.Start(ctx)
		defer probe.Stop()
		h.SetUpstream(probe)
	}

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.Logging(logger), middleware.Recoverer(logger))
	h.Routes(r)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.APITimeout + 10*time.Second,
	}
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Server failed: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
}
