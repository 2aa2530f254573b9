package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/api"
	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/counter"
	"github.com/Zachkp/portfolio/internal/github"
	"github.com/Zachkp/portfolio/internal/logging"
)

// One message per five minutes per address, with a small burst for typos.
const (
	contactEvery = 5 * time.Minute
	contactBurst = 3
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.GinMode == gin.DebugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	defer logging.Sync()

	gin.SetMode(cfg.GinMode)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	counterMetrics := counter.NewMetrics(reg)
	primary, closer := openStore(cfg.Store)
	if closer != nil {
		defer closer.Close()
	}
	runner := counter.NewFallback(primary, counter.NewMemoryStore(), counter.BreakerSettings{
		Failures: cfg.Store.BreakerFailures,
		Cooldown: cfg.Store.BreakerCooldown,
	}, counterMetrics)
	counterService := counter.NewService(runner, cfg.Store.Atomic, counterMetrics)

	ghClient := github.NewClient(github.Options{
		Token:      cfg.GitHub.Token,
		User:       cfg.GitHub.User,
		APIURL:     cfg.GitHub.APIURL,
		GraphQLURL: cfg.GitHub.GraphQLURL,
	})
	if cfg.GitHub.Token == "" {
		logging.Warn("GITHUB_TOKEN not set, contributions are unavailable and the REST API is rate limited")
	}
	ghService := github.NewService(ghClient, cfg.GitHub.CacheTTL, cfg.GitHub.StaleTTL, github.NewMetrics(reg))

	sender, err := contact.NewSender(contact.Options{
		ResendAPIKey: cfg.Contact.ResendAPIKey,
		From:         cfg.Contact.From,
		To:           cfg.Contact.To,
		SMTPHost:     cfg.Contact.SMTPHost,
		SMTPPort:     cfg.Contact.SMTPPort,
		SMTPUser:     cfg.Contact.SMTPUser,
		SMTPPass:     cfg.Contact.SMTPPass,
	})
	if err != nil {
		logging.Warn("Contact form disabled", zap.Error(err))
		sender = nil
	} else {
		logging.Info("Contact form enabled", zap.String("sender", sender.Name()))
	}

	h := api.NewHandler(counterService, ghService, sender, contact.NewLimiter(contactEvery, contactBurst))
	router := api.NewRouter(h, api.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		AdminToken:     cfg.AdminToken,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})
	if cfg.AdminToken == "" {
		logging.Warn("ADMIN_TOKEN not set, DELETE /views is open and /admin is disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info("Server starting",
			zap.String("addr", srv.Addr),
			zap.String("store", counterService.StoreName()),
			zap.Bool("atomic", cfg.Store.Atomic),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	gracefulShutdown(srv)
}

// openStore builds the durable counter store. A nil store means counts
// live in memory only; startup never fails because of the store.
func openStore(sc config.StoreConfig) (counter.Store, io.Closer) {
	switch sc.Driver {
	case "redis":
		if !sc.RedisConfigured() {
			logging.Warn("Redis not configured, view counts will be kept in memory only")
			return nil, nil
		}
		client, err := counter.NewRedisClient(sc.RedisURL, sc.RedisAddr, sc.RedisPassword, sc.RedisDB, sc.Timeout)
		if err != nil {
			logging.Warn("Invalid Redis settings, view counts will be kept in memory only", zap.Error(err))
			return nil, nil
		}
		store := counter.NewRedisStore(client, sc.RedisPrefix, sc.Timeout)
		ctx, cancel := context.WithTimeout(context.Background(), sc.Timeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			// Keep the store; requests fall back per operation until it recovers.
			logging.Warn("Redis unreachable at startup", zap.Error(err))
		}
		return store, client

	case "sqlite":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := counter.OpenSQLiteStore(ctx, sc.SQLitePath)
		if err != nil {
			logging.Warn("Failed to open SQLite, view counts will be kept in memory only",
				zap.String("path", sc.SQLitePath), zap.Error(err))
			return nil, nil
		}
		logging.Info("Using SQLite view store", zap.String("path", sc.SQLitePath))
		return store, store

	case "memory":
		logging.Info("Using in-memory view store")
		return nil, nil
	}

	logging.Warn("Unknown STORE_DRIVER, view counts will be kept in memory only", zap.String("driver", sc.Driver))
	return nil, nil
}

func gracefulShutdown(srv *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	logging.Info("Server stopped")
}
