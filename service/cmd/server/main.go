package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jason-s-yu/bezique/service/internal/auth"
	"github.com/jason-s-yu/bezique/service/internal/cache"
	"github.com/jason-s-yu/bezique/service/internal/config"
	"github.com/jason-s-yu/bezique/service/internal/database"
	"github.com/jason-s-yu/bezique/service/internal/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	cfg.ConfigureLogger()
	auth.Init(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL != "" {
		if err := database.ConnectDB(ctx, cfg.DatabaseURL); err != nil {
			logrus.WithError(err).Fatal("postgres connect failed")
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			logrus.WithError(err).Fatal("postgres migrate failed")
		}
	} else {
		logrus.Warn("DATABASE_URL not set; results are not persisted")
	}

	if cfg.RedisAddr != "" {
		if err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
			logrus.WithError(err).Fatal("redis connect failed")
		}
		defer cache.Close()
	} else {
		logrus.Warn("REDIS_ADDR not set; action history and snapshots disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(handlers.RequestIDMiddleware())
	e.Use(handlers.LoggingMiddleware())
	handlers.NewHandler(handlers.NewGameStore(), cfg).Register(e)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithField("addr", cfg.HTTPAddr).Info("starting server")
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Error("server stopped with error")
		os.Exit(1)
	}
}
