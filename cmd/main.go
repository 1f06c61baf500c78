package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"complaintdesk/backend/internal/app"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/logging"
	"complaintdesk/backend/internal/scheduler"
	"complaintdesk/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("complaintdesk stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info("starting complaintdesk backend", "addr", cfg.HTTPAddr)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Схема БД
	if err := storage.ApplyMigrations(cfg.DSN(), log); err != nil {
		return err
	}

	// 2. Залежності
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("failed to close connections", "error", err)
		}
	}()

	// 3. Планувальник очищення
	sched, err := scheduler.New()
	if err != nil {
		return err
	}
	if err := sched.AddJob(config.SweepJobName, cfg.SweepCron, a.Sweeper.Task(ctx)); err != nil {
		return err
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Warn("failed to stop scheduler", "error", err)
		}
	}()

	// 4. HTTP-сервер
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.Handler().Router(cfg.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Hub.Run(gctx)
	})
	if a.Alerter != nil {
		g.Go(func() error {
			return a.Alerter.Run(gctx)
		})
	}
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
