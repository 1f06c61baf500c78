// Package app wires configuration, storage and the domain services together
// for the server and the operator CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"complaintdesk/backend/internal/api/handler"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/identity"
	"complaintdesk/backend/internal/livehub"
	"complaintdesk/backend/internal/localization"
	"complaintdesk/backend/internal/messaging"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/notify"
	"complaintdesk/backend/internal/retention"
	"complaintdesk/backend/internal/storage"
	"complaintdesk/backend/internal/telegram"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config

	DB    *gorm.DB
	Redis *redis.Client
	Store *storage.Service
	Hub   *livehub.Hub

	Identity      *identity.Service
	Complaints    *complaint.Service
	Messages      *messaging.Service
	Notifications *notify.Aggregator
	Sweeper       *retention.Sweeper
	Localizer     *localization.Localizer

	// Alerter is nil unless a Telegram bot token is configured.
	Alerter *telegram.Alerter
}

// fanout delivers every event to each publisher in order.
type fanout []complaint.Publisher

func (f fanout) Publish(ctx context.Context, ev models.ChangeEvent) {
	for _, p := range f {
		p.Publish(ctx, ev)
	}
}

// New opens PostgreSQL and, when configured, Redis, and builds every service.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	db, err := storage.OpenPostgres(cfg.DSN(), log)
	if err != nil {
		return nil, err
	}
	rdb, err := storage.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		closeDB(db)
		return nil, err
	}
	if rdb == nil {
		log.Info("redis not configured, live events stay in process")
	}

	loc, err := localization.New()
	if err != nil {
		closeDB(db)
		return nil, err
	}

	store := storage.NewStorageService(db, rdb, config.ChangesChannel)
	hub := livehub.NewHub(store)

	var alerter *telegram.Alerter
	complaintEvents := fanout{hub}
	if cfg.TelegramBotToken != "" {
		bot, err := telegram.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			closeDB(db)
			return nil, err
		}
		alerter = telegram.NewAlerter(bot, cfg.TelegramAlertChatID, store, loc)
		complaintEvents = append(complaintEvents, alerter)
	} else {
		log.Info("telegram bot token not set, emergency alerts disabled")
	}

	messages := messaging.NewService(store, hub)
	messages.MaxMessageLength = cfg.MaxMessageLength

	a := &App{
		Config:        cfg,
		DB:            db,
		Redis:         rdb,
		Store:         store,
		Hub:           hub,
		Identity:      identity.NewService(store, cfg.JWTSecret, cfg.JWTTTL),
		Complaints:    complaint.NewService(store, complaintEvents),
		Messages:      messages,
		Notifications: notify.NewAggregator(store, messages),
		Sweeper:       retention.NewSweeper(store, hub, cfg.RetentionWindow),
		Localizer:     loc,
		Alerter:       alerter,
	}
	return a, nil
}

func (a *App) Handler() *handler.Handler {
	return handler.NewHandler(handler.Handler{
		Complaints:       a.Complaints,
		Messages:         a.Messages,
		Identity:         a.Identity,
		Notifications:    a.Notifications,
		Sweeper:          a.Sweeper,
		Hub:              a.Hub,
		Lookup:           a.Store,
		Localizer:        a.Localizer,
		Health:           a.Store,
		MaintenanceToken: a.Config.MaintenanceToken,
		ResyncInterval:   a.Config.LiveResyncInterval,
	})
}

func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close postgres: %w", err))
		}
	}
	return errors.Join(errs...)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
