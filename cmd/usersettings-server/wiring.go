package main

import (
	"context"
	"fmt"

	"github.com/CreativeUnicorns/usersettings"
	"github.com/CreativeUnicorns/usersettings/config"
	"github.com/CreativeUnicorns/usersettings/notify"
	"github.com/CreativeUnicorns/usersettings/storage"
)

// openCollection connects the backend selected by STORE_BACKEND.
func openCollection(ctx context.Context, cfg *config.Config) (usersettings.Collection, error) {
	switch cfg.Store.Backend {
	case config.BackendMongo:
		return storage.NewMongoCollection(ctx, cfg.Store.URL, cfg.Store.Name)
	case config.BackendPostgres:
		return storage.NewPostgresCollection(ctx, cfg.Store.URL)
	case config.BackendSQLite:
		return storage.NewSQLiteCollection(ctx, cfg.Store.URL)
	case config.BackendMemory:
		return storage.NewMemoryCollection(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// buildNotifier combines every configured log channel. It returns a nil Notifier when
// none is configured, and the close functions of the clients it opened.
func buildNotifier(ctx context.Context, cfg *config.Config, logger usersettings.Logger) (usersettings.Notifier, []func() error, error) {
	var (
		multi   notify.Multi
		closers []func() error
	)

	if cfg.TelegramEnabled() {
		multi = append(multi, notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.LogChannel))
		logger.Info("New user log enabled", "channel", "telegram", "chat_id", cfg.Telegram.LogChannel)
	}

	if cfg.DiscordEnabled() {
		n, err := notify.NewDiscordNotifier(cfg.Discord.Token, cfg.Discord.LogChannel)
		if err != nil {
			return nil, nil, err
		}
		multi = append(multi, n)
		logger.Info("New user log enabled", "channel", "discord", "channel_id", cfg.Discord.LogChannel)
	}

	if cfg.StreamEnabled() {
		client, err := notify.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, client.Close)
		multi = append(multi, notify.NewStreamNotifier(client, cfg.Redis.Stream, cfg.Redis.MaxLen))
		logger.Info("New user log enabled", "channel", "redis", "stream", cfg.Redis.Stream)
	}

	switch len(multi) {
	case 0:
		return nil, closers, nil
	case 1:
		return multi[0], closers, nil
	default:
		return multi, closers, nil
	}
}
