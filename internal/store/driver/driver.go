// Package driver selects and constructs the configured order store.
package driver

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/bubbletea-slz/teahouse/internal/config"
	"github.com/bubbletea-slz/teahouse/internal/database"
	"github.com/bubbletea-slz/teahouse/internal/store"
	"github.com/bubbletea-slz/teahouse/internal/store/local"
	"github.com/bubbletea-slz/teahouse/internal/store/remote"
)

// Module provides the order store to the Fx graph.
var Module = fx.Provide(NewStore)

// NewStore initialises the store backend named by STORE_DRIVER.
func NewStore(lc fx.Lifecycle, cfg config.Config, conns *database.Connections, logger *zap.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		logger.Info("using in-memory order store")
		return local.New(local.NewMemoryDumper()), nil
	case "redis":
		return newRedisStore(lc, cfg, logger)
	case "sql":
		if conns.DB == nil {
			return nil, fmt.Errorf("sql store selected but database is not configured")
		}
		logger.Info("using sql order store", zap.String("driver", cfg.Database.Driver))
		return local.New(local.NewSQLDumper(conns.DB)), nil
	case "remote":
		logger.Info("using remote order store", zap.String("url", cfg.Store.Remote.BaseURL))
		return remote.NewClient(cfg.Store.Remote.BaseURL, cfg.Store.Remote.Timeout, logger)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func newRedisStore(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (store.Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Store.Redis.Addr,
		Password: cfg.Store.Redis.Password,
		DB:       cfg.Store.Redis.DB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("ping redis store: %w", err)
			}
			logger.Info("redis order store connected",
				zap.String("addr", cfg.Store.Redis.Addr),
				zap.String("key", cfg.Store.RedisKey),
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return local.New(local.NewRedisDumper(client, cfg.Store.RedisKey)), nil
}
