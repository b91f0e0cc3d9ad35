package application

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/ai-arena/internal/apperror"
	"github.com/rocketscienceinc/ai-arena/internal/config"
	"github.com/rocketscienceinc/ai-arena/internal/repository"
	"github.com/rocketscienceinc/ai-arena/internal/repository/storage"
	"github.com/rocketscienceinc/ai-arena/internal/repository/storage/sqlite"
)

// newResultRepository opens the configured driver. The returned func releases it.
func newResultRepository(ctx context.Context, conf config.Storage) (repository.ResultRepository, func() error, error) {
	switch conf.Driver {
	case "", "memory":
		return repository.NewMemoryResultRepository(), func() error { return nil }, nil
	case "redis":
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}
		return repository.NewResultRepository(redisStorage.Connection), redisStorage.Close, nil
	case "sqlite":
		sqliteStorage, err := sqlite.New(conf.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}
		if err = sqliteStorage.Init(ctx); err != nil {
			_ = sqliteStorage.Close()
			return nil, nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}
		return repository.NewSQLiteResultRepository(sqliteStorage.Connection), sqliteStorage.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", apperror.ErrUnknownStorage, conf.Driver)
	}
}
