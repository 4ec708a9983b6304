package shelf

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"picturebook-server/internal/config"
	"picturebook-server/internal/domain"
)

// ErrUnavailable полка не подключена, Load и Save такого хранилища всегда возвращают ошибку.
var ErrUnavailable = errors.New("bookshelf backend is unavailable")

// Handle хранилище вместе с ресурсами, которые нужно закрыть.
type Handle struct {
	Store   Store
	pool    *pgxpool.Pool
	closers []func() error
	openErr error
}

// Postgres пул соединений, если полка хранится в Postgres.
func (h *Handle) Postgres() (*pgxpool.Pool, bool) {
	return h.pool, h.pool != nil
}

// Err ошибка подключения к хранилищу, nil если полка доступна.
func (h *Handle) Err() error {
	return h.openErr
}

// unavailableStore подставляется вместо недоступного бэкенда.
type unavailableStore struct {
	err error
}

var _ Store = unavailableStore{}

func (s unavailableStore) Load(context.Context) ([]domain.Book, error) { return nil, s.err }

func (s unavailableStore) Save(context.Context, []domain.Book) error { return s.err }

func unavailable(backend string, err error, logger *zap.Logger) *Handle {
	err = fmt.Errorf("%w: %w", ErrUnavailable, err)
	logger.Warn("Bookshelf backend unavailable, books will not be saved", zap.String("backend", backend), zap.Error(err))
	return &Handle{Store: unavailableStore{err: err}, openErr: err}
}

// Close закрывает все соединения, ошибки объединяются.
func (h *Handle) Close() error {
	var err error
	for i := len(h.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, h.closers[i]())
	}
	return err
}

// Open создает хранилище по конфигурации клиента. Если Redis или Postgres
// недоступны, возвращается Handle с хранилищем-заглушкой (см. Handle.Err),
// ошибка возвращается только для неизвестного бэкенда.
func Open(ctx context.Context, cfg *config.ClientConfig, logger *zap.Logger) (*Handle, error) {
	switch cfg.ShelfBackend {
	case config.ShelfBackendFile:
		return &Handle{Store: NewFileStore(cfg.ShelfFile, logger)}, nil

	case config.ShelfBackendRedis:
		client, err := setupRedis(ctx, cfg, logger)
		if err != nil {
			return unavailable(cfg.ShelfBackend, err, logger), nil
		}
		return &Handle{
			Store:   NewRedisStore(client, cfg.ShelfKey, logger),
			closers: []func() error{client.Close},
		}, nil

	case config.ShelfBackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return unavailable(cfg.ShelfBackend, fmt.Errorf("unable to create postgres pool: %w", err), logger), nil
		}
		if err := Migrate(ctx, pool); err != nil {
			pool.Close()
			return unavailable(cfg.ShelfBackend, err, logger), nil
		}
		closePool := func() error {
			pool.Close()
			return nil
		}
		return &Handle{
			Store:   NewPostgresStore(pool, cfg.ShelfKey, logger),
			pool:    pool,
			closers: []func() error{closePool},
		}, nil
	}
	return nil, fmt.Errorf("unknown shelf backend %q", cfg.ShelfBackend)
}

// setupRedis подключается к Redis с несколькими попытками ping.
func setupRedis(ctx context.Context, cfg *config.ClientConfig, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	const maxRetries = 3
	retryDelay := 500 * time.Millisecond
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		lastErr = client.Ping(pingCtx).Err()
		cancel()
		if lastErr == nil {
			return client, nil
		}
		logger.Warn("Redis ping failed, retrying...", zap.Int("attempt", attempt), zap.Error(lastErr))
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				client.Close()
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	client.Close()
	return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, lastErr)
}
