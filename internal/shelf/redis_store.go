package shelf

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"picturebook-server/internal/domain"
)

// RedisStore хранит полку под одним ключом Redis (GET/SET без TTL).
type RedisStore struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore создает хранилище поверх готового клиента.
func NewRedisStore(client *redis.Client, key string, logger *zap.Logger) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{
		client: client,
		key:    key,
		logger: logger.Named("RedisShelfStore"),
	}
}

// Load реализует Store.
func (s *RedisStore) Load(ctx context.Context) ([]domain.Book, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.Book{}, nil
	}
	if err != nil {
		s.logger.Error("Failed to load bookshelf from Redis", zap.String("key", s.key), zap.Error(err))
		return nil, fmt.Errorf("failed to get bookshelf from redis: %w", err)
	}
	return decodeBooks(data)
}

// Save реализует Store.
func (s *RedisStore) Save(ctx context.Context, books []domain.Book) error {
	data, err := encodeBooks(books)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		s.logger.Error("Failed to save bookshelf to Redis", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("failed to set bookshelf in redis: %w", err)
	}
	return nil
}
