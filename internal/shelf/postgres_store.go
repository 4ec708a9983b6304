package shelf

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"picturebook-server/internal/domain"
	"picturebook-server/pkg/migration"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	getValueQuery    = `SELECT key, value FROM kv_store WHERE key = $1`
	upsertValueQuery = `
        INSERT INTO kv_store (key, value)
        VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET
            value = EXCLUDED.value,
            updated_at = NOW()
    `
)

// DBTX минимальный интерфейс pgx, которому удовлетворяют пул и транзакция.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type kvRow struct {
	Key   string `db:"key"`
	Value []byte `db:"value"`
}

// PostgresStore хранит полку строкой kv_store(key, value jsonb).
type PostgresStore struct {
	db     DBTX
	key    string
	logger *zap.Logger
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore создает хранилище. Таблица должна существовать (см. Migrate).
func NewPostgresStore(db DBTX, key string, logger *zap.Logger) *PostgresStore {
	if key == "" {
		key = DefaultKey
	}
	return &PostgresStore{
		db:     db,
		key:    key,
		logger: logger.Named("PgShelfStore"),
	}
}

func newMigrator(pool *pgxpool.Pool) *migration.Migrator {
	return migration.NewMigrator(migration.Config{
		MigrationsPath:  "migrations",
		MigrationsFS:    migrationsFS,
		MigrationsTable: "shelf_schema_migrations",
	}, pool)
}

// Migrate применяет встроенные миграции хранилища.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	return newMigrator(pool).Up(ctx)
}

// Rollback откатывает схему хранилища. Все полки удаляются.
func Rollback(ctx context.Context, pool *pgxpool.Pool) error {
	return newMigrator(pool).Down(ctx)
}

// SchemaVersion возвращает текущую версию схемы.
func SchemaVersion(ctx context.Context, pool *pgxpool.Pool) (uint, bool, error) {
	return newMigrator(pool).Version(ctx)
}

// Load реализует Store.
func (s *PostgresStore) Load(ctx context.Context) ([]domain.Book, error) {
	var row kvRow
	err := pgxscan.Get(ctx, s.db, &row, getValueQuery, s.key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Book{}, nil
		}
		s.logger.Error("Error loading bookshelf", zap.String("key", s.key), zap.Error(err))
		return nil, fmt.Errorf("failed to load bookshelf %s: %w", s.key, err)
	}
	return decodeBooks(row.Value)
}

// Save реализует Store.
func (s *PostgresStore) Save(ctx context.Context, books []domain.Book) error {
	data, err := encodeBooks(books)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, upsertValueQuery, s.key, data); err != nil {
		s.logger.Error("Error saving bookshelf", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("failed to save bookshelf %s: %w", s.key, err)
	}
	return nil
}
