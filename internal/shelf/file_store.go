package shelf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"picturebook-server/internal/domain"
)

// FileStore хранит полку в JSON-файле. Запись через временный файл и rename.
type FileStore struct {
	path   string
	logger *zap.Logger
	now    func() time.Time
}

var _ Store = (*FileStore)(nil)

// NewFileStore создает файловое хранилище.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger.Named("FileShelfStore"),
		now:    time.Now,
	}
}

// Load читает полку. Отсутствующий файл означает пустую полку.
func (s *FileStore) Load(ctx context.Context) ([]domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Debug("Bookshelf file not found, starting empty", zap.String("path", s.path))
		return []domain.Book{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bookshelf file %s: %w", s.path, err)
	}
	books, err := decodeBooks(data)
	if err != nil {
		s.quarantine()
		return nil, err
	}
	return books, nil
}

// quarantine убирает нечитаемый файл в сторону (bookshelf.json.corrupt-<время>),
// чтобы следующая запись полки не затерла его.
func (s *FileStore) quarantine() {
	aside := s.path + ".corrupt-" + s.now().UTC().Format("20060102T150405")
	if err := os.Rename(s.path, aside); err != nil {
		s.logger.Error("Failed to move corrupt bookshelf aside", zap.String("path", s.path), zap.Error(err))
		return
	}
	s.logger.Warn("Bookshelf file is corrupt, moved aside", zap.String("path", s.path), zap.String("moved_to", aside))
}

// Save перезаписывает файл целиком.
func (s *FileStore) Save(ctx context.Context, books []domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeBooks(books)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create bookshelf dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".bookshelf-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write bookshelf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace bookshelf file: %w", err)
	}
	s.logger.Debug("Bookshelf saved", zap.String("path", s.path), zap.Int("books", len(books)))
	return nil
}
