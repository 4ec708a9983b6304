// Package shelf хранит полку книг целиком под одним ключом: JSON-массив Book,
// который читается один раз при старте сессии и перезаписывается при каждом изменении.
package shelf

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"picturebook-server/internal/domain"
)

// DefaultKey ключ, под которым хранится полка.
const DefaultKey = "bookshelf"

// Store хранилище полки.
type Store interface {
	Load(ctx context.Context) ([]domain.Book, error)
	Save(ctx context.Context, books []domain.Book) error
}

func encodeBooks(books []domain.Book) ([]byte, error) {
	if books == nil {
		books = []domain.Book{}
	}
	data, err := json.Marshal(books)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bookshelf: %w", err)
	}
	return data, nil
}

func decodeBooks(data []byte) ([]domain.Book, error) {
	if len(data) == 0 {
		return []domain.Book{}, nil
	}
	var books []domain.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookshelf: %w", err)
	}
	if books == nil {
		books = []domain.Book{}
	}
	return books, nil
}

// MemoryStore хранит полку в памяти. Используется в тестах.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore создает пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load реализует Store.
func (m *MemoryStore) Load(_ context.Context) ([]domain.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return decodeBooks(m.data)
}

// Save реализует Store.
func (m *MemoryStore) Save(_ context.Context, books []domain.Book) error {
	data, err := encodeBooks(books)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}
