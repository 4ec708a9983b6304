package domain

import (
	"fmt"
	"strings"
	"time"
)

// Page одна страница книги. NativeText может содержать разметку фуриганы base(reading).
type Page struct {
	NativeText     string `json:"nativeText"`
	ForeignText    string `json:"foreignText"`
	ImageReference string `json:"imageReference"`
}

// Book книга на полке.
type Book struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Pages     []Page         `json:"pages"`
	Params    CreationParams `json:"params"`
	Language  Language       `json:"language"`
	CreatedAt time.Time      `json:"createdAt,omitempty"`
}

// GeneratedBook ответ эндпоинта генерации.
type GeneratedBook struct {
	Title string `json:"title"`
	Pages []Page `json:"pages"`
}

// Validate проверяет, что ответ модели пригоден для показа в выбранном режиме языка.
func (b *GeneratedBook) Validate(lang Language) error {
	b.Title = strings.TrimSpace(b.Title)
	if b.Title == "" {
		return fmt.Errorf("%w: empty title", ErrInvalidUpstreamResponse)
	}
	if len(b.Pages) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidUpstreamResponse, ErrNoPages)
	}
	for i, p := range b.Pages {
		if lang.HasNative() && strings.TrimSpace(p.NativeText) == "" {
			return fmt.Errorf("%w: page %d has no native text", ErrInvalidUpstreamResponse, i+1)
		}
		if lang.HasForeign() && strings.TrimSpace(p.ForeignText) == "" {
			return fmt.Errorf("%w: page %d has no foreign text", ErrInvalidUpstreamResponse, i+1)
		}
	}
	return nil
}

// FindBook ищет книгу по ID.
func FindBook(books []Book, id string) (Book, bool) {
	for _, b := range books {
		if b.ID == id {
			return b, true
		}
	}
	return Book{}, false
}
