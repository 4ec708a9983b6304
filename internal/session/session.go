// Package session ведет сценарий работы с книгой: форма, ожидание генерации,
// просмотр и книжная полка. Контроллер владеет активной книгой и полкой.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"picturebook-server/internal/domain"
	"picturebook-server/internal/shelf"
)

// Сообщения, которые видит ребенок.
const (
	ErrorMessage = "えほんを つくれませんでした。もういちど ためしてね。"
	FormAlert    = "なまえを いれて、すきな どうぶつを えらんでね！"
)

var (
	ErrInvalidTransition = errors.New("action not allowed in current view")
	ErrGenerationFailed  = errors.New("book generation failed")
)

// View экран, на котором находится сессия.
type View int

const (
	ViewForm View = iota
	ViewLoading
	ViewViewer
	ViewBookshelf
)

func (v View) String() string {
	switch v {
	case ViewForm:
		return "form"
	case ViewLoading:
		return "loading"
	case ViewViewer:
		return "viewer"
	case ViewBookshelf:
		return "bookshelf"
	}
	return fmt.Sprintf("view(%d)", int(v))
}

// Generator получает текст книги по параметрам формы.
type Generator interface {
	Generate(ctx context.Context, params domain.CreationParams) (domain.GeneratedBook, error)
}

// Options настройки контроллера. Нулевые значения заменяются значениями по умолчанию,
// кроме AutoShelve: используйте DefaultOptions.
type Options struct {
	AutoShelve bool
	Now        func() time.Time
	NewID      func() string
}

// DefaultOptions как в веб-версии: новая книга сразу попадает на полку.
func DefaultOptions() Options {
	return Options{AutoShelve: true}
}

// Controller конечный автомат сессии. Безопасен для конкурентного использования.
type Controller struct {
	mu      sync.Mutex
	view    View
	active  *domain.Book
	books   []domain.Book
	lastErr string

	gen    Generator
	store  shelf.Store
	opts   Options
	logger *zap.Logger
}

// New создает контроллер и один раз читает полку из хранилища.
// Ошибка чтения логируется, сессия стартует с пустой полкой.
func New(ctx context.Context, gen Generator, store shelf.Store, opts Options, logger *zap.Logger) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.New().String() }
	}
	c := &Controller{
		view:   ViewForm,
		gen:    gen,
		store:  store,
		opts:   opts,
		logger: logger.Named("SessionController"),
		books:  []domain.Book{},
	}

	books, err := store.Load(ctx)
	if err != nil {
		c.logger.Warn("Failed to load bookshelf, starting empty", zap.Error(err))
		return c
	}
	c.books = books
	c.logger.Debug("Bookshelf loaded", zap.Int("books", len(books)))
	return c
}

// Submit отправляет форму. Невалидные параметры отклоняются без сетевого вызова.
// При любой ошибке генерации сессия возвращается на форму с общим сообщением.
func (c *Controller) Submit(ctx context.Context, params domain.CreationParams) (domain.Book, error) {
	c.mu.Lock()
	if c.view != ViewForm {
		view := c.view
		c.mu.Unlock()
		return domain.Book{}, fmt.Errorf("%w: submit in %s", ErrInvalidTransition, view)
	}
	params.Animals = append([]string(nil), params.Animals...)
	if err := params.Validate(); err != nil {
		c.lastErr = FormAlert
		c.mu.Unlock()
		return domain.Book{}, err
	}
	c.view = ViewLoading
	c.lastErr = ""
	c.mu.Unlock()

	c.logger.Info("Generating book",
		zap.String("language", string(params.Language)),
		zap.String("theme", params.Theme),
		zap.Strings("animals", params.Animals),
	)
	generated, err := c.gen.Generate(ctx, params)
	if err == nil {
		err = generated.Validate(params.Language)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.view = ViewForm
		c.lastErr = ErrorMessage
		c.logger.Error("Book generation failed", zap.Error(err))
		return domain.Book{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	book := domain.Book{
		ID:        c.opts.NewID(),
		Title:     generated.Title,
		Pages:     generated.Pages,
		Params:    params,
		Language:  params.Language,
		CreatedAt: c.opts.Now().UTC(),
	}
	c.active = &book
	c.view = ViewViewer
	if c.opts.AutoShelve {
		c.books = append(c.books, book)
		c.persistLocked(ctx)
	}
	c.logger.Info("Book created", zap.String("bookID", book.ID), zap.Int("pages", len(book.Pages)))
	return book, nil
}

// Close закрывает просмотр: на полку, если она не пуста, иначе на форму.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view != ViewViewer {
		return fmt.Errorf("%w: close in %s", ErrInvalidTransition, c.view)
	}
	if len(c.books) > 0 {
		c.view = ViewBookshelf
	} else {
		c.view = ViewForm
	}
	return nil
}

// OpenBookshelf переход на полку из формы или просмотра.
func (c *Controller) OpenBookshelf() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.view {
	case ViewForm, ViewViewer, ViewBookshelf:
		c.view = ViewBookshelf
		return nil
	}
	return fmt.Errorf("%w: open bookshelf in %s", ErrInvalidTransition, c.view)
}

// Select открывает книгу с полки.
func (c *Controller) Select(id string) (domain.Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view != ViewBookshelf {
		return domain.Book{}, fmt.Errorf("%w: select in %s", ErrInvalidTransition, c.view)
	}
	book, ok := domain.FindBook(c.books, id)
	if !ok {
		return domain.Book{}, fmt.Errorf("%w: %s", domain.ErrBookNotFound, id)
	}
	c.active = &book
	c.view = ViewViewer
	return book, nil
}

// Delete удаляет книгу с полки. Отсутствующий id не ошибка.
// Возвращает true, если книга была удалена.
func (c *Controller) Delete(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view != ViewBookshelf {
		return false, fmt.Errorf("%w: delete in %s", ErrInvalidTransition, c.view)
	}

	kept := make([]domain.Book, 0, len(c.books))
	for _, b := range c.books {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(c.books) {
		return false, nil
	}
	c.books = kept
	if c.active != nil && c.active.ID == id {
		c.active = nil
	}
	c.persistLocked(ctx)
	c.logger.Info("Book deleted", zap.String("bookID", id))
	return true, nil
}

// CreateNew возвращает на форму с полки или из просмотра.
func (c *Controller) CreateNew() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.view {
	case ViewBookshelf, ViewViewer, ViewForm:
		c.view = ViewForm
		c.lastErr = ""
		return nil
	}
	return fmt.Errorf("%w: create new in %s", ErrInvalidTransition, c.view)
}

// AddActiveToShelf кладет открытую книгу на полку, если ее там еще нет.
func (c *Controller) AddActiveToShelf(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view != ViewViewer || c.active == nil {
		return false, fmt.Errorf("%w: add to shelf in %s", ErrInvalidTransition, c.view)
	}
	if _, ok := domain.FindBook(c.books, c.active.ID); ok {
		return false, nil
	}
	c.books = append(c.books, *c.active)
	c.persistLocked(ctx)
	return true, nil
}

// View текущий экран.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Active открытая книга.
func (c *Controller) Active() (domain.Book, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return domain.Book{}, false
	}
	return *c.active, true
}

// Shelf копия полки.
func (c *Controller) Shelf() []domain.Book {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Book, len(c.books))
	copy(out, c.books)
	return out
}

// LastError сообщение для ребенка или пустая строка.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// persistLocked сохраняет полку целиком. Ошибка только логируется.
func (c *Controller) persistLocked(ctx context.Context) {
	if err := c.store.Save(ctx, c.books); err != nil {
		c.logger.Warn("Failed to persist bookshelf", zap.Int("books", len(c.books)), zap.Error(err))
	}
}
