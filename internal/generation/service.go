// Package generation создает текст книги через языковую модель и приводит ответ к странице книги.
package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"picturebook-server/internal/catalog"
	"picturebook-server/internal/config"
	"picturebook-server/internal/domain"
)

// Options настройки сервиса генерации.
type Options struct {
	HasCredential    bool
	Timeout          time.Duration
	Temperature      *float64
	MaxTokens        *int
	PageCount        int
	DefaultImageURL  string
	ImageConcurrency int
}

// OptionsFromConfig собирает Options из конфигурации сервера.
func OptionsFromConfig(cfg *config.Config) Options {
	temperature := cfg.AITemperature
	maxTokens := cfg.AIMaxTokens
	return Options{
		HasCredential:    cfg.HasCredential(),
		Timeout:          cfg.AITimeout,
		Temperature:      &temperature,
		MaxTokens:        &maxTokens,
		PageCount:        DefaultPageCount,
		DefaultImageURL:  cfg.DefaultImageURL,
		ImageConcurrency: cfg.ImageConcurrency,
	}
}

// Service один вызов модели на книгу, без повторов.
type Service struct {
	ai          AIClient
	illustrator Illustrator
	catalog     *catalog.Catalog
	opts        Options
	logger      *zap.Logger
}

// NewService создает сервис. illustrator может быть nil.
func NewService(ai AIClient, illustrator Illustrator, cat *catalog.Catalog, opts Options, logger *zap.Logger) *Service {
	if cat == nil {
		cat = catalog.Default()
	}
	if opts.DefaultImageURL == "" {
		opts.DefaultImageURL = config.DefaultImageURL
	}
	return &Service{
		ai:          ai,
		illustrator: illustrator,
		catalog:     cat,
		opts:        opts,
		logger:      logger.Named("GenerationService"),
	}
}

// Ready возвращает domain.ErrMissingCredential, пока ключ модели не задан.
// Без ключа отклоняется любой запрос, даже с некорректными параметрами.
func (s *Service) Ready() error {
	if !s.opts.HasCredential {
		s.logger.Error("Generation requested but no API key is configured")
		return domain.ErrMissingCredential
	}
	return nil
}

// Generate создает книгу по параметрам.
// Ошибки: domain.ErrMissingCredential, domain.ErrInvalidParams,
// domain.ErrUpstreamFailed, domain.ErrInvalidUpstreamResponse.
func (s *Service) Generate(ctx context.Context, params domain.CreationParams) (domain.GeneratedBook, error) {
	if err := s.Ready(); err != nil {
		return domain.GeneratedBook{}, err
	}
	if err := params.Validate(); err != nil {
		return domain.GeneratedBook{}, err
	}

	systemPrompt, userInput, err := BuildPrompt(params, s.catalog, s.opts.PageCount)
	if err != nil {
		return domain.GeneratedBook{}, fmt.Errorf("failed to build prompt: %w", err)
	}

	log := s.logger.With(zap.String("language", string(params.Language)), zap.Int("animals", len(params.Animals)))

	genCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	raw, usage, err := s.ai.GenerateText(genCtx, systemPrompt, userInput, GenerationParams{
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
		JSONOutput:  true,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			log.Warn("AI generation timed out", zap.Duration("timeout", s.opts.Timeout))
		}
		return domain.GeneratedBook{}, fmt.Errorf("%w: %w", domain.ErrUpstreamFailed, err)
	}

	book, prompts, err := ParseBook(raw, params.Language)
	if err != nil {
		log.Warn("AI response rejected", zap.Error(err), zap.Int("raw_length", len(raw)))
		return domain.GeneratedBook{}, err
	}

	if err := FillImages(genCtx, book.Pages, prompts, s.illustrator, s.opts.DefaultImageURL, s.opts.ImageConcurrency, log); err != nil {
		return domain.GeneratedBook{}, fmt.Errorf("%w: %w", domain.ErrUpstreamFailed, err)
	}

	log.Info("Book generated",
		zap.Int("pages", len(book.Pages)),
		zap.Int("total_tokens", usage.TotalTokens),
	)
	return book, nil
}
