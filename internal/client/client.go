// Package client HTTP-клиент сервера книг для bookctl.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"picturebook-server/internal/catalog"
	"picturebook-server/internal/domain"
	"picturebook-server/internal/handler"
	"picturebook-server/internal/session"
)

// ErrRateLimited сервер ответил 429.
var ErrRateLimited = errors.New("rate limited by server")

// GeneratorClient вызывает POST /api/generate. Повторов нет.
type GeneratorClient struct {
	client *resty.Client
	logger *zap.Logger
}

var _ session.Generator = (*GeneratorClient)(nil)

// New создает клиента для baseURL.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *GeneratorClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "bookctl")
	return &GeneratorClient{
		client: c,
		logger: logger.Named("GeneratorClient"),
	}
}

// Generate реализует session.Generator.
func (g *GeneratorClient) Generate(ctx context.Context, params domain.CreationParams) (domain.GeneratedBook, error) {
	var book domain.GeneratedBook
	var apiErr handler.ErrorResponse

	start := time.Now()
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(handler.GenerateRequest{Params: &params}).
		SetResult(&book).
		SetError(&apiErr).
		Post("/api/generate")
	if err != nil {
		return domain.GeneratedBook{}, fmt.Errorf("%w: %w", domain.ErrUpstreamFailed, err)
	}
	g.logger.Debug("Generate response",
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", time.Since(start)),
	)
	if resp.IsError() {
		return domain.GeneratedBook{}, statusError(resp.StatusCode(), apiErr.Error)
	}
	if !resp.IsSuccess() {
		return domain.GeneratedBook{}, fmt.Errorf("%w: unexpected status %d", domain.ErrInvalidUpstreamResponse, resp.StatusCode())
	}
	return book, nil
}

// Catalog загружает варианты формы с сервера.
func (g *GeneratorClient) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	var cat catalog.Catalog
	var apiErr handler.ErrorResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetResult(&cat).
		SetError(&apiErr).
		Get("/api/catalog")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamFailed, err)
	}
	if resp.IsError() {
		return nil, statusError(resp.StatusCode(), apiErr.Error)
	}
	return &cat, nil
}

func statusError(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	switch {
	case status == http.StatusBadRequest:
		message = strings.TrimPrefix(message, domain.ErrInvalidParams.Error()+": ")
		return fmt.Errorf("%w: %s", domain.ErrInvalidParams, message)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, message)
	case status == http.StatusBadGateway:
		return fmt.Errorf("%w: %s", domain.ErrUpstreamFailed, message)
	case status == http.StatusInternalServerError && message == handler.MissingCredentialMessage:
		return fmt.Errorf("%w: %s", domain.ErrMissingCredential, message)
	}
	return fmt.Errorf("%w: status %d: %s", domain.ErrUpstreamFailed, status, message)
}
