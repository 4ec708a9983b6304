package generation

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"picturebook-server/internal/domain"
)

// ErrImageGenerationFailed ошибка генерации иллюстрации.
var ErrImageGenerationFailed = errors.New("image generation failed")

// Illustrator рисует иллюстрацию по описанию и возвращает ссылку на нее.
type Illustrator interface {
	Illustrate(ctx context.Context, prompt string) (string, error)
}

// imageRequest тело запроса к API генерации изображений.
type imageRequest struct {
	Prompt string `json:"prompt"`
	Ratio  string `json:"ratio"`
}

// HTTPIllustrator вызывает POST {base}/generate и возвращает картинку как data: URI.
type HTTPIllustrator struct {
	client      *resty.Client
	styleSuffix string
	ratio       string
	logger      *zap.Logger
}

// NewHTTPIllustrator создает клиента API изображений.
func NewHTTPIllustrator(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *HTTPIllustrator {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "image/*")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &HTTPIllustrator{
		client:      client,
		styleSuffix: ", children's picture book illustration, soft watercolor, warm colors",
		ratio:       "4:3",
		logger:      logger.Named("Illustrator"),
	}
}

// Illustrate реализует Illustrator.
func (h *HTTPIllustrator) Illustrate(ctx context.Context, prompt string) (string, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(imageRequest{Prompt: prompt + h.styleSuffix, Ratio: h.ratio}).
		Post("/generate")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrImageGenerationFailed, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: API returned status %d", ErrImageGenerationFailed, resp.StatusCode())
	}
	body := resp.Body()
	if len(body) == 0 {
		return "", fmt.Errorf("%w: API returned empty data", ErrImageGenerationFailed)
	}
	mime := http.DetectContentType(body)
	h.logger.Debug("Image received", zap.Int("size_bytes", len(body)), zap.String("mime", mime))
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(body), nil
}

// FillImages заполняет imageReference у страниц без картинки.
// Если иллюстратор не задан или упал, ставится defaultURL. Запросы идут параллельно, не более limit одновременно.
func FillImages(ctx context.Context, pages []domain.Page, prompts []string, ill Illustrator, defaultURL string, limit int, logger *zap.Logger) error {
	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range pages {
		if pages[i].ImageReference != "" {
			continue
		}
		prompt := ""
		if i < len(prompts) {
			prompt = prompts[i]
		}
		if ill == nil || prompt == "" {
			pages[i].ImageReference = defaultURL
			continue
		}

		g.Go(func() error {
			ref, err := ill.Illustrate(gctx, prompt)
			if err != nil {
				logger.Warn("Illustration failed, using default image", zap.Int("page", i+1), zap.Error(err))
				ref = defaultURL
			}
			// каждая горутина пишет только в свой элемент
			pages[i].ImageReference = ref
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}
