// Package handler HTTP-граница сервера книг.
package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"picturebook-server/internal/catalog"
	"picturebook-server/internal/domain"
	"picturebook-server/internal/render"
)

const maxBodyBytes = 64 << 10

// BookGenerator генерирует книгу по параметрам.
type BookGenerator interface {
	Generate(ctx context.Context, params domain.CreationParams) (domain.GeneratedBook, error)
}

// readinessChecker реализуется генератором, которому нужна конфигурация (ключ модели).
type readinessChecker interface {
	Ready() error
}

// APIHandler обработчики /api.
type APIHandler struct {
	generator BookGenerator
	catalog   *catalog.Catalog
	logger    *zap.Logger
}

// NewAPIHandler создает обработчик.
func NewAPIHandler(generator BookGenerator, cat *catalog.Catalog, logger *zap.Logger) *APIHandler {
	if cat == nil {
		cat = catalog.Default()
	}
	return &APIHandler{
		generator: generator,
		catalog:   cat,
		logger:    logger.Named("APIHandler"),
	}
}

// RegisterRoutes регистрирует маршруты. generateMiddleware применяется только к /api/generate.
func (h *APIHandler) RegisterRoutes(router gin.IRouter, generateMiddleware ...gin.HandlerFunc) {
	api := router.Group("/api")
	api.POST("/generate", append(generateMiddleware, h.HandleGenerate)...)
	api.POST("/render", h.HandleRender)
	api.GET("/catalog", h.HandleCatalog)
}

// HandleGenerate POST /api/generate.
func (h *APIHandler) HandleGenerate(c *gin.Context) {
	if rc, ok := h.generator.(readinessChecker); ok {
		if err := rc.Ready(); err != nil {
			handleServiceError(c, h.logger, err)
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		handleServiceError(c, h.logger, wrapDecodeError(err))
		return
	}

	params, err := decodeGenerateRequest(body)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	book, err := h.generator.Generate(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// HandleRender POST /api/render: проекция страницы в HTML и сегменты.
func (h *APIHandler) HandleRender(c *gin.Context) {
	var req RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, h.logger, wrapDecodeError(err))
		return
	}
	mode, err := render.ParseDisplayMode(req.Mode)
	if err != nil {
		handleServiceError(c, h.logger, wrapDecodeError(err))
		return
	}
	if req.Language != "" {
		lang, err := domain.ParseLanguage(string(req.Language))
		if err != nil {
			handleServiceError(c, h.logger, err)
			return
		}
		mode = render.EffectiveMode(lang, mode)
	}

	rp := render.Render(req.Page, mode)
	html, err := render.HTML(rp)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, RenderResponse{
		Mode:     mode,
		HTML:     html,
		Text:     render.Terminal(rp),
		Segments: rp.Native,
		Foreign:  rp.Foreign,
	})
}

// HandleCatalog GET /api/catalog.
func (h *APIHandler) HandleCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog)
}
