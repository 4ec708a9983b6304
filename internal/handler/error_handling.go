package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"picturebook-server/internal/domain"
	sharedMiddleware "picturebook-server/shared/middleware"
)

// MissingCredentialMessage текст ошибки конфигурации, клиент узнает ее по нему.
const MissingCredentialMessage = "Missing GOOGLE_API_KEY"

func handleServiceError(c *gin.Context, logger *zap.Logger, err error) {
	var statusCode int
	var errResp ErrorResponse
	requestID := zap.String("request_id", sharedMiddleware.RequestID(c))

	switch {
	case errors.Is(err, domain.ErrInvalidParams):
		statusCode = http.StatusBadRequest
		errResp = ErrorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrMissingCredential):
		statusCode = http.StatusInternalServerError
		errResp = ErrorResponse{Error: MissingCredentialMessage}
	case errors.Is(err, domain.ErrInvalidUpstreamResponse):
		logger.Warn("Upstream returned unusable book", requestID, zap.Error(err))
		statusCode = http.StatusBadGateway
		errResp = ErrorResponse{Error: "The story service returned an unusable book"}
	case errors.Is(err, domain.ErrUpstreamFailed):
		logger.Warn("Upstream generation failed", requestID, zap.Error(err))
		statusCode = http.StatusBadGateway
		errResp = ErrorResponse{Error: "The story service is unavailable"}
	default:
		logger.Error("Unhandled internal error in handleServiceError", requestID, zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = ErrorResponse{Error: "Internal server error"}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(statusCode, errResp)
}
