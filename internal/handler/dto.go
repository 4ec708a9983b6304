package handler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"picturebook-server/internal/annotation"
	"picturebook-server/internal/domain"
	"picturebook-server/internal/render"
)

// ErrorResponse тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GenerateRequest тело POST /api/generate: {"params": {...}}.
type GenerateRequest struct {
	Params *domain.CreationParams `json:"params"`
}

// decodeGenerateRequest принимает как обернутые {"params": {...}}, так и голые параметры.
func decodeGenerateRequest(body []byte) (domain.CreationParams, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.CreationParams{}, fmt.Errorf("%w: empty request body", domain.ErrInvalidParams)
	}

	var wrapped GenerateRequest
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return domain.CreationParams{}, wrapDecodeError(err)
	}
	if wrapped.Params != nil {
		return *wrapped.Params, nil
	}

	var bare domain.CreationParams
	if err := json.Unmarshal(body, &bare); err != nil {
		return domain.CreationParams{}, wrapDecodeError(err)
	}
	return bare, nil
}

func wrapDecodeError(err error) error {
	return fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidParams, err)
}

// RenderRequest тело POST /api/render.
type RenderRequest struct {
	Page     domain.Page     `json:"page"`
	Mode     string          `json:"mode"`
	Language domain.Language `json:"language"`
}

// RenderResponse результат проекции страницы.
type RenderResponse struct {
	Mode     render.DisplayMode   `json:"mode"`
	HTML     string               `json:"html"`
	Text     string               `json:"text"`
	Segments []annotation.Segment `json:"segments"`
	Foreign  string               `json:"foreign,omitempty"`
}
