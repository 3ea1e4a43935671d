package api

import (
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/shaiso/FlowMaster/internal/domain"
	"github.com/shaiso/FlowMaster/internal/engine"
)

// ValidateFlow проверяет документ flow.
// POST /api/v1/flows/validate
//
// Тело — JSON (или YAML при Content-Type application/yaml).
// Ответ — нормализованный flow.
func (h *Handler) ValidateFlow(w http.ResponseWriter, r *http.Request) {
	flow, err := h.readFlow(w, r)
	if HandleError(w, r, h.logger, err) {
		return
	}

	if HandleError(w, r, h.logger, engine.Validate(flow)) {
		return
	}

	Success(w, ValidateResponse{
		Valid: true,
		Flow:  flow,
		Steps: len(flow.Steps),
	})
}

// ImportFlow извлекает flow из произвольного текста.
// POST /api/v1/flows/import
//
// Текст может быть JSON документом или содержать его внутри.
func (h *Handler) ImportFlow(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if HandleError(w, r, h.logger, err) {
		return
	}

	flow, err := engine.Import(body)
	if HandleError(w, r, h.logger, err) {
		return
	}

	Success(w, flow)
}

// readBody читает тело запроса с ограничением размера.
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// readFlow читает и разбирает документ flow из тела запроса.
func (h *Handler) readFlow(w http.ResponseWriter, r *http.Request) (*domain.Flow, error) {
	body, err := h.readBody(w, r)
	if err != nil {
		return nil, err
	}

	if isYAML(r.Header.Get("Content-Type")) {
		return engine.ParseYAML(body)
	}
	return engine.Parse(body)
}

func isYAML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return true
	default:
		return false
	}
}
