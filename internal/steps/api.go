package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"
	"time"

	"github.com/shaiso/FlowMaster/internal/domain"
	"github.com/shaiso/FlowMaster/internal/engine"
)

const (
	defaultAPITimeout = 30 * time.Second
	maxResponseBody   = 10 * 1024 * 1024 // 10 MB

	// placeholderURL — адрес запроса для узла без url.
	placeholderURL = "http://flowmaster.invalid/"
)

// APIStep — узел HTTP запроса.
//
// Запрос собирается из конфигурации (url, заголовки и body рендерятся как
// шаблоны над данными предыдущего узла) и уходит через http.RoundTripper.
// По умолчанию это SimulatedTransport: сеть не используется.
//
// Конфигурация:
//
//	{
//	    "url": "https://api.example.com/orders/{{ .Data.id }}",
//	    "method": "POST",
//	    "headers": {"Authorization": "Bearer {{ .Env.TOKEN }}"},
//	    "body": {"status": "{{ .Data.status }}"}
//	}
//
// Данные для следующего узла:
//
//	{
//	    "status": 200,
//	    "data": {...},    // JSON или строка
//	    "headers": {"Content-Type": "application/json"}
//	}
type APIStep struct {
	client *http.Client
}

// NewAPIStep создаёт APIStep с указанным транспортом.
// nil — симулированный транспорт.
func NewAPIStep(transport http.RoundTripper) *APIStep {
	if transport == nil {
		transport = NewSimulatedTransport()
	}
	return &APIStep{
		client: &http.Client{
			Timeout:   defaultAPITimeout,
			Transport: transport,
		},
	}
}

// Type возвращает тип узла.
func (s *APIStep) Type() domain.NodeType {
	return domain.NodeTypeAPI
}

// Execute выполняет HTTP запрос.
func (s *APIStep) Execute(ctx context.Context, req *Request) (*Response, error) {
	cfg, err := engine.DecodeAPIConfig(req.Node)
	if err != nil {
		return nil, err
	}

	if err := s.renderConfig(cfg, req.templateContext()); err != nil {
		return nil, err
	}

	target, label := cfg.URL, cfg.URL
	if target == "" {
		target, label = placeholderURL, "(no url configured)"
	}

	req.Info(fmt.Sprintf("%s %s", cfg.Method, label), map[string]any{
		"method":  cfg.Method,
		"url":     cfg.URL,
		"headers": maps.Clone(cfg.Headers),
	})
	if cfg.URL == "" {
		req.Warning("No URL configured, request sent to placeholder", map[string]any{"url": placeholderURL})
	}

	httpReq, err := s.buildRequest(ctx, cfg, target)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrStepCancelled, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	data, err := s.parseResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       engine.Stringify(data["data"]),
		}
	}

	req.Success("API request successful", data)

	return req.Pass(data), nil
}

// renderConfig рендерит url, заголовки и body как шаблоны.
func (s *APIStep) renderConfig(cfg *domain.APIConfig, tmplCtx *engine.Context) error {
	url, err := engine.Render(cfg.URL, tmplCtx)
	if err != nil {
		return fmt.Errorf("render url: %w", err)
	}
	cfg.URL = strings.TrimSpace(url)

	for key, value := range cfg.Headers {
		rendered, err := engine.Render(value, tmplCtx)
		if err != nil {
			return fmt.Errorf("render header %s: %w", key, err)
		}
		cfg.Headers[key] = rendered
	}

	body, err := engine.RenderValue(cfg.Body, tmplCtx)
	if err != nil {
		return fmt.Errorf("render body: %w", err)
	}
	cfg.Body = body

	return nil
}

// buildRequest создаёт HTTP запрос.
func (s *APIStep) buildRequest(ctx context.Context, cfg *domain.APIConfig, target string) (*http.Request, error) {
	var bodyReader io.Reader

	if cfg.Body != nil {
		bodyBytes, err := s.serializeBody(cfg.Body)
		if err != nil {
			return nil, fmt.Errorf("serialize body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)

		// Устанавливаем Content-Type, если не задан
		if _, hasContentType := cfg.Headers["Content-Type"]; !hasContentType {
			cfg.Headers["Content-Type"] = "application/json"
		}
	}

	req, err := http.NewRequestWithContext(ctx, cfg.Method, target, bodyReader)
	if err != nil {
		return nil, err
	}

	for key, value := range cfg.Headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

// serializeBody сериализует body в bytes.
func (s *APIStep) serializeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(v)
	}
}

// parseResponse превращает HTTP ответ в данные узла.
func (s *APIStep) parseResponse(resp *http.Response) (map[string]any, error) {
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var body any
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if err := json.Unmarshal(bodyBytes, &body); err != nil {
			// Если не удалось распарсить JSON, возвращаем как строку
			body = string(bodyBytes)
		}
	} else {
		body = string(bodyBytes)
	}

	headers := make(map[string]any, len(resp.Header))
	for key := range resp.Header {
		headers[key] = resp.Header.Get(key)
	}

	return map[string]any{
		"status":  resp.StatusCode,
		"data":    body,
		"headers": headers,
	}, nil
}

// HTTPError — ответ api узла со статусом >= 400.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error реализует интерфейс error.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}
