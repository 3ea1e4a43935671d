package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/shaiso/FlowMaster/internal/domain"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// ValidateResponse — результат проверки flow из API.
type ValidateResponse struct {
	Valid bool         `json:"valid"`
	Flow  *domain.Flow `json:"flow"`
	Steps int          `json:"steps"`
}

// ExecutionResponse — результат run из API.
type ExecutionResponse struct {
	domain.ExecutionResult

	DurationMs int64  `json:"durationMs"`
	Artifact   string `json:"artifact,omitempty"`
}

// Artifact — скачанный артефакт run.
type Artifact struct {
	Filename string
	RunID    string
	Content  []byte
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

// APIError — ошибка API в формате RFC 7807.
type APIError struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance"`
}

// Error реализует интерфейс error.
func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Type, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Detail)
}

// --- Client ---

// Client — HTTP-клиент для FlowMaster API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// ValidateFlow проверяет документ flow на сервере.
func (c *Client) ValidateFlow(doc []byte, contentType string) (*ValidateResponse, error) {
	var result ValidateResponse
	err := c.post("/api/v1/flows/validate", doc, contentType, &result)
	return &result, err
}

// ImportFlow извлекает flow из произвольного текста на сервере.
func (c *Client) ImportFlow(text []byte) (*domain.Flow, error) {
	var flow domain.Flow
	err := c.post("/api/v1/flows/import", text, "text/plain", &flow)
	return &flow, err
}

// Execute выполняет flow на сервере.
func (c *Client) Execute(doc []byte, contentType string) (*ExecutionResponse, error) {
	var result ExecutionResponse
	err := c.post("/api/v1/executions", doc, contentType, &result)
	return &result, err
}

// DownloadArtifact выполняет flow на сервере и возвращает его вывод.
func (c *Client) DownloadArtifact(doc []byte, contentType string) (*Artifact, error) {
	resp, err := c.do(http.MethodPost, "/api/v1/executions/artifact", doc, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	artifact := &Artifact{
		RunID:   resp.Header.Get("X-Run-Id"),
		Content: content,
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		artifact.Filename = params["filename"]
	}

	return artifact, nil
}

// --- HTTP helpers ---

func (c *Client) post(path string, body []byte, contentType string, result any) error {
	resp, err := c.do(http.MethodPost, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body []byte, contentType string) (*http.Response, error) {
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var apiErr APIError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Type == "" {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}
	if apiErr.Status == 0 {
		apiErr.Status = resp.StatusCode
	}

	return &apiErr
}
