package steps

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SimulatedMessage — текст ответа симулированного транспорта.
const SimulatedMessage = "Sample API response"

// SimulatedTransport — http.RoundTripper без сети.
//
// На любой запрос отвечает 200 OK с JSON телом:
//
//	{"message": "Sample API response", "timestamp": "<RFC3339>"}
//
// Реальный транспорт подставляется через NewAPIStep.
type SimulatedTransport struct {
	// Now — источник времени для поля timestamp.
	Now func() time.Time
}

// NewSimulatedTransport создаёт SimulatedTransport.
func NewSimulatedTransport() *SimulatedTransport {
	return &SimulatedTransport{Now: time.Now}
}

// RoundTrip реализует http.RoundTripper.
func (t *SimulatedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		_, _ = io.Copy(io.Discard, req.Body)
		req.Body.Close()
	}

	if err := req.Context().Err(); err != nil {
		return nil, err
	}

	now := time.Now
	if t.Now != nil {
		now = t.Now
	}

	body, err := json.Marshal(map[string]any{
		"message":   SimulatedMessage,
		"timestamp": now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal simulated response: %w", err)
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")

	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}
