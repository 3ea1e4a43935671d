package steps

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/FlowMaster/internal/domain"
	"github.com/shaiso/FlowMaster/internal/engine"
)

// emitted — запись журнала, перехваченная в тесте.
type emitted struct {
	level   domain.LogLevel
	message string
	data    any
}

// newTestRequest создаёт Request, который складывает журнал в logs.
func newTestRequest(node domain.Node, previousData any, logs *[]emitted) *Request {
	tmplCtx := engine.NewContext(&domain.Flow{Name: "Test"})
	tmplCtx.SetData(previousData)

	return NewRequest(&node, previousData, "", tmplCtx, func(level domain.LogLevel, message string, data any) {
		*logs = append(*logs, emitted{level: level, message: message, data: data})
	})
}

// Registry Tests

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	// Пустой реестр
	if _, err := r.Get(domain.NodeTypeTrigger); !errors.Is(err, ErrStepNotFound) {
		t.Errorf("expected empty registry, got %v", err)
	}

	// Регистрация
	r.Register(NewTriggerStep())

	// Получение
	step, err := r.Get(domain.NodeTypeTrigger)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if step.Type() != domain.NodeTypeTrigger {
		t.Errorf("expected trigger, got %s", step.Type())
	}

	// Повторная регистрация перезаписывает шаг
	replacement := NewTriggerStep()
	r.Register(replacement)
	step, _ = r.Get(domain.NodeTypeTrigger)
	if step != Step(replacement) {
		t.Error("second Register should replace the step")
	}

	// Несуществующий тип
	_, err = r.Get("email")
	if !errors.Is(err, ErrStepNotFound) {
		t.Errorf("expected ErrStepNotFound, got %v", err)
	}
	if err.Error() != "unknown node type: email" {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	for _, typ := range domain.NodeTypes() {
		step, err := r.Get(typ)
		if err != nil {
			t.Errorf("default registry should have %s: %v", typ, err)
			continue
		}
		if step.Type() != typ {
			t.Errorf("step registered under %s reports %s", typ, step.Type())
		}
	}
}

// Trigger Step Tests

func TestTriggerStep_Manual(t *testing.T) {
	var logs []emitted
	node := domain.Node{ID: "t1", Type: domain.NodeTypeTrigger, Config: map[string]any{"mode": "manual"}}

	resp, err := NewTriggerStep().Execute(context.Background(), newTestRequest(node, nil, &logs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected map data, got %T", resp.Data)
	}
	if data["triggered"] != true || data["mode"] != "manual" {
		t.Errorf("unexpected data: %v", data)
	}

	if len(logs) != 1 || logs[0].level != domain.LogLevelSuccess || logs[0].message != "Trigger activated" {
		t.Errorf("unexpected logs: %+v", logs)
	}
}

func TestTriggerStep_Schedule(t *testing.T) {
	var logs []emitted
	node := domain.Node{ID: "t1", Type: domain.NodeTypeTrigger, Config: map[string]any{
		"mode":     "schedule",
		"schedule": "0 9 * * *",
	}}

	step := NewTriggerStep()
	step.now = func() time.Time { return time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC) }

	if _, err := step.Execute(context.Background(), newTestRequest(node, nil, &logs)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	details := logs[0].data.(map[string]any)
	if details["nextRun"] != "2025-03-10T09:00:00Z" {
		t.Errorf("expected next run at 09:00, got %v", details["nextRun"])
	}
}

func TestTriggerStep_InvalidConfig(t *testing.T) {
	var logs []emitted
	node := domain.Node{ID: "t1", Type: domain.NodeTypeTrigger, Config: map[string]any{"mode": "hourly"}}

	_, err := NewTriggerStep().Execute(context.Background(), newTestRequest(node, nil, &logs))
	if !errors.Is(err, engine.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("expected no logs, got %+v", logs)
	}
}

// API Step Tests

func TestAPIStep_Simulated(t *testing.T) {
	var logs []emitted
	node := domain.Node{ID: "a1", Type: domain.NodeTypeAPI, Config: map[string]any{
		"url":    "https://api.example.com/data",
		"method": "GET",
	}}

	resp, err := NewAPIStep(nil).Execute(context.Background(), newTestRequest(node, nil, &logs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := resp.Data.(map[string]any)
	if data["status"] != http.StatusOK {
		t.Errorf("expected status 200, got %v", data["status"])
	}
	body := data["data"].(map[string]any)
	if body["message"] != SimulatedMessage {
		t.Errorf("unexpected message: %v", body["message"])
	}
	if body["timestamp"] == nil {
		t.Error("response should contain timestamp")
	}

	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].message != "GET https://api.example.com/data" {
		t.Errorf("unexpected request log: %s", logs[0].message)
	}
	if logs[1].level != domain.LogLevelSuccess || logs[1].message != "API request successful" {
		t.Errorf("unexpected success log: %+v", logs[1])
	}
}

func TestAPIStep_EmptyURL(t *testing.T) {
	var logs []emitted
	node := domain.Node{ID: "a1", Type: domain.NodeTypeAPI, Config: map[string]any{"url": "", "method": "GET", "headers": map[string]any{}}}

	if _, err := NewAPIStep(nil).Execute(context.Background(), newTestRequest(node, nil, &logs)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logs[0].message != "GET (no url configured)" {
		t.Errorf("unexpected request log: %s", logs[0].message)
	}
	if logs[1].level != domain.LogLevelWarning || logs[1].data.(map[string]any)["url"] != placeholderURL {
		t.Errorf("expected placeholder warning, got %+v", logs[1])
	}
}

func TestAPIStep_RealTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/orders/42" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("X-Flow") != "Test" {
			t.Errorf("unexpected header: %s", r.Header.Get("X-Flow"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected json content type, got %s", r.Header.Get("Content-Type"))
		}

		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["mode"] != "manual" {
			t.Errorf("unexpected body: %v", body)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"accepted": true})
	}))
	defer server.Close()

	var logs []emitted
	node := domain.Node{ID: "a1", Type: domain.NodeTypeAPI, Config: map[string]any{
		"url":     server.URL + "/orders/{{ .Data.id }}",
		"method":  "post",
		"headers": map[string]any{"X-Flow": "{{ .Flow.Name }}"},
		"body":    map[string]any{"mode": "{{ .Data.mode }}"},
	}}
	previous := map[string]any{"id": float64(42), "mode": "manual"}

	resp, err := NewAPIStep(http.DefaultTransport).Execute(context.Background(), newTestRequest(node, previous, &logs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := resp.Data.(map[string]any)
	body := data["data"].(map[string]any)
	if body["accepted"] != true {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestAPIStep_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	var logs []emitted
	node := domain.Node{ID: "a1", Type: domain.NodeTypeAPI, Config: map[string]any{"url": server.URL}}

	_, err := NewAPIStep(http.DefaultTransport).Execute(context.Background(), newTestRequest(node, nil, &logs))
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusInternalServerError || !strings.Contains(httpErr.Body, "boom") {
		t.Errorf("unexpected HTTPError: %+v", httpErr)
	}
	if err.Error() != "HTTP 500: Internal Server Error" {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestAPIStep_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var logs []emitted
	node := domain.Node{ID: "a1", Type: domain.NodeTypeAPI, Config: map[string]any{"url": "https://api.example.com"}}

	_, err := NewAPIStep(nil).Execute(ctx, newTestRequest(node, nil, &logs))
	if !errors.Is(err, ErrStepCancelled) {
		t.Errorf("expected ErrStepCancelled, got %v", err)
	}
}

func TestSimulatedTransport(t *testing.T) {
	fixed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	transport := &SimulatedTransport{Now: func() time.Time { return fixed }}

	req := httptest.NewRequest(http.MethodPost, "http://example.com", strings.NewReader("payload"))
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	expected := `{"message":"Sample API response","timestamp":"2025-01-01T12:00:00Z"}`
	if string(raw) != expected {
		t.Errorf("expected %s, got %s", expected, raw)
	}
}

// Process Step Tests

func TestProcessStep_FormatTxt(t *testing.T) {
	var logs []emitted
	node := domain.Node{ID: "p1", Type: domain.NodeTypeProcess, Config: map[string]any{"action": "format_txt"}}
	previous := map[string]any{"triggered": true}

	resp, err := NewProcessStep().Execute(context.Background(), newTestRequest(node, previous, &logs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "{\n  \"triggered\": true\n}"
	if resp.Output != expected {
		t.Errorf("expected %q, got %q", expected, resp.Output)
	}
	// Данные проходят дальше без изменений
	if _, ok := resp.Data.(map[string]any); !ok {
		t.Errorf("expected previous data, got %T", resp.Data)
	}

	if logs[0].message != "Processing data with action: format_txt" {
		t.Errorf("unexpected log: %s", logs[0].message)
	}
	if logs[1].message != "Data processed successfully" {
		t.Errorf("unexpected log: %s", logs[1].message)
	}
}

func TestProcessStep_FormatTxtTemplate(t *testing.T) {
	var logs []emitted
	node := domain.Node{ID: "p1", Type: domain.NodeTypeProcess, Config: map[string]any{
		"action":   "format_txt",
		"template": "Report for {{ .Flow.Name }}: {{ .Data.status }}",
	}}

	resp, err := NewProcessStep().Execute(context.Background(), newTestRequest(node, map[string]any{"status": 200}, &logs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Output != "Report for Test: 200" {
		t.Errorf("unexpected output: %q", resp.Output)
	}
}

func TestProcessStep_FormatTxtMissingKey(t *testing.T) {
	var logs []emitted
	node := domain.Node{ID: "p1", Type: domain.NodeTypeProcess, Config: map[string]any{
		"action":   "format_txt",
		"template": "Report: {{ .Data.missing }}",
	}}

	_, err := NewProcessStep().Execute(context.Background(), newTestRequest(node, map[string]any{"status": 200}, &logs))
	if !errors.Is(err, engine.ErrTemplateRender) {
		t.Fatalf("expected ErrTemplateRender, got %v", err)
	}
}

func TestProcessStep_FormatTxtDefaultKeepsHTML(t *testing.T) {
	var logs []emitted
	node := domain.Node{ID: "p1", Type: domain.NodeTypeProcess, Config: map[string]any{"action": "format_txt"}}

	resp, err := NewProcessStep().Execute(context.Background(), newTestRequest(node, map[string]any{"link": "a&b<c>"}, &logs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resp.Output, `"a&b<c>"`) {
		t.Errorf("html characters should not be escaped: %q", resp.Output)
	}
}

func TestProcessStep_Envelopes(t *testing.T) {
	tests := []struct {
		name     string
		config   map[string]any
		previous any
		check    func(t *testing.T, env map[string]any)
	}{
		{
			name:     "parse_json",
			config:   map[string]any{"action": "parse_json"},
			previous: `{"a": 1}`,
			check: func(t *testing.T, env map[string]any) {
				data := env["data"].(map[string]any)
				if data["a"] != float64(1) {
					t.Errorf("unexpected data: %v", data)
				}
			},
		},
		{
			name:     "transform with expression",
			config:   map[string]any{"action": "transform", "expression": "{{ .Data.count }}"},
			previous: map[string]any{"count": 3},
			check: func(t *testing.T, env map[string]any) {
				if env["data"] != int64(3) {
					t.Errorf("expected 3, got %v (%T)", env["data"], env["data"])
				}
				if env["expression"] != "{{ .Data.count }}" {
					t.Errorf("expression should be kept: %v", env["expression"])
				}
			},
		},
		{
			name:     "filter",
			config:   map[string]any{"action": "filter", "expression": `{{ eq .Data.kind "keep" }}`},
			previous: []any{map[string]any{"kind": "keep"}, map[string]any{"kind": "drop"}},
			check: func(t *testing.T, env map[string]any) {
				items := env["data"].([]any)
				if len(items) != 1 {
					t.Errorf("expected 1 item, got %d", len(items))
				}
			},
		},
		{
			name:     "aggregate",
			config:   map[string]any{"action": "aggregate"},
			previous: []any{1, 2, 3},
			check: func(t *testing.T, env map[string]any) {
				if env["count"] != 3 {
					t.Errorf("expected count 3, got %v", env["count"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs []emitted
			node := domain.Node{ID: "p1", Type: domain.NodeTypeProcess, Config: tt.config}

			resp, err := NewProcessStep().Execute(context.Background(), newTestRequest(node, tt.previous, &logs))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			env, ok := resp.Data.(map[string]any)
			if !ok {
				t.Fatalf("expected envelope, got %T", resp.Data)
			}
			if env["action"] != tt.config["action"] {
				t.Errorf("expected action %v, got %v", tt.config["action"], env["action"])
			}
			if resp.Output != "" {
				t.Errorf("output should stay empty, got %q", resp.Output)
			}
			tt.check(t, env)
		})
	}
}

// Condition Step Tests

func TestConditionStep(t *testing.T) {
	var logs []emitted
	node := domain.Node{ID: "c1", Type: domain.NodeTypeCondition, Config: map[string]any{
		"field":      "status",
		"operator":   "equals",
		"value":      "200",
		"trueBranch": "o1",
	}}
	previous := map[string]any{"status": 200}

	resp, err := NewConditionStep().Execute(context.Background(), newTestRequest(node, previous, &logs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if logs[0].message != "Evaluating condition: status equals 200" {
		t.Errorf("unexpected log: %s", logs[0].message)
	}
	if logs[1].message != "Condition evaluated: true" {
		t.Errorf("unexpected log: %s", logs[1].message)
	}
	details := logs[1].data.(map[string]any)
	if details["branch"] != "o1" {
		t.Errorf("expected branch o1, got %v", details["branch"])
	}

	// Данные не меняются
	if resp.Data.(map[string]any)["status"] != 200 {
		t.Errorf("previous data should pass through: %v", resp.Data)
	}
}

func TestConditionStep_NotNumeric(t *testing.T) {
	var logs []emitted
	node := domain.Node{ID: "c1", Type: domain.NodeTypeCondition, Config: map[string]any{
		"field":    "message",
		"operator": "greater",
		"value":    "5",
	}}

	_, err := NewConditionStep().Execute(context.Background(), newTestRequest(node, map[string]any{"message": "hi"}, &logs))
	if !errors.Is(err, engine.ErrNotNumeric) {
		t.Errorf("expected ErrNotNumeric, got %v", err)
	}
}

// Output Step Tests

func TestOutputStep(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		previous any
		expected string
	}{
		{
			name:     "keeps existing output",
			output:   "report",
			previous: map[string]any{"a": 1},
			expected: "report",
		},
		{
			name:     "previous data as json",
			previous: map[string]any{"a": 1},
			expected: "{\n  \"a\": 1\n}",
		},
		{
			name:     "default payload",
			expected: "{\n  \"result\": \"Flow completed\"\n}",
		},
		{
			name:     "html characters unescaped",
			previous: map[string]any{"q": "a&b<c>"},
			expected: "{\n  \"q\": \"a&b<c>\"\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs []emitted
			node := domain.Node{ID: "o1", Type: domain.NodeTypeOutput, Config: map[string]any{"format": "txt"}}
			req := newTestRequest(node, tt.previous, &logs)
			req.Output = tt.output

			resp, err := NewOutputStep().Execute(context.Background(), req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Output != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, resp.Output)
			}

			if logs[0].message != "Output generated in txt format" {
				t.Errorf("unexpected log: %s", logs[0].message)
			}
			details := logs[0].data.(map[string]any)
			if details["size"] != len(resp.Output) {
				t.Errorf("size %v does not match output length %d", details["size"], len(resp.Output))
			}
		})
	}
}

// Latency Tests

func TestLatency_Wait(t *testing.T) {
	latency := NewLatency(20*time.Millisecond, 20*time.Millisecond)

	start := time.Now()
	if err := latency.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("delay was too short: %v", elapsed)
	}
}

func TestLatency_Cancellation(t *testing.T) {
	latency := NewLatency(time.Second, 2*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := latency.Wait(ctx)
	if !errors.Is(err, ErrStepCancelled) {
		t.Errorf("expected ErrStepCancelled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("cancellation took too long: %v", elapsed)
	}
}

func TestLatency_Duration(t *testing.T) {
	latency := NewLatency(10*time.Millisecond, 5*time.Millisecond)
	if latency.Max != latency.Min {
		t.Errorf("max should be clamped to min: %v", latency)
	}

	latency = NewLatency(100*time.Millisecond, 200*time.Millisecond)
	for range 20 {
		d := latency.Duration()
		if d < latency.Min || d > latency.Max {
			t.Fatalf("duration %v out of range %v", d, latency)
		}
	}

	if err := NoLatency.Wait(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
