package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shaiso/FlowMaster/internal/domain"
)

// apiResponse — данные в форме ответа api узла.
func apiResponse() map[string]any {
	return map[string]any{
		"status": float64(200),
		"data": map[string]any{
			"message": "Sample API response",
			"tags":    []any{"alpha", "beta"},
			"count":   "42",
		},
		"items": []any{
			map[string]any{"id": "first"},
			map[string]any{"id": "second"},
		},
		"empty": nil,
	}
}

func TestEvaluateCondition(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		operator string
		value    string
		expected bool
	}{
		{"equals number", "status", domain.OperatorEquals, "200", true},
		{"equals mismatch", "status", domain.OperatorEquals, "404", false},
		{"equals nested", "data.message", domain.OperatorEquals, "Sample API response", true},
		{"equals array index", "items.1.id", domain.OperatorEquals, "second", true},
		{"equals missing", "nope", domain.OperatorEquals, "", false},

		{"contains substring", "data.message", domain.OperatorContains, "API", true},
		{"contains substring miss", "data.message", domain.OperatorContains, "xyz", false},
		{"contains array member", "data.tags", domain.OperatorContains, "beta", true},
		{"contains array miss", "data.tags", domain.OperatorContains, "gamma", false},
		{"contains map key", "data", domain.OperatorContains, "message", true},
		{"contains missing", "nope", domain.OperatorContains, "a", false},

		{"greater true", "status", domain.OperatorGreater, "100", true},
		{"greater false", "status", domain.OperatorGreater, "300", false},
		{"greater numeric string", "data.count", domain.OperatorGreater, "41.5", true},
		{"less true", "status", domain.OperatorLess, "201", true},
		{"less equal", "status", domain.OperatorLess, "200", false},
		{"less missing", "nope", domain.OperatorLess, "1", false},

		{"exists", "data.message", domain.OperatorExists, "", true},
		{"exists null", "empty", domain.OperatorExists, "", false},
		{"exists missing", "data.nope", domain.OperatorExists, "", false},
		{"exists root", "", domain.OperatorExists, "", true},
	}

	data := apiResponse()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &domain.ConditionConfig{Field: tt.field, Operator: tt.operator, Value: tt.value}

			got, err := EvaluateCondition(cfg, data)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestEvaluateCondition_TypedValue(t *testing.T) {
	data := apiResponse()

	// Значение из JSON документа приходит числом или bool, а не строкой
	tests := []struct {
		name     string
		field    string
		operator string
		value    any
		expected bool
	}{
		{"greater number", "status", domain.OperatorGreater, float64(100), true},
		{"less number", "status", domain.OperatorLess, float64(150), false},
		{"equals number", "status", domain.OperatorEquals, float64(200), true},
		{"equals number to numeric string", "data.count", domain.OperatorEquals, float64(42), true},
		{"contains number in string", "data.message", domain.OperatorContains, float64(1), false},
		{"equals nil value", "empty", domain.OperatorEquals, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &domain.ConditionConfig{Field: tt.field, Operator: tt.operator, Value: tt.value}

			got, err := EvaluateCondition(cfg, data)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestDecodeConditionConfig_NumericValue(t *testing.T) {
	node := &domain.Node{ID: "c1", Type: domain.NodeTypeCondition, Config: map[string]any{
		"field": "status", "operator": "greater", "value": float64(5),
	}}

	cfg, err := DecodeConditionConfig(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Value != float64(5) {
		t.Errorf("expected numeric value, got %v (%T)", cfg.Value, cfg.Value)
	}
}

func TestEvaluateCondition_NotNumeric(t *testing.T) {
	data := apiResponse()

	tests := []struct {
		name  string
		field string
		value string
	}{
		{"field not numeric", "data.message", "10"},
		{"value not numeric", "status", "many"},
		{"object field", "data", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &domain.ConditionConfig{Field: tt.field, Operator: domain.OperatorGreater, Value: tt.value}

			_, err := EvaluateCondition(cfg, data)
			if !errors.Is(err, ErrNotNumeric) {
				t.Errorf("expected ErrNotNumeric, got %v", err)
			}
		})
	}
}

func TestEvaluateCondition_UnknownOperator(t *testing.T) {
	cfg := &domain.ConditionConfig{Field: "status", Operator: "matches", Value: "2.."}

	_, err := EvaluateCondition(cfg, apiResponse())
	if !errors.Is(err, ErrUnknownOperator) {
		t.Errorf("expected ErrUnknownOperator, got %v", err)
	}
}

func TestEvaluateCondition_NilData(t *testing.T) {
	// Первый узел без предыдущих данных
	cfg := &domain.ConditionConfig{Field: "status", Operator: domain.OperatorEquals, Value: "200"}

	got, err := EvaluateCondition(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("expected false for nil data")
	}
}

func TestLookup(t *testing.T) {
	data := apiResponse()

	if v, ok := Lookup(data, "items.0.id"); !ok || v != "first" {
		t.Errorf("expected first, got %v (%v)", v, ok)
	}
	if _, ok := Lookup(data, "items.5.id"); ok {
		t.Error("out of range index should not be found")
	}
	if _, ok := Lookup(data, "items.x"); ok {
		t.Error("non-numeric index should not be found")
	}
	if _, ok := Lookup(data, "status.code"); ok {
		t.Error("lookup into scalar should not be found")
	}

	headers := map[string]any{"headers": map[string]string{"Content-Type": "application/json"}}
	if v, ok := Lookup(headers, "headers.Content-Type"); !ok || v != "application/json" {
		t.Errorf("expected header value, got %v (%v)", v, ok)
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		input    any
		expected string
	}{
		{nil, ""},
		{"text", "text"},
		{true, "true"},
		{float64(200), "200"},
		{float64(1.5), "1.5"},
		{7, "7"},
		{json.Number("12"), "12"},
		{[]any{"a", float64(1)}, `["a",1]`},
		{map[string]any{"k": "v"}, `{"k":"v"}`},
	}

	for _, tt := range tests {
		if got := Stringify(tt.input); got != tt.expected {
			t.Errorf("Stringify(%v) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestToNumber(t *testing.T) {
	if n, ok := ToNumber(" 3.25 "); !ok || n != 3.25 {
		t.Errorf("expected 3.25, got %v (%v)", n, ok)
	}
	if _, ok := ToNumber("abc"); ok {
		t.Error("abc should not be a number")
	}
	if _, ok := ToNumber(true); ok {
		t.Error("bool should not be a number")
	}
	if n, ok := ToNumber(json.Number("8")); !ok || n != 8 {
		t.Errorf("expected 8, got %v (%v)", n, ok)
	}
}
