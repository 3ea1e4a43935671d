package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shaiso/FlowMaster/internal/domain"
	"github.com/shaiso/FlowMaster/internal/engine"
)

// ProcessStep — узел обработки данных предыдущего узла.
//
// Действия:
//
//	format_txt — рендерит template (или JSON данных) в вывод flow
//	parse_json — разбирает строку как JSON и оборачивает в конверт
//	transform  — рендерит expression над данными
//	filter     — оставляет элементы массива, для которых expression даёт "true"
//	aggregate  — оборачивает данные и считает элементы
//
// Все действия, кроме format_txt, передают дальше конверт:
//
//	{"action": "transform", "data": ..., "expression": "..."}
type ProcessStep struct{}

// NewProcessStep создаёт новый ProcessStep.
func NewProcessStep() *ProcessStep {
	return &ProcessStep{}
}

// Type возвращает тип узла.
func (s *ProcessStep) Type() domain.NodeType {
	return domain.NodeTypeProcess
}

// Execute выполняет обработку.
func (s *ProcessStep) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	cfg, err := engine.DecodeProcessConfig(req.Node)
	if err != nil {
		return nil, err
	}

	req.Info("Processing data with action: "+cfg.Action, nil)

	if cfg.Action == domain.ProcessActionFormatTxt {
		text, err := s.formatText(cfg, req)
		if err != nil {
			return nil, err
		}
		req.Success("Data processed successfully", text)
		return &Response{Data: req.PreviousData, Output: text}, nil
	}

	envelope, err := s.envelope(cfg, req)
	if err != nil {
		return nil, err
	}

	req.Success("Data processed successfully", envelope)

	return req.Pass(envelope), nil
}

// formatText строит текстовый отчёт.
func (s *ProcessStep) formatText(cfg *domain.ProcessConfig, req *Request) (string, error) {
	if cfg.Template == "" {
		return engine.PrettyJSON(req.PreviousData)
	}

	text, err := engine.Render(cfg.Template, req.templateContext())
	if err != nil {
		return "", fmt.Errorf("format_txt: %w", err)
	}
	return text, nil
}

// envelope оборачивает результат действия в конверт.
func (s *ProcessStep) envelope(cfg *domain.ProcessConfig, req *Request) (map[string]any, error) {
	result := map[string]any{"action": cfg.Action}
	if cfg.Expression != "" {
		result["expression"] = cfg.Expression
	}

	switch cfg.Action {
	case domain.ProcessActionParseJSON:
		data := req.PreviousData
		if text, ok := data.(string); ok {
			data = parseValue(text)
		}
		result["data"] = data

	case domain.ProcessActionTransform:
		if cfg.Expression == "" {
			result["data"] = req.PreviousData
			break
		}
		rendered, err := engine.Render(cfg.Expression, req.templateContext())
		if err != nil {
			return nil, fmt.Errorf("transform: %w", err)
		}
		result["data"] = parseValue(rendered)

	case domain.ProcessActionFilter:
		data, err := s.filter(cfg.Expression, req)
		if err != nil {
			return nil, err
		}
		result["data"] = data

	case domain.ProcessActionAggregate:
		result["data"] = req.PreviousData
		switch v := req.PreviousData.(type) {
		case []any:
			result["count"] = len(v)
		case map[string]any:
			result["count"] = len(v)
		}
	}

	return result, nil
}

// filter применяет expression к каждому элементу массива.
// Элемент доступен в шаблоне как {{ .Data }}. Данные, не являющиеся
// массивом, и пустой expression проходят без изменений.
func (s *ProcessStep) filter(expression string, req *Request) (any, error) {
	items, ok := req.PreviousData.([]any)
	if !ok || expression == "" {
		return req.PreviousData, nil
	}

	base := req.templateContext()
	kept := make([]any, 0, len(items))
	for i, item := range items {
		itemCtx := *base
		itemCtx.Data = item

		rendered, err := engine.Render(expression, &itemCtx)
		if err != nil {
			return nil, fmt.Errorf("filter item %d: %w", i, err)
		}
		if strings.TrimSpace(rendered) == "true" {
			kept = append(kept, item)
		}
	}
	return kept, nil
}

// parseValue пытается распарсить строку как JSON.
// Если не получается — возвращает строку как есть.
func parseValue(value string) any {
	// Пробуем как JSON object
	var obj map[string]any
	if err := json.Unmarshal([]byte(value), &obj); err == nil {
		return obj
	}

	// Пробуем как JSON array
	var arr []any
	if err := json.Unmarshal([]byte(value), &arr); err == nil {
		return arr
	}

	// Пробуем как JSON number
	var num json.Number
	if err := json.Unmarshal([]byte(value), &num); err == nil {
		// Пробуем как int
		if i, err := num.Int64(); err == nil {
			return i
		}
		// Иначе как float
		if f, err := num.Float64(); err == nil {
			return f
		}
	}

	// Пробуем как JSON bool
	if value == "true" {
		return true
	}
	if value == "false" {
		return false
	}

	// Возвращаем как строку
	return value
}
