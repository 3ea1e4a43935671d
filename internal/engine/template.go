package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/shaiso/FlowMaster/internal/domain"
)

// Context — контекст для рендеринга шаблонов.
//
// Используется в Go templates для доступа к данным:
//   - {{ .Data.field }}               — данные предыдущего узла
//   - {{ .Flow.Name }}                — имя flow
//   - {{ .Steps.node_id.Data.field }} — данные любого уже выполненного узла
//   - {{ .Env.VAR_NAME }}             — переменные окружения
type Context struct {
	// Data — данные предыдущего узла (previousData).
	Data any `json:"data"`

	// Flow — сведения о выполняемом flow.
	Flow FlowContext `json:"flow"`

	// Steps — результаты выполненных узлов.
	Steps map[string]*StepContext `json:"steps"`

	// Env — переменные окружения.
	Env map[string]string `json:"env"`
}

// FlowContext — сведения о flow для шаблонов.
type FlowContext struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StepContext — результат выполнения узла для использования в шаблонах.
type StepContext struct {
	// Data — данные, которые узел передал дальше.
	Data any `json:"data"`

	// Status — статус выполнения: "success", "error".
	Status string `json:"status"`
}

// NewContext создаёт новый контекст для flow.
func NewContext(flow *domain.Flow) *Context {
	ctx := &Context{
		Steps: make(map[string]*StepContext),
		Env:   make(map[string]string),
	}
	if flow != nil {
		ctx.Flow = FlowContext{ID: flow.FlowID(), Name: flow.Name}
	}
	return ctx
}

// SetData устанавливает данные предыдущего узла.
func (c *Context) SetData(data any) {
	c.Data = data
}

// AddStepResult добавляет результат выполнения узла в контекст.
func (c *Context) AddStepResult(nodeID string, data any, status string) {
	c.Steps[nodeID] = &StepContext{
		Data:   data,
		Status: status,
	}
}

// SetEnv устанавливает переменную окружения.
func (c *Context) SetEnv(key, value string) {
	c.Env[key] = value
}

// templateFuncs — дополнительные функции для шаблонов.
var templateFuncs = template.FuncMap{
	// json — сериализует значение в JSON строку
	"json": func(v any) string {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("error: %v", err)
		}
		return string(b)
	},

	// default — возвращает значение по умолчанию, если первый аргумент пустой
	"default": func(def, val any) any {
		if val == nil {
			return def
		}
		if s, ok := val.(string); ok && s == "" {
			return def
		}
		return val
	},

	// coalesce — возвращает первое непустое значение
	"coalesce": func(values ...any) any {
		for _, v := range values {
			if v != nil {
				if s, ok := v.(string); ok && s == "" {
					continue
				}
				return v
			}
		}
		return nil
	},

	// toJSON — алиас для json
	"toJSON": func(v any) string {
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	},

	// prettyJSON — сериализует значение в JSON с отступом в 2 пробела
	"prettyJSON": func(v any) string {
		s, err := PrettyJSON(v)
		if err != nil {
			return ""
		}
		return s
	},

	// fromJSON — парсит JSON строку
	"fromJSON": func(s string) any {
		var result any
		if err := json.Unmarshal([]byte(s), &result); err != nil {
			return nil
		}
		return result
	},

	// join — объединяет слайс строк
	"join": func(sep string, items []string) string {
		return strings.Join(items, sep)
	},

	// split — разбивает строку на слайс
	"split": func(sep, s string) []string {
		return strings.Split(s, sep)
	},

	// contains — проверяет, содержит ли строка подстроку
	"contains": strings.Contains,

	// hasPrefix — проверяет префикс строки
	"hasPrefix": strings.HasPrefix,

	// hasSuffix — проверяет суффикс строки
	"hasSuffix": strings.HasSuffix,

	// lower — приводит к нижнему регистру
	"lower": strings.ToLower,

	// upper — приводит к верхнему регистру
	"upper": strings.ToUpper,

	// trim — удаляет пробелы по краям
	"trim": strings.TrimSpace,

	// replace — заменяет подстроку
	"replace": strings.ReplaceAll,
}

// Render рендерит строковый шаблон с контекстом.
//
// Шаблон может содержать Go template выражения:
//
//	{{ .Data.status }}
//	{{ .Steps.fetch.Data.data.message }}
//	{{ if .Data.triggered }}...{{ end }}
//
// Обращение к отсутствующему ключу — ошибка ErrTemplateRender,
// а не строка "<no value>" в выводе.
func Render(tmpl string, ctx *Context) (string, error) {
	// Проверяем, содержит ли строка шаблонные выражения
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := template.New("").Option("missingkey=error").Funcs(templateFuncs).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	return buf.String(), nil
}

// RenderValue рендерит произвольное значение.
// Рекурсивно обрабатывает map и slice.
func RenderValue(value any, ctx *Context) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch v := value.(type) {
	case string:
		return Render(v, ctx)

	case map[string]any:
		result := make(map[string]any, len(v))
		for key, val := range v {
			rendered, err := RenderValue(val, ctx)
			if err != nil {
				return nil, err
			}
			result[key] = rendered
		}
		return result, nil

	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			rendered, err := RenderValue(val, ctx)
			if err != nil {
				return nil, err
			}
			result[i] = rendered
		}
		return result, nil

	case map[string]string:
		result := make(map[string]string, len(v))
		for key, val := range v {
			rendered, err := Render(val, ctx)
			if err != nil {
				return nil, err
			}
			result[key] = rendered
		}
		return result, nil

	case []string:
		result := make([]string, len(v))
		for i, val := range v {
			rendered, err := Render(val, ctx)
			if err != nil {
				return nil, err
			}
			result[i] = rendered
		}
		return result, nil

	default:
		// Для остальных типов (int, float, bool) возвращаем как есть
		return value, nil
	}
}

// PrettyJSON сериализует значение в JSON с отступом в 2 пробела.
// HTML символы (&, <, >) не экранируются.
func PrettyJSON(v any) (string, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("marshal data: %w", err)
	}

	// Encoder добавляет перевод строки в конце
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
