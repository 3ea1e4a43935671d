package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shaiso/FlowMaster/internal/domain"
)

// EvaluateCondition вычисляет условие condition узла над данными data.
//
// Поле cfg.Field — путь через точку (см. Lookup). Правила операторов:
//
//	equals   — строковые представления поля и cfg.Value совпадают
//	contains — подстрока для строк, элемент для массивов, ключ для объектов
//	greater  — числовое поле > числа cfg.Value
//	less     — числовое поле < числа cfg.Value
//	exists   — поле присутствует и не null
//
// Отсутствующее поле даёт false для всех операторов.
// Для greater/less обе стороны обязаны быть числами (или строками с числом),
// иначе возвращается ErrNotNumeric.
func EvaluateCondition(cfg *domain.ConditionConfig, data any) (bool, error) {
	value, found := Lookup(data, cfg.Field)

	switch cfg.Operator {
	case domain.OperatorExists:
		return found && value != nil, nil

	case domain.OperatorEquals:
		if !found {
			return false, nil
		}
		return Stringify(value) == Stringify(cfg.Value), nil

	case domain.OperatorContains:
		if !found {
			return false, nil
		}
		return containsValue(value, Stringify(cfg.Value)), nil

	case domain.OperatorGreater, domain.OperatorLess:
		if !found {
			return false, nil
		}
		left, ok := ToNumber(value)
		if !ok {
			return false, fmt.Errorf("%w: field %q = %s", ErrNotNumeric, cfg.Field, Stringify(value))
		}
		right, ok := ToNumber(cfg.Value)
		if !ok {
			return false, fmt.Errorf("%w: value %q", ErrNotNumeric, Stringify(cfg.Value))
		}
		if cfg.Operator == domain.OperatorGreater {
			return left > right, nil
		}
		return left < right, nil

	default:
		return false, fmt.Errorf("%w: %s", ErrUnknownOperator, cfg.Operator)
	}
}

// containsValue реализует оператор contains.
func containsValue(haystack any, needle string) bool {
	switch v := haystack.(type) {
	case nil:
		return false
	case string:
		return strings.Contains(v, needle)
	case []any:
		for _, item := range v {
			if Stringify(item) == needle {
				return true
			}
		}
		return false
	case []string:
		for _, item := range v {
			if item == needle {
				return true
			}
		}
		return false
	case map[string]any:
		_, ok := v[needle]
		return ok
	default:
		return strings.Contains(Stringify(v), needle)
	}
}

// Lookup достаёт значение из data по пути через точку.
//
//	Lookup(data, "")              — сами данные
//	Lookup(data, "data.message")  — вложенный ключ
//	Lookup(data, "items.0.id")    — элемент массива по индексу
//
// Второе значение — найдено ли поле.
func Lookup(data any, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return data, true
	}

	current := data
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next

		case map[string]string:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next

		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]

		default:
			return nil, false
		}
	}

	return current, true
}

// Stringify возвращает строковое представление значения для сравнения.
// Числа без лишних нулей, объекты и массивы — в компактном JSON.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// ToNumber приводит значение к float64.
// Строки допускаются, если содержат число.
func ToNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
