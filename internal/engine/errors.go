package engine

import "errors"

// Ошибки разбора документа flow.
var (
	// ErrInvalidJSON — текст документа не является JSON.
	ErrInvalidJSON = errors.New("invalid JSON")

	// ErrInvalidYAML — текст документа не является YAML.
	ErrInvalidYAML = errors.New("invalid YAML")

	// ErrInvalidDocument — документ не соответствует схеме flow.
	ErrInvalidDocument = errors.New("invalid flow structure")
)

// Ошибки валидации Flow.
var (
	// ErrEmptySteps — flow не содержит узлов.
	ErrEmptySteps = errors.New("flow has no steps")

	// ErrEmptyName — у flow нет имени.
	ErrEmptyName = errors.New("flow has empty name")

	// ErrEmptyNodeID — узел не имеет ID.
	ErrEmptyNodeID = errors.New("node has empty ID")

	// ErrDuplicateNodeID — несколько узлов с одинаковым ID.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNodeType — неизвестный тип узла.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrInvalidConfig — конфигурация узла не прошла валидацию.
	ErrInvalidConfig = errors.New("invalid node config")

	// ErrInvalidSchedule — некорректное cron-выражение trigger узла.
	ErrInvalidSchedule = errors.New("invalid schedule")
)

// Ошибки вычисления условий.
var (
	// ErrUnknownOperator — неизвестный оператор condition узла.
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrNotNumeric — greater/less применены к нечисловому значению.
	ErrNotNumeric = errors.New("value is not numeric")
)

// Ошибки рендеринга шаблонов.
var (
	// ErrTemplateRender — ошибка рендеринга шаблона.
	ErrTemplateRender = errors.New("template render failed")

	// ErrTemplateParse — ошибка парсинга шаблона.
	ErrTemplateParse = errors.New("template parse failed")
)

// ValidationError — ошибка валидации с контекстом.
type ValidationError struct {
	NodeID  string // ID узла, где произошла ошибка
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.NodeID != "" {
		return "node " + e.NodeID + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(nodeID, field, message string, err error) *ValidationError {
	return &ValidationError{
		NodeID:  nodeID,
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// IsValidationError проверяет, является ли ошибка ошибкой валидации.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
