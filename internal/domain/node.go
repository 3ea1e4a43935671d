package domain

// NodeType — тип узла flow.
type NodeType string

const (
	// NodeTypeTrigger — точка запуска flow (manual, schedule, webhook).
	NodeTypeTrigger NodeType = "trigger"

	// NodeTypeAPI — HTTP запрос к внешнему API.
	NodeTypeAPI NodeType = "api"

	// NodeTypeProcess — обработка данных предыдущего узла.
	NodeTypeProcess NodeType = "process"

	// NodeTypeCondition — проверка условия над данными предыдущего узла.
	NodeTypeCondition NodeType = "condition"

	// NodeTypeOutput — формирование итогового вывода.
	NodeTypeOutput NodeType = "output"
)

// NodeTypes возвращает все известные типы узлов в каноническом порядке.
func NodeTypes() []NodeType {
	return []NodeType{
		NodeTypeTrigger,
		NodeTypeAPI,
		NodeTypeProcess,
		NodeTypeCondition,
		NodeTypeOutput,
	}
}

// IsValid возвращает true, если тип узла известен.
func (t NodeType) IsValid() bool {
	switch t {
	case NodeTypeTrigger, NodeTypeAPI, NodeTypeProcess, NodeTypeCondition, NodeTypeOutput:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление NodeType.
func (t NodeType) String() string {
	return string(t)
}

// Режимы запуска trigger.
const (
	TriggerModeManual   = "manual"
	TriggerModeSchedule = "schedule"
	TriggerModeWebhook  = "webhook"
)

// TriggerConfig — конфигурация trigger узла.
type TriggerConfig struct {
	// Mode — способ запуска: manual, schedule, webhook.
	Mode string `json:"mode" validate:"required,oneof=manual schedule webhook"`

	// Schedule — cron-выражение (5 полей). Обязательно для mode=schedule.
	Schedule string `json:"schedule,omitempty" validate:"required_if=Mode schedule"`

	// WebhookURL — адрес, на который придёт webhook.
	WebhookURL string `json:"webhookUrl,omitempty" validate:"omitempty,url"`
}

// APIConfig — конфигурация api узла.
type APIConfig struct {
	// URL — адрес запроса. Может быть пустым: редактор создаёт узел без URL.
	URL string `json:"url" validate:"omitempty,url"`

	// Method — HTTP метод. По умолчанию GET.
	Method string `json:"method" validate:"omitempty,oneof=GET POST PUT DELETE PATCH"`

	// Headers — заголовки запроса.
	Headers map[string]string `json:"headers"`

	// Body — тело запроса: строка или JSON-значение.
	Body any `json:"body,omitempty"`
}

// Действия process узла.
const (
	ProcessActionFormatTxt = "format_txt"
	ProcessActionParseJSON = "parse_json"
	ProcessActionTransform = "transform"
	ProcessActionFilter    = "filter"
	ProcessActionAggregate = "aggregate"
)

// ProcessConfig — конфигурация process узла.
type ProcessConfig struct {
	// Action — действие над данными.
	Action string `json:"action" validate:"required,oneof=format_txt parse_json transform filter aggregate"`

	// Template — Go template для format_txt. Данные доступны как {{ .Data }}.
	Template string `json:"template,omitempty"`

	// Expression — выражение для transform/filter/aggregate.
	// Сохраняется в конверте результата.
	Expression string `json:"expression,omitempty"`
}

// Операторы condition узла.
const (
	OperatorEquals   = "equals"
	OperatorContains = "contains"
	OperatorGreater  = "greater"
	OperatorLess     = "less"
	OperatorExists   = "exists"
)

// ConditionConfig — конфигурация condition узла.
type ConditionConfig struct {
	// Field — путь к полю в данных предыдущего узла (например, "data.message").
	// Пустой путь означает сами данные.
	Field string `json:"field"`

	// Operator — оператор сравнения.
	Operator string `json:"operator" validate:"required,oneof=equals contains greater less exists"`

	// Value — значение для сравнения (для exists не используется).
	// Строка, число или bool; сравнивается через строковое представление,
	// для greater/less приводится к числу.
	Value any `json:"value"`

	// TrueBranch, FalseBranch — ID узлов-веток из редактора.
	// Порядок выполнения они не меняют: flow остаётся линейным.
	TrueBranch  string `json:"trueBranch,omitempty"`
	FalseBranch string `json:"falseBranch,omitempty"`
}

// Форматы output узла.
const (
	OutputFormatTxt  = "txt"
	OutputFormatJSON = "json"
	OutputFormatCSV  = "csv"
	OutputFormatLog  = "log"
)

// OutputConfig — конфигурация output узла.
type OutputConfig struct {
	// Format — формат вывода: txt, json, csv, log.
	Format string `json:"format" validate:"required,oneof=txt json csv log"`

	// Filename — желаемое имя файла артефакта.
	Filename string `json:"filename,omitempty"`
}
