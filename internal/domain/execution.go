package domain

import (
	"time"

	"github.com/google/uuid"
)

// SystemNodeID — nodeId для логов, не относящихся к конкретному узлу.
const SystemNodeID = "system"

// LogLevel — уровень записи журнала выполнения.
type LogLevel string

const (
	LogLevelInfo    LogLevel = "info"
	LogLevelSuccess LogLevel = "success"
	LogLevelError   LogLevel = "error"
	LogLevelWarning LogLevel = "warning"
)

// ExecutionLog — запись журнала выполнения.
//
// Журнал одного run только дополняется, записи строго упорядочены
// по Timestamp.
type ExecutionLog struct {
	// Timestamp — время записи.
	Timestamp time.Time `json:"timestamp"`

	// NodeID — ID узла или SystemNodeID.
	NodeID string `json:"nodeId"`

	// Level — уровень: info, success, error, warning.
	Level LogLevel `json:"level"`

	// Message — текст записи.
	Message string `json:"message"`

	// Data — произвольные данные (снимок конфига, ответ API и т.д.).
	Data any `json:"data,omitempty"`
}

// IsSystem возвращает true для записей уровня run, а не узла.
func (l *ExecutionLog) IsSystem() bool {
	return l.NodeID == SystemNodeID
}

// ExecutionStatus — итоговый статус run.
type ExecutionStatus string

const (
	// ExecutionStatusRunning — run ещё не завершён.
	ExecutionStatusRunning ExecutionStatus = "running"

	// ExecutionStatusSuccess — все узлы выполнены успешно.
	ExecutionStatusSuccess ExecutionStatus = "success"

	// ExecutionStatusError — run остановлен на первой ошибке.
	ExecutionStatusError ExecutionStatus = "error"

	// ExecutionStatusPartial — зарезервирован, executor его не выставляет.
	ExecutionStatusPartial ExecutionStatus = "partial"
)

// IsTerminal возвращает true, если статус финальный.
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case ExecutionStatusSuccess, ExecutionStatusError, ExecutionStatusPartial:
		return true
	default:
		return false
	}
}

// ExecutionResult — итог одного run.
//
// Создаётся при старте run и финализируется ровно один раз:
// MarkSucceeded или MarkFailed.
type ExecutionResult struct {
	// RunID — уникальный идентификатор run.
	RunID uuid.UUID `json:"runId"`

	// FlowID — ID flow или UnknownFlowID.
	FlowID string `json:"flowId"`

	// Status — статус run.
	Status ExecutionStatus `json:"status"`

	// StartedAt — время старта.
	StartedAt time.Time `json:"startedAt"`

	// CompletedAt — время завершения. Нулевое, пока run выполняется.
	CompletedAt time.Time `json:"completedAt"`

	// Logs — полный упорядоченный журнал run.
	Logs []ExecutionLog `json:"logs"`

	// Output — накопленный текстовый вывод.
	Output string `json:"output,omitempty"`

	// Error — сообщение об ошибке для Status=error.
	Error string `json:"error,omitempty"`
}

// NewExecutionResult создаёт результат для нового run.
func NewExecutionResult(flowID string, startedAt time.Time) *ExecutionResult {
	return &ExecutionResult{
		RunID:     uuid.New(),
		FlowID:    flowID,
		Status:    ExecutionStatusRunning,
		StartedAt: startedAt,
		Logs:      make([]ExecutionLog, 0),
	}
}

// IsFinished возвращает true, если результат финализирован.
func (r *ExecutionResult) IsFinished() bool {
	return r.Status.IsTerminal()
}

// Duration возвращает продолжительность run.
// Возвращает 0, если run ещё не завершён.
func (r *ExecutionResult) Duration() time.Duration {
	if !r.IsFinished() {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// MarkSucceeded финализирует run как успешный.
func (r *ExecutionResult) MarkSucceeded(completedAt time.Time, output string) {
	r.Status = ExecutionStatusSuccess
	r.CompletedAt = completedAt
	r.Output = output
}

// MarkFailed финализирует run с ошибкой.
func (r *ExecutionResult) MarkFailed(completedAt time.Time, err string) {
	r.Status = ExecutionStatusError
	r.CompletedAt = completedAt
	r.Error = err
}

// HasOutput возвращает true, если run успешен и вывод непуст.
func (r *ExecutionResult) HasOutput() bool {
	return r.Status == ExecutionStatusSuccess && r.Output != ""
}
