package api

import (
	"github.com/shaiso/FlowMaster/internal/domain"
)

// ValidateResponse — результат строгой проверки flow.
type ValidateResponse struct {
	Valid bool         `json:"valid"`
	Flow  *domain.Flow `json:"flow"`
	Steps int          `json:"steps"`
}

// ExecutionSummary — краткое описание run для ответа /executions.
type ExecutionSummary struct {
	*domain.ExecutionResult

	// DurationMs — продолжительность run в миллисекундах.
	DurationMs int64 `json:"durationMs"`

	// Artifact — имя файла артефакта, если вывод есть.
	Artifact string `json:"artifact,omitempty"`
}
