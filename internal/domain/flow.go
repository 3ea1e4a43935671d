package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// UnknownFlowID — flowId результата, если у flow нет собственного ID.
const UnknownFlowID = "unknown"

// Flow — документ рабочего процесса.
//
// Flow — это упорядоченная последовательность узлов (Steps).
// Явных рёбер нет: порядок в Steps и есть порядок выполнения,
// то есть граф всегда вырожден в путь.
//
// Flow принадлежит редактору (CLI, API, UI) и передаётся в executor
// по значению. Executor никогда не изменяет переданный документ.
type Flow struct {
	// ID — идентификатор flow. Необязателен для документов из редактора.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Name — имя flow (обязательное, непустое).
	// Используется в логах и в имени артефакта.
	Name string `json:"name" yaml:"name"`

	// Description — описание назначения flow.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Steps — узлы в порядке выполнения.
	Steps []Node `json:"steps" yaml:"steps"`

	// CreatedAt — время создания документа.
	CreatedAt *time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`

	// UpdatedAt — время последнего изменения документа.
	UpdatedAt *time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// FlowID возвращает ID flow или UnknownFlowID.
func (f *Flow) FlowID() string {
	if f.ID == "" {
		return UnknownFlowID
	}
	return f.ID
}

// IsEmpty возвращает true, если во flow нет ни одного узла.
func (f *Flow) IsEmpty() bool {
	return len(f.Steps) == 0
}

// Clone возвращает глубокую копию flow.
//
// Конфигурации узлов копируются через JSON, поэтому копия
// никак не связана с оригиналом.
func (f *Flow) Clone() (Flow, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return Flow{}, fmt.Errorf("marshal flow: %w", err)
	}

	var clone Flow
	if err := json.Unmarshal(data, &clone); err != nil {
		return Flow{}, fmt.Errorf("unmarshal flow: %w", err)
	}
	return clone, nil
}

// Position — координаты узла на холсте редактора.
// Executor их не использует, но они сохраняются при импорте/экспорте.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node — типизированный шаг flow.
type Node struct {
	// ID — идентификатор узла, уникальный в рамках flow.
	ID string `json:"id" yaml:"id"`

	// Type — тип узла: trigger, api, process, condition, output.
	Type NodeType `json:"type" yaml:"type"`

	// Label — человекочитаемое имя узла.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	// Position — положение на холсте редактора.
	Position *Position `json:"position,omitempty" yaml:"position,omitempty"`

	// Config — конфигурация узла. Форма зависит от Type:
	// см. TriggerConfig, APIConfig, ProcessConfig, ConditionConfig, OutputConfig.
	Config map[string]any `json:"config" yaml:"config"`
}

// DisplayName возвращает Label, а если он пуст — ID.
func (n *Node) DisplayName() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// DecodeConfig раскладывает Config в типизированную структуру out.
func (n *Node) DecodeConfig(out any) error {
	config := n.Config
	if config == nil {
		config = map[string]any{}
	}

	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}
