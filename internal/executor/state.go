package executor

import (
	"sync"

	"github.com/shaiso/FlowMaster/internal/domain"
	"github.com/shaiso/FlowMaster/internal/engine"
)

// Статусы узлов в контексте шаблонов.
const (
	nodeStatusSuccess = "success"
	nodeStatusError   = "error"
)

// RunState — состояние выполнения одного run.
//
// RunState создаётся на старте run и живёт только в его рамках:
// разные run ничего не разделяют.
//
// Содержит:
//   - Текущий узел и прогресс
//   - Множества завершённых и упавших узлов
//   - previousData и накопленный вывод
//   - Контекст для шаблонов (с данными выполненных узлов)
type RunState struct {
	// Flow — снимок выполняемого flow.
	Flow *domain.Flow

	// Context — контекст для рендеринга шаблонов.
	Context *engine.Context

	// CurrentNode — ID выполняемого узла. Пусто до старта и после завершения.
	CurrentNode string

	// PreviousData — данные последнего успешно выполненного узла.
	PreviousData any

	// Output — накопленный текстовый вывод.
	Output string

	// completed — завершённые узлы (nodeID → true).
	completed map[string]bool

	// failed — упавшие узлы (nodeID → true).
	failed map[string]bool

	// progress — процент выполнения, 0..100.
	progress float64

	// mu — мьютекс для потокобезопасного доступа.
	mu sync.RWMutex
}

// NewRunState создаёт новый RunState.
func NewRunState(flow *domain.Flow) *RunState {
	return &RunState{
		Flow:      flow,
		Context:   engine.NewContext(flow),
		completed: make(map[string]bool),
		failed:    make(map[string]bool),
	}
}

// StartNode помечает узел с индексом index как выполняющийся.
// Прогресс — index/total.
func (s *RunState) StartNode(index int, nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.CurrentNode = nodeID
	s.progress = s.percent(index)
}

// CompleteNode помечает узел как успешно завершённый.
// Данные узла становятся previousData и попадают в контекст шаблонов.
func (s *RunState) CompleteNode(index int, nodeID string, data any, output string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.completed[nodeID] = true
	s.CurrentNode = ""
	s.progress = s.percent(index + 1)

	s.PreviousData = data
	s.Output = output

	s.Context.SetData(data)
	s.Context.AddStepResult(nodeID, data, nodeStatusSuccess)
}

// FailNode помечает узел как упавший.
func (s *RunState) FailNode(index int, nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failed[nodeID] = true
	s.CurrentNode = ""
	s.progress = s.percent(index + 1)

	s.Context.AddStepResult(nodeID, nil, nodeStatusError)
}

// Progress возвращает процент выполнения.
func (s *RunState) Progress() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.progress
}

// HasFailed проверяет, есть ли упавшие узлы.
func (s *RunState) HasFailed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.failed) > 0
}

// Stats возвращает статистику выполнения.
func (s *RunState) Stats() RunStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.Flow.Steps)
	return RunStats{
		TotalNodes:     total,
		CompletedNodes: len(s.completed),
		FailedNodes:    len(s.failed),
		PendingNodes:   total - len(s.completed) - len(s.failed),
	}
}

// RunStats — статистика выполнения run.
type RunStats struct {
	TotalNodes     int
	CompletedNodes int
	FailedNodes    int
	PendingNodes   int
}

func (s *RunState) percent(done int) float64 {
	total := len(s.Flow.Steps)
	if total == 0 {
		return 0
	}
	return float64(done) * 100 / float64(total)
}
