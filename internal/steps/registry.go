package steps

import (
	"fmt"
	"sync"

	"github.com/shaiso/FlowMaster/internal/domain"
)

// Registry — реестр типов узлов.
//
// Позволяет регистрировать и получать реализации Step по типу.
// Потокобезопасен.
type Registry struct {
	mu    sync.RWMutex
	steps map[domain.NodeType]Step
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		steps: make(map[domain.NodeType]Step),
	}
}

// DefaultRegistry создаёт реестр со всеми стандартными узлами.
// api узлы используют симулированный транспорт.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(NewTriggerStep())
	r.Register(NewAPIStep(nil))
	r.Register(NewProcessStep())
	r.Register(NewConditionStep())
	r.Register(NewOutputStep())

	return r
}

// Register регистрирует шаг в реестре.
// Если шаг с таким типом уже существует, он будет перезаписан.
func (r *Registry) Register(step Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps[step.Type()] = step
}

// Get возвращает шаг по типу.
// Возвращает ErrStepNotFound, если шаг не найден.
func (r *Registry) Get(nodeType domain.NodeType) (Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	step, exists := r.steps[nodeType]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrStepNotFound, nodeType)
	}

	return step, nil
}
