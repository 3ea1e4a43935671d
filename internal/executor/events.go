package executor

import (
	"github.com/google/uuid"

	"github.com/shaiso/FlowMaster/internal/domain"
)

// EventKind — вид события выполнения.
type EventKind string

const (
	// EventLog — новая запись журнала.
	EventLog EventKind = "log"

	// EventNodeStart — узел начал выполняться.
	EventNodeStart EventKind = "node_start"

	// EventNodeComplete — узел завершился (успешно или с ошибкой).
	EventNodeComplete EventKind = "node_complete"

	// EventResult — run финализирован. Всегда последнее событие run.
	EventResult EventKind = "result"
)

// Event — событие выполнения flow.
type Event struct {
	Kind   EventKind `json:"kind"`
	RunID  uuid.UUID `json:"runId"`
	FlowID string    `json:"flowId"`

	// NodeID — узел для node_start, node_complete и записей узлов.
	NodeID string `json:"nodeId,omitempty"`

	// Success — итог узла для node_complete.
	Success *bool `json:"success,omitempty"`

	// Progress — процент выполнения, 0..100.
	Progress float64 `json:"progress"`

	// Log — запись журнала для EventLog.
	Log *domain.ExecutionLog `json:"log,omitempty"`

	// Result — итог run для EventResult.
	Result *domain.ExecutionResult `json:"result,omitempty"`
}

// Succeeded возвращает true для успешно завершённого узла.
func (e *Event) Succeeded() bool {
	return e.Success != nil && *e.Success
}

// EventHandler — приёмник событий выполнения.
//
// HandleEvent вызывается синхронно из горутины run, в порядке событий.
type EventHandler interface {
	HandleEvent(event Event)
}

// EventHandlerFunc — адаптер функции к EventHandler.
type EventHandlerFunc func(event Event)

// HandleEvent вызывает f(event).
func (f EventHandlerFunc) HandleEvent(event Event) {
	f(event)
}

// Observer — наблюдатель за выполнением в виде колбэков.
type Observer interface {
	// OnLog вызывается для каждой записи журнала.
	OnLog(entry domain.ExecutionLog)

	// OnNodeStart вызывается перед выполнением узла.
	OnNodeStart(nodeID string)

	// OnNodeComplete вызывается после узла; ok=false при ошибке.
	OnNodeComplete(nodeID string, ok bool)
}

// ObserverHandler превращает Observer в EventHandler.
// Для nil возвращает nil.
func ObserverHandler(obs Observer) EventHandler {
	if obs == nil {
		return nil
	}
	return observerHandler{obs: obs}
}

type observerHandler struct {
	obs Observer
}

func (h observerHandler) HandleEvent(event Event) {
	switch event.Kind {
	case EventLog:
		if event.Log != nil {
			h.obs.OnLog(*event.Log)
		}
	case EventNodeStart:
		h.obs.OnNodeStart(event.NodeID)
	case EventNodeComplete:
		h.obs.OnNodeComplete(event.NodeID, event.Succeeded())
	}
}
