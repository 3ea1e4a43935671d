package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/FlowMaster/internal/domain"
	"github.com/shaiso/FlowMaster/internal/steps"
	"github.com/shaiso/FlowMaster/internal/telemetry"
)

// streamBuffer — размер буфера канала Stream.
const streamBuffer = 64

// Executor выполняет flow.
//
// Executor не хранит состояние run между вызовами: каждый вызов Execute
// работает со своим RunState, поэтому один Executor можно
// использовать из нескольких горутин.
type Executor struct {
	registry *steps.Registry
	latency  steps.Latency
	now      func() time.Time
	env      map[string]string
	sinks    []EventHandler
	logger   *slog.Logger
}

// Config — конфигурация Executor.
type Config struct {
	// Registry — реализации узлов (default: steps.DefaultRegistry).
	Registry *steps.Registry

	// Latency — симулированная задержка перед каждым узлом (default: без задержки).
	Latency steps.Latency

	// Clock — источник времени (default: time.Now).
	Clock func() time.Time

	// Env — переменные, доступные в шаблонах как {{ .Env.NAME }}.
	Env map[string]string

	// Sinks — приёмники, получающие события каждого run.
	Sinks []EventHandler

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Executor.
func New(cfg Config) *Executor {
	registry := cfg.Registry
	if registry == nil {
		registry = steps.DefaultRegistry()
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sinks := make([]EventHandler, 0, len(cfg.Sinks))
	for _, sink := range cfg.Sinks {
		if sink != nil {
			sinks = append(sinks, sink)
		}
	}

	return &Executor{
		registry: registry,
		latency:  cfg.Latency,
		now:      clock,
		env:      cfg.Env,
		sinks:    sinks,
		logger:   logger,
	}
}

// Execute выполняет flow и возвращает итог run.
//
// obs может быть nil. Для flow без узлов возвращается ErrEmptyFlow,
// при этом observer не получает ни одного события.
// Ошибки узлов не возвращаются как error: они записываются в результат
// (Status=error, Error, запись журнала уровня error).
func (e *Executor) Execute(ctx context.Context, flow *domain.Flow, obs Observer) (*domain.ExecutionResult, error) {
	return e.ExecuteWithHandler(ctx, flow, ObserverHandler(obs))
}

// ExecuteWithHandler выполняет flow, отправляя события в handler.
// handler может быть nil.
func (e *Executor) ExecuteWithHandler(ctx context.Context, flow *domain.Flow, handler EventHandler) (*domain.ExecutionResult, error) {
	if flow == nil || flow.IsEmpty() {
		return nil, ErrEmptyFlow
	}

	// Работаем со снимком: документ вызывающего не меняется
	snapshot, err := flow.Clone()
	if err != nil {
		return nil, fmt.Errorf("snapshot flow: %w", err)
	}

	r := e.newRun(&snapshot, handler)
	return r.execute(ctx), nil
}

// Stream выполняет flow в отдельной горутине и возвращает канал событий.
//
// Последнее событие — EventResult, после него канал закрывается.
// Если ctx отменён, а читатель перестал читать канал, оставшиеся
// события отбрасываются.
func (e *Executor) Stream(ctx context.Context, flow *domain.Flow) (<-chan Event, error) {
	if flow == nil || flow.IsEmpty() {
		return nil, ErrEmptyFlow
	}

	snapshot, err := flow.Clone()
	if err != nil {
		return nil, fmt.Errorf("snapshot flow: %w", err)
	}

	events := make(chan Event, streamBuffer)
	send := EventHandlerFunc(func(event Event) {
		select {
		case events <- event:
		case <-ctx.Done():
		}
	})

	go func() {
		defer close(events)
		e.newRun(&snapshot, send).execute(ctx)
	}()

	return events, nil
}

// newRun готовит run для flow.
func (e *Executor) newRun(flow *domain.Flow, handler EventHandler) *run {
	clock := newRunClock(e.now)
	result := domain.NewExecutionResult(flow.FlowID(), clock.Next())

	state := NewRunState(flow)
	for key, value := range e.env {
		state.Context.SetEnv(key, value)
	}

	handlers := make([]EventHandler, 0, len(e.sinks)+1)
	if handler != nil {
		handlers = append(handlers, handler)
	}
	handlers = append(handlers, e.sinks...)

	logger := telemetry.WithRunID(e.logger, result.RunID.String())
	logger = telemetry.WithFlowID(logger, result.FlowID)

	return &run{
		executor: e,
		flow:     flow,
		state:    state,
		result:   result,
		clock:    clock,
		handlers: handlers,
		logger:   logger,
	}
}
