package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaiso/FlowMaster/internal/domain"
	"github.com/shaiso/FlowMaster/internal/steps"
	"github.com/shaiso/FlowMaster/internal/telemetry"
)

// run — один запуск flow.
type run struct {
	executor *Executor
	flow     *domain.Flow
	state    *RunState
	result   *domain.ExecutionResult
	clock    *runClock
	handlers []EventHandler
	logger   *slog.Logger
}

// execute проходит узлы по порядку и финализирует результат.
func (r *run) execute(ctx context.Context) *domain.ExecutionResult {
	total := len(r.flow.Steps)

	telemetry.RunStarted()
	r.logger.Info("execution started", "flow_name", r.flow.Name, "steps", total)

	r.log(domain.SystemNodeID, domain.LogLevelInfo,
		fmt.Sprintf("Starting execution of flow: %s (%d steps)", r.flow.Name, total),
		map[string]any{
			"flowId": r.result.FlowID,
			"runId":  r.result.RunID.String(),
			"steps":  total,
		})

	for i := range r.flow.Steps {
		node := &r.flow.Steps[i]

		if err := r.executeNode(ctx, i, node); err != nil {
			return r.fail(i, node, err)
		}
	}

	r.log(domain.SystemNodeID, domain.LogLevelSuccess, "Flow execution completed successfully", nil)
	r.result.MarkSucceeded(r.clock.Next(), r.state.Output)

	return r.finish()
}

// executeNode выполняет один узел.
func (r *run) executeNode(ctx context.Context, index int, node *domain.Node) error {
	r.state.StartNode(index, node.ID)
	r.emit(Event{Kind: EventNodeStart, NodeID: node.ID})

	r.log(node.ID, domain.LogLevelInfo,
		fmt.Sprintf("Executing node: %s (%s)", node.ID, node.Type),
		node.Config)

	if err := r.executor.latency.Wait(ctx); err != nil {
		return err
	}

	step, err := r.executor.registry.Get(node.Type)
	if err != nil {
		return err
	}

	req := steps.NewRequest(node, r.state.PreviousData, r.state.Output, r.state.Context,
		func(level domain.LogLevel, message string, data any) {
			r.log(node.ID, level, message, data)
		})

	resp, err := step.Execute(ctx, req)
	if err != nil {
		return err
	}

	r.state.CompleteNode(index, node.ID, resp.Data, resp.Output)
	telemetry.NodeExecuted(metricNodeType(node.Type), true)

	ok := true
	r.emit(Event{Kind: EventNodeComplete, NodeID: node.ID, Success: &ok})

	r.logger.Debug("node completed", "node_id", node.ID, "node_type", node.Type)
	return nil
}

// fail останавливает run на ошибке узла.
func (r *run) fail(index int, node *domain.Node, err error) *domain.ExecutionResult {
	message := err.Error()

	r.log(node.ID, domain.LogLevelError, "Error in node: "+message, nil)

	r.state.FailNode(index, node.ID)
	telemetry.NodeExecuted(metricNodeType(node.Type), false)

	ok := false
	r.emit(Event{Kind: EventNodeComplete, NodeID: node.ID, Success: &ok})

	telemetry.WithNodeID(r.logger, node.ID).Warn("node failed",
		"node_type", node.Type,
		"error", err,
	)

	r.result.MarkFailed(r.clock.Next(), message)
	return r.finish()
}

// finish отправляет итоговое событие.
func (r *run) finish() *domain.ExecutionResult {
	duration := r.result.Duration()
	telemetry.RunFinished(string(r.result.Status), duration)

	level := slog.LevelInfo
	if r.state.HasFailed() {
		level = slog.LevelWarn
	}

	stats := r.state.Stats()
	r.logger.Log(context.Background(), level, "execution finished",
		"status", r.result.Status,
		"duration", duration,
		"completed_nodes", stats.CompletedNodes,
		"failed_nodes", stats.FailedNodes,
		"pending_nodes", stats.PendingNodes,
	)

	r.emit(Event{Kind: EventResult, Result: r.result})
	return r.result
}

// log добавляет запись в журнал run и рассылает её.
func (r *run) log(nodeID string, level domain.LogLevel, message string, data any) {
	entry := domain.ExecutionLog{
		Timestamp: r.clock.Next(),
		NodeID:    nodeID,
		Level:     level,
		Message:   message,
		Data:      data,
	}
	r.result.Logs = append(r.result.Logs, entry)

	r.emit(Event{Kind: EventLog, NodeID: nodeID, Log: &entry})
}

// emit дополняет событие данными run и отправляет его всем приёмникам.
func (r *run) emit(event Event) {
	event.RunID = r.result.RunID
	event.FlowID = r.result.FlowID
	event.Progress = r.state.Progress()

	for _, h := range r.handlers {
		h.HandleEvent(event)
	}
}

// metricNodeType ограничивает значения метки type известными типами.
func metricNodeType(t domain.NodeType) string {
	if t.IsValid() {
		return string(t)
	}
	return "unknown"
}
