package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shaiso/FlowMaster/internal/artifact"
)

// Execute выполняет flow и возвращает результат.
// POST /api/v1/executions
//
// Ошибка узла не является ошибкой запроса: ответ 200 с status=error.
func (h *Handler) Execute(w http.ResponseWriter, r *http.Request) {
	flow, err := h.readFlow(w, r)
	if HandleError(w, r, h.logger, err) {
		return
	}

	result, err := h.executor.Execute(r.Context(), flow, nil)
	if HandleError(w, r, h.logger, err) {
		return
	}

	summary := ExecutionSummary{
		ExecutionResult: result,
		DurationMs:      result.Duration().Milliseconds(),
	}
	if result.HasOutput() {
		summary.Artifact = artifact.Filename(flow, result)
	}

	Success(w, summary)
}

// StreamExecution выполняет flow и передаёт события как server-sent events.
// POST /api/v1/executions/stream
//
// Каждое событие:
//
//	id: <порядковый номер>
//	event: <log|node_start|node_complete|result>
//	data: <executor.Event в JSON>
func (h *Handler) StreamExecution(w http.ResponseWriter, r *http.Request) {
	flow, err := h.readFlow(w, r)
	if HandleError(w, r, h.logger, err) {
		return
	}

	events, err := h.executor.Stream(r.Context(), flow)
	if HandleError(w, r, h.logger, err) {
		return
	}

	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	seq := 0
	for event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			h.logger.Error("failed to marshal event", "kind", event.Kind, "error", err)
			continue
		}

		seq++
		if _, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", seq, event.Kind, data); err != nil {
			// Клиент отключился: контекст запроса отменит run
			h.logger.Debug("stream write failed", "error", err)
			continue
		}
		if err := rc.Flush(); err != nil {
			h.logger.Debug("stream flush failed", "error", err)
		}
	}
}

// DownloadArtifact выполняет flow и отдаёт вывод как текстовый файл.
// POST /api/v1/executions/artifact
func (h *Handler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	flow, err := h.readFlow(w, r)
	if HandleError(w, r, h.logger, err) {
		return
	}

	result, err := h.executor.Execute(r.Context(), flow, nil)
	if HandleError(w, r, h.logger, err) {
		return
	}

	content, err := artifact.Content(result)
	if err != nil {
		detail := err.Error()
		if result.Error != "" {
			detail = fmt.Sprintf("%s: %s", detail, result.Error)
		}
		Problem(w, r, http.StatusUnprocessableEntity, ProblemNoOutput, detail)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename(flow, result)))
	w.Header().Set("X-Run-Id", result.RunID.String())
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}
