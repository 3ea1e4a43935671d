package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowmaster_executions_total",
		Help: "Total flow executions by final status",
	}, []string{"status"})

	nodesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowmaster_node_executions_total",
		Help: "Total node executions by node type and result",
	}, []string{"type", "status"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flowmaster_execution_duration_seconds",
		Help:    "Duration of flow executions",
		Buckets: prometheus.DefBuckets,
	})

	activeRuns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flowmaster_executions_active",
		Help: "Flow executions currently in progress",
	})

	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowmaster_events_published_total",
		Help: "Execution events published to the message broker",
	}, []string{"kind", "status"})
)

// RunStarted отмечает начало выполнения flow.
func RunStarted() {
	activeRuns.Inc()
}

// RunFinished отмечает завершение выполнения flow.
func RunFinished(status string, duration time.Duration) {
	activeRuns.Dec()
	runsTotal.WithLabelValues(status).Inc()
	runDuration.Observe(duration.Seconds())
}

// NodeExecuted отмечает выполнение узла.
func NodeExecuted(nodeType string, ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	nodesTotal.WithLabelValues(nodeType, status).Inc()
}

// EventPublished отмечает публикацию события выполнения.
func EventPublished(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	eventsPublished.WithLabelValues(kind, status).Inc()
}
