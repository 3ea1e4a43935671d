package steps

import (
	"context"
	"time"

	"github.com/shaiso/FlowMaster/internal/domain"
	"github.com/shaiso/FlowMaster/internal/engine"
)

// TriggerStep — узел запуска flow.
//
// Реального планировщика нет: узел только фиксирует режим запуска.
// Для mode=schedule в журнал попадает ближайшее время срабатывания.
//
// Конфигурация:
//
//	{"mode": "schedule", "schedule": "0 9 * * 1-5"}
//
// Данные для следующего узла:
//
//	{"triggered": true, "mode": "schedule"}
type TriggerStep struct {
	now func() time.Time
}

// NewTriggerStep создаёт новый TriggerStep.
func NewTriggerStep() *TriggerStep {
	return &TriggerStep{now: time.Now}
}

// Type возвращает тип узла.
func (s *TriggerStep) Type() domain.NodeType {
	return domain.NodeTypeTrigger
}

// Execute активирует trigger.
func (s *TriggerStep) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	cfg, err := engine.DecodeTriggerConfig(req.Node)
	if err != nil {
		return nil, err
	}

	details := map[string]any{"mode": cfg.Mode}
	switch cfg.Mode {
	case domain.TriggerModeSchedule:
		next, err := engine.NextFireTime(cfg.Schedule, s.now())
		if err != nil {
			return nil, err
		}
		details["schedule"] = cfg.Schedule
		details["nextRun"] = next.Format(time.RFC3339)
	case domain.TriggerModeWebhook:
		if cfg.WebhookURL != "" {
			details["webhookUrl"] = cfg.WebhookURL
		}
	}

	req.Success("Trigger activated", details)

	return req.Pass(map[string]any{
		"triggered": true,
		"mode":      cfg.Mode,
	}), nil
}
