package steps

import (
	"context"
	"fmt"

	"github.com/shaiso/FlowMaster/internal/domain"
	"github.com/shaiso/FlowMaster/internal/engine"
)

// ConditionStep — узел проверки условия.
//
// Условие вычисляется над данными предыдущего узла (см. engine.EvaluateCondition).
// Flow линейный, поэтому результат только попадает в журнал:
// данные передаются следующему узлу без изменений.
type ConditionStep struct{}

// NewConditionStep создаёт новый ConditionStep.
func NewConditionStep() *ConditionStep {
	return &ConditionStep{}
}

// Type возвращает тип узла.
func (s *ConditionStep) Type() domain.NodeType {
	return domain.NodeTypeCondition
}

// Execute вычисляет условие.
func (s *ConditionStep) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	cfg, err := engine.DecodeConditionConfig(req.Node)
	if err != nil {
		return nil, err
	}

	req.Info(fmt.Sprintf("Evaluating condition: %s %s %s", cfg.Field, cfg.Operator, engine.Stringify(cfg.Value)), nil)

	result, err := engine.EvaluateCondition(cfg, req.PreviousData)
	if err != nil {
		return nil, err
	}

	details := map[string]any{
		"field":    cfg.Field,
		"operator": cfg.Operator,
		"value":    cfg.Value,
		"result":   result,
	}
	if branch := s.branch(cfg, result); branch != "" {
		details["branch"] = branch
	}

	req.Success(fmt.Sprintf("Condition evaluated: %t", result), details)

	return req.Pass(req.PreviousData), nil
}

// branch возвращает ID ветки, выбранной условием.
func (s *ConditionStep) branch(cfg *domain.ConditionConfig, result bool) string {
	if result {
		return cfg.TrueBranch
	}
	return cfg.FalseBranch
}
