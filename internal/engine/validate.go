package engine

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shaiso/FlowMaster/internal/domain"
)

// validate — валидатор конфигураций узлов.
// Имена полей в ошибках берутся из json тегов.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate выполняет строгую валидацию flow перед запуском.
//
// Проверяет:
// - Наличие имени и узлов
// - Непустые и уникальные ID узлов
// - Известность типов узлов
// - Валидность конфигурации каждого узла
//
// Executor эту функцию не вызывает: ошибки узлов в нём проявляются
// во время выполнения. Validate используется командой validate и API.
func Validate(flow *domain.Flow) error {
	if flow == nil || flow.IsEmpty() {
		return NewValidationError("", "steps", "flow has no steps", ErrEmptySteps)
	}

	if strings.TrimSpace(flow.Name) == "" {
		return NewValidationError("", "name", "flow has empty name", ErrEmptyName)
	}

	nodeIDs := make(map[string]bool, len(flow.Steps))
	for i := range flow.Steps {
		node := &flow.Steps[i]

		if node.ID == "" {
			return NewValidationError("", "id",
				fmt.Sprintf("node %d has empty ID", i), ErrEmptyNodeID)
		}

		if nodeIDs[node.ID] {
			return NewValidationError(node.ID, "id",
				fmt.Sprintf("duplicate node ID: %s", node.ID), ErrDuplicateNodeID)
		}
		nodeIDs[node.ID] = true

		if _, err := DecodeNodeConfig(node); err != nil {
			return err
		}
	}

	return nil
}

// DecodeNodeConfig раскладывает конфигурацию узла в типизированный вариант
// (*domain.TriggerConfig, *domain.APIConfig и т.д.) и валидирует его.
func DecodeNodeConfig(node *domain.Node) (any, error) {
	switch node.Type {
	case domain.NodeTypeTrigger:
		return DecodeTriggerConfig(node)
	case domain.NodeTypeAPI:
		return DecodeAPIConfig(node)
	case domain.NodeTypeProcess:
		return DecodeProcessConfig(node)
	case domain.NodeTypeCondition:
		return DecodeConditionConfig(node)
	case domain.NodeTypeOutput:
		return DecodeOutputConfig(node)
	case "":
		return nil, NewValidationError(node.ID, "type", "node has empty type", ErrUnknownNodeType)
	default:
		return nil, NewValidationError(node.ID, "type",
			fmt.Sprintf("unknown node type: %s", node.Type), ErrUnknownNodeType)
	}
}

// DecodeTriggerConfig раскладывает и валидирует конфигурацию trigger узла.
func DecodeTriggerConfig(node *domain.Node) (*domain.TriggerConfig, error) {
	var cfg domain.TriggerConfig
	if err := decodeAndValidate(node, &cfg); err != nil {
		return nil, err
	}

	if cfg.Mode == domain.TriggerModeSchedule {
		if err := ValidateCronExpr(cfg.Schedule); err != nil {
			return nil, NewValidationError(node.ID, "schedule", err.Error(), ErrInvalidSchedule)
		}
	}

	return &cfg, nil
}

// DecodeAPIConfig раскладывает и валидирует конфигурацию api узла.
// Метод приводится к верхнему регистру, по умолчанию — GET.
func DecodeAPIConfig(node *domain.Node) (*domain.APIConfig, error) {
	var cfg domain.APIConfig
	if err := node.DecodeConfig(&cfg); err != nil {
		return nil, NewValidationError(node.ID, "config", fmt.Sprintf("%s: %v", ErrInvalidConfig, err), ErrInvalidConfig)
	}

	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	if cfg.Method == "" {
		cfg.Method = "GET"
	}
	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string)
	}

	if err := validateStruct(node.ID, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DecodeProcessConfig раскладывает и валидирует конфигурацию process узла.
func DecodeProcessConfig(node *domain.Node) (*domain.ProcessConfig, error) {
	var cfg domain.ProcessConfig
	if err := decodeAndValidate(node, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DecodeConditionConfig раскладывает и валидирует конфигурацию condition узла.
func DecodeConditionConfig(node *domain.Node) (*domain.ConditionConfig, error) {
	var cfg domain.ConditionConfig
	if err := decodeAndValidate(node, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DecodeOutputConfig раскладывает и валидирует конфигурацию output узла.
func DecodeOutputConfig(node *domain.Node) (*domain.OutputConfig, error) {
	var cfg domain.OutputConfig
	if err := decodeAndValidate(node, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeAndValidate(node *domain.Node, out any) error {
	if err := node.DecodeConfig(out); err != nil {
		return NewValidationError(node.ID, "config", fmt.Sprintf("%s: %v", ErrInvalidConfig, err), ErrInvalidConfig)
	}
	return validateStruct(node.ID, out)
}

// validateStruct прогоняет validator и собирает ошибки полей в одно сообщение.
func validateStruct(nodeID string, cfg any) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewValidationError(nodeID, "config", err.Error(), ErrInvalidConfig)
	}

	details := make([]string, 0, len(fieldErrs))
	field := ""
	for _, fe := range fieldErrs {
		if field == "" {
			field = fe.Field()
		}
		details = append(details, describeFieldError(fe))
	}

	return NewValidationError(nodeID, field,
		fmt.Sprintf("%s: %s", ErrInvalidConfig, strings.Join(details, "; ")), ErrInvalidConfig)
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	case "url":
		return fmt.Sprintf("%s must be a valid URL, got %q", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}
}
