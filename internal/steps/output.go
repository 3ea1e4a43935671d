package steps

import (
	"context"
	"fmt"

	"github.com/shaiso/FlowMaster/internal/domain"
	"github.com/shaiso/FlowMaster/internal/engine"
)

// defaultOutput — данные вывода, если ни один узел ничего не передал.
var defaultOutput = map[string]any{"result": "Flow completed"}

// OutputStep — узел итогового вывода.
//
// Если вывод уже сформирован (например, process format_txt), он не меняется.
// Иначе выводом становится JSON данных предыдущего узла,
// а при их отсутствии — {"result": "Flow completed"}.
type OutputStep struct{}

// NewOutputStep создаёт новый OutputStep.
func NewOutputStep() *OutputStep {
	return &OutputStep{}
}

// Type возвращает тип узла.
func (s *OutputStep) Type() domain.NodeType {
	return domain.NodeTypeOutput
}

// Execute формирует вывод.
func (s *OutputStep) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	cfg, err := engine.DecodeOutputConfig(req.Node)
	if err != nil {
		return nil, err
	}

	output := req.Output
	if output == "" {
		data := req.PreviousData
		if data == nil {
			data = defaultOutput
		}
		output, err = engine.PrettyJSON(data)
		if err != nil {
			return nil, err
		}
	}

	details := map[string]any{
		"format": cfg.Format,
		"size":   len(output),
	}
	if cfg.Filename != "" {
		details["filename"] = cfg.Filename
	}

	req.Success(fmt.Sprintf("Output generated in %s format", cfg.Format), details)

	return &Response{Data: req.PreviousData, Output: output}, nil
}
