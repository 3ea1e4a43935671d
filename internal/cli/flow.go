package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/FlowMaster/internal/domain"
	"github.com/shaiso/FlowMaster/internal/engine"
)

// Форматы документа flow.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// NewValidateCmd создаёт команду строгой проверки документа flow.
func NewValidateCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a flow document",
		Long:  "Validate a flow document. FILE may be JSON, YAML or a text file containing JSON; \"-\" reads stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			flow, _, err := loadFlow(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			if err := engine.Validate(flow); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Flow is valid: %s (%d steps)", flow.Name, len(flow.Steps)))
			out.Print(
				[]string{"#", "ID", "TYPE", "NAME"},
				nodeRows(flow),
				flow,
			)
			return nil
		},
	}
}

// NewExportCmd создаёт команду вывода нормализованного документа.
func NewExportCmd(outputFn func() *Output) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Print a normalized flow document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			flow, _, err := loadFlow(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case formatJSON:
				data, err = engine.Export(flow)
			case formatYAML:
				data, err = engine.ExportYAML(flow)
			default:
				return fmt.Errorf("unknown format %q, expected json or yaml", format)
			}
			if err != nil {
				return err
			}

			out.Raw(data)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatJSON, "Output format (json, yaml)")

	return cmd
}

// loadFlow читает и разбирает документ flow.
// Возвращает flow, исходный документ и его Content-Type.
//
// .yaml/.yml разбираются как YAML, остальное — как импорт текста
// (JSON, возможно внутри произвольного текста).
func loadFlow(stdin io.Reader, path string) (*domain.Flow, string, error) {
	data, err := readFile(stdin, path)
	if err != nil {
		return nil, "", err
	}

	if isYAMLPath(path) {
		flow, err := engine.ParseYAML(data)
		return flow, "application/yaml", err
	}

	flow, err := engine.Import(data)
	return flow, "application/json", err
}

func readFile(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow file: %w", err)
	}
	return data, nil
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func nodeRows(flow *domain.Flow) [][]string {
	rows := make([][]string, len(flow.Steps))
	for i, n := range flow.Steps {
		rows[i] = []string{strconv.Itoa(i + 1), n.ID, string(n.Type), n.DisplayName()}
	}
	return rows
}
