package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/FlowMaster/internal/artifact"
	"github.com/shaiso/FlowMaster/internal/domain"
	"github.com/shaiso/FlowMaster/internal/engine"
	"github.com/shaiso/FlowMaster/internal/executor"
	"github.com/shaiso/FlowMaster/internal/steps"
	"github.com/shaiso/FlowMaster/internal/telemetry"
)

// logPrinter печатает журнал run по мере поступления записей.
type logPrinter struct {
	out *Output
}

func (p *logPrinter) OnLog(entry domain.ExecutionLog) { p.out.Log(entry) }
func (p *logPrinter) OnNodeStart(string)              {}
func (p *logPrinter) OnNodeComplete(string, bool)     {}

// NewRunCmd создаёт команду локального выполнения flow.
func NewRunCmd(outputFn func() *Output) *cobra.Command {
	var outDir string
	var noArtifact bool
	var latencyMin, latencyMax time.Duration
	var env []string

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Execute a flow locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()
			logger := telemetry.FromContext(cmd.Context())

			flow, _, err := loadFlow(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			vars, err := parseEnv(env)
			if err != nil {
				return err
			}

			exec := executor.New(executor.Config{
				Latency: steps.NewLatency(latencyMin, latencyMax),
				Env:     vars,
				Logger:  logger,
			})

			// В JSON режиме журнал выводится целиком в результате
			var obs executor.Observer
			if !out.JSONMode() {
				obs = &logPrinter{out: out}
			}

			result, err := exec.Execute(cmd.Context(), flow, obs)
			if err != nil {
				return err
			}

			if out.JSONMode() {
				out.JSON(result)
			}

			if result.Status != domain.ExecutionStatusSuccess {
				return fmt.Errorf("execution failed: %s", result.Error)
			}

			if noArtifact || !result.HasOutput() {
				out.Success(fmt.Sprintf("Run %s completed in %s", result.RunID, result.Duration()))
				return nil
			}

			path, err := artifact.Write(outDir, flow, result)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Run %s completed in %s, output saved to %s", result.RunID, result.Duration(), path))
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", ".", "Directory for the output artifact")
	cmd.Flags().BoolVar(&noArtifact, "no-artifact", false, "Do not write the output artifact")
	cmd.Flags().DurationVar(&latencyMin, "latency-min", 0, "Minimum simulated latency per node")
	cmd.Flags().DurationVar(&latencyMax, "latency-max", 0, "Maximum simulated latency per node")
	cmd.Flags().StringSliceVar(&env, "env", nil, "Template variables as KEY=VALUE (repeatable)")

	return cmd
}

// NewRemoteCmd создаёт группу команд, работающих через HTTP API.
func NewRemoteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Validate and execute flows through the API server",
	}

	cmd.AddCommand(
		newRemoteValidateCmd(clientFn, outputFn),
		newRemoteRunCmd(clientFn, outputFn),
	)

	return cmd
}

func newRemoteValidateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a flow document on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			doc, contentType, err := loadDocument(cmd, args[0])
			if err != nil {
				return err
			}

			resp, err := client.ValidateFlow(doc, contentType)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Flow is valid: %s (%d steps)", resp.Flow.Name, resp.Steps))
			out.Print(
				[]string{"#", "ID", "TYPE", "NAME"},
				nodeRows(resp.Flow),
				resp,
			)
			return nil
		},
	}
}

func newRemoteRunCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var outDir string
	var download bool

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Execute a flow on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			doc, contentType, err := loadDocument(cmd, args[0])
			if err != nil {
				return err
			}

			if download {
				a, err := client.DownloadArtifact(doc, contentType)
				if err != nil {
					return err
				}
				path := filepath.Join(outDir, a.Filename)
				if err := os.WriteFile(path, a.Content, 0o644); err != nil {
					return fmt.Errorf("failed to write artifact: %w", err)
				}
				out.Success(fmt.Sprintf("Run %s output saved to %s", a.RunID, path))
				return nil
			}

			resp, err := client.Execute(doc, contentType)
			if err != nil {
				return err
			}

			if out.JSONMode() {
				out.JSON(resp)
			} else {
				for _, entry := range resp.Logs {
					out.Log(entry)
				}
			}

			if resp.Status != domain.ExecutionStatusSuccess {
				return fmt.Errorf("execution failed: %s", resp.Error)
			}

			out.Success(fmt.Sprintf("Run %s completed in %dms", resp.RunID, resp.DurationMs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&download, "download", false, "Download the output artifact instead of the result")
	cmd.Flags().StringVar(&outDir, "out", ".", "Directory for the downloaded artifact")

	return cmd
}

// loadDocument читает документ для отправки на сервер.
// Из текстовых файлов извлекается JSON фрагмент, YAML отправляется как есть.
func loadDocument(cmd *cobra.Command, path string) ([]byte, string, error) {
	data, err := readFile(cmd.InOrStdin(), path)
	if err != nil {
		return nil, "", err
	}

	if isYAMLPath(path) {
		return data, "application/yaml", nil
	}
	return engine.Extract(data), "application/json", nil
}

// parseEnv разбирает пары KEY=VALUE.
func parseEnv(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	vars := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid env format %q, expected KEY=VALUE", kv)
		}
		vars[key] = value
	}
	return vars, nil
}
