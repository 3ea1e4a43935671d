// FlowMaster CLI — инструмент командной строки для проверки,
// экспорта и выполнения flows.
//
// Использование:
//
//	flowmaster [--api-url URL] [--json] [--verbose] <command> [flags]
//
// Команды:
//
//	validate  Проверка документа flow
//	export    Нормализованный документ (JSON или YAML)
//	run       Локальное выполнение flow
//	remote    Проверка и выполнение через API сервер
//	watch     События выполнения из RabbitMQ
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaiso/FlowMaster/internal/cli"
	"github.com/shaiso/FlowMaster/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "flowmaster",
		Short:         "FlowMaster CLI — linear workflow runner",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Без --verbose служебные логи не смешиваются с журналом run
			if !verbose && os.Getenv("LOG_LEVEL") == "" {
				os.Setenv("LOG_LEVEL", "WARN")
			}
			logger := telemetry.SetupLoggerTo(os.Stderr)
			cmd.SetContext(telemetry.WithLogger(cmd.Context(), logger))
		},
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultAPIURL(), "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Write service logs to stderr")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewValidateCmd(outputFn),
		cli.NewExportCmd(outputFn),
		cli.NewRunCmd(outputFn),
		cli.NewRemoteCmd(clientFn, outputFn),
		cli.NewWatchCmd(outputFn),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}

func defaultAPIURL() string {
	if v := os.Getenv("FLOWMASTER_API_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}
