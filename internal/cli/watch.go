package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/FlowMaster/internal/executor"
	"github.com/shaiso/FlowMaster/internal/mq"
	"github.com/shaiso/FlowMaster/internal/telemetry"
)

// NewWatchCmd создаёт команду просмотра событий выполнения из RabbitMQ.
func NewWatchCmd(outputFn func() *Output) *cobra.Command {
	var amqpURL string
	var runID string
	var results bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Tail execution events published by the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()
			logger := telemetry.FromContext(cmd.Context())
			ctx := cmd.Context()

			conn, err := mq.NewConnection(amqpURL, logger)
			if err != nil {
				return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			defer conn.Close()

			if err := mq.SetupTopology(ctx, conn); err != nil {
				return err
			}

			printer := &eventPrinter{out: out, runID: runID}
			cfg := mq.ConsumerConfig{
				Queue:    string(mq.QueueExecutionResults),
				Handler:  printer.handleResult,
				Prefetch: 16,
			}

			if !results {
				queue, err := mq.DeclareWatchQueue(ctx, conn)
				if err != nil {
					return err
				}
				cfg.Queue = string(queue)
				cfg.Handler = printer.handle
			}

			consumer := mq.NewConsumer(conn, logger, cfg)

			out.Success(fmt.Sprintf("Watching execution events (queue %s), press Ctrl+C to stop", cfg.Queue))

			err = consumer.Start(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&amqpURL, "amqp-url", mq.DefaultURL(), "RabbitMQ URL")
	cmd.Flags().StringVar(&runID, "run-id", "", "Show events of a single run only")
	cmd.Flags().BoolVar(&results, "results", false,
		"Drain the durable executions.results queue instead of tailing all events (results of other runs are acked too)")

	return cmd
}

// eventPrinter печатает события выполнения из очереди.
type eventPrinter struct {
	out   *Output
	runID string
}

func (p *eventPrinter) handle(_ context.Context, d *mq.Delivery) error {
	event, err := mq.DecodeEvent(&d.Message)
	if err != nil {
		return err
	}

	p.print(event)
	return nil
}

// handleResult обрабатывает сообщение из executions.results.
// Всё, что не является итогом run, отклоняется и уходит в DLQ.
func (p *eventPrinter) handleResult(_ context.Context, d *mq.Delivery) error {
	event, err := mq.DecodeResult(&d.Message)
	if err != nil {
		return err
	}

	p.print(event)
	return nil
}

func (p *eventPrinter) print(event executor.Event) {
	if p.runID != "" && event.RunID.String() != p.runID {
		return
	}

	if p.out.JSONMode() {
		p.out.JSON(event)
		return
	}

	switch event.Kind {
	case executor.EventLog:
		if event.Log != nil {
			p.out.Log(*event.Log)
		}
	case executor.EventResult:
		if event.Result == nil {
			return
		}
		line := fmt.Sprintf("run %s (flow %s): %s", event.RunID, event.FlowID, event.Result.Status)
		if event.Result.Error != "" {
			line += ": " + event.Result.Error
		}
		p.out.Success(line)
	}
}
