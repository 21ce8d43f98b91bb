package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shaiso/Flowcraft/internal/mq"
)

// NewEventsCmd создаёт группу команд для журнала событий.
func NewEventsCmd(clientFn func() *Client, outputFn func() *Output, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect run events",
	}

	cmd.AddCommand(
		newEventsListCmd(clientFn, outputFn),
		newEventsTailCmd(outputFn, logger),
	)

	return cmd
}

func newEventsListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List events of the last run on the API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := clientFn().ListEvents()
			if err != nil {
				return err
			}
			outputFn().Events(events)
			return nil
		},
	}
}

func newEventsTailCmd(outputFn func() *Output, logger *slog.Logger) *cobra.Command {
	var amqpURL string

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow events published to RabbitMQ",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			if amqpURL == "" {
				amqpURL, _ = mq.URLFromEnv()
			}

			conn, err := mq.NewConnection(amqpURL, logger)
			if err != nil {
				return fmt.Errorf("connect to RabbitMQ: %w", err)
			}
			defer conn.Close()

			if err := mq.SetupTopology(cmd.Context(), conn); err != nil {
				return fmt.Errorf("setup topology: %w", err)
			}

			consumer := mq.NewConsumer(conn, logger, mq.ConsumerConfig{
				Queue:    mq.QueueEventsConsole,
				Prefetch: 50,
				Handler: func(ctx context.Context, d *mq.Delivery) error {
					event, err := d.Event()
					if err != nil {
						return err
					}
					out.EventLine(event)
					return nil
				},
			})

			out.Success("Waiting for events, press Ctrl+C to stop")
			err = consumer.Start(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&amqpURL, "amqp-url", "", "RabbitMQ URL (default: $AMQP_URL)")

	return cmd
}
