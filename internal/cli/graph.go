package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Flowcraft/internal/domain"
)

// NewGraphCmd создаёт группу команд для графа на API сервере.
func NewGraphCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Manage the graph on the API server",
	}

	cmd.AddCommand(
		newGraphShowCmd(clientFn, outputFn),
		newGraphPushCmd(clientFn, outputFn),
		newGraphPullCmd(clientFn, outputFn),
		newGraphRunCmd(clientFn, outputFn),
		newGraphClearCmd(clientFn, outputFn),
	)

	return cmd
}

func newGraphShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show nodes of the server graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := clientFn().GetGraph()
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "TYPE", "ENABLED", "STATUS"}
			rows := make([][]string, len(doc.Nodes))
			for i, n := range doc.Nodes {
				rows[i] = []string{n.ID, n.Name(), n.ActivityType, strconv.FormatBool(n.Enabled), string(n.Status)}
			}

			outputFn().Print(headers, rows, doc)
			return nil
		},
	}
}

func newGraphPushCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "push FILE",
		Short: "Replace the server graph with a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read graph file: %w", err)
			}

			var doc domain.Document
			if err := json.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			result, err := clientFn().PutGraph(&doc)
			if err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Graph loaded: %d nodes, %d connections",
				len(result.Nodes), len(result.Connections)))
			return nil
		},
	}
}

func newGraphPullCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Download the server graph as a JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			doc, err := clientFn().GetGraph()
			if err != nil {
				return err
			}

			if output == "" {
				out.JSON(doc)
				return nil
			}

			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal graph: %w", err)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write graph file: %w", err)
			}
			out.Success(fmt.Sprintf("Graph written to %s", output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to FILE instead of stdout")

	return cmd
}

func newGraphRunCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the server graph and wait for the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			run, err := clientFn().StartRun()
			if err != nil {
				return err
			}

			if out.IsJSON() {
				out.JSON(run)
			} else {
				out.Events(run.Events)
			}

			if run.Status == domain.RunStatusFailed {
				return fmt.Errorf("run %s failed: %s", run.ID, run.Error)
			}
			out.Success(fmt.Sprintf("Run %s succeeded", run.ID))
			return nil
		},
	}
}

func newGraphClearCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all nodes and connections from the server graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFn().ClearGraph(); err != nil {
				return err
			}
			outputFn().Success("Graph cleared")
			return nil
		},
	}
}
