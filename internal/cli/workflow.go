package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewWorkflowCmd создаёт группу команд для сохранённых workflows.
func NewWorkflowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Manage saved workflows",
	}

	cmd.AddCommand(
		newWorkflowListCmd(clientFn, outputFn),
		newWorkflowSaveCmd(clientFn, outputFn),
		newWorkflowLoadCmd(clientFn, outputFn),
		newWorkflowDeleteCmd(clientFn, outputFn),
		newWorkflowRunsCmd(clientFn, outputFn),
	)

	return cmd
}

func newWorkflowListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved workflows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workflows, err := clientFn().ListWorkflows()
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "NODES", "CONNECTIONS", "UPDATED"}
			rows := make([][]string, len(workflows))
			for i, wf := range workflows {
				rows[i] = []string{
					wf.ID,
					wf.Name,
					strconv.Itoa(wf.Nodes),
					strconv.Itoa(wf.Connections),
					wf.UpdatedAt,
				}
			}

			outputFn().Print(headers, rows, workflows)
			return nil
		},
	}
}

func newWorkflowSaveCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "save NAME",
		Short: "Save the server graph as a new workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			wf, err := clientFn().SaveWorkflow(args[0])
			if err != nil {
				return err
			}

			if out.IsJSON() {
				out.JSON(wf)
				return nil
			}
			out.Success(fmt.Sprintf("Workflow %q saved with ID %s", wf.Name, wf.ID))
			return nil
		},
	}
}

func newWorkflowLoadCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "load ID",
		Short: "Load a saved workflow into the server graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := clientFn().LoadWorkflow(args[0])
			if err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Workflow %s loaded: %d nodes, %d connections",
				args[0], len(doc.Nodes), len(doc.Connections)))
			return nil
		},
	}
}

func newWorkflowDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a saved workflow and its run history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFn().DeleteWorkflow(args[0]); err != nil {
				return err
			}
			outputFn().Success(fmt.Sprintf("Workflow %s deleted", args[0]))
			return nil
		},
	}
}

func newWorkflowRunsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs ID",
		Short: "List runs of a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := clientFn().ListWorkflowRuns(args[0], limit)
			if err != nil {
				return err
			}

			headers := []string{"ID", "STATUS", "STARTED", "DURATION", "ERROR"}
			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = []string{
					r.ID.String(),
					string(r.Status),
					r.StartedAt.Format("2006-01-02 15:04:05"),
					r.Duration().String(),
					r.Error,
				}
			}

			outputFn().Print(headers, rows, runs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}
