package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/Flowcraft/internal/domain"
	"github.com/shaiso/Flowcraft/internal/eventlog"
)

// NewRunCmd создаёт команду локального запуска графа из файла.
func NewRunCmd(runtimeFn func() *Runtime, outputFn func() *Output) *cobra.Command {
	var output string
	var follow bool

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Run a workflow graph from a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFn()
			out := outputFn()

			if err := rt.LoadFile(args[0]); err != nil {
				return err
			}

			if follow && !out.IsJSON() {
				rt.Log.AddObserver(eventlog.ObserverFunc(out.EventLine))
			}

			runErr := rt.Engine.Run(cmd.Context())

			record, _ := rt.Engine.LastRun()
			switch {
			case out.IsJSON():
				out.JSON(record)
			case !follow:
				out.Events(record.Events)
			}

			if output != "" {
				if err := rt.SaveFile(output); err != nil {
					return err
				}
				out.Success(fmt.Sprintf("Graph state written to %s", output))
			}

			if runErr != nil {
				return fmt.Errorf("run %s failed: %w", record.ID, runErr)
			}
			out.Success(fmt.Sprintf("Run %s succeeded in %s", record.ID, record.Duration()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the graph with node statuses and outputs to FILE")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Print events as they happen")

	return cmd
}

// NewValidateCmd создаёт команду проверки документа графа.
func NewValidateCmd(runtimeFn func() *Runtime, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a workflow graph and print its topological order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFn()
			out := outputFn()

			if err := rt.LoadFile(args[0]); err != nil {
				return err
			}
			if unknown := rt.unknownActivities(); len(unknown) > 0 {
				return fmt.Errorf("unknown activity types: %s", strings.Join(unknown, ", "))
			}

			order, err := rt.Store.TopologicalOrder()
			if err != nil {
				return err
			}

			nodes := make([]domain.Node, 0, len(order))
			for _, id := range order {
				if n, ok := rt.Store.GetNode(id); ok {
					nodes = append(nodes, n)
				}
			}

			headers := []string{"#", "ID", "NAME", "TYPE", "ENABLED", "ENTRY"}
			rows := make([][]string, len(nodes))
			for i, n := range nodes {
				rows[i] = []string{
					strconv.Itoa(i + 1),
					n.ID,
					n.Name(),
					n.ActivityType,
					strconv.FormatBool(n.Enabled),
					strconv.FormatBool(rt.Registry.IsEntry(n.ActivityType)),
				}
			}

			out.Print(headers, rows, nodes)
			out.Success(fmt.Sprintf("Graph is valid: %d nodes, %d connections",
				rt.Store.NodeCount(), rt.Store.ConnectionCount()))
			return nil
		},
	}
}

// NewLineageCmd создаёт команду вывода каталога полей предков узла.
func NewLineageCmd(runtimeFn func() *Runtime, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "lineage FILE NODE_ID",
		Short: "List upstream ancestors of a node and their fields",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFn()
			out := outputFn()

			if err := rt.LoadFile(args[0]); err != nil {
				return err
			}
			if _, ok := rt.Store.GetNode(args[1]); !ok {
				return fmt.Errorf("node %s not found", args[1])
			}

			catalog := rt.Resolver.UpstreamCatalog(args[1])

			headers := []string{"ANCESTOR", "TYPE", "FIELD", "VALUE"}
			var rows [][]string
			for _, a := range catalog {
				for _, f := range a.Fields {
					rows = append(rows, []string{
						a.AncestorName,
						a.AncestorType,
						f.Name,
						oneLine(f.CurrentValue),
					})
				}
			}

			out.Print(headers, rows, catalog)
			return nil
		},
	}
}

// NewActivitiesCmd создаёт команду вывода зарегистрированных активностей.
func NewActivitiesCmd(runtimeFn func() *Runtime, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "activities",
		Short: "List available activity types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFn()
			out := outputFn()

			type activityInfo struct {
				Type   string   `json:"type"`
				Label  string   `json:"label"`
				Entry  bool     `json:"entry"`
				Fields []string `json:"fields"`
			}

			types := rt.Registry.Types()
			infos := make([]activityInfo, len(types))
			rows := make([][]string, len(types))
			for i, t := range types {
				fields := rt.Registry.Fields(t)
				names := make([]string, len(fields))
				for j, f := range fields {
					names[j] = f.Name
				}
				infos[i] = activityInfo{
					Type:   t,
					Label:  rt.Registry.Label(t),
					Entry:  rt.Registry.IsEntry(t),
					Fields: names,
				}
				rows[i] = []string{t, infos[i].Label, strconv.FormatBool(infos[i].Entry), strings.Join(names, ",")}
			}

			out.Print([]string{"TYPE", "LABEL", "ENTRY", "FIELDS"}, rows, infos)
			return nil
		},
	}
}

// oneLine сворачивает многострочное значение для таблицы.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
