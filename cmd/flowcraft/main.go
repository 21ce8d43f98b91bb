// Flowcraft CLI — запуск и проверка графов локально,
// управление графом и workflows на сервере flowcraft-api.
//
// Использование:
//
//	flowcraft [--api-url URL] [--activity-url URL] [--json] <command> [flags]
//
// Команды:
//
//	run         Выполнить граф из JSON-файла
//	validate    Проверить граф и вывести топологический порядок
//	lineage     Каталог полей предков узла
//	activities  Доступные типы активностей
//	graph       Граф на API сервере
//	workflow    Сохранённые workflows
//	events      Журнал событий (API или RabbitMQ)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaiso/Flowcraft/internal/cli"
	"github.com/shaiso/Flowcraft/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var activityURL string
	var jsonOutput bool

	// Логи в stderr, чтобы не смешивать с результатом в stdout
	logger := telemetry.SetupLogger(os.Stderr)

	rootCmd := &cobra.Command{
		Use:           "flowcraft",
		Short:         "Flowcraft CLI — visual workflow graph runner",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().StringVar(&activityURL, "activity-url", os.Getenv("ACTIVITY_SERVICE_URL"), "Remote activity service URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }
	runtimeFn := func() *cli.Runtime {
		return cli.NewRuntime(cli.RuntimeConfig{ActivityURL: activityURL, Logger: logger})
	}

	rootCmd.AddCommand(
		cli.NewRunCmd(runtimeFn, outputFn),
		cli.NewValidateCmd(runtimeFn, outputFn),
		cli.NewLineageCmd(runtimeFn, outputFn),
		cli.NewActivitiesCmd(runtimeFn, outputFn),
		cli.NewGraphCmd(clientFn, outputFn),
		cli.NewWorkflowCmd(clientFn, outputFn),
		cli.NewEventsCmd(clientFn, outputFn, logger),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
