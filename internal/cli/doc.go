// Package cli реализует инструмент командной строки Flowcraft.
//
// # Обзор
//
// CLI работает в двух режимах:
//   - локально: граф загружается из JSON-файла и выполняется в процессе
//     (run, validate, lineage, activities);
//   - через HTTP API сервера flowcraft-api (graph, workflow, events list).
//
// events tail читает поток событий из RabbitMQ.
//
// # Ключевые компоненты
//
// ## Runtime
//
// Граф, реестр активностей, журнал событий и движок в процессе CLI.
// С --activity-url в реестр добавляются удалённые активности.
//
//	rt := cli.NewRuntime(cli.RuntimeConfig{})
//	err := rt.LoadFile("workflow.json")
//
// ## Client
//
// HTTP-клиент для Flowcraft API. Инкапсулирует HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) и логи — в stderr.
// Это позволяет использовать pipe: flowcraft run graph.json --json | jq .
//
// ## Commands
//
// Каждая команда или группа создаётся фабричной функцией (NewRunCmd,
// NewGraphCmd и т.д.), принимающей замыкания для ленивого создания
// Runtime, Client и Output после парсинга PersistentFlags.
package cli
