// Package activity содержит реестр типов активностей и их реализации.
//
// # Интерфейс Activity
//
// Каждый тип активности описывает схему своей конфигурации и способ
// вычисления output узла:
//
//	type Activity interface {
//	    Type() string
//	    Label() string
//	    Fields() []Field
//	    Compute(ctx context.Context, req *Request) (any, error)
//	}
//
// Активности-точки входа (start) дополнительно реализуют EntryPoint.
//
// # Registry
//
//	registry := activity.DefaultRegistry()             // start, end, createFile, delay, transform
//	activity.RegisterRemote(registry, serviceURL)       // readFile, writeFile, ...
//	out, err := registry.Compute(ctx, node.ActivityType, activity.NewRequest(node.ID, node.Config, input))
//
// Registry.Compute возвращает ошибки как *OperationError: движок
// записывает их сообщение в узел и прерывает запуск.
//
// # Удалённые активности
//
// Файловые, HTTP и XML/JSON активности выполняются внешним сервисом
// (remote.go). Реестр знает только их схему полей.
//
// # Файлы пакета
//
//   - activity.go  — интерфейс Activity, Field, Request, хелперы конфигурации
//   - errors.go    — ошибки и OperationError
//   - registry.go  — Registry
//   - builtin.go   — start, end
//   - file.go      — createFile, FileInfo
//   - delay.go     — delay
//   - transform.go — transform
//   - template.go  — рендеринг шаблонов transform
//   - remote.go    — клиент сервиса активностей и удалённые активности
package activity
