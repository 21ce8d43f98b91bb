// Package engine содержит движок выполнения графа workflow.
//
// Включает:
//   - engine.go — Run, ExecuteNode: обход графа от точек входа
//   - stats.go  — статистика узлов по статусам
//   - errors.go — ошибки запуска
//
// Движок читает граф из graph.Store, вычисляет узлы через activity.Registry,
// записывает статусы и outputs обратно в Store и ведёт eventlog.Log.
//
// Порядок выполнения детерминирован: точки входа — в порядке добавления,
// дети узла — в порядке создания рёбер, в глубину. Журнал событий
// повторяет этот порядок.
package engine
