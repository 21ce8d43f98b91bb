// Package eventlog — журнал событий выполнения графа.
//
// Движок пишет в журнал события узлов (running, success, error, skip)
// и системные события графа (NodeID = "system"). Журнал хранит записи
// в порядке добавления и рассылает их:
//   - наблюдателям (Observer) — синхронно, например публикация в RabbitMQ
//   - подписчикам (Subscribe) — через буферизированные каналы, без блокировки
package eventlog
