// Package graph содержит хранилище графа workflow.
//
// Включает:
//   - store.go    — узлы и рёбра в памяти, CRUD, инварианты структуры
//   - acyclic.go  — проверка ацикличности (DFS, три цвета)
//   - document.go — сериализация в документ JSON и загрузка из него
//   - topology.go — корни и топологический порядок (алгоритм Кана)
//
// Store читается движком выполнения и резолвером lineage.
// Ошибочные структурные правки (ребро на себя, дубликат, цикл) не считаются
// ошибками: они молча отклоняются и не меняют граф.
package graph
