package graph

import "github.com/shaiso/Flowcraft/internal/domain"

// Состояния вершины при обходе.
const (
	unvisited = 0
	visiting  = 1
	visited   = 2
)

// hasCycle проверяет, образуют ли рёбра цикл (DFS, три цвета).
// order задаёт порядок обхода вершин, чтобы результат не зависел от map.
func hasCycle(order []string, connections []domain.Connection) bool {
	adj := make(map[string][]string)
	for _, c := range connections {
		adj[c.SourceID] = append(adj[c.SourceID], c.TargetID)
	}

	state := make(map[string]int, len(order))

	var dfs func(id string) bool
	dfs = func(id string) bool {
		state[id] = visiting
		for _, next := range adj[id] {
			switch state[next] {
			case visiting:
				return true
			case unvisited:
				if dfs(next) {
					return true
				}
			}
		}
		state[id] = visited
		return false
	}

	for _, id := range order {
		if state[id] == unvisited && dfs(id) {
			return true
		}
	}
	// Вершины, встречающиеся только в рёбрах.
	for _, c := range connections {
		if state[c.SourceID] == unvisited && dfs(c.SourceID) {
			return true
		}
	}
	return false
}
