package graph

// Roots возвращает ID узлов без входящих рёбер в порядке добавления.
func (s *Store) Roots() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hasIncoming := make(map[string]bool, len(s.connections))
	for _, c := range s.connections {
		hasIncoming[c.TargetID] = true
	}

	roots := make([]string, 0)
	for _, id := range s.order {
		if !hasIncoming[id] {
			roots = append(roots, id)
		}
	}
	return roots
}

// TopologicalOrder возвращает ID узлов в топологическом порядке (алгоритм Кана).
// При равенстве сохраняется порядок добавления узлов.
// Возвращает ErrCycleDetected, если обойти все узлы не удалось.
func (s *Store) TopologicalOrder() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inDegree := make(map[string]int, len(s.order))
	dependents := make(map[string][]string, len(s.order))
	for _, c := range s.connections {
		inDegree[c.TargetID]++
		dependents[c.SourceID] = append(dependents[c.SourceID], c.TargetID)
	}

	// Очередь узлов с inDegree = 0
	queue := make([]string, 0)
	for _, id := range s.order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(s.order))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, dep := range dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) != len(s.order) {
		return nil, ErrCycleDetected
	}
	return order, nil
}
