package engine

import "github.com/shaiso/Flowcraft/internal/domain"

// Stats — количество узлов графа по статусам.
type Stats struct {
	TotalNodes   int `json:"total_nodes"`
	IdleNodes    int `json:"idle_nodes"`
	RunningNodes int `json:"running_nodes"`
	SuccessNodes int `json:"success_nodes"`
	ErrorNodes   int `json:"error_nodes"`
}

// Stats возвращает текущую статистику по узлам.
func (e *Engine) Stats() Stats {
	var s Stats
	for _, node := range e.store.Nodes() {
		s.TotalNodes++
		switch node.Status {
		case domain.NodeStatusRunning:
			s.RunningNodes++
		case domain.NodeStatusSuccess:
			s.SuccessNodes++
		case domain.NodeStatusError:
			s.ErrorNodes++
		default:
			s.IdleNodes++
		}
	}
	return s
}
