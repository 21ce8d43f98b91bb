package activity

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry — реестр типов активностей.
//
// Позволяет регистрировать и получать реализации Activity по типу.
// Потокобезопасен.
type Registry struct {
	mu         sync.RWMutex
	activities map[string]Activity
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		activities: make(map[string]Activity),
	}
}

// DefaultRegistry создаёт реестр со встроенными активностями.
// Удалённые активности добавляются через RegisterRemote.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(NewStartActivity())
	r.Register(NewEndActivity())
	r.Register(NewCreateFileActivity())
	r.Register(NewDelayActivity())
	r.Register(NewTransformActivity())

	return r
}

// Register регистрирует активность в реестре.
// Если активность с таким типом уже существует, она будет перезаписана.
func (r *Registry) Register(a Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activities[a.Type()] = a
}

// Get возвращает активность по типу.
// Возвращает ErrActivityNotFound, если тип не зарегистрирован.
func (r *Registry) Get(activityType string) (Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.activities[activityType]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrActivityNotFound, activityType)
	}
	return a, nil
}

// Has проверяет, зарегистрирована ли активность.
func (r *Registry) Has(activityType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.activities[activityType]
	return exists
}

// Types возвращает отсортированный список зарегистрированных типов.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.activities))
	for t := range r.activities {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Count возвращает количество зарегистрированных активностей.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.activities)
}

// Unregister удаляет активность из реестра.
func (r *Registry) Unregister(activityType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.activities, activityType)
}

// Fields возвращает схему полей активности.
// Для незарегистрированного типа — nil.
func (r *Registry) Fields(activityType string) []Field {
	a, err := r.Get(activityType)
	if err != nil {
		return nil
	}
	return a.Fields()
}

// IsEntry возвращает true, если тип активности — точка входа графа.
func (r *Registry) IsEntry(activityType string) bool {
	a, err := r.Get(activityType)
	if err != nil {
		return false
	}
	_, ok := a.(EntryPoint)
	return ok
}

// Label возвращает название активности или сам тип, если он не зарегистрирован.
func (r *Registry) Label(activityType string) string {
	a, err := r.Get(activityType)
	if err != nil {
		return activityType
	}
	return a.Label()
}

// Compute находит активность и вычисляет output узла.
// Любая ошибка, включая неизвестный тип, возвращается как *OperationError.
func (r *Registry) Compute(ctx context.Context, activityType string, req *Request) (any, error) {
	a, err := r.Get(activityType)
	if err != nil {
		return nil, NewOperationError(activityType, req.NodeID, err)
	}

	out, err := a.Compute(ctx, req)
	if err != nil {
		return nil, NewOperationError(activityType, req.NodeID, err)
	}
	return out, nil
}
