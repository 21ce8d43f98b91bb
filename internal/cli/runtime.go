package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/shaiso/Flowcraft/internal/activity"
	"github.com/shaiso/Flowcraft/internal/engine"
	"github.com/shaiso/Flowcraft/internal/eventlog"
	"github.com/shaiso/Flowcraft/internal/graph"
	"github.com/shaiso/Flowcraft/internal/lineage"
)

// Runtime — граф, реестр и движок в процессе CLI.
type Runtime struct {
	Store    *graph.Store
	Registry *activity.Registry
	Log      *eventlog.Log
	Engine   *engine.Engine
	Resolver *lineage.Resolver
}

// RuntimeConfig — параметры локального выполнения.
type RuntimeConfig struct {
	// ActivityURL — адрес сервиса удалённых активностей. Пусто — только встроенные.
	ActivityURL string

	Logger *slog.Logger
}

// NewRuntime собирает локальный Runtime.
func NewRuntime(cfg RuntimeConfig) *Runtime {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := activity.DefaultRegistry()
	if cfg.ActivityURL != "" {
		activity.RegisterRemote(registry, cfg.ActivityURL)
	}

	store := graph.NewStore()
	log := eventlog.New()

	return &Runtime{
		Store:    store,
		Registry: registry,
		Log:      log,
		Engine: engine.New(engine.Config{
			Store:    store,
			Registry: registry,
			Log:      log,
			Logger:   logger,
		}),
		Resolver: lineage.NewResolver(store, registry),
	}
}

// LoadFile загружает документ графа из файла.
func (rt *Runtime) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read graph file: %w", err)
	}
	if err := rt.Store.LoadJSON(data); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// SaveFile записывает граф вместе со статусами и outputs в файл.
func (rt *Runtime) SaveFile(path string) error {
	data, err := rt.Store.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal graph: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write graph file: %w", err)
	}
	return nil
}

// unknownActivities возвращает узлы, чей тип активности не зарегистрирован.
func (rt *Runtime) unknownActivities() []string {
	var result []string
	for _, n := range rt.Store.Nodes() {
		if !rt.Registry.Has(n.ActivityType) {
			result = append(result, fmt.Sprintf("%s (%s)", n.ID, n.ActivityType))
		}
	}
	return result
}
