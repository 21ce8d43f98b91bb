package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Flowcraft/internal/activity"
	"github.com/shaiso/Flowcraft/internal/domain"
	"github.com/shaiso/Flowcraft/internal/eventlog"
	"github.com/shaiso/Flowcraft/internal/graph"
	"github.com/shaiso/Flowcraft/internal/telemetry"
)

// Сообщения событий.
const (
	msgSkip    = "skipping inactive node"
	msgRunning = "running"
	msgSuccess = "completed"
)

// Результаты запуска для метрик.
const (
	resultSucceeded = "succeeded"
	resultFailed    = "failed"
	resultNoEntry   = "no_entry"
)

// Engine выполняет граф из Store.
//
// Одновременно идёт не больше одного запуска. Во время запуска
// структура графа заморожена: AddNode, RemoveNode и другие
// структурные правки ждут его завершения.
type Engine struct {
	store    *graph.Store
	registry *activity.Registry
	log      *eventlog.Log
	metrics  *telemetry.Metrics
	logger   *slog.Logger

	running atomic.Bool

	mu      sync.RWMutex
	lastRun *domain.RunRecord
}

// Config — конфигурация Engine.
type Config struct {
	Store    *graph.Store
	Registry *activity.Registry
	Log      *eventlog.Log

	// Metrics — опционально.
	Metrics *telemetry.Metrics

	// Logger — по умолчанию slog.Default().
	Logger *slog.Logger
}

// New создаёт Engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:    cfg.Store,
		registry: cfg.Registry,
		log:      cfg.Log,
		metrics:  cfg.Metrics,
		logger:   logger,
	}
}

// RunOption — опция запуска.
type RunOption func(*domain.RunRecord)

// WithWorkflowID связывает запуск с сохранённым workflow.
func WithWorkflowID(id uuid.UUID) RunOption {
	return func(r *domain.RunRecord) {
		r.WorkflowID = &id
	}
}

// IsRunning возвращает true, пока идёт запуск.
func (e *Engine) IsRunning() bool {
	return e.running.Load()
}

// Run выполняет граф.
//
// Сбрасывает состояние узлов и журнал событий, затем по очереди
// выполняет каждый активный узел-точку входа в порядке добавления.
// Первая ошибка активности прерывает запуск и возвращается.
//
// Возвращает ErrRunInProgress, если запуск уже идёт,
// и ErrNoEntryNodes, если выполнять нечего.
func (e *Engine) Run(ctx context.Context, opts ...RunOption) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	defer e.running.Store(false)

	release := e.store.FreezeStructure()
	defer release()

	record := domain.NewRunRecord()
	for _, opt := range opts {
		opt(record)
	}

	logger := telemetry.WithRunID(e.logger, record.ID.String())
	if record.WorkflowID != nil {
		logger = telemetry.WithWorkflowID(logger, record.WorkflowID.String())
	}
	ctx = telemetry.WithLogger(ctx, logger)

	e.store.ResetRunState()
	e.log.Clear()

	entries := e.entryNodes()
	logger.Info("run started", "entry_nodes", len(entries))

	err := e.runEntries(ctx, entries)
	switch {
	case err == nil:
		record.MarkSucceeded()
		e.metrics.ObserveRun(resultSucceeded)
		logger.Info("run succeeded", "duration", record.Duration())
	default:
		e.log.System(domain.EventStatusError, err.Error())
		record.MarkFailed(err.Error())
		if errors.Is(err, ErrNoEntryNodes) {
			e.metrics.ObserveRun(resultNoEntry)
		} else {
			e.metrics.ObserveRun(resultFailed)
		}
		logger.Error("run failed", "error", err, "duration", record.Duration())
	}

	record.Events = e.log.Entries()
	e.mu.Lock()
	e.lastRun = record
	e.mu.Unlock()

	return err
}

func (e *Engine) runEntries(ctx context.Context, entries []string) error {
	if len(entries) == 0 {
		return ErrNoEntryNodes
	}
	for _, id := range entries {
		if _, err := e.execute(ctx, id, nil); err != nil {
			return err
		}
	}
	return nil
}

// entryNodes возвращает активные узлы-точки входа в порядке добавления.
func (e *Engine) entryNodes() []string {
	var ids []string
	for _, node := range e.store.Nodes() {
		if node.Enabled && e.registry.IsEntry(node.ActivityType) {
			ids = append(ids, node.ID)
		}
	}
	return ids
}

// task — единица работы обхода: узел и его вход.
type task struct {
	nodeID string
	input  any
}

// ExecuteNode выполняет узел и всё, что достижимо из него.
//
// Обход в глубину через явный стек: дети узла выполняются по одному
// в порядке создания рёбер, после самого узла. Узел с несколькими
// родителями выполняется отдельно для каждого входящего ребра.
//
// Неактивный узел пропускается: статус остаётся idle, дети получают
// его вход без изменений. Ошибка активности останавливает весь обход.
//
// Возвращает результат узла id: его output или, для неактивного узла, input.
//
// Как и Run, занимает движок и замораживает структуру графа (ErrRunInProgress,
// если запуск уже идёт), но не сбрасывает статусы узлов и журнал событий.
func (e *Engine) ExecuteNode(ctx context.Context, id string, input any) (any, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer e.running.Store(false)

	release := e.store.FreezeStructure()
	defer release()

	return e.execute(ctx, id, input)
}

// execute — обход от узла id. Вызывается под защитой running и заморозки.
func (e *Engine) execute(ctx context.Context, id string, input any) (any, error) {
	if _, ok := e.store.GetNode(id); !ok {
		return nil, fmt.Errorf("%w: %s", graph.ErrNodeNotFound, id)
	}

	var (
		result any
		first  = true
	)

	stack := []task{{nodeID: id, input: input}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run cancelled: %w", err)
		}

		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		out, err := e.executeOne(ctx, t)
		if err != nil {
			return nil, err
		}
		if first {
			result = out
			first = false
		}

		children := e.store.OutgoingConnections(t.nodeID)
		for _, c := range slices.Backward(children) {
			stack = append(stack, task{nodeID: c.TargetID, input: out})
		}
	}

	return result, nil
}

// executeOne выполняет один узел без детей и возвращает то, что получат дети.
func (e *Engine) executeOne(ctx context.Context, t task) (any, error) {
	node, ok := e.store.GetNode(t.nodeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", graph.ErrNodeNotFound, t.nodeID)
	}

	name := e.nodeName(node)
	logger := telemetry.WithNodeID(telemetry.FromContext(ctx), node.ID, node.ActivityType)

	if !node.Enabled {
		e.log.Append(node.ID, name, domain.EventStatusSkip, msgSkip, nil)
		logger.Debug("node skipped")
		return t.input, nil
	}

	e.store.UpdateNode(node.ID, graph.StatusUpdate(domain.NodeStatusRunning, nil, ""))
	e.log.Append(node.ID, name, domain.EventStatusRunning, msgRunning, nil)
	logger.Debug("node running")

	start := time.Now()
	out, err := e.registry.Compute(ctx, node.ActivityType, activity.NewRequest(node.ID, node.Config, t.input))
	elapsed := time.Since(start)

	if err != nil {
		e.store.UpdateNode(node.ID, graph.StatusUpdate(domain.NodeStatusError, nil, err.Error()))
		e.log.Append(node.ID, name, domain.EventStatusError, err.Error(), nil)
		e.metrics.ObserveNode(node.ActivityType, string(domain.NodeStatusError), elapsed)
		logger.Error("node failed", "error", err, "duration", elapsed)
		return nil, err
	}

	e.store.UpdateNode(node.ID, graph.StatusUpdate(domain.NodeStatusSuccess, out, ""))
	e.log.Append(node.ID, name, domain.EventStatusSuccess, msgSuccess, out)
	e.metrics.ObserveNode(node.ActivityType, string(domain.NodeStatusSuccess), elapsed)
	logger.Debug("node succeeded", "duration", elapsed)

	return out, nil
}

// nodeName возвращает имя узла для журнала:
// имя из конфигурации, иначе название активности.
func (e *Engine) nodeName(node domain.Node) string {
	if name := node.Name(); name != "" {
		return name
	}
	return e.registry.Label(node.ActivityType)
}

// LastRun возвращает итог последнего завершённого запуска.
func (e *Engine) LastRun() (domain.RunRecord, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.lastRun == nil {
		return domain.RunRecord{}, false
	}
	return *e.lastRun, true
}
