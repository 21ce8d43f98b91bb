package api

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shaiso/Flowcraft/internal/activity"
	"github.com/shaiso/Flowcraft/internal/domain"
	"github.com/shaiso/Flowcraft/internal/engine"
	"github.com/shaiso/Flowcraft/internal/eventlog"
	"github.com/shaiso/Flowcraft/internal/graph"
	"github.com/shaiso/Flowcraft/internal/lineage"
	"github.com/shaiso/Flowcraft/internal/telemetry"
)

// WorkflowStore — хранилище сохранённых графов (реализуется repo.WorkflowRepo).
type WorkflowStore interface {
	Create(ctx context.Context, wf *domain.Workflow) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Workflow, error)
	List(ctx context.Context) ([]domain.Workflow, error)
	Update(ctx context.Context, wf *domain.Workflow) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RunStore — история запусков (реализуется repo.RunRepo).
type RunStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RunRecord, error)
	ListByWorkflow(ctx context.Context, workflowID uuid.UUID, limit int) ([]domain.RunRecord, error)
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	store    *graph.Store
	registry *activity.Registry
	engine   *engine.Engine
	log      *eventlog.Log
	resolver *lineage.Resolver

	workflows WorkflowStore
	runs      RunStore

	onRunFinished func(ctx context.Context, run domain.RunRecord)

	metrics *telemetry.Metrics
	logger  *slog.Logger

	// baseCtx — контекст запусков: живёт дольше запроса, отменяется при остановке сервера.
	baseCtx context.Context

	// workflowID — workflow, из которого загружен текущий граф.
	workflowID atomic.Pointer[uuid.UUID]
}

// Config — конфигурация для создания Handler.
type Config struct {
	Store    *graph.Store
	Registry *activity.Registry
	Engine   *engine.Engine
	Log      *eventlog.Log
	Resolver *lineage.Resolver

	// Workflows и Runs — опционально. Без них маршруты
	// /workflows и /runs не регистрируются.
	Workflows WorkflowStore
	Runs      RunStore

	// OnRunFinished вызывается после каждого запуска, начатого через API
	// (архивирование, публикация в RabbitMQ). Опционально.
	OnRunFinished func(ctx context.Context, run domain.RunRecord)

	Metrics *telemetry.Metrics
	Logger  *slog.Logger

	// BaseContext — контекст фоновых запусков. По умолчанию context.Background().
	BaseContext context.Context
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	baseCtx := cfg.BaseContext
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = lineage.NewResolver(cfg.Store, cfg.Registry)
	}

	return &Handler{
		store:         cfg.Store,
		registry:      cfg.Registry,
		engine:        cfg.Engine,
		log:           cfg.Log,
		resolver:      resolver,
		workflows:     cfg.Workflows,
		runs:          cfg.Runs,
		onRunFinished: cfg.OnRunFinished,
		metrics:       cfg.Metrics,
		logger:        logger,
		baseCtx:       baseCtx,
	}
}

// currentWorkflowID возвращает workflow текущего графа, если он загружен из хранилища.
func (h *Handler) currentWorkflowID() *uuid.UUID {
	return h.workflowID.Load()
}

// setCurrentWorkflow запоминает workflow текущего графа. nil — граф не связан с workflow.
func (h *Handler) setCurrentWorkflow(id *uuid.UUID) {
	h.workflowID.Store(id)
}
