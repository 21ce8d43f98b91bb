package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workflow — сохранённый граф.
//
// Workflow — это именованный документ графа. Загрузка workflow заменяет
// граф в памяти целиком; запуск (RunRecord) может ссылаться на workflow,
// из которого граф был загружен.
type Workflow struct {
	// ID — уникальный идентификатор workflow.
	ID uuid.UUID `json:"id"`

	// Name — уникальное имя (например, "invoice-export").
	Name string `json:"name"`

	// Document — граф: узлы и рёбра.
	Document Document `json:"document"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего сохранения документа.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewWorkflow создаёт workflow с новым ID.
func NewWorkflow(name string, doc Document) *Workflow {
	now := time.Now()
	return &Workflow{
		ID:        uuid.New(),
		Name:      name,
		Document:  doc,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
