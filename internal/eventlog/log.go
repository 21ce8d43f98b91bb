package eventlog

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Flowcraft/internal/domain"
	"github.com/shaiso/Flowcraft/internal/telemetry"
)

// defaultBufferSize — буфер подписки, если не задан.
const defaultBufferSize = 100

// Observer получает каждое событие сразу после записи.
// Вызывается синхронно, в порядке записи: не должен блокироваться надолго.
type Observer interface {
	OnEvent(event domain.Event)
}

// ObserverFunc — адаптер функции к Observer.
type ObserverFunc func(event domain.Event)

// OnEvent вызывает f(event).
func (f ObserverFunc) OnEvent(event domain.Event) {
	f(event)
}

// Log — журнал событий выполнения графа.
//
// Записи только добавляются, порядок записи сохраняется.
// Потокобезопасен.
type Log struct {
	// appendMu сериализует Append целиком, включая уведомление наблюдателей.
	appendMu sync.Mutex

	mu          sync.RWMutex
	entries     []domain.Event
	observers   []Observer
	subscribers map[uint64]*subscription
	nextSubID   uint64

	metrics *telemetry.Metrics
	now     func() time.Time
	newID   func() string
}

type subscription struct {
	ch   chan domain.Event
	once sync.Once
}

func (s *subscription) close() {
	s.once.Do(func() { close(s.ch) })
}

// Option — опция создания журнала.
type Option func(*Log)

// WithMetrics включает учёт событий в метриках.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(l *Log) {
		l.metrics = m
	}
}

// WithClock задаёт источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

// New создаёт пустой журнал.
func New(opts ...Option) *Log {
	l := &Log{
		subscribers: make(map[uint64]*subscription),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append добавляет запись и возвращает её.
func (l *Log) Append(nodeID, nodeName string, status domain.EventStatus, message string, details any) domain.Event {
	l.appendMu.Lock()
	defer l.appendMu.Unlock()

	event := domain.Event{
		ID:        l.newID(),
		NodeID:    nodeID,
		NodeName:  nodeName,
		Timestamp: l.now(),
		Status:    status,
		Message:   message,
		Details:   details,
	}

	l.mu.Lock()
	l.entries = append(l.entries, event)
	observers := slices.Clone(l.observers)
	for _, sub := range l.subscribers {
		select {
		case sub.ch <- event:
		default:
			l.metrics.ObserveDropped()
		}
	}
	l.mu.Unlock()

	l.metrics.ObserveEvent(status.String())

	for _, o := range observers {
		o.OnEvent(event)
	}
	return event
}

// System добавляет событие уровня графа.
func (l *Log) System(status domain.EventStatus, message string) domain.Event {
	return l.Append(domain.SystemNodeID, domain.SystemNodeName, status, message, nil)
}

// Entries возвращает копию всех записей в порядке добавления.
func (l *Log) Entries() []domain.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.entries)
}

// Len возвращает количество записей.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Clear удаляет все записи. Подписки и наблюдатели сохраняются.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// AddObserver регистрирует наблюдателя.
func (l *Log) AddObserver(o Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, o)
}

// Subscribe создаёт подписку на новые записи.
//
// Если буфер подписчика полон, запись для него теряется:
// медленный подписчик не задерживает запуск.
// Канал закрывается вызовом cancel или по отмене ctx.
func (l *Log) Subscribe(ctx context.Context, buffer int) (<-chan domain.Event, func()) {
	if buffer <= 0 {
		buffer = defaultBufferSize
	}

	sub := &subscription{ch: make(chan domain.Event, buffer)}

	l.mu.Lock()
	id := l.nextSubID
	l.nextSubID++
	l.subscribers[id] = sub
	l.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subscribers, id)
			l.mu.Unlock()
			sub.close()
			close(done)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	return sub.ch, cancel
}
