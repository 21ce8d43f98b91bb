package activity

import (
	"context"
	"fmt"
	"time"
)

const (
	// TypeDelay — тип активности задержки.
	TypeDelay = "delay"

	configDurationSec = "durationSec"
	configDurationMs  = "durationMs"
)

// DelayActivity — задержка.
//
// Приостанавливает выполнение ветки и передаёт вход дальше без изменений.
// Прерывается отменой контекста.
//
// Конфигурация:
//
//	{
//	    "durationSec": 10,    // задержка в секундах
//	    // или
//	    "durationMs": 5000    // задержка в миллисекундах
//	}
type DelayActivity struct{}

// NewDelayActivity создаёт новый DelayActivity.
func NewDelayActivity() *DelayActivity {
	return &DelayActivity{}
}

func (a *DelayActivity) Type() string  { return TypeDelay }
func (a *DelayActivity) Label() string { return "Delay" }

// Fields возвращает схему конфигурации.
func (a *DelayActivity) Fields() []Field {
	return []Field{
		{Name: configDurationSec, Kind: FieldKindNumber, Description: "Delay in seconds"},
		{Name: configDurationMs, Kind: FieldKindNumber, Description: "Delay in milliseconds"},
	}
}

// Compute ждёт заданное время.
func (a *DelayActivity) Compute(ctx context.Context, req *Request) (any, error) {
	duration, err := parseDuration(req.Config)
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	case <-timer.C:
		return req.Input, nil
	}
}

// parseDuration извлекает длительность из конфигурации.
func parseDuration(config map[string]any) (time.Duration, error) {
	if sec := ConfigInt(config, configDurationSec); sec > 0 {
		return time.Duration(sec) * time.Second, nil
	}
	if ms := ConfigInt(config, configDurationMs); ms > 0 {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return 0, fmt.Errorf("%w: %s: durationSec or durationMs required",
		ErrInvalidConfig, TypeDelay)
}
