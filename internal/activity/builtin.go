package activity

import (
	"context"
)

const (
	// TypeStart — точка входа графа.
	TypeStart = "start"

	// TypeEnd — завершающий узел.
	TypeEnd = "end"
)

// StartActivity — точка входа. Передаёт вход дальше без изменений.
type StartActivity struct{}

// NewStartActivity создаёт новый StartActivity.
func NewStartActivity() *StartActivity {
	return &StartActivity{}
}

func (a *StartActivity) Type() string    { return TypeStart }
func (a *StartActivity) Label() string   { return "Start" }
func (a *StartActivity) Fields() []Field { return nil }
func (a *StartActivity) EntryPoint()     {}

// Compute возвращает вход без изменений.
func (a *StartActivity) Compute(ctx context.Context, req *Request) (any, error) {
	return req.Input, nil
}

// EndActivity — завершающий узел. Передаёт вход дальше без изменений.
type EndActivity struct{}

// NewEndActivity создаёт новый EndActivity.
func NewEndActivity() *EndActivity {
	return &EndActivity{}
}

func (a *EndActivity) Type() string    { return TypeEnd }
func (a *EndActivity) Label() string   { return "End" }
func (a *EndActivity) Fields() []Field { return nil }

// Compute возвращает вход без изменений.
func (a *EndActivity) Compute(ctx context.Context, req *Request) (any, error) {
	return req.Input, nil
}
