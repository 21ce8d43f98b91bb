package activity

import (
	"context"
	"fmt"
)

const (
	// TypeTransform — тип активности трансформации.
	TypeTransform = "transform"

	configMappings = "mappings"
)

// TransformActivity — преобразование входа через Go templates.
//
// Конфигурация:
//
//	{
//	    "mappings": {
//	        "file": "{{ .Input.fullName }}",
//	        "size": "{{ .Input.length }}",
//	        "tag": "{{ upper .Config.tag }}"
//	    }
//	}
//
// Output — результаты рендеринга mappings, JSON-значения распарсены:
//
//	{"file": "report.txt", "size": 5, "tag": "DAILY"}
type TransformActivity struct{}

// NewTransformActivity создаёт новый TransformActivity.
func NewTransformActivity() *TransformActivity {
	return &TransformActivity{}
}

func (a *TransformActivity) Type() string  { return TypeTransform }
func (a *TransformActivity) Label() string { return "Transform" }

// Fields возвращает схему конфигурации.
func (a *TransformActivity) Fields() []Field {
	return []Field{
		{Name: configMappings, Kind: FieldKindObject, Description: "Output key to template mapping"},
	}
}

// Compute рендерит mappings над входом.
func (a *TransformActivity) Compute(ctx context.Context, req *Request) (any, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	default:
	}

	mappings := ConfigMapString(req.Config, configMappings)
	if len(mappings) == 0 {
		return map[string]any{}, nil
	}

	data, err := NewTemplateData(req)
	if err != nil {
		return nil, err
	}

	outputs := make(map[string]any, len(mappings))
	for key, tmpl := range mappings {
		rendered, err := Render(tmpl, data)
		if err != nil {
			return nil, fmt.Errorf("transform %s: %w", key, err)
		}
		outputs[key] = parseValue(rendered)
	}
	return outputs, nil
}
