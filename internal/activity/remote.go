package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultRemoteTimeout = 30 * time.Second
	maxResponseBody      = 10 * 1024 * 1024 // 10 MB

	// remotePathPrefix — путь эндпоинтов сервиса активностей.
	remotePathPrefix = "/api/activities/"
)

// Удалённые типы активностей.
const (
	TypeReadFile    = "readFile"
	TypeWriteFile   = "writeFile"
	TypeDeleteFile  = "deleteFile"
	TypeHTTPRequest = "httpRequest"
	TypeXMLToJSON   = "xmlToJson"
	TypeJSONToXML   = "jsonToXml"
)

// RemoteClient — клиент внешнего сервиса активностей.
//
// Протокол:
//
//	POST <baseURL>/api/activities/<type>
//	{"nodeId": "...", "config": {...}, "input": ...}
//
//	200 {"output": ...}
//	4xx/5xx {"error": "..."}
type RemoteClient struct {
	baseURL string
	client  *http.Client
}

// NewRemoteClient создаёт клиента. Если client == nil, используется
// http.Client с таймаутом 30 секунд.
func NewRemoteClient(baseURL string, client *http.Client) *RemoteClient {
	if client == nil {
		client = &http.Client{Timeout: defaultRemoteTimeout}
	}
	return &RemoteClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type remoteRequest struct {
	NodeID string         `json:"nodeId"`
	Config map[string]any `json:"config"`
	Input  any            `json:"input"`
}

type remoteResponse struct {
	Output any    `json:"output"`
	Error  string `json:"error,omitempty"`
}

// Call вызывает активность activityType во внешнем сервисе.
func (c *RemoteClient) Call(ctx context.Context, activityType string, req *Request) (any, error) {
	payload, err := json.Marshal(remoteRequest{
		NodeID: req.NodeID,
		Config: req.Config,
		Input:  req.Input,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrRemoteCall, err)
	}

	url := c.baseURL + remotePathPrefix + activityType
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrRemoteCall, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrRemoteCall, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrRemoteCall, err)
	}

	var decoded remoteResponse
	decodeErr := json.Unmarshal(body, &decoded)

	if resp.StatusCode >= 400 {
		if decodeErr == nil && decoded.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrRemoteCall, decoded.Error)
		}
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrRemoteCall, resp.StatusCode, truncate(string(body), 200))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrRemoteCall, decodeErr)
	}
	return decoded.Output, nil
}

// RemoteActivity — активность, вычисляемая внешним сервисом.
type RemoteActivity struct {
	activityType string
	label        string
	fields       []Field
	client       *RemoteClient
}

func (a *RemoteActivity) Type() string    { return a.activityType }
func (a *RemoteActivity) Label() string   { return a.label }
func (a *RemoteActivity) Fields() []Field { return a.fields }

// Compute отправляет конфигурацию и вход во внешний сервис.
func (a *RemoteActivity) Compute(ctx context.Context, req *Request) (any, error) {
	return a.client.Call(ctx, a.activityType, req)
}

// RemoteActivities возвращает удалённые активности, работающие через client.
func RemoteActivities(client *RemoteClient) []*RemoteActivity {
	remote := func(typ, label string, fields ...Field) *RemoteActivity {
		return &RemoteActivity{activityType: typ, label: label, fields: fields, client: client}
	}

	return []*RemoteActivity{
		remote(TypeReadFile, "Read File",
			Field{Name: "path", Kind: FieldKindString, Description: "Path of the file to read"},
			Field{Name: "encoding", Kind: FieldKindString, Description: "Text encoding"},
		),
		remote(TypeWriteFile, "Write File",
			Field{Name: "path", Kind: FieldKindString, Description: "Path of the file to write"},
			Field{Name: "content", Kind: FieldKindText, Description: "Content to write"},
			Field{Name: "append", Kind: FieldKindBoolean, Description: "Append instead of overwrite"},
		),
		remote(TypeDeleteFile, "Delete File",
			Field{Name: "path", Kind: FieldKindString, Description: "Path of the file to delete"},
			Field{Name: "recursive", Kind: FieldKindBoolean, Description: "Delete directories recursively"},
		),
		remote(TypeHTTPRequest, "HTTP Request",
			Field{Name: "url", Kind: FieldKindString, Description: "Request URL"},
			Field{Name: "method", Kind: FieldKindString, Description: "HTTP method"},
			Field{Name: "headers", Kind: FieldKindObject, Description: "Request headers"},
			Field{Name: "body", Kind: FieldKindObject, Description: "Request body"},
			Field{Name: "timeoutSec", Kind: FieldKindNumber, Description: "Request timeout in seconds"},
		),
		remote(TypeXMLToJSON, "XML to JSON",
			Field{Name: "xml", Kind: FieldKindText, Description: "XML document"},
		),
		remote(TypeJSONToXML, "JSON to XML",
			Field{Name: "json", Kind: FieldKindObject, Description: "JSON value"},
			Field{Name: "rootElement", Kind: FieldKindString, Description: "Name of the root element"},
		),
	}
}

// RegisterRemote регистрирует удалённые активности сервиса baseURL.
func RegisterRemote(r *Registry, baseURL string) {
	client := NewRemoteClient(baseURL, nil)
	for _, a := range RemoteActivities(client) {
		r.Register(a)
	}
}

// truncate обрезает строку до указанной длины.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
