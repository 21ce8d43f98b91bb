package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shaiso/Flowcraft/internal/domain"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// WorkflowResponse — workflow из API.
type WorkflowResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Nodes       int    `json:"nodes"`
	Connections int    `json:"connections"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// RunStateResponse — состояние выполнения на сервере.
type RunStateResponse struct {
	Running bool              `json:"running"`
	LastRun *domain.RunRecord `json:"last_run,omitempty"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Flowcraft API.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// runClient — без таймаута: синхронный запуск длится столько, сколько граф.
	runClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		runClient: &http.Client{},
	}
}

// --- Graph ---

// GetGraph возвращает документ графа сервера.
func (c *Client) GetGraph() (*domain.Document, error) {
	var doc domain.Document
	err := c.get("/api/v1/graph", &doc)
	return &doc, err
}

// PutGraph заменяет граф сервера документом.
func (c *Client) PutGraph(doc *domain.Document) (*domain.Document, error) {
	var result domain.Document
	err := c.put("/api/v1/graph", doc, &result)
	return &result, err
}

// ClearGraph удаляет все узлы и рёбра на сервере.
func (c *Client) ClearGraph() error {
	return c.delete("/api/v1/graph")
}

// --- Runs ---

// StartRun запускает граф сервера и ждёт итога.
func (c *Client) StartRun() (*domain.RunRecord, error) {
	var run domain.RunRecord
	err := c.doData(c.runClient, http.MethodPost, "/api/v1/run?wait=true", nil, &run)
	return &run, err
}

// GetRunState возвращает состояние выполнения.
func (c *Client) GetRunState() (*RunStateResponse, error) {
	var state RunStateResponse
	err := c.get("/api/v1/run", &state)
	return &state, err
}

// ListEvents возвращает журнал событий последнего запуска.
func (c *Client) ListEvents() ([]domain.Event, error) {
	var events []domain.Event
	err := c.list("/api/v1/events", nil, &events)
	return events, err
}

// --- Workflows ---

// ListWorkflows возвращает сохранённые workflows.
func (c *Client) ListWorkflows() ([]WorkflowResponse, error) {
	var workflows []WorkflowResponse
	err := c.list("/api/v1/workflows", nil, &workflows)
	return workflows, err
}

// SaveWorkflow сохраняет граф сервера как новый workflow.
func (c *Client) SaveWorkflow(name string) (*WorkflowResponse, error) {
	body := map[string]string{"name": name}
	var wf WorkflowResponse
	err := c.post("/api/v1/workflows", body, &wf)
	return &wf, err
}

// LoadWorkflow загружает workflow в граф сервера.
func (c *Client) LoadWorkflow(id string) (*domain.Document, error) {
	var doc domain.Document
	err := c.post("/api/v1/workflows/"+id+"/load", nil, &doc)
	return &doc, err
}

// DeleteWorkflow удаляет workflow.
func (c *Client) DeleteWorkflow(id string) error {
	return c.delete("/api/v1/workflows/" + id)
}

// ListWorkflowRuns возвращает историю запусков workflow.
func (c *Client) ListWorkflowRuns(id string, limit int) ([]domain.RunRecord, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var runs []domain.RunRecord
	err := c.list("/api/v1/workflows/"+id+"/runs", params, &runs)
	return runs, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(c.httpClient, http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(c.httpClient, http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(c.httpClient, http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(c.httpClient, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(c.httpClient, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(hc *http.Client, method, path string, body any, result any) error {
	resp, err := c.do(hc, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(hc *http.Client, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return hc.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
