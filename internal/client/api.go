package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/flowdeck/collab/internal/domain"
)

// TaskAPI is the HTTP client for the collab server's REST task store.
// Stdlib http is deliberate: the REST surface is four endpoints and the
// server side carries the OpenAPI machinery.
type TaskAPI struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewTaskAPI creates a task store client. baseURL is the HTTP base, e.g.
// "http://localhost:8080".
func NewTaskAPI(baseURL, token string) *TaskAPI {
	return &TaskAPI{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *TaskAPI) List(ctx context.Context, boardID uuid.UUID) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := a.do(ctx, http.MethodGet, "/api/v1/tasks?board_id="+boardID.String(), nil, &tasks)
	if err != nil {
		return nil, fmt.Errorf("taskAPI.List: %w", err)
	}
	return tasks, nil
}

// createTaskRequest mirrors the create endpoint's body; the client always
// sends its pre-assigned id so the stored record matches the optimistic
// cache entry and the broadcast event.
type createTaskRequest struct {
	ID          uuid.UUID           `json:"id"`
	BoardID     uuid.UUID           `json:"board_id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Status      domain.TaskStatus   `json:"status,omitempty"`
	Priority    domain.TaskPriority `json:"priority,omitempty"`
	AssignedTo  *uuid.UUID          `json:"assigned_to,omitempty"`
	Labels      []string            `json:"labels,omitempty"`
	StoryPoints *int                `json:"story_points,omitempty"`
	DueDate     *time.Time          `json:"due_date,omitempty"`
}

func (a *TaskAPI) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	req := createTaskRequest{
		ID:          t.ID,
		BoardID:     t.BoardID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		AssignedTo:  t.AssignedTo,
		Labels:      t.Labels,
		StoryPoints: t.StoryPoints,
		DueDate:     t.DueDate,
	}

	var created domain.Task
	if err := a.do(ctx, http.MethodPost, "/api/v1/tasks", req, &created); err != nil {
		return nil, fmt.Errorf("taskAPI.Create: %w", err)
	}
	return &created, nil
}

func (a *TaskAPI) Patch(ctx context.Context, id uuid.UUID, p *domain.TaskPatch) (*domain.Task, error) {
	var updated domain.Task
	if err := a.do(ctx, http.MethodPatch, "/api/v1/tasks/"+id.String(), p, &updated); err != nil {
		return nil, fmt.Errorf("taskAPI.Patch: %w", err)
	}
	return &updated, nil
}

func (a *TaskAPI) Delete(ctx context.Context, id uuid.UUID) error {
	if err := a.do(ctx, http.MethodDelete, "/api/v1/tasks/"+id.String(), nil, nil); err != nil {
		return fmt.Errorf("taskAPI.Delete: %w", err)
	}
	return nil
}

func (a *TaskAPI) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, detail)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
