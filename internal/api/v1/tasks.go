package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/flowdeck/collab/internal/domain"
	"github.com/flowdeck/collab/internal/server/middleware"
)

type CreateTaskInput struct {
	Body struct {
		ID          *uuid.UUID `json:"id,omitempty" doc:"Client-assigned task ID; generated when absent"`
		BoardID     uuid.UUID  `json:"board_id" doc:"Board ID"`
		Title       string     `json:"title" minLength:"1" maxLength:"500" doc:"Task title"`
		Description string     `json:"description,omitempty" doc:"Task description"`
		Status      string     `json:"status,omitempty" doc:"Initial column (defaults to todo)"`
		Priority    string     `json:"priority,omitempty" doc:"Priority (defaults to medium)"`
		AssignedTo  *uuid.UUID `json:"assigned_to,omitempty" doc:"Assigned user ID"`
		Labels      []string   `json:"labels,omitempty" doc:"Labels"`
		StoryPoints *int       `json:"story_points,omitempty" doc:"Story points"`
		DueDate     *time.Time `json:"due_date,omitempty" doc:"Due date"`
	}
}

type CreateTaskOutput struct {
	Body *domain.Task
}

type ListTasksInput struct {
	BoardID uuid.UUID `query:"board_id" required:"true" doc:"Board ID"`
	Status  string    `query:"status" doc:"Filter by status"`
}

type ListTasksOutput struct {
	Body []*domain.Task
}

type GetTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

type GetTaskOutput struct {
	Body *domain.Task
}

type PatchTaskInput struct {
	ID   uuid.UUID        `path:"id" doc:"Task ID"`
	Body domain.TaskPatch `doc:"Fields to merge; absent fields are untouched"`
}

type PatchTaskOutput struct {
	Body *domain.Task
}

type DeleteTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

func RegisterTaskRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "create-task",
		Method:      http.MethodPost,
		Path:        "/tasks",
		Summary:     "Create a new task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CreateTaskInput) (*CreateTaskOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}
		if input.Body.BoardID == uuid.Nil {
			return nil, huma.Error400BadRequest("board_id is required")
		}

		status := domain.TaskStatusTodo
		if input.Body.Status != "" {
			status = domain.TaskStatus(input.Body.Status)
			if !status.Valid() {
				return nil, huma.Error400BadRequest("unknown task status: " + input.Body.Status)
			}
		}

		priority := domain.TaskPriorityMedium
		if input.Body.Priority != "" {
			priority = domain.TaskPriority(input.Body.Priority)
			if !priority.Valid() {
				return nil, huma.Error400BadRequest("unknown task priority: " + input.Body.Priority)
			}
		}

		// Sync clients assign the id before the create call so the
		// optimistic cache entry and the broadcast event agree with the
		// stored record.
		id := uuid.New()
		if input.Body.ID != nil && *input.Body.ID != uuid.Nil {
			id = *input.Body.ID
		}

		now := time.Now()
		t := &domain.Task{
			ID:          id,
			BoardID:     input.Body.BoardID,
			Title:       input.Body.Title,
			Description: input.Body.Description,
			Status:      status,
			Priority:    priority,
			AssignedTo:  input.Body.AssignedTo,
			Labels:      input.Body.Labels,
			StoryPoints: input.Body.StoryPoints,
			DueDate:     input.Body.DueDate,
			CreatedBy:   userID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := store.Tasks().Create(ctx, t); err != nil {
			return nil, huma.Error500InternalServerError("failed to create task", err)
		}

		return &CreateTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks for a board",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *ListTasksInput) (*ListTasksOutput, error) {
		if _, ok := middleware.UserIDFromContext(ctx); !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		if input.Status != "" {
			status := domain.TaskStatus(input.Status)
			if !status.Valid() {
				return nil, huma.Error400BadRequest("unknown task status: " + input.Status)
			}
			tasks, err := store.Tasks().ListByStatus(ctx, input.BoardID, status)
			if err != nil {
				return nil, huma.Error500InternalServerError("failed to list tasks", err)
			}
			return &ListTasksOutput{Body: tasks}, nil
		}

		tasks, err := store.Tasks().ListByBoard(ctx, input.BoardID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}

		return &ListTasksOutput{Body: tasks}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get a task by ID",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *GetTaskInput) (*GetTaskOutput, error) {
		if _, ok := middleware.UserIDFromContext(ctx); !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		t, err := store.Tasks().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}

		return &GetTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "patch-task",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}",
		Summary:     "Merge a partial update into a task",
		Description: "Absent fields are left untouched. Status changes move the task between board columns.",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *PatchTaskInput) (*PatchTaskOutput, error) {
		if _, ok := middleware.UserIDFromContext(ctx); !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		if input.Body.IsZero() {
			return nil, huma.Error400BadRequest("empty patch")
		}
		if input.Body.Status != nil && !input.Body.Status.Valid() {
			return nil, huma.Error400BadRequest("unknown task status: " + string(*input.Body.Status))
		}
		if input.Body.Priority != nil && !input.Body.Priority.Valid() {
			return nil, huma.Error400BadRequest("unknown task priority: " + string(*input.Body.Priority))
		}

		existing, err := store.Tasks().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}

		existing.Apply(&input.Body)
		existing.UpdatedAt = time.Now()

		if err := store.Tasks().Update(ctx, existing); err != nil {
			return nil, huma.Error500InternalServerError("failed to update task", err)
		}

		return &PatchTaskOutput{Body: existing}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}",
		Summary:     "Delete a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *DeleteTaskInput) (*struct{}, error) {
		if _, ok := middleware.UserIDFromContext(ctx); !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		if err := store.Tasks().Delete(ctx, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete task", err)
		}

		return nil, nil
	})
}
