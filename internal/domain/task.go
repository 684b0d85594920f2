package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusBlocked    TaskStatus = "blocked"
)

// Valid reports whether s is one of the board columns. Board moves are
// unrestricted (any column to any column), so there is no transition table.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone, TaskStatusBlocked:
		return true
	default:
		return false
	}
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	default:
		return false
	}
}

type Task struct {
	ID          uuid.UUID    `json:"id"`
	BoardID     uuid.UUID    `json:"board_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	AssignedTo  *uuid.UUID   `json:"assigned_to,omitempty"`
	Labels      []string     `json:"labels,omitempty"`
	StoryPoints *int         `json:"story_points,omitempty"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedBy   uuid.UUID    `json:"created_by"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Clone returns a deep copy so cached tasks can be handed out without
// aliasing the cache's own record.
func (t *Task) Clone() *Task {
	c := *t
	if t.AssignedTo != nil {
		v := *t.AssignedTo
		c.AssignedTo = &v
	}
	if t.StoryPoints != nil {
		v := *t.StoryPoints
		c.StoryPoints = &v
	}
	if t.DueDate != nil {
		v := *t.DueDate
		c.DueDate = &v
	}
	if t.Labels != nil {
		c.Labels = append([]string(nil), t.Labels...)
	}
	return &c
}

// TaskPatch is a partial task update. Nil fields are left untouched when
// the patch is applied, which is what lets concurrent edits from different
// users merge field-by-field instead of clobbering whole records.
type TaskPatch struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	AssignedTo  *uuid.UUID    `json:"assigned_to,omitempty"`
	Labels      *[]string     `json:"labels,omitempty"`
	StoryPoints *int          `json:"story_points,omitempty"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
}

// IsZero reports whether the patch carries no fields at all.
func (p *TaskPatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.AssignedTo == nil && p.Labels == nil &&
		p.StoryPoints == nil && p.DueDate == nil
}

// Apply merges the patch into t. Only non-nil fields are written.
func (t *Task) Apply(p *TaskPatch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssignedTo != nil {
		v := *p.AssignedTo
		t.AssignedTo = &v
	}
	if p.Labels != nil {
		t.Labels = append([]string(nil), *p.Labels...)
	}
	if p.StoryPoints != nil {
		v := *p.StoryPoints
		t.StoryPoints = &v
	}
	if p.DueDate != nil {
		v := *p.DueDate
		t.DueDate = &v
	}
}

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*Task, error)
	ListByStatus(ctx context.Context, boardID uuid.UUID, status TaskStatus) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}
