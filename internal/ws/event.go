package ws

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/flowdeck/collab/internal/domain"
)

// Client-to-server event types.
const (
	EventJoinBoard  = "join-board"
	EventLeaveBoard = "leave-board"
	EventTaskMove   = "task-move"
	EventTaskUpdate = "task-update"
	EventTaskCreate = "task-create"
	EventTaskDelete = "task-delete"
)

// Server-to-client event types.
const (
	EventUserJoined  = "user-joined"
	EventUserLeft    = "user-left"
	EventTaskMoved   = "task-moved"
	EventTaskUpdated = "task-updated"
	EventTaskCreated = "task-created"
	EventTaskDeleted = "task-deleted"
)

var ErrInvalidEvent = errors.New("ws: invalid event")

// ClientEvent is an inbound frame from a board client. Which fields are
// required depends on Type; Validate enforces the per-type contract.
type ClientEvent struct {
	Type      string            `json:"type"`
	BoardID   uuid.UUID         `json:"board_id,omitzero"`
	TaskID    uuid.UUID         `json:"task_id,omitzero"`
	NewStatus domain.TaskStatus `json:"new_status,omitempty"`
	Task      *domain.Task      `json:"task,omitempty"`
	Patch     *domain.TaskPatch `json:"patch,omitempty"`
}

// Validate checks the per-type payload contract. The hub drops frames that
// fail validation without broadcasting them.
func (e *ClientEvent) Validate() error {
	switch e.Type {
	case EventJoinBoard, EventLeaveBoard:
		if e.BoardID == uuid.Nil {
			return fmt.Errorf("%w: %s requires board_id", ErrInvalidEvent, e.Type)
		}
	case EventTaskMove:
		if e.TaskID == uuid.Nil {
			return fmt.Errorf("%w: task-move requires task_id", ErrInvalidEvent)
		}
		if !e.NewStatus.Valid() {
			return fmt.Errorf("%w: task-move has unknown status %q", ErrInvalidEvent, e.NewStatus)
		}
	case EventTaskUpdate:
		if e.TaskID == uuid.Nil {
			return fmt.Errorf("%w: task-update requires task_id", ErrInvalidEvent)
		}
		if e.Patch == nil || e.Patch.IsZero() {
			return fmt.Errorf("%w: task-update requires a non-empty patch", ErrInvalidEvent)
		}
		if e.Patch.Status != nil && !e.Patch.Status.Valid() {
			return fmt.Errorf("%w: task-update has unknown status %q", ErrInvalidEvent, *e.Patch.Status)
		}
	case EventTaskCreate:
		if e.Task == nil || e.Task.ID == uuid.Nil {
			return fmt.Errorf("%w: task-create requires a task with id", ErrInvalidEvent)
		}
	case EventTaskDelete:
		if e.TaskID == uuid.Nil {
			return fmt.Errorf("%w: task-delete requires task_id", ErrInvalidEvent)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	return nil
}

// ServerEvent is an outbound frame fanned out to room peers. Every event
// carries the identity of the user whose action produced it.
type ServerEvent struct {
	Type      string            `json:"type"`
	UserID    uuid.UUID         `json:"user_id"`
	UserName  string            `json:"user_name"`
	TaskID    uuid.UUID         `json:"task_id,omitzero"`
	NewStatus domain.TaskStatus `json:"new_status,omitempty"`
	Task      *domain.Task      `json:"task,omitempty"`
	Patch     *domain.TaskPatch `json:"patch,omitempty"`
}

// Rebroadcast maps a validated inbound mutation event to the peer
// notification form, stamped with the sender's identity. Returns nil for
// membership events, which the router emits itself.
func Rebroadcast(e *ClientEvent, userID uuid.UUID, userName string) *ServerEvent {
	out := &ServerEvent{
		UserID:    userID,
		UserName:  userName,
		TaskID:    e.TaskID,
		NewStatus: e.NewStatus,
		Task:      e.Task,
		Patch:     e.Patch,
	}

	switch e.Type {
	case EventTaskMove:
		out.Type = EventTaskMoved
	case EventTaskUpdate:
		out.Type = EventTaskUpdated
	case EventTaskCreate:
		out.Type = EventTaskCreated
	case EventTaskDelete:
		out.Type = EventTaskDeleted
	default:
		return nil
	}

	return out
}
