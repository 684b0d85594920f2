package client

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/flowdeck/collab/internal/domain"
	"github.com/flowdeck/collab/internal/ws"
)

// TaskCache is the local task cache a board view renders from. All writes
// go through the BoardClient (local mutations, remote events, full
// reloads); rendering code only reads snapshots. Tasks are cloned on the
// way in and out so callers can never alias cache internals.
type TaskCache struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*domain.Task
}

func NewTaskCache() *TaskCache {
	return &TaskCache{tasks: make(map[uuid.UUID]*domain.Task)}
}

// Load replaces the cache contents, e.g. after a full reload from the
// task store.
func (c *TaskCache) Load(tasks []*domain.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tasks = make(map[uuid.UUID]*domain.Task, len(tasks))
	for _, t := range tasks {
		c.tasks[t.ID] = t.Clone()
	}
}

// Put inserts or replaces a task.
func (c *TaskCache) Put(t *domain.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks[t.ID] = t.Clone()
}

// Get returns a copy of the task, if cached.
func (c *TaskCache) Get(id uuid.UUID) (*domain.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tasks[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Remove deletes a task. Unknown ids are no-ops.
func (c *TaskCache) Remove(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tasks, id)
}

// Patch merges a partial update into the task. Returns false when the
// task is not cached.
func (c *TaskCache) Patch(id uuid.UUID, p *domain.TaskPatch) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tasks[id]
	if !ok {
		return false
	}
	t.Apply(p)
	return true
}

// SetStatus moves the task to another column, touching nothing else.
// Returns false when the task is not cached.
func (c *TaskCache) SetStatus(id uuid.UUID, status domain.TaskStatus) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tasks[id]
	if !ok {
		return false
	}
	t.Status = status
	return true
}

// Len returns the number of cached tasks.
func (c *TaskCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tasks)
}

// Snapshot returns copies of all cached tasks, in no particular order.
func (c *TaskCache) Snapshot() []*domain.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*domain.Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		out = append(out, t.Clone())
	}
	return out
}

// ApplyRemote reconciles a peer's mutation event into the cache. Events
// for unknown task ids are dropped (the next full reload converges);
// arrival order wins when peers race.
func (c *TaskCache) ApplyRemote(ev *ws.ServerEvent) {
	switch ev.Type {
	case ws.EventTaskCreated:
		if ev.Task == nil {
			return
		}
		c.Put(ev.Task)
	case ws.EventTaskUpdated:
		if ev.Patch == nil {
			return
		}
		if !c.Patch(ev.TaskID, ev.Patch) {
			log.Debug().Str("task_id", ev.TaskID.String()).Msg("update for unknown task dropped")
		}
	case ws.EventTaskMoved:
		if !c.SetStatus(ev.TaskID, ev.NewStatus) {
			log.Debug().Str("task_id", ev.TaskID.String()).Msg("move for unknown task dropped")
		}
	case ws.EventTaskDeleted:
		c.Remove(ev.TaskID)
	}
}
