package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/flowdeck/collab/internal/domain"
	"github.com/flowdeck/collab/internal/ws"
)

// TaskService is the persistent task store the client dual-writes against.
// *TaskAPI satisfies this interface.
type TaskService interface {
	List(ctx context.Context, boardID uuid.UUID) ([]*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	Patch(ctx context.Context, id uuid.UUID, p *domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Toaster receives the transient peer-activity notifications a board view
// surfaces to its user.
type Toaster interface {
	Toast(message string)
}

// ToastFunc adapts a function to the Toaster interface.
type ToastFunc func(string)

func (f ToastFunc) Toast(message string) { f(message) }

// Options configures a BoardClient.
type Options struct {
	// ServerURL is the collab server base URL, e.g. "ws://localhost:8080".
	ServerURL string
	// Token is the bearer token for the connection and, when Store is a
	// TaskAPI, for persistence calls.
	Token    string
	BoardID  uuid.UUID
	UserID   uuid.UUID
	UserName string
	// Store is the persistent task store; nil disables persistence and
	// the initial load (events only).
	Store TaskService
	// Toasts receives peer-activity notifications; nil disables them.
	Toasts Toaster
}

// BoardClient owns one board view's connection: it warms the local cache
// from the task store, emits local mutations, and reconciles peer events.
// Create one per mounted board view and Close it on every exit path so
// peers see the leave and presence does not drift.
type BoardClient struct {
	opts  Options
	conn  *websocket.Conn
	cache *TaskCache

	writeMu sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// Dial loads the board's tasks, opens the socket, and joins the board
// room. The returned client is receiving peer events as soon as Dial
// returns.
func Dial(ctx context.Context, opts Options) (*BoardClient, error) {
	if opts.ServerURL == "" {
		return nil, errors.New("client.Dial: ServerURL is required")
	}
	if opts.BoardID == uuid.Nil || opts.UserID == uuid.Nil {
		return nil, errors.New("client.Dial: BoardID and UserID are required")
	}

	cache := NewTaskCache()
	if opts.Store != nil {
		tasks, err := opts.Store.List(ctx, opts.BoardID)
		if err != nil {
			return nil, fmt.Errorf("client.Dial: initial load: %w", err)
		}
		cache.Load(tasks)
	}

	header := http.Header{}
	if opts.Token != "" {
		header.Set("Authorization", "Bearer "+opts.Token)
	}
	conn, _, err := websocket.Dial(ctx, opts.ServerURL+"/ws/board", &websocket.DialOptions{
		HTTPHeader: header,
	})
	if err != nil {
		return nil, fmt.Errorf("client.Dial: %w", err)
	}

	c := &BoardClient{
		opts:  opts,
		conn:  conn,
		cache: cache,
		done:  make(chan struct{}),
	}

	if err := c.emit(ctx, &ws.ClientEvent{Type: ws.EventJoinBoard, BoardID: opts.BoardID}); err != nil {
		_ = conn.CloseNow()
		return nil, fmt.Errorf("client.Dial: join: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.readLoop(runCtx)

	return c, nil
}

// Cache returns the local task cache for rendering.
func (c *BoardClient) Cache() *TaskCache { return c.cache }

// CreateTask applies the task optimistically, broadcasts it, then
// persists it. A persistence error is returned for the caller's UI; the
// optimistic state and the already-broadcast event stand either way.
func (c *BoardClient) CreateTask(ctx context.Context, t *domain.Task) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.BoardID == uuid.Nil {
		t.BoardID = c.opts.BoardID
	}
	if t.CreatedBy == uuid.Nil {
		t.CreatedBy = c.opts.UserID
	}
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	c.cache.Put(t)
	c.emitLogged(ctx, &ws.ClientEvent{Type: ws.EventTaskCreate, Task: t})

	if c.opts.Store == nil {
		return nil
	}
	if _, err := c.opts.Store.Create(ctx, t); err != nil {
		return fmt.Errorf("client.CreateTask: persist: %w", err)
	}
	return nil
}

// UpdateTask merges the patch optimistically, broadcasts it, then
// persists it.
func (c *BoardClient) UpdateTask(ctx context.Context, id uuid.UUID, p *domain.TaskPatch) error {
	if p == nil || p.IsZero() {
		return errors.New("client.UpdateTask: empty patch")
	}

	c.cache.Patch(id, p)
	c.emitLogged(ctx, &ws.ClientEvent{Type: ws.EventTaskUpdate, TaskID: id, Patch: p})

	if c.opts.Store == nil {
		return nil
	}
	if _, err := c.opts.Store.Patch(ctx, id, p); err != nil {
		return fmt.Errorf("client.UpdateTask: persist: %w", err)
	}
	return nil
}

// MoveTask changes the task's column optimistically, broadcasts the move,
// then persists it.
func (c *BoardClient) MoveTask(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error {
	if !status.Valid() {
		return fmt.Errorf("client.MoveTask: unknown status %q", status)
	}

	c.cache.SetStatus(id, status)
	c.emitLogged(ctx, &ws.ClientEvent{Type: ws.EventTaskMove, TaskID: id, NewStatus: status})

	if c.opts.Store == nil {
		return nil
	}
	if _, err := c.opts.Store.Patch(ctx, id, &domain.TaskPatch{Status: &status}); err != nil {
		return fmt.Errorf("client.MoveTask: persist: %w", err)
	}
	return nil
}

// DeleteTask removes the task optimistically, broadcasts the delete, then
// persists it.
func (c *BoardClient) DeleteTask(ctx context.Context, id uuid.UUID) error {
	c.cache.Remove(id)
	c.emitLogged(ctx, &ws.ClientEvent{Type: ws.EventTaskDelete, TaskID: id})

	if c.opts.Store == nil {
		return nil
	}
	if err := c.opts.Store.Delete(ctx, id); err != nil {
		return fmt.Errorf("client.DeleteTask: persist: %w", err)
	}
	return nil
}

// Close leaves the board and closes the connection. Safe to call from any
// exit path; only the first call does the work.
func (c *BoardClient) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		// Best-effort: peers should see the leave even though the close
		// alone would clean up server-side.
		c.emitLogged(ctx, &ws.ClientEvent{Type: ws.EventLeaveBoard, BoardID: c.opts.BoardID})

		err := c.conn.Close(websocket.StatusNormalClosure, "leaving board")
		c.cancel()
		<-c.done

		if err != nil {
			c.closeErr = fmt.Errorf("client.Close: %w", err)
		}
	})
	return c.closeErr
}

func (c *BoardClient) emit(ctx context.Context, ev *ws.ClientEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.Type, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.Write(ctx, websocket.MessageText, payload); err != nil {
		return fmt.Errorf("write %s: %w", ev.Type, err)
	}
	return nil
}

// emitLogged sends best-effort: a broadcast failure must not stop the
// independent persistence call that follows it.
func (c *BoardClient) emitLogged(ctx context.Context, ev *ws.ClientEvent) {
	if err := c.emit(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", ev.Type).Msg("emit failed")
	}
}

func (c *BoardClient) readLoop(ctx context.Context) {
	defer close(c.done)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			log.Debug().Err(err).Str("board_id", c.opts.BoardID.String()).Msg("client read")
			return
		}

		var ev ws.ServerEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Debug().Err(err).Msg("client event decode")
			continue
		}

		// Origin guard: drop anything this user produced, whether it is a
		// server echo or another tab on the same board. Defense-in-depth
		// on top of the server's sender exclusion.
		if ev.UserID == c.opts.UserID {
			continue
		}

		c.cache.ApplyRemote(&ev)
		c.toast(&ev)
	}
}

func (c *BoardClient) toast(ev *ws.ServerEvent) {
	if c.opts.Toasts == nil {
		return
	}

	name := ev.UserName
	if name == "" {
		name = "Someone"
	}

	switch ev.Type {
	case ws.EventTaskMoved:
		c.opts.Toasts.Toast(fmt.Sprintf("%s moved a task to %s", name, ev.NewStatus))
	case ws.EventTaskUpdated:
		c.opts.Toasts.Toast(fmt.Sprintf("%s updated a task", name))
	case ws.EventTaskCreated:
		if ev.Task != nil {
			c.opts.Toasts.Toast(fmt.Sprintf("%s created %q", name, ev.Task.Title))
		}
	case ws.EventTaskDeleted:
		c.opts.Toasts.Toast(fmt.Sprintf("%s deleted a task", name))
	case ws.EventUserJoined:
		c.opts.Toasts.Toast(fmt.Sprintf("%s joined the board", name))
	case ws.EventUserLeft:
		c.opts.Toasts.Toast(fmt.Sprintf("%s left the board", name))
	}
}
