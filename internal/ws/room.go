package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Router maps each session to at most one board room and fans events out
// to room peers. Membership and presence change together under one lock so
// a disconnect can never leave a session half-registered.
type Router struct {
	ctx        context.Context
	instanceID uuid.UUID
	presence   *Presence
	backplane  Backplane

	mu      sync.Mutex
	rooms   map[uuid.UUID]map[*Session]struct{}
	joined  map[*Session]uuid.UUID
	cancels map[uuid.UUID]context.CancelFunc
}

// NewRouter creates a router. ctx bounds the lifetime of backplane
// subscriptions; backplane may be nil for single-instance deployments.
func NewRouter(ctx context.Context, presence *Presence, backplane Backplane) *Router {
	return &Router{
		ctx:        ctx,
		instanceID: uuid.New(),
		presence:   presence,
		backplane:  backplane,
		rooms:      make(map[uuid.UUID]map[*Session]struct{}),
		joined:     make(map[*Session]uuid.UUID),
		cancels:    make(map[uuid.UUID]context.CancelFunc),
	}
}

// Join binds the session to the board's room and notifies existing members
// when the user becomes present. A session already bound elsewhere is
// unbound first; switching boards is modeled as leave-then-join.
func (r *Router) Join(s *Session, boardID uuid.UUID) {
	r.Leave(s)

	r.mu.Lock()
	room, ok := r.rooms[boardID]
	if !ok {
		room = make(map[*Session]struct{})
		r.rooms[boardID] = room
		r.watchBackplane(boardID)
	}
	room[s] = struct{}{}
	r.joined[s] = boardID
	r.mu.Unlock()

	if r.presence.Add(boardID, s.userID) {
		// The joiner is excluded: it never receives its own join.
		r.fanOut(boardID, s, &ServerEvent{
			Type:     EventUserJoined,
			UserID:   s.userID,
			UserName: s.userName,
		})
	}
}

// Leave unbinds the session from its room and notifies remaining members
// when the user becomes absent. No-op for unbound sessions, so transport
// disconnects and graceful leaves share this one cleanup path.
func (r *Router) Leave(s *Session) {
	r.mu.Lock()
	boardID, ok := r.joined[s]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.joined, s)

	room := r.rooms[boardID]
	delete(room, s)
	if len(room) == 0 {
		delete(r.rooms, boardID)
		if cancel, watching := r.cancels[boardID]; watching {
			cancel()
			delete(r.cancels, boardID)
		}
	}
	r.mu.Unlock()

	if r.presence.Remove(boardID, s.userID) {
		r.fanOut(boardID, s, &ServerEvent{
			Type:     EventUserLeft,
			UserID:   s.userID,
			UserName: s.userName,
		})
	}
}

// Broadcast delivers ev to every other session in the sender's room. The
// sender never receives its own event back. Events from unbound sessions
// are dropped.
func (r *Router) Broadcast(sender *Session, ev *ServerEvent) {
	r.mu.Lock()
	boardID, ok := r.joined[sender]
	r.mu.Unlock()
	if !ok {
		log.Debug().
			Str("user_id", sender.userID.String()).
			Str("event", ev.Type).
			Msg("broadcast from unjoined session dropped")
		return
	}

	r.fanOut(boardID, sender, ev)
}

// Users returns the user ids currently present on the board.
func (r *Router) Users(boardID uuid.UUID) []uuid.UUID {
	return r.presence.Users(boardID)
}

func (r *Router) fanOut(boardID uuid.UUID, except *Session, ev *ServerEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event", ev.Type).Msg("event marshal")
		return
	}

	r.deliverLocal(boardID, payload, except)

	if r.backplane == nil {
		return
	}
	frame, err := json.Marshal(backplaneFrame{Origin: r.instanceID, Event: payload})
	if err != nil {
		log.Error().Err(err).Msg("backplane frame marshal")
		return
	}
	if err := r.backplane.Publish(r.ctx, boardID, frame); err != nil {
		log.Warn().Err(err).Str("board_id", boardID.String()).Msg("backplane publish")
	}
}

func (r *Router) deliverLocal(boardID uuid.UUID, payload []byte, except *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for peer := range r.rooms[boardID] {
		if peer == except {
			continue
		}
		peer.Deliver(payload)
	}
}

// watchBackplane subscribes to the board's channel for the lifetime of the
// room and re-delivers frames published by other instances. Caller holds
// r.mu.
func (r *Router) watchBackplane(boardID uuid.UUID) {
	if r.backplane == nil {
		return
	}

	ctx, cancel := context.WithCancel(r.ctx)
	r.cancels[boardID] = cancel

	go func() {
		messages, cleanup, err := r.backplane.Subscribe(ctx, boardID)
		if err != nil {
			log.Error().Err(err).Str("board_id", boardID.String()).Msg("backplane subscribe")
			return
		}
		defer cleanup()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var frame backplaneFrame
				if err := json.Unmarshal(msg, &frame); err != nil {
					log.Debug().Err(err).Msg("backplane frame decode")
					continue
				}
				if frame.Origin == r.instanceID {
					continue
				}
				r.deliverLocal(boardID, frame.Event, nil)
			}
		}
	}()
}
