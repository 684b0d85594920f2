package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"github.com/flowdeck/collab/internal/server/middleware"
)

// Hub accepts board WebSocket connections and dispatches their events
// through the Router. It holds no state of its own beyond the router;
// per-connection state lives in the Session.
type Hub struct {
	router *Router
}

func NewHub(router *Router) *Hub {
	return &Hub{router: router}
}

// Router exposes the room router, mainly so REST handlers can read
// presence.
func (h *Hub) Router() *Router { return h.router }

// ServeBoard handles one board client connection. Identity comes from the
// auth middleware; the room binding comes from join-board events on the
// socket. The connection lifecycle is CONNECTING, JOINED, then LEFT or
// DISCONNECTED; both exits run the same router cleanup.
func (h *Hub) ServeBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user identity", http.StatusUnauthorized)
		return
	}
	userName, _ := middleware.UserNameFromContext(r.Context())

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sess := newSession(userID, userName)
	go sess.writePump(ctx, conn)

	// Transport disconnect must clean up exactly like a graceful leave.
	defer h.router.Leave(sess)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			log.Debug().Err(err).Str("user_id", userID.String()).Msg("websocket read")
			return
		}

		var ev ClientEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Debug().Err(err).Str("user_id", userID.String()).Msg("event decode, frame dropped")
			continue
		}
		if err := ev.Validate(); err != nil {
			log.Debug().Err(err).Str("user_id", userID.String()).Msg("event rejected, frame dropped")
			continue
		}

		switch ev.Type {
		case EventJoinBoard:
			h.router.Join(sess, ev.BoardID)
		case EventLeaveBoard:
			h.router.Leave(sess)
		default:
			// The server attaches identity and re-emits; it neither
			// validates payload contents against the store nor persists.
			out := Rebroadcast(&ev, sess.userID, sess.userName)
			if out == nil {
				continue
			}
			h.router.Broadcast(sess, out)
		}
	}
}
