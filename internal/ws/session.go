package ws

import (
	"context"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const sendQueueSize = 64

// Session is one live board connection: the sender identity plus a
// buffered outbound queue drained by writePump. Delivery is decoupled from
// the socket so one slow peer never stalls fan-out to the rest of a room.
type Session struct {
	id       uuid.UUID
	userID   uuid.UUID
	userName string
	send     chan []byte
}

func newSession(userID uuid.UUID, userName string) *Session {
	return &Session{
		id:       uuid.New(),
		userID:   userID,
		userName: userName,
		send:     make(chan []byte, sendQueueSize),
	}
}

func (s *Session) UserID() uuid.UUID { return s.userID }

func (s *Session) UserName() string { return s.userName }

// Deliver queues a frame for the session. Best-effort: when the queue is
// full the frame is dropped for this peer only.
func (s *Session) Deliver(payload []byte) {
	select {
	case s.send <- payload:
	default:
		log.Debug().
			Str("session_id", s.id.String()).
			Str("user_id", s.userID.String()).
			Msg("send queue full, frame dropped")
	}
}

// writePump drains the send queue onto the socket until the connection
// context is canceled or a write fails.
func (s *Session) writePump(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-s.send:
			if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
				log.Debug().Err(err).Str("session_id", s.id.String()).Msg("websocket write")
				return
			}
		}
	}
}
