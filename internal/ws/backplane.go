package ws

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Backplane is an optional pub/sub bridge that fans broadcasts out to
// other server instances. *redis.PubSub satisfies this interface. A nil
// backplane leaves the router fully functional for a single instance.
type Backplane interface {
	Publish(ctx context.Context, boardID uuid.UUID, payload []byte) error
	Subscribe(ctx context.Context, boardID uuid.UUID) (<-chan []byte, func(), error)
}

// backplaneFrame wraps a serialized ServerEvent with the publishing
// instance id so a router can ignore frames it published itself.
type backplaneFrame struct {
	Origin uuid.UUID       `json:"origin"`
	Event  json.RawMessage `json:"event"`
}
