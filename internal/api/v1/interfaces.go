package v1

import (
	"github.com/google/uuid"

	"github.com/flowdeck/collab/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Tasks() domain.TaskRepository
}

// PresenceSource exposes the live member set of a board room.
// *ws.Router satisfies this interface.
type PresenceSource interface {
	Users(boardID uuid.UUID) []uuid.UUID
}
