package ws

import (
	"sync"

	"github.com/google/uuid"
)

// Presence tracks which user identities are currently present on each
// board. It is a plain set keyed by user id: a second connection from the
// same user does not duplicate the entry, and Add/Remove report whether a
// present/absent transition actually happened so callers only notify
// peers on real transitions.
type Presence struct {
	mu     sync.Mutex
	boards map[uuid.UUID]map[uuid.UUID]struct{}
}

func NewPresence() *Presence {
	return &Presence{boards: make(map[uuid.UUID]map[uuid.UUID]struct{})}
}

// Add inserts userID into the board's member set. Returns true when the
// user was previously absent.
func (p *Presence) Add(boardID, userID uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	members, ok := p.boards[boardID]
	if !ok {
		members = make(map[uuid.UUID]struct{})
		p.boards[boardID] = members
	}
	if _, present := members[userID]; present {
		return false
	}
	members[userID] = struct{}{}
	return true
}

// Remove deletes userID from the board's member set. Returns true when the
// user was previously present. Unknown boards and users are no-ops.
func (p *Presence) Remove(boardID, userID uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	members, ok := p.boards[boardID]
	if !ok {
		return false
	}
	if _, present := members[userID]; !present {
		return false
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(p.boards, boardID)
	}
	return true
}

// Users returns the user ids currently present on the board.
func (p *Presence) Users(boardID uuid.UUID) []uuid.UUID {
	p.mu.Lock()
	defer p.mu.Unlock()

	members := p.boards[boardID]
	users := make([]uuid.UUID, 0, len(members))
	for id := range members {
		users = append(users, id)
	}
	return users
}
