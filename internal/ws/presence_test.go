package ws_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/flowdeck/collab/internal/ws"
)

func TestPresenceAddIsIdempotent(t *testing.T) {
	t.Parallel()

	p := ws.NewPresence()
	boardID := uuid.New()
	userID := uuid.New()

	assert.True(t, p.Add(boardID, userID), "first add is a transition")
	assert.False(t, p.Add(boardID, userID), "second add is not")
	assert.Len(t, p.Users(boardID), 1)
}

func TestPresenceRemoveReportsTransition(t *testing.T) {
	t.Parallel()

	p := ws.NewPresence()
	boardID := uuid.New()
	userID := uuid.New()

	p.Add(boardID, userID)
	assert.True(t, p.Remove(boardID, userID), "removing a present user is a transition")
	assert.False(t, p.Remove(boardID, userID), "removing an absent user is not")
	assert.Empty(t, p.Users(boardID))
}

func TestPresenceUnknownBoardAndUser(t *testing.T) {
	t.Parallel()

	p := ws.NewPresence()
	boardID := uuid.New()

	assert.False(t, p.Remove(boardID, uuid.New()), "unknown board remove is a no-op")
	assert.Empty(t, p.Users(boardID))

	p.Add(boardID, uuid.New())
	assert.False(t, p.Remove(boardID, uuid.New()), "unknown user remove is a no-op")
	assert.Len(t, p.Users(boardID), 1)
}

func TestPresenceBoardsAreIndependent(t *testing.T) {
	t.Parallel()

	p := ws.NewPresence()
	boardA := uuid.New()
	boardB := uuid.New()
	userID := uuid.New()

	p.Add(boardA, userID)
	p.Add(boardB, userID)

	assert.True(t, p.Remove(boardA, userID))
	assert.Empty(t, p.Users(boardA))
	assert.Len(t, p.Users(boardB), 1, "removal on one board must not touch another")
}

func TestPresenceUsersListsAllMembers(t *testing.T) {
	t.Parallel()

	p := ws.NewPresence()
	boardID := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	p.Add(boardID, a)
	p.Add(boardID, b)
	p.Add(boardID, c)

	users := p.Users(boardID)
	assert.ElementsMatch(t, []uuid.UUID{a, b, c}, users)
}
