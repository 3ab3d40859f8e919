package runtime

import (
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"escape-chat/catalog"
	"escape-chat/domain"
	"escape-chat/errors"
	"escape-chat/observability"
)

type fakeEvent struct {
	n int
}

func (f fakeEvent) RoomID() domain.RoomID {
	return "room1"
}

func newTestStore(t *testing.T, historyLimit int) *SessionStore {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	c, err := catalog.Load()
	require.NoError(t, err)
	return NewSessionStore(log, c, observability.NewMonitoringManager(log), historyLimit)
}

func TestSessionStore_EnsureRoom_IsIdempotent(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t, 20)

	// Given a bound room with some progress
	store.EnsureRoom("room1")
	total, err := store.BindDialogue("room1", "friend")
	req.NoError(err)
	req.Equal(13, total)

	session, err := store.Get("room1")
	req.NoError(err)
	session.mu.Lock()
	session.cursor = 3
	session.mu.Unlock()

	// When ensuring the same room again
	again := store.EnsureRoom("room1")

	// Then the session keeps its scenario and cursor
	req.Same(session, again)
	part, err := store.CurrentPart("room1")
	req.NoError(err)
	req.Equal(3, part)
}

func TestSessionStore_BindDialogue_ResetsProgress(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t, 20)

	store.EnsureRoom("room1")
	_, err := store.BindDialogue("room1", "friend")
	req.NoError(err)

	session, err := store.Get("room1")
	req.NoError(err)
	session.mu.Lock()
	session.cursor = 4
	session.mu.Unlock()

	// When rebinding the room to another scenario
	_, err = store.BindDialogue("room1", "mother")
	req.NoError(err)

	// Then prior progress is discarded
	part, err := store.CurrentPart("room1")
	req.NoError(err)
	req.Equal(1, part)

	session.mu.Lock()
	defer session.mu.Unlock()
	req.Equal("mother", session.scenarioID)
	req.Empty(session.history)
}

func TestSessionStore_BindDialogue_UnknownRoom(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t, 20)

	_, err := store.BindDialogue("ghost-room", "friend")

	req.ErrorIs(err, errors.ErrUnknownRoom)
}

func TestSessionStore_BindDialogue_UnknownScenario(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t, 20)
	store.EnsureRoom("room1")

	_, err := store.BindDialogue("room1", "villain")

	req.ErrorIs(err, errors.ErrScenarioNotFound)
}

func TestSessionStore_CurrentPart_UnknownRoom(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t, 20)

	_, err := store.CurrentPart("ghost-room")

	req.ErrorIs(err, errors.ErrUnknownRoom)
}

func TestRoomSession_HistoryIsBounded(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t, 3)

	session := store.EnsureRoom("room1")

	session.mu.Lock()
	for i := 0; i < 10; i++ {
		session.appendHistory(fakeEvent{n: i}, store.historyLimit)
	}
	recent := session.recentHistory(20)
	session.mu.Unlock()

	// Then only the most recent three survive, oldest first
	req.Len(recent, 3)
	req.Equal(fakeEvent{n: 7}, recent[0])
	req.Equal(fakeEvent{n: 9}, recent[2])
}
