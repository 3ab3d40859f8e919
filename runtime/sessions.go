package runtime

import (
	"fmt"
	"log/slog"
	"sync"

	"escape-chat/catalog"
	"escape-chat/dialogue"
	"escape-chat/domain"
	"escape-chat/domain/event"
	"escape-chat/errors"
	"escape-chat/observability"
)

// RoomSession is the per-room mutable state: the bound scenario, the
// materialized script, the reveal cursor, and the bounded event history.
// All fields are guarded by mu; only the sequencer mutates them.
type RoomSession struct {
	mu sync.Mutex

	// deliverMu serializes fan-out for this room. Publishers acquire it
	// while still holding mu, so subscribers receive events in the same
	// order the session state changed.
	deliverMu sync.Mutex

	id           domain.RoomID
	scenarioID   string
	materialized []domain.Message
	cursor       int
	history      []event.DomainEvent
}

// SessionStore keys sessions by room id. The top-level map lock is held
// only for insert/lookup; per-room mutation serializes on the session's
// own mutex, so independent rooms never contend.
type SessionStore struct {
	mu           sync.RWMutex
	sessions     map[domain.RoomID]*RoomSession
	catalog      *catalog.Catalog
	monitoring   *observability.MonitoringManager
	historyLimit int
	log          *slog.Logger
}

func NewSessionStore(log *slog.Logger, c *catalog.Catalog,
	monitoring *observability.MonitoringManager, historyLimit int) *SessionStore {
	return &SessionStore{
		sessions:     make(map[domain.RoomID]*RoomSession),
		catalog:      c,
		monitoring:   monitoring,
		historyLimit: historyLimit,
		log:          log,
	}
}

// EnsureRoom creates the session if absent and returns it. Idempotent:
// an existing session is returned untouched, bound scenario included.
func (s *SessionStore) EnsureRoom(roomID domain.RoomID) *RoomSession {
	s.mu.RLock()
	session, ok := s.sessions[roomID]
	s.mu.RUnlock()
	if ok {
		return session
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Someone may have created it between the two locks
	if session, ok = s.sessions[roomID]; ok {
		return session
	}
	session = &RoomSession{id: roomID, cursor: 1}
	s.sessions[roomID] = session
	s.monitoring.IncrRoomsCreated()
	s.log.Info("Room created", "room_id", roomID)
	return session
}

// Get returns the session or ErrUnknownRoom if it was never set up.
func (s *SessionStore) Get(roomID domain.RoomID) (*RoomSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownRoom, roomID)
	}
	return session, nil
}

// BindDialogue materializes the scenario once and stores the result,
// resetting the cursor and clearing history. Rebinding a room discards
// prior progress: a room hosts one active scenario at a time.
func (s *SessionStore) BindDialogue(roomID domain.RoomID, scenarioID string) (int, error) {
	session, err := s.Get(roomID)
	if err != nil {
		return 0, err
	}

	messages, err := dialogue.Materialize(s.catalog, scenarioID, roomID)
	if err != nil {
		return 0, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.scenarioID = scenarioID
	session.materialized = messages
	session.cursor = 1
	session.history = nil
	return len(messages), nil
}

// CurrentPart reports the next part the sequential cursor will reveal.
func (s *SessionStore) CurrentPart(roomID domain.RoomID) (int, error) {
	session, err := s.Get(roomID)
	if err != nil {
		return 0, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.cursor, nil
}

// messagesAt selects the materialized messages of one part.
// Caller must hold session.mu.
func (rs *RoomSession) messagesAt(partNumber int) []domain.Message {
	var selected []domain.Message
	for _, msg := range rs.materialized {
		if msg.PartNumber == partNumber {
			selected = append(selected, msg)
		}
	}
	return selected
}

// appendHistory keeps the most recent events up to the limit.
// Caller must hold session.mu.
func (rs *RoomSession) appendHistory(e event.DomainEvent, limit int) {
	rs.history = append(rs.history, e)
	if limit > 0 && len(rs.history) > limit {
		rs.history = rs.history[len(rs.history)-limit:]
	}
}

// recentHistory copies up to n most recent events, oldest first.
// Caller must hold session.mu.
func (rs *RoomSession) recentHistory(n int) []event.DomainEvent {
	if n <= 0 || len(rs.history) == 0 {
		return nil
	}
	start := 0
	if len(rs.history) > n {
		start = len(rs.history) - n
	}
	out := make([]event.DomainEvent, len(rs.history)-start)
	copy(out, rs.history[start:])
	return out
}
