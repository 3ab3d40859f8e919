package runtime

import (
	"sync"

	"escape-chat/contract"
	"escape-chat/domain"
)

type Set map[string]struct{}

// Registry tracks live delivery channels per room. It owns the channel
// set exclusively; a sink is never shared across rooms.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]contract.EventSink // map participant -> Sink
	roomMembers map[domain.RoomID]Set         // map room to participants
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:    make(map[string]contract.EventSink),
		roomMembers: make(map[domain.RoomID]Set),
	}
}

// SinksForRoom retrieves all active channels of a room, keyed by
// participant id so a failed delivery can be unsubscribed precisely.
// It performs a two-step lookup:
// 1. Identifies participant IDs associated with the room via roomMembers.
// 2. Resolves those IDs into actual EventSinks using the sessions map.
// Returns nil if the room doesn't exist or has no members.
func (r *Registry) SinksForRoom(roomID domain.RoomID) map[string]contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return nil
	}
	activeSinks := make(map[string]contract.EventSink, len(members))
	for participantID := range members {
		if sink, exists := r.sessions[participantID]; exists {
			activeSinks[participantID] = sink
		}
	}
	return activeSinks
}

// Subscribe registers a participant's active connection and assigns them
// to a specific room. If the room does not yet exist in the registry, it
// is initialized on the fly.
func (r *Registry) Subscribe(participantID string, roomID domain.RoomID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[participantID] = sink

	if _, ok := r.roomMembers[roomID]; !ok {
		r.roomMembers[roomID] = make(Set)
	}
	r.roomMembers[roomID][participantID] = struct{}{}
}

// Unsubscribe removes a participant from the registry and their room,
// reporting whether they were still registered. It cleans up the session
// and ensures no empty sets are left in the room map to prevent memory
// leaks over time.
func (r *Registry) Unsubscribe(participantID string, roomID domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, registered := r.sessions[participantID]
	delete(r.sessions, participantID)

	if members, ok := r.roomMembers[roomID]; ok {
		delete(members, participantID)

		// If no one is left in the room, remove the room entry entirely
		if len(members) == 0 {
			delete(r.roomMembers, roomID)
		}
	}
	return registered
}

// Rooms lists every room that currently has at least one subscriber.
func (r *Registry) Rooms() []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]domain.RoomID, 0, len(r.roomMembers))
	for roomID := range r.roomMembers {
		rooms = append(rooms, roomID)
	}
	return rooms
}
