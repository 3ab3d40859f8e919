package event

import (
	"time"

	"escape-chat/domain"
)

// DomainEvent is anything broadcast to the subscribers of a room.
type DomainEvent interface {
	RoomID() domain.RoomID
}

// PartRevealed carries one advanced part's messages.
// DialogueEnd is set when this was the last authored part.
type PartRevealed struct {
	Room        domain.RoomID
	PartNumber  int
	Messages    []domain.Message
	DialogueEnd bool
}

func (e PartRevealed) RoomID() domain.RoomID {
	return e.Room
}

// DialogueEnded is the terminal lifecycle notice of a scenario.
type DialogueEnded struct {
	Room domain.RoomID
}

func (e DialogueEnded) RoomID() domain.RoomID {
	return e.Room
}

type ParticipantJoined struct {
	Room          domain.RoomID
	ParticipantID string
	At            time.Time
}

func (e ParticipantJoined) RoomID() domain.RoomID {
	return e.Room
}

type ParticipantLeft struct {
	Room          domain.RoomID
	ParticipantID string
	At            time.Time
}

func (e ParticipantLeft) RoomID() domain.RoomID {
	return e.Room
}

// GameAction is a relayed multiplayer payload. Payload holds the
// moderated text, Lang its detected ISO 639-1 code.
type GameAction struct {
	Room     domain.RoomID
	SenderID string
	Action   string
	Payload  string
	Lang     string
	At       time.Time
}

func (e GameAction) RoomID() domain.RoomID {
	return e.Room
}

// Keepalive is a periodic liveness signal. It is delivered to sinks but
// never appended to room history.
type Keepalive struct {
	Room domain.RoomID
	At   time.Time
}

func (e Keepalive) RoomID() domain.RoomID {
	return e.Room
}
