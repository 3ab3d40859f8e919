package domain

// Command is any room-scoped intent entering the sequencer.
type Command interface {
	RoomID() RoomID
}

type SetupDialogueCommand struct {
	Room       RoomID
	ScenarioID string
}

func (c SetupDialogueCommand) RoomID() RoomID {
	return c.Room
}

type AdvancePartCommand struct {
	Room RoomID
}

func (c AdvancePartCommand) RoomID() RoomID {
	return c.Room
}

type GetPartCommand struct {
	Room       RoomID
	PartNumber int
}

func (c GetPartCommand) RoomID() RoomID {
	return c.Room
}

// GameActionCommand is a free-form multiplayer payload relayed to the
// other members of a room. Content passes moderation before broadcast.
type GameActionCommand struct {
	Room     RoomID
	SenderID string
	Action   string
	Payload  string
}

func (c GameActionCommand) RoomID() RoomID {
	return c.Room
}
