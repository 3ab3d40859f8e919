// Package dialogue expands static scenario scripts into concrete message
// records scoped to one room.
package dialogue

import (
	"github.com/google/uuid"

	"escape-chat/catalog"
	"escape-chat/domain"
)

// Materialize emits one Message per scripted line, in authoring order,
// with a fresh id, the target room, and a 1-based part number. The last
// line of each part carries IsLastInPart.
//
// Ids are generated per call, so two materializations of the same inputs
// are semantically identical but not comparable by id. Callers must
// materialize exactly once per room setup and keep the result in the
// room session instead of re-deriving it.
func Materialize(c *catalog.Catalog, scenarioID string, roomID domain.RoomID) ([]domain.Message, error) {
	parts, err := c.Lookup(scenarioID)
	if err != nil {
		return nil, err
	}

	var messages []domain.Message
	for partIndex, part := range parts {
		for lineIndex, line := range part {
			messages = append(messages, domain.Message{
				ID:           uuid.New(),
				RoomID:       roomID,
				ScenarioID:   scenarioID,
				Text:         line,
				PartNumber:   partIndex + 1,
				IsLastInPart: lineIndex == len(part)-1,
			})
		}
	}
	return messages, nil
}
