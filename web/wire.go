package web

import (
	"github.com/samber/lo"

	"escape-chat/domain"
	"escape-chat/domain/event"
)

// wireMessage is the documented message shape of the REST and stream
// surfaces.
type wireMessage struct {
	ID           string `json:"id"`
	RoomID       string `json:"roomId"`
	Text         string `json:"text"`
	PartNumber   int    `json:"partNumber"`
	IsLastInPart bool   `json:"isLastInPart"`
}

func toWireMessages(messages []domain.Message) []wireMessage {
	return lo.Map(messages, func(item domain.Message, _ int) wireMessage {
		return wireMessage{
			ID:           item.ID.String(),
			RoomID:       string(item.RoomID),
			Text:         item.Text,
			PartNumber:   item.PartNumber,
			IsLastInPart: item.IsLastInPart,
		}
	})
}

// toWireEvent maps a broadcast event to its typed JSON envelope.
// Keepalive returns false: it is transport-level and encoded by each
// transport its own way.
func toWireEvent(e event.DomainEvent) (map[string]any, bool) {
	switch evt := e.(type) {
	case event.PartRevealed:
		return map[string]any{
			"type":        "part_messages",
			"partNumber":  evt.PartNumber,
			"messages":    toWireMessages(evt.Messages),
			"dialogueEnd": evt.DialogueEnd,
		}, true
	case event.DialogueEnded:
		return map[string]any{
			"type": "dialogue_end",
		}, true
	case event.ParticipantJoined:
		return map[string]any{
			"type":          "participant_joined",
			"participantId": evt.ParticipantID,
		}, true
	case event.ParticipantLeft:
		return map[string]any{
			"type":          "participant_left",
			"participantId": evt.ParticipantID,
		}, true
	case event.GameAction:
		return map[string]any{
			"type":     "game_action",
			"senderId": evt.SenderID,
			"action":   evt.Action,
			"payload":  evt.Payload,
			"lang":     evt.Lang,
		}, true
	default:
		return nil, false
	}
}
