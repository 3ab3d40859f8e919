// Package domain contains core concepts of the narrative chat system.
// This file defines Message values and related rules.
// Messages are immutable once materialized.
package domain

import (
	"github.com/google/uuid"
)

// Message is one scripted chat line addressed to a room.
// PartNumber is 1-based; IsLastInPart marks the closing line of a part.
type Message struct {
	ID           uuid.UUID `json:"id"`
	RoomID       RoomID    `json:"roomId"`
	ScenarioID   string    `json:"scenarioId"`
	Text         string    `json:"text"`
	PartNumber   int       `json:"partNumber"`
	IsLastInPart bool      `json:"isLastInPart"`
}
