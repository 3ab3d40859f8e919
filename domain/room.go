// Package domain contains core concepts of the narrative chat system.
// This file defines room identity.
// No runtime, network, or UI logic should be added here.
package domain

// RoomID identifies one escape-room play session.
type RoomID string
