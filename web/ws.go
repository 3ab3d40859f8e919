package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"escape-chat/domain"
	"escape-chat/domain/event"
	"escape-chat/runtime"
	"escape-chat/sink"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The game client is a separate origin during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeWait      = 10 * time.Second
	maxActionBytes = 4096
)

// socketAction is the inbound frame of the multiplayer channel.
type socketAction struct {
	Action  string `json:"action" validate:"required,max=64"`
	Payload string `json:"payload" validate:"max=2048"`
}

// handleSocket upgrades the connection and joins the participant to the
// room. Inbound frames are moderated and relayed to the other members;
// outbound frames mirror the SSE surface. Closing the socket, from
// either side, synchronously unsubscribes the channel.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	roomID := domain.RoomID(r.PathValue("roomId"))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "room_id", roomID, "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxActionBytes)

	participantID := runtime.NewParticipantID()
	streamSink := sink.NewStreamSink(s.log, s.bufferSize)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	s.service.JoinRoom(ctx, participantID, roomID, streamSink)
	// ctx is canceled before the deferred leave runs; the departure
	// notice still has to reach the other members.
	defer s.service.LeaveRoom(context.WithoutCancel(r.Context()), participantID, roomID)

	s.log.Info("Socket participant joined", "room_id", roomID, "participant_id", participantID)

	// Writer pump: one goroutine owns every write to the connection.
	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-streamSink.Events:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if _, ok := evt.(event.Keepalive); ok {
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						cancel()
						return
					}
					continue
				}
				wire, ok := toWireEvent(evt)
				if !ok {
					continue
				}
				if err := conn.WriteJSON(wire); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	// Read pump: relay inbound game actions until the peer goes away.
	for {
		var action socketAction
		if err := conn.ReadJSON(&action); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("Socket read failed", "room_id", roomID, "error", err)
			}
			break
		}
		if err := validate.Struct(action); err != nil {
			s.log.Debug("Dropping invalid game action", "room_id", roomID, "error", err)
			continue
		}
		s.service.Relay(ctx, domain.GameActionCommand{
			Room:     roomID,
			SenderID: participantID,
			Action:   action.Action,
			Payload:  action.Payload,
		})
	}

	cancel()
	<-writeDone
	s.log.Info("Socket participant left", "room_id", roomID, "participant_id", participantID)
}
