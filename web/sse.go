package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"escape-chat/domain"
	"escape-chat/domain/event"
	"escape-chat/runtime"
	"escape-chat/sink"
)

// handleStream serves the Server-Sent Events surface. On connect it
// replays the most recent history of the room, then pushes live events
// as they are published. Keepalive events become SSE comment frames so
// proxies and clients can detect a stalled channel.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	roomID := domain.RoomID(r.PathValue("roomId"))

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	participantID := runtime.NewParticipantID()
	streamSink := sink.NewStreamSink(s.log, s.bufferSize)

	// Snapshot and subscription are one atomic step on the engine side,
	// so nothing published while this client attaches can slip between
	// the catch-up frames and the live stream. The client's own join
	// notice arrives once, live, after the catch-up frames.
	history := s.service.JoinRoomWithReplay(r.Context(), participantID, roomID, streamSink, replayLimit)
	// The request context is already canceled when the deferred leave
	// runs; the departure notice still has to reach the other members.
	defer s.service.LeaveRoom(context.WithoutCancel(r.Context()), participantID, roomID)

	for _, evt := range history {
		s.writeFrame(w, evt)
	}
	flusher.Flush()

	s.log.Info("Stream subscriber connected", "room_id", roomID, "participant_id", participantID)

	for {
		select {
		case <-r.Context().Done():
			s.log.Info("Stream subscriber disconnected", "room_id", roomID, "participant_id", participantID)
			return
		case evt := <-streamSink.Events:
			if _, ok := evt.(event.Keepalive); ok {
				fmt.Fprint(w, ": keepalive\n\n")
				flusher.Flush()
				continue
			}
			s.writeFrame(w, evt)
			flusher.Flush()
		}
	}
}

func (s *Server) writeFrame(w http.ResponseWriter, evt event.DomainEvent) {
	wire, ok := toWireEvent(evt)
	if !ok {
		return
	}
	payload, err := json.Marshal(wire)
	if err != nil {
		s.log.Error("Failed to encode stream event", "error", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
}
