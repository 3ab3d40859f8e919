// Package runtime hosts the per-room dialogue sequencing engine: session
// state, subscriber registry, and the fan-out of revealed parts.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"

	"escape-chat/contract"
	"escape-chat/domain"
	"escape-chat/domain/event"
	"escape-chat/moderation"
	"escape-chat/observability"
)

// AdvanceOutcome is the synchronous result of one advancement request.
// Exhausted means there was nothing left to reveal and no state changed.
type AdvanceOutcome struct {
	PartNumber  int
	Messages    []domain.Message
	DialogueEnd bool
	Exhausted   bool
}

// Sequencer owns every documented mutation of room sessions. Per room,
// operations serialize on the session mutex; different rooms proceed
// concurrently. Fan-out is best effort: a sink that fails or exceeds the
// delivery timeout is unsubscribed and the rest still receive the event.
type Sequencer struct {
	log         *slog.Logger
	sessions    *SessionStore
	registry    contract.IRegistry
	moderator   *moderation.Moderator
	monitoring  *observability.MonitoringManager
	sinkTimeout time.Duration
}

func NewSequencer(log *slog.Logger, sessions *SessionStore, registry contract.IRegistry,
	moderator *moderation.Moderator, monitoring *observability.MonitoringManager,
	sinkTimeout time.Duration) *Sequencer {
	return &Sequencer{
		log:         log,
		sessions:    sessions,
		registry:    registry,
		moderator:   moderator,
		monitoring:  monitoring,
		sinkTimeout: sinkTimeout,
	}
}

// SetupDialogue binds a scenario to the room, creating the room if
// needed, and returns the total materialized message count.
func (s *Sequencer) SetupDialogue(ctx context.Context, cmd domain.SetupDialogueCommand) (int, error) {
	s.sessions.EnsureRoom(cmd.Room)
	total, err := s.sessions.BindDialogue(cmd.Room, cmd.ScenarioID)
	if err != nil {
		return 0, err
	}
	s.monitoring.IncrDialoguesBound()
	s.log.Info("Dialogue bound", "room_id", cmd.Room, "scenario_id", cmd.ScenarioID, "total_messages", total)
	return total, nil
}

// AdvanceNextPart reveals the part under the cursor, advances it by one,
// and broadcasts the bundle to every subscriber. When the following part
// holds no messages the same call flags DialogueEnd and emits the
// terminal notice, moving the room to its exhausted state. Advancing an
// exhausted room is a no-op reporting Exhausted.
//
// An authored gap behaves like the end of the script: the empty part
// yields no messages and the dialogue ends there.
func (s *Sequencer) AdvanceNextPart(ctx context.Context, cmd domain.AdvancePartCommand) (AdvanceOutcome, error) {
	session, err := s.sessions.Get(cmd.Room)
	if err != nil {
		return AdvanceOutcome{}, err
	}

	session.mu.Lock()
	messages := session.messagesAt(session.cursor)
	if len(messages) == 0 {
		session.mu.Unlock()
		return AdvanceOutcome{Exhausted: true}, nil
	}

	revealed := session.cursor
	session.cursor++
	end := len(session.messagesAt(session.cursor)) == 0

	bundle := event.PartRevealed{
		Room:        cmd.Room,
		PartNumber:  revealed,
		Messages:    messages,
		DialogueEnd: end,
	}
	session.appendHistory(bundle, s.sessions.historyLimit)
	var terminal *event.DialogueEnded
	if end {
		terminal = &event.DialogueEnded{Room: cmd.Room}
		session.appendHistory(*terminal, s.sessions.historyLimit)
	}
	session.deliverMu.Lock()
	session.mu.Unlock()

	// Fan-out happens outside the session lock: delivery may suspend on
	// slow sinks and must never block another room operation. deliverMu
	// is taken before the session lock drops so a concurrent advance
	// cannot deliver its bundle ahead of this one.
	s.fanout(ctx, cmd.Room, bundle)
	if terminal != nil {
		s.fanout(ctx, cmd.Room, *terminal)
	}
	session.deliverMu.Unlock()

	s.monitoring.IncrPartsRevealed()
	return AdvanceOutcome{PartNumber: revealed, Messages: messages, DialogueEnd: end}, nil
}

// GetPart is random access: it returns the messages of the exact part
// number without touching the sequential cursor. A missing part fails
// softly with an empty result.
func (s *Sequencer) GetPart(ctx context.Context, cmd domain.GetPartCommand) ([]domain.Message, error) {
	session, err := s.sessions.Get(cmd.Room)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.messagesAt(cmd.PartNumber), nil
}

// Join creates the room if needed, registers the sink, and announces the
// participant to the existing members.
func (s *Sequencer) Join(ctx context.Context, participantID string, roomID domain.RoomID, sink contract.EventSink) {
	s.JoinWithReplay(ctx, participantID, roomID, sink, 0)
}

// JoinWithReplay snapshots the recent history and registers the sink as
// one atomic step: an event published while the subscriber attaches
// lands either in the snapshot or in live delivery, never in neither and
// never in both. The snapshot is returned oldest first; the join notice
// is published afterwards and reaches the new subscriber live.
func (s *Sequencer) JoinWithReplay(ctx context.Context, participantID string, roomID domain.RoomID,
	sink contract.EventSink, n int) []event.DomainEvent {
	session := s.sessions.EnsureRoom(roomID)

	session.mu.Lock()
	history := session.recentHistory(n)
	// Holding deliverMu keeps an in-flight fan-out, whose event is
	// already in the snapshot, from also reaching the new sink.
	session.deliverMu.Lock()
	session.mu.Unlock()
	s.registry.Subscribe(participantID, roomID, sink)
	session.deliverMu.Unlock()

	s.monitoring.SubscriberConnected()
	s.publish(ctx, roomID, event.ParticipantJoined{
		Room:          roomID,
		ParticipantID: participantID,
		At:            time.Now().UTC(),
	})
	return history
}

// Leave unregisters the sink and announces the departure. Safe to call
// after the registry already dropped the channel on a failed delivery.
func (s *Sequencer) Leave(ctx context.Context, participantID string, roomID domain.RoomID) {
	if !s.registry.Unsubscribe(participantID, roomID) {
		return
	}
	s.monitoring.SubscriberDisconnected()
	s.publish(ctx, roomID, event.ParticipantLeft{
		Room:          roomID,
		ParticipantID: participantID,
		At:            time.Now().UTC(),
	})
}

// Relay moderates a free-form game action and broadcasts it to the other
// members of the room. The sender does not receive their own action back.
func (s *Sequencer) Relay(ctx context.Context, cmd domain.GameActionCommand) {
	payload := cmd.Payload
	if s.moderator != nil {
		payload = s.moderator.Censor(payload)
	}
	info := whatlanggo.Detect(cmd.Payload)

	evt := event.GameAction{
		Room:     cmd.Room,
		SenderID: cmd.SenderID,
		Action:   cmd.Action,
		Payload:  payload,
		Lang:     info.Lang.Iso6391(),
		At:       time.Now().UTC(),
	}

	broadcast := func() {
		for participantID, sink := range s.registry.SinksForRoom(cmd.Room) {
			if participantID == cmd.SenderID {
				continue
			}
			s.deliver(ctx, cmd.Room, participantID, sink, evt)
		}
	}

	if session, err := s.sessions.Get(cmd.Room); err == nil {
		session.mu.Lock()
		session.appendHistory(evt, s.sessions.historyLimit)
		session.deliverMu.Lock()
		session.mu.Unlock()
		broadcast()
		session.deliverMu.Unlock()
	} else {
		broadcast()
	}
	s.monitoring.IncrActionsRelayed()
}

// History returns up to n most recent events of the room for
// replay-on-reconnect, oldest first.
func (s *Sequencer) History(roomID domain.RoomID, n int) ([]event.DomainEvent, error) {
	session, err := s.sessions.Get(roomID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.recentHistory(n), nil
}

// Keepalive pushes a liveness signal to every subscribed room so stalled
// transports get detected. Not recorded in history.
func (s *Sequencer) Keepalive(ctx context.Context) {
	now := time.Now().UTC()
	for _, roomID := range s.registry.Rooms() {
		evt := event.Keepalive{Room: roomID, At: now}
		for participantID, sink := range s.registry.SinksForRoom(roomID) {
			s.deliver(ctx, roomID, participantID, sink, evt)
		}
	}
}

// NewParticipantID mints an opaque connection identity.
func NewParticipantID() string {
	return uuid.NewString()
}

// fanout delivers one event to every subscriber of the room. History,
// when the event belongs there, is the caller's concern.
func (s *Sequencer) fanout(ctx context.Context, roomID domain.RoomID, evt event.DomainEvent) {
	for participantID, sink := range s.registry.SinksForRoom(roomID) {
		s.deliver(ctx, roomID, participantID, sink, evt)
	}
}

// publish appends to history then fans out under the room's delivery
// order.
func (s *Sequencer) publish(ctx context.Context, roomID domain.RoomID, evt event.DomainEvent) {
	session, err := s.sessions.Get(roomID)
	if err != nil {
		s.fanout(ctx, roomID, evt)
		return
	}
	session.mu.Lock()
	session.appendHistory(evt, s.sessions.historyLimit)
	session.deliverMu.Lock()
	session.mu.Unlock()
	s.fanout(ctx, roomID, evt)
	session.deliverMu.Unlock()
}

// deliver pushes one event to one sink under the delivery timeout.
// Failure drops only that subscriber; it never reaches the publisher.
func (s *Sequencer) deliver(ctx context.Context, roomID domain.RoomID, participantID string,
	sink contract.EventSink, evt event.DomainEvent) {
	deliveryCtx, cancel := context.WithTimeout(ctx, s.sinkTimeout)
	defer cancel()

	if err := sink.Consume(deliveryCtx, evt); err != nil {
		s.log.Warn(fmt.Sprintf("Dropping subscriber %s from room %s", participantID, roomID), "error", err)
		if s.registry.Unsubscribe(participantID, roomID) {
			s.monitoring.SubscriberDisconnected()
		}
		s.monitoring.IncrSinksDropped()
		return
	}
	s.monitoring.IncrEventsDelivered()
}
