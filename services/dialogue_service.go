//go:generate go run go.uber.org/mock/mockgen -source=dialogue_service.go -destination=../mocks/mock_dialogue_service.go -package=mocks
package services

import (
	"context"

	"escape-chat/contract"
	"escape-chat/domain"
	"escape-chat/domain/event"
	"escape-chat/runtime"
)

// IDialogueService is the application boundary the transport handlers
// talk to. It hides the sequencer behind an interface so handlers can be
// tested against a mock.
type IDialogueService interface {
	Characters() []domain.Character
	SetupDialogue(ctx context.Context, cmd domain.SetupDialogueCommand) (int, error)
	AdvanceNextPart(ctx context.Context, cmd domain.AdvancePartCommand) (runtime.AdvanceOutcome, error)
	GetPart(ctx context.Context, cmd domain.GetPartCommand) ([]domain.Message, error)
	JoinRoom(ctx context.Context, participantID string, roomID domain.RoomID, sink contract.EventSink)
	JoinRoomWithReplay(ctx context.Context, participantID string, roomID domain.RoomID,
		sink contract.EventSink, n int) []event.DomainEvent
	LeaveRoom(ctx context.Context, participantID string, roomID domain.RoomID)
	Relay(ctx context.Context, cmd domain.GameActionCommand)
	History(roomID domain.RoomID, n int) ([]event.DomainEvent, error)
}

type characterSource interface {
	Characters() []domain.Character
}

type DialogueService struct {
	sequencer  *runtime.Sequencer
	characters characterSource
}

func NewDialogueService(sequencer *runtime.Sequencer, characters characterSource) *DialogueService {
	return &DialogueService{sequencer: sequencer, characters: characters}
}

func (s *DialogueService) Characters() []domain.Character {
	return s.characters.Characters()
}

func (s *DialogueService) SetupDialogue(ctx context.Context, cmd domain.SetupDialogueCommand) (int, error) {
	return s.sequencer.SetupDialogue(ctx, cmd)
}

func (s *DialogueService) AdvanceNextPart(ctx context.Context, cmd domain.AdvancePartCommand) (runtime.AdvanceOutcome, error) {
	return s.sequencer.AdvanceNextPart(ctx, cmd)
}

func (s *DialogueService) GetPart(ctx context.Context, cmd domain.GetPartCommand) ([]domain.Message, error) {
	return s.sequencer.GetPart(ctx, cmd)
}

func (s *DialogueService) JoinRoom(ctx context.Context, participantID string, roomID domain.RoomID, sink contract.EventSink) {
	s.sequencer.Join(ctx, participantID, roomID, sink)
}

func (s *DialogueService) JoinRoomWithReplay(ctx context.Context, participantID string, roomID domain.RoomID,
	sink contract.EventSink, n int) []event.DomainEvent {
	return s.sequencer.JoinWithReplay(ctx, participantID, roomID, sink, n)
}

func (s *DialogueService) LeaveRoom(ctx context.Context, participantID string, roomID domain.RoomID) {
	s.sequencer.Leave(ctx, participantID, roomID)
}

func (s *DialogueService) Relay(ctx context.Context, cmd domain.GameActionCommand) {
	s.sequencer.Relay(ctx, cmd)
}

func (s *DialogueService) History(roomID domain.RoomID, n int) ([]event.DomainEvent, error) {
	return s.sequencer.History(roomID, n)
}
