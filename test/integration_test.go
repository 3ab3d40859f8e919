package test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"escape-chat/catalog"
	"escape-chat/domain"
	"escape-chat/domain/event"
	"escape-chat/moderation"
	"escape-chat/observability"
	"escape-chat/runtime"
	"escape-chat/runtime/workers"
	"escape-chat/services"
)

// Config allows tuning the scenario from the environment, e2e style.
type Config struct {
	HistoryLimit int           `envconfig:"TEST_HISTORY_LIMIT" default:"20"`
	SinkTimeout  time.Duration `envconfig:"TEST_SINK_TIMEOUT" default:"500ms"`
}

type collectingSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *collectingSink) Consume(ctx context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *collectingSink) byType() (bundles []event.PartRevealed, ended int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		switch evt := e.(type) {
		case event.PartRevealed:
			bundles = append(bundles, evt)
		case event.DialogueEnded:
			ended++
		}
	}
	return bundles, ended
}

// Test_Scenario drains a full dialogue end to end: static catalog,
// session store, sequencer, fan-out to subscribers, and background
// workers under supervision.
func Test_Scenario(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := require.New(t)

	var cfg Config
	req.NoError(envconfig.Process("", &cfg))

	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	scripts, err := catalog.Load()
	req.NoError(err)

	words, err := moderation.LoadDefaultWords()
	req.NoError(err)
	moderator, err := moderation.NewModerator(words, '*', log)
	req.NoError(err)

	monitoring := observability.NewMonitoringManager(log)
	registry := runtime.NewRegistry()
	sessions := runtime.NewSessionStore(log, scripts, monitoring, cfg.HistoryLimit)
	sequencer := runtime.NewSequencer(log, sessions, registry, moderator, monitoring, cfg.SinkTimeout)
	service := services.NewDialogueService(sequencer, scripts)

	// Given heartbeat and telemetry workers running under supervision
	sup := workers.NewSupervisor(log, 100*time.Millisecond)
	sup.Add(
		workers.NewHeartbeatWorker(log, sequencer, 50*time.Millisecond),
		workers.NewTelemetryWorker(log, monitoring, 50*time.Millisecond),
	)
	go sup.Run(ctx)
	defer sup.Stop()

	// And two participants subscribed to the room
	player := &collectingSink{}
	watcher := &collectingSink{}
	service.JoinRoom(ctx, "player", "room1", player)
	service.JoinRoom(ctx, "watcher", "room1", watcher)

	// When binding the friend scenario and draining it
	total, err := service.SetupDialogue(ctx, domain.SetupDialogueCommand{
		Room: "room1", ScenarioID: "friend",
	})
	req.NoError(err)
	req.Equal(13, total)

	for wantPart := 1; wantPart <= 4; wantPart++ {
		outcome, err := service.AdvanceNextPart(ctx, domain.AdvancePartCommand{Room: "room1"})
		req.NoError(err)
		req.Equal(wantPart, outcome.PartNumber)
	}
	outcome, err := service.AdvanceNextPart(ctx, domain.AdvancePartCommand{Room: "room1"})
	req.NoError(err)
	req.True(outcome.Exhausted)

	// Then both subscribers saw every part, in order, plus the terminal notice
	for _, s := range []*collectingSink{player, watcher} {
		bundles, ended := s.byType()
		req.Len(bundles, 4)
		for i, bundle := range bundles {
			req.Equal(i+1, bundle.PartNumber)
		}
		req.True(bundles[3].DialogueEnd)
		req.Equal(1, ended)
	}

	// And a relayed action reaches the watcher only, censored
	service.Relay(ctx, domain.GameActionCommand{
		Room: "room1", SenderID: "player", Action: "chat", Payload: "이 퍼즐 바보 같아",
	})

	req.Eventually(func() bool {
		watcher.mu.Lock()
		defer watcher.mu.Unlock()
		for _, e := range watcher.events {
			if action, ok := e.(event.GameAction); ok {
				return action.Payload == "이 퍼즐 ** 같아"
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	// And the heartbeat worker kept the subscribers fresh
	req.Eventually(func() bool {
		player.mu.Lock()
		defer player.mu.Unlock()
		for _, e := range player.events {
			if _, ok := e.(event.Keepalive); ok {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}
