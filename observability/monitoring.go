// Package observability aggregates runtime telemetry for the stats surface.
package observability

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Stats is the snapshot served on GET /stats.
type Stats struct {
	RoomsCreated      uint64  `json:"rooms_created"`
	DialoguesBound    uint64  `json:"dialogues_bound"`
	PartsRevealed     uint64  `json:"parts_revealed"`
	EventsDelivered   uint64  `json:"events_delivered"`
	SinksDropped      uint64  `json:"sinks_dropped"`
	ActionsRelayed    uint64  `json:"actions_relayed"`
	ActiveSubscribers int64   `json:"active_subscribers"`
	AllocMemMb        uint64  `json:"alloc_mem_mb"`
	NumGC             uint32  `json:"num_gc"`
	ProcessRssMb      uint64  `json:"process_rss_mb"`
	ProcessCPUPercent float64 `json:"process_cpu_percent"`
	CollectedAt       string  `json:"collected_at"`
}

// MonitoringManager collects counters from the sequencer and registry.
// Increments use atomics so the hot path never takes the mutex; the mutex
// only guards the process-level sample written by the telemetry worker.
type MonitoringManager struct {
	log *slog.Logger

	roomsCreated    atomic.Uint64
	dialoguesBound  atomic.Uint64
	partsRevealed   atomic.Uint64
	eventsDelivered atomic.Uint64
	sinksDropped    atomic.Uint64
	actionsRelayed  atomic.Uint64
	subscribers     atomic.Int64

	mu         sync.RWMutex
	rssBytes   uint64
	cpuPercent float64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log}
}

func (mm *MonitoringManager) IncrRoomsCreated() {
	if mm == nil {
		return
	}
	mm.roomsCreated.Add(1)
}

func (mm *MonitoringManager) IncrDialoguesBound() {
	if mm == nil {
		return
	}
	mm.dialoguesBound.Add(1)
}

func (mm *MonitoringManager) IncrPartsRevealed() {
	if mm == nil {
		return
	}
	mm.partsRevealed.Add(1)
}

func (mm *MonitoringManager) IncrEventsDelivered() {
	if mm == nil {
		return
	}
	mm.eventsDelivered.Add(1)
}

func (mm *MonitoringManager) IncrSinksDropped() {
	if mm == nil {
		return
	}
	mm.sinksDropped.Add(1)
}

func (mm *MonitoringManager) IncrActionsRelayed() {
	if mm == nil {
		return
	}
	mm.actionsRelayed.Add(1)
}

func (mm *MonitoringManager) SubscriberConnected() {
	if mm == nil {
		return
	}
	mm.subscribers.Add(1)
}

func (mm *MonitoringManager) SubscriberDisconnected() {
	if mm == nil {
		return
	}
	mm.subscribers.Add(-1)
}

// SetProcessSample stores the latest RSS/CPU reading from the telemetry worker.
func (mm *MonitoringManager) SetProcessSample(rssBytes uint64, cpuPercent float64) {
	if mm == nil {
		return
	}
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.rssBytes = rssBytes
	mm.cpuPercent = cpuPercent
}

// Snapshot assembles current counters plus a fresh Go memory reading.
func (mm *MonitoringManager) Snapshot() Stats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	mm.mu.RLock()
	rss, cpu := mm.rssBytes, mm.cpuPercent
	mm.mu.RUnlock()

	return Stats{
		RoomsCreated:      mm.roomsCreated.Load(),
		DialoguesBound:    mm.dialoguesBound.Load(),
		PartsRevealed:     mm.partsRevealed.Load(),
		EventsDelivered:   mm.eventsDelivered.Load(),
		SinksDropped:      mm.sinksDropped.Load(),
		ActionsRelayed:    mm.actionsRelayed.Load(),
		ActiveSubscribers: mm.subscribers.Load(),
		AllocMemMb:        memStats.Alloc / 1024 / 1024,
		NumGC:             memStats.NumGC,
		ProcessRssMb:      rss / 1024 / 1024,
		ProcessCPUPercent: cpu,
		CollectedAt:       time.Now().UTC().Format(time.RFC3339),
	}
}
