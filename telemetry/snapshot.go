package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the living population at one tick.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	Seed    uint64 `json:"seed"`
	Tick    int32  `json:"tick"`
	Year    int    `json:"year"`

	GenomePool   int `json:"genome_pool"`
	SwarmUpdates int `json:"swarm_updates"`

	Agents []AgentState `json:"agents"`
}

// AgentState holds one agent's vitals and strategy summary.
type AgentState struct {
	ID      uint32  `json:"id"`
	Species string  `json:"species"`
	Gender  string  `json:"gender"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Phase   string  `json:"phase"`

	Age      float64 `json:"age"`
	MaxAge   float64 `json:"max_age"`
	Health   float64 `json:"health"`
	Energy   float64 `json:"energy"`
	Hunger   float64 `json:"hunger"`
	Pregnant bool    `json:"pregnant,omitempty"`

	Algorithm string    `json:"algorithm"`
	Genome    []float64 `json:"genome,omitempty"`
	QStates   int       `json:"q_states,omitempty"`

	Lifetime *LifetimeStats `json:"lifetime,omitempty"`
}

// WriteSnapshot writes a snapshot to path.
func WriteSnapshot(path string, snap *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snap.Version, SnapshotVersion)
	}
	return &snap, nil
}

// Count returns the number of agents of a species in the snapshot.
func (s *Snapshot) Count(species string) int {
	n := 0
	for i := range s.Agents {
		if s.Agents[i].Species == species {
			n++
		}
	}
	return n
}
