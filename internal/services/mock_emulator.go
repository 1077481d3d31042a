package services

import (
	"context"
	"fmt"

	"github.com/jwebster45206/route-agent/pkg/state"
)

// MockGameHost is a scripted emulation host for tests. Each FetchState
// call consumes the next scripted result in order; the script may
// interleave snapshots and errors to exercise connectivity handling.
type MockGameHost struct {
	script []scriptEntry
	idx    int

	// Inputs records every button batch sent to the host.
	Inputs [][]string
	// Checkpoints records every requested save-state name.
	Checkpoints []string

	// SaveCheckpointFunc overrides SaveCheckpoint when set.
	SaveCheckpointFunc func(ctx context.Context, name string) (string, error)
}

type scriptEntry struct {
	snap *state.Snapshot
	err  error
}

var _ GameHost = (*MockGameHost)(nil)

func NewMockGameHost() *MockGameHost {
	return &MockGameHost{}
}

// QueueSnapshot appends a successful fetch result to the script.
func (m *MockGameHost) QueueSnapshot(snap *state.Snapshot) *MockGameHost {
	m.script = append(m.script, scriptEntry{snap: snap})
	return m
}

// QueueError appends a failed fetch to the script.
func (m *MockGameHost) QueueError(err error) *MockGameHost {
	m.script = append(m.script, scriptEntry{err: err})
	return m
}

func (m *MockGameHost) Ping(ctx context.Context) error { return nil }

func (m *MockGameHost) Close() error { return nil }

func (m *MockGameHost) FetchState(ctx context.Context) (*state.Snapshot, error) {
	if m.idx >= len(m.script) {
		// Keep replaying the final snapshot once the script runs dry.
		if n := len(m.script); n > 0 && m.script[n-1].snap != nil {
			return m.script[n-1].snap.Clone(), nil
		}
		return nil, fmt.Errorf("mock host script exhausted")
	}
	entry := m.script[m.idx]
	m.idx++
	if entry.err != nil {
		return nil, entry.err
	}
	return entry.snap.Clone(), nil
}

func (m *MockGameHost) SendInput(ctx context.Context, buttons []string) error {
	m.Inputs = append(m.Inputs, append([]string{}, buttons...))
	return nil
}

func (m *MockGameHost) SaveCheckpoint(ctx context.Context, name string) (string, error) {
	m.Checkpoints = append(m.Checkpoints, name)
	if m.SaveCheckpointFunc != nil {
		return m.SaveCheckpointFunc(ctx, name)
	}
	return "savestate://" + name, nil
}
