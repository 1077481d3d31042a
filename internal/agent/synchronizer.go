package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jwebster45206/route-agent/internal/services"
	"github.com/jwebster45206/route-agent/pkg/state"
)

// Synchronizer pulls authoritative snapshots from the emulation host and
// exposes a read-only, versioned cache. On a failed refresh the previous
// snapshot stays cached and valid; "no fresher snapshot" is a legitimate
// outcome, not a fatal error. Retry policy belongs to the calling loop.
type Synchronizer struct {
	host      services.GameHost
	timeout   time.Duration
	threshold int
	logger    *slog.Logger

	mu       sync.RWMutex
	cached   *state.Snapshot
	seq      uint64
	failures int
	signaled bool
}

// NewSynchronizer wraps a game host. The timeout bounds each refresh;
// threshold is the consecutive-failure count at which the degraded signal
// is raised.
func NewSynchronizer(host services.GameHost, timeout time.Duration, threshold int, logger *slog.Logger) *Synchronizer {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if threshold <= 0 {
		threshold = 3
	}
	return &Synchronizer{
		host:      host,
		timeout:   timeout,
		threshold: threshold,
		logger:    logger,
	}
}

// Refresh pulls a fresh snapshot, assigns it the next sequence number and
// swaps it into the cache atomically. On failure the cache is untouched
// and the error is returned to the caller.
func (s *Synchronizer) Refresh(ctx context.Context) (*state.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	snap, err := s.host.FetchState(ctx)
	if err != nil {
		s.mu.Lock()
		s.failures++
		failures := s.failures
		s.mu.Unlock()
		s.logger.Warn("snapshot refresh failed", "error", err, "consecutive_failures", failures)
		return nil, fmt.Errorf("refresh: %w", err)
	}

	s.mu.Lock()
	s.seq++
	snap.Seq = s.seq
	s.cached = snap
	s.failures = 0
	s.signaled = false
	s.mu.Unlock()

	return snap.Clone(), nil
}

// Snapshot returns a copy of the last-known-good snapshot, or nil when no
// refresh has ever succeeded.
func (s *Synchronizer) Snapshot() *state.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cached.Clone()
}

// ConsecutiveFailures returns the current failed-refresh streak.
func (s *Synchronizer) ConsecutiveFailures() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failures
}

// DegradedSignal returns true exactly once per outage, when the
// consecutive-failure streak crosses the threshold. The signal re-arms
// after the next successful refresh.
func (s *Synchronizer) DegradedSignal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures >= s.threshold && !s.signaled {
		s.signaled = true
		s.logger.Error("emulator connectivity degraded", "consecutive_failures", s.failures)
		return true
	}
	return false
}
