package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jwebster45206/route-agent/pkg/state"
)

// GameHost is the boundary to the emulation host process. State fetches
// are idempotent and side-effect free on the host; they may be repeated
// freely.
type GameHost interface {
	HealthChecker
	Closer

	// FetchState pulls the latest structured snapshot. The returned
	// snapshot carries no sequence number; the synchronizer assigns one.
	FetchState(ctx context.Context) (*state.Snapshot, error)

	// SendInput presses the given buttons on the emulator.
	SendInput(ctx context.Context, buttons []string) error

	// SaveCheckpoint asks the host to write an emulator save-state and
	// returns its reference.
	SaveCheckpoint(ctx context.Context, name string) (string, error)
}

type hostRequest struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Buttons []string `json:"buttons,omitempty"`
	Name    string   `json:"name,omitempty"`
}

type hostResponse struct {
	ID           string          `json:"id"`
	Error        string          `json:"error,omitempty"`
	State        *state.Snapshot `json:"state,omitempty"`
	SaveStateRef string          `json:"savestate_ref,omitempty"`
}

// EmulatorService talks to the emulation host over a websocket using
// serialized request/response pairs. The connection is dialed lazily and
// redialed after any transport error; a failed call never leaves a
// half-broken connection behind.
type EmulatorService struct {
	url     string
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	nextID uint64
}

var _ GameHost = (*EmulatorService)(nil)

// NewEmulatorService creates a host client for the given websocket URL.
// The timeout bounds each round trip when the caller's context carries no
// deadline of its own.
func NewEmulatorService(url string, timeout time.Duration, logger *slog.Logger) *EmulatorService {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &EmulatorService{
		url:     url,
		timeout: timeout,
		logger:  logger,
	}
}

func (s *EmulatorService) Ping(ctx context.Context) error {
	_, err := s.FetchState(ctx)
	return err
}

func (s *EmulatorService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	if err != nil {
		s.logger.Error("Failed to close emulator connection", "error", err)
		return err
	}
	s.logger.Info("Emulator connection closed")
	return nil
}

func (s *EmulatorService) FetchState(ctx context.Context) (*state.Snapshot, error) {
	resp, err := s.roundTrip(ctx, hostRequest{Type: "state"})
	if err != nil {
		return nil, err
	}
	if resp.State == nil {
		return nil, fmt.Errorf("emulator returned no state")
	}
	return resp.State, nil
}

func (s *EmulatorService) SendInput(ctx context.Context, buttons []string) error {
	_, err := s.roundTrip(ctx, hostRequest{Type: "input", Buttons: buttons})
	return err
}

func (s *EmulatorService) SaveCheckpoint(ctx context.Context, name string) (string, error) {
	resp, err := s.roundTrip(ctx, hostRequest{Type: "savestate", Name: name})
	if err != nil {
		return "", err
	}
	if resp.SaveStateRef == "" {
		return "", fmt.Errorf("emulator returned no save-state reference")
	}
	return resp.SaveStateRef, nil
}

func (s *EmulatorService) roundTrip(ctx context.Context, req hostRequest) (*hostResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(s.timeout)
	}

	if s.conn == nil {
		dialer := websocket.Dialer{HandshakeTimeout: time.Until(deadline)}
		conn, _, err := dialer.DialContext(ctx, s.url, nil)
		if err != nil {
			return nil, fmt.Errorf("dial emulator %s: %w", s.url, err)
		}
		s.logger.Info("Emulator connection established", "url", s.url)
		s.conn = conn
	}

	s.nextID++
	req.ID = strconv.FormatUint(s.nextID, 10)

	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		s.dropConn()
		return nil, fmt.Errorf("set write deadline: %w", err)
	}
	if err := s.conn.WriteJSON(req); err != nil {
		s.dropConn()
		return nil, fmt.Errorf("write %s request: %w", req.Type, err)
	}

	if err := s.conn.SetReadDeadline(deadline); err != nil {
		s.dropConn()
		return nil, fmt.Errorf("set read deadline: %w", err)
	}
	var resp hostResponse
	if err := s.conn.ReadJSON(&resp); err != nil {
		s.dropConn()
		return nil, fmt.Errorf("read %s response: %w", req.Type, err)
	}

	if resp.ID != req.ID {
		// Requests are serialized, so a mismatch means the stream is out
		// of sync; start over with a fresh connection.
		s.dropConn()
		return nil, fmt.Errorf("response ID %q does not match request %q", resp.ID, req.ID)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("emulator error: %s", resp.Error)
	}
	return &resp, nil
}

// dropConn discards the connection so the next call redials. Callers must
// hold the mutex.
func (s *EmulatorService) dropConn() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}
