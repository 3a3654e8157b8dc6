package wallet

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNotConnected is returned by operations that require an active
	// session. Callers must check it before any network call is made.
	ErrNotConnected = errors.New("wallet not connected")

	// ErrCancelled means the user tore the session down while an
	// operation (connect or a payment flow) was still in flight.
	ErrCancelled = errors.New("cancelled by user")
)

// State is the session lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// Connector runs the interactive part of connecting: unlocking a keystore,
// prompting an external wallet, etc. It may block on user input.
type Connector interface {
	Connect(ctx context.Context) (Identity, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(ctx context.Context) (Identity, error)

func (f ConnectorFunc) Connect(ctx context.Context) (Identity, error) { return f(ctx) }

// Session holds the current identity, if any. One instance is shared for
// the process lifetime. Concurrent Connect calls coalesce onto a single
// in-flight attempt instead of spawning parallel interactive flows.
type Session struct {
	connector Connector

	mu       sync.Mutex
	state    State
	identity Identity

	// inflight is the connect attempt currently running; coalesced
	// waiters hold a reference and wait for it to settle.
	inflight *connectAttempt
}

// connectAttempt settles exactly once. err is written before done is
// closed, so waiters may read it without holding the session lock.
type connectAttempt struct {
	done chan struct{}
	err  error
}

func NewSession(connector Connector) *Session {
	return &Session{connector: connector}
}

// Connect establishes the session. Already connected is a no-op; if a
// connect attempt is already running, the call waits for its outcome
// rather than starting another one.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateConnected:
		s.mu.Unlock()
		return nil
	case StateConnecting:
		attempt := s.inflight
		s.mu.Unlock()
		select {
		case <-attempt.done:
			return attempt.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	attempt := &connectAttempt{done: make(chan struct{})}
	s.state = StateConnecting
	s.inflight = attempt
	s.mu.Unlock()

	identity, err := s.connector.Connect(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight != attempt || s.state != StateConnecting {
		// Disconnected while the interactive flow was running, or a newer
		// attempt owns the session now. This result must not be applied.
		attempt.err = ErrCancelled
		close(attempt.done)
		return ErrCancelled
	}
	s.inflight = nil

	if err != nil {
		s.state = StateDisconnected
		s.identity = nil
		attempt.err = err
		close(attempt.done)
		return err
	}

	s.state = StateConnected
	s.identity = identity
	close(attempt.done)
	return nil
}

// Disconnect tears the session down. Operations still in flight observe
// the missing principal and abort.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateDisconnected
	s.identity = nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Principal returns the textual principal of the connected identity.
func (s *Session) Principal() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnected || s.identity == nil {
		return "", false
	}
	return s.identity.Principal().String(), true
}

// Identity returns the connected identity for signing.
func (s *Session) Identity() (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnected || s.identity == nil {
		return nil, false
	}
	return s.identity, true
}
