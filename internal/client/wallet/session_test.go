package wallet

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/modelmart/modelmart/internal/icp"
)

type stubIdentity struct {
	principal icp.Principal
}

func (s *stubIdentity) Principal() icp.Principal    { return s.principal }
func (s *stubIdentity) PublicKeyDER() []byte        { return []byte{1, 2, 3} }
func (s *stubIdentity) Sign([]byte) ([]byte, error) { return nil, nil }

func TestSession_ConnectDisconnect(t *testing.T) {
	id := &stubIdentity{principal: icp.Anonymous()}
	s := NewSession(ConnectorFunc(func(ctx context.Context) (Identity, error) {
		return id, nil
	}))

	_, ok := s.Principal()
	require.False(t, ok)
	require.Equal(t, StateDisconnected, s.State())

	require.NoError(t, s.Connect(context.Background()))
	require.Equal(t, StateConnected, s.State())

	p, ok := s.Principal()
	require.True(t, ok)
	require.Equal(t, "2vxsx-fae", p)

	s.Disconnect()
	require.Equal(t, StateDisconnected, s.State())
	_, ok = s.Identity()
	require.False(t, ok)
}

func TestSession_ConnectError(t *testing.T) {
	boom := errors.New("user dismissed prompt")
	s := NewSession(ConnectorFunc(func(ctx context.Context) (Identity, error) {
		return nil, boom
	}))

	require.ErrorIs(t, s.Connect(context.Background()), boom)
	require.Equal(t, StateDisconnected, s.State())
}

func TestSession_CoalescesConcurrentConnects(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	s := NewSession(ConnectorFunc(func(ctx context.Context) (Identity, error) {
		calls.Add(1)
		<-release
		return &stubIdentity{principal: icp.Anonymous()}, nil
	}))

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Connect(context.Background())
		}(i)
	}

	// Let the goroutines pile up on the single in-flight attempt.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), calls.Load(), "interactive connect must run once")
	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, StateConnected, s.State())
}

func TestSession_ConnectAfterConnectedIsNoop(t *testing.T) {
	var calls atomic.Int32
	s := NewSession(ConnectorFunc(func(ctx context.Context) (Identity, error) {
		calls.Add(1)
		return &stubIdentity{principal: icp.Anonymous()}, nil
	}))

	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Connect(context.Background()))
	require.Equal(t, int32(1), calls.Load())
}

func TestSession_DisconnectDuringConnect(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := NewSession(ConnectorFunc(func(ctx context.Context) (Identity, error) {
		close(started)
		<-release
		return &stubIdentity{principal: icp.Anonymous()}, nil
	}))

	done := make(chan error, 1)
	go func() { done <- s.Connect(context.Background()) }()

	<-started
	s.Disconnect()
	close(release)

	require.ErrorIs(t, <-done, ErrCancelled)
	require.Equal(t, StateDisconnected, s.State())
	_, ok := s.Principal()
	require.False(t, ok)
}

func TestSession_CancelledConnectDoesNotClobberNewAttempt(t *testing.T) {
	first := &stubIdentity{principal: icp.Anonymous()}
	second := &stubIdentity{principal: icp.MustFromText("aaaaa-aa")}

	var calls atomic.Int32
	started := make(chan struct{}, 2)
	release := []chan struct{}{make(chan struct{}), make(chan struct{})}
	identities := []Identity{first, second}
	s := NewSession(ConnectorFunc(func(ctx context.Context) (Identity, error) {
		n := calls.Add(1) - 1
		started <- struct{}{}
		<-release[n]
		return identities[n], nil
	}))

	done1 := make(chan error, 1)
	go func() { done1 <- s.Connect(context.Background()) }()
	<-started

	// The user cancels and immediately reconnects while the first
	// interactive flow is still blocked.
	s.Disconnect()
	done2 := make(chan error, 1)
	go func() { done2 <- s.Connect(context.Background()) }()
	<-started

	// The stale attempt settles first. It must return ErrCancelled and
	// leave the live attempt's state alone.
	close(release[0])
	require.ErrorIs(t, <-done1, ErrCancelled)
	require.Equal(t, StateConnecting, s.State())

	close(release[1])
	require.NoError(t, <-done2)
	require.Equal(t, StateConnected, s.State())

	p, ok := s.Principal()
	require.True(t, ok)
	require.Equal(t, second.principal.String(), p)
}
