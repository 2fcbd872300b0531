package editor_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mattfehr/volleyball-rotation-tracker/editor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

var errClosed = errors.New("closed")

// pipeConnection feeds frames from a channel and records what is written.
type pipeConnection struct {
	frames chan []byte

	mu      sync.Mutex
	written [][]byte
	pings   int
	closed  string
	done    chan struct{}
	once    sync.Once
}

func newPipeConnection() *pipeConnection {
	return &pipeConnection{frames: make(chan []byte, 16), done: make(chan struct{})}
}

func (p *pipeConnection) Read() ([]byte, error) {
	select {
	case f, ok := <-p.frames:
		if !ok {
			return nil, errClosed
		}
		return f, nil
	case <-p.done:
		return nil, errClosed
	}
}

func (p *pipeConnection) Write(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.written = append(p.written, data)
	return nil
}

func (p *pipeConnection) Ping() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pings++
	return nil
}

func (p *pipeConnection) Close(code string) {
	p.mu.Lock()
	p.closed = code
	p.mu.Unlock()
	p.once.Do(func() { close(p.done) })
}

func (p *pipeConnection) replies(t *testing.T) []editor.Envelope {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]editor.Envelope, 0, len(p.written))
	for _, w := range p.written {
		env, err := editor.DecodeEnvelope(w)
		require.NoError(t, err)
		out = append(out, env)
	}
	return out
}

func runClient(t *testing.T, ctx context.Context, conn *pipeConnection, limiter *rate.Limiter, ping time.Duration) chan struct{} {
	t.Helper()
	client := editor.NewClient(newSession(nil), conn, limiter, ping)
	finished := make(chan struct{})
	go func() {
		client.Run(ctx)
		close(finished)
	}()
	return finished
}

func TestClientHandlesFramesInOrder(t *testing.T) {
	t.Parallel()
	conn := newPipeConnection()

	for _, typ := range []string{editor.CmdNext, editor.CmdNext, editor.CmdCheck} {
		data, err := editor.Encode(typ, nil)
		require.NoError(t, err)
		conn.frames <- data
	}
	conn.frames <- []byte("not json")
	close(conn.frames)

	finished := runClient(t, context.Background(), conn, nil, time.Hour)
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("client did not stop after the connection closed")
	}

	replies := conn.replies(t)
	require.Len(t, replies, 5)
	assert.Equal(t, editor.ReplyState, replies[0].T, "initial state")
	assert.Equal(t, editor.ReplyState, replies[1].T)
	st, err := editor.DecodePayload[editor.State](replies[2])
	require.NoError(t, err)
	assert.Equal(t, 2, st.Active)
	assert.Equal(t, editor.ReplyLegality, replies[3].T)
	assert.Equal(t, editor.ReplyError, replies[4].T)
}

func TestClientStopsOnShutdown(t *testing.T) {
	t.Parallel()
	conn := newPipeConnection()
	ctx, cancel := context.WithCancel(context.Background())

	finished := runClient(t, ctx, conn, nil, time.Hour)
	cancel()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("client ignored shutdown")
	}
	conn.mu.Lock()
	defer conn.mu.Unlock()
	assert.Equal(t, editor.CloseShutdown, conn.closed)
}

func TestClientPings(t *testing.T) {
	t.Parallel()
	conn := newPipeConnection()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runClient(t, ctx, conn, nil, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return conn.pings >= 2
	}, 5*time.Second, 10*time.Millisecond)
}

func TestClientDropsFramesBeyondRate(t *testing.T) {
	t.Parallel()
	conn := newPipeConnection()

	for range 5 {
		data, _ := editor.Encode(editor.CmdNext, nil)
		conn.frames <- data
	}
	close(conn.frames)

	finished := runClient(t, context.Background(), conn, rate.NewLimiter(rate.Every(time.Hour), 2), time.Hour)
	<-finished

	replies := conn.replies(t)
	assert.Len(t, replies, 3, "initial state plus two allowed frames")
}

func TestClientSavesWhileDroppingFrames(t *testing.T) {
	t.Parallel()
	conn := newPipeConnection()
	lib := new(MockLibrary)
	lib.On("Save", mock.Anything, "user-1", mock.Anything, mock.Anything).Return("set-1", nil)
	session := newSession(lib)

	client := editor.NewClient(session, conn, rate.NewLimiter(rate.Every(time.Millisecond), 1), time.Hour)
	finished := make(chan struct{})
	go func() {
		client.Run(context.Background())
		close(finished)
	}()

	data, err := editor.Encode(editor.CmdSave, nil)
	require.NoError(t, err)
	for range 500 {
		conn.frames <- data
	}
	close(conn.frames)

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("client did not stop after the connection closed")
	}

	assert.Equal(t, "set-1", session.SetID())
	saved := 0
	for _, reply := range conn.replies(t) {
		if reply.T == editor.ReplySaved {
			saved++
		}
	}
	assert.Positive(t, saved)
	assert.LessOrEqual(t, saved, 500)
}
