package client

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/fwcd/socha-client-2020/internal/game"
	"github.com/fwcd/socha-client-2020/internal/protocol"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedServer accepts one connection, waits for the join handshake and
// then plays back the given messages. Everything the client sends after the
// handshake is collected into sent.
type scriptedServer struct {
	listener net.Listener
	messages []string
	awaitOne bool // wait for one client message before the last scripted one

	mu   sync.Mutex
	sent []string
	wg   sync.WaitGroup
}

func newScriptedServer(t *testing.T, awaitOne bool, messages ...string) *scriptedServer {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &scriptedServer{listener: listener, messages: messages, awaitOne: awaitOne}
	s.wg.Add(1)
	go s.serve(t)
	t.Cleanup(func() {
		listener.Close()
		s.wg.Wait()
	})
	return s
}

func (s *scriptedServer) addr() string { return s.listener.Addr().String() }

func (s *scriptedServer) serve(t *testing.T) {
	defer s.wg.Done()
	conn, err := s.listener.Accept()
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	reader := bufio.NewReader(conn)
	// The handshake is "<protocol>" plus a self-closing join element.
	if _, err := s.readUntil(reader, "<protocol>"); err != nil {
		t.Errorf("read handshake preamble: %v", err)
		return
	}
	join, err := s.readUntil(reader, "/>")
	if err != nil {
		t.Errorf("read join: %v", err)
		return
	}
	s.record(join)

	conn.Write([]byte("<protocol>"))
	for i, msg := range s.messages {
		if s.awaitOne && i == len(s.messages)-1 {
			reply, err := s.readUntil(reader, "</room>")
			if err != nil {
				t.Errorf("read client move: %v", err)
				return
			}
			s.record(reply)
		}
		conn.Write([]byte(msg))
	}
	conn.Write([]byte("</protocol>"))
}

func (s *scriptedServer) readUntil(r *bufio.Reader, marker string) (string, error) {
	var b strings.Builder
	for !strings.Contains(b.String(), marker) {
		c, err := r.ReadByte()
		if err != nil {
			return b.String(), err
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}

func (s *scriptedServer) record(msg string) {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
}

func (s *scriptedServer) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

// recordingDelegate answers every move request with the first legal move.
type recordingDelegate struct {
	mu       sync.Mutex
	welcomed []game.Color
	states   []*game.State
	results  []protocol.Result
}

func (d *recordingDelegate) RequestMove(ctx context.Context, state *game.State, color game.Color) (game.Move, error) {
	moves := state.PossibleMoves(color)
	if len(moves) == 0 {
		return game.Move{}, context.DeadlineExceeded
	}
	return moves[0], nil
}

func (d *recordingDelegate) OnWelcome(color game.Color) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.welcomed = append(d.welcomed, color)
}

func (d *recordingDelegate) OnStateUpdate(state *game.State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.states = append(d.states, state)
}

func (d *recordingDelegate) OnGameEnd(result protocol.Result, color game.Color) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.results = append(d.results, result)
}

const initialMemento = `
<room roomId="r1">
  <data class="memento">
    <state turn="0" startPlayerColor="RED" currentPlayerColor="RED">
      <red color="RED" displayName="alice"/>
      <blue color="BLUE" displayName="bob"/>
      <board><fields></fields></board>
      <undeployedRedPieces>
        <piece owner="RED" type="BEE"/>
        <piece owner="RED" type="ANT"/>
      </undeployedRedPieces>
      <undeployedBluePieces>
        <piece owner="BLUE" type="BEE"/>
      </undeployedBluePieces>
    </state>
  </data>
</room>`

const gameResult = `
<room roomId="r1">
  <data class="result">
    <definition>
      <fragment name="Siegpunkte">
        <aggregation>SUM</aggregation>
        <relevantForRanking>true</relevantForRanking>
      </fragment>
    </definition>
    <score cause="REGULAR" reason=""/>
    <winner color="RED" displayName="alice"/>
  </data>
</room>`

func TestRunPlaysFullSession(t *testing.T) {
	server := newScriptedServer(t, true,
		`<joined roomId="r1"/>`,
		`<room roomId="r1"><data class="welcomeMessage" color="RED"/></room>`,
		initialMemento,
		`<room roomId="r1"><data class="sc.framework.plugins.protocol.MoveRequest"/></room>`,
		gameResult,
	)

	delegate := &recordingDelegate{}
	c := New(delegate, Options{Address: server.addr()})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Run(ctx))

	color, ok := c.Color()
	require.True(t, ok)
	assert.Equal(t, game.Red, color)

	assert.Equal(t, []game.Color{game.Red}, delegate.welcomed)
	require.Len(t, delegate.states, 1)
	assert.Equal(t, 0, delegate.states[0].Turn)
	require.Len(t, delegate.results, 1)
	winner, ok := delegate.results[0].Winner()
	require.True(t, ok)
	assert.Equal(t, game.Red, winner)

	result, ok := c.Result()
	require.True(t, ok)
	assert.Len(t, result.Scores, 1)

	received := server.received()
	require.Len(t, received, 2, "join handshake and one move")
	assert.Contains(t, received[0], `gameType="swc_2020_hive"`)
	assert.Contains(t, received[1], `class="setmove"`)
	assert.Contains(t, received[1], `roomId="r1"`)
	assert.False(t, c.Connected())
}

func TestRunJoinsPreparedGame(t *testing.T) {
	server := newScriptedServer(t, false, `<joined roomId="r9"/>`)

	c := New(&recordingDelegate{}, Options{Address: server.addr(), Reservation: "code42"})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Run(ctx))

	received := server.received()
	require.NotEmpty(t, received)
	assert.Contains(t, received[0], `<joinPrepared reservationCode="code42"/>`)
}

func TestRunStopsOnCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		// Keep the stream open without sending anything after the preamble.
		conn.Write([]byte("<protocol>"))
		buf := make([]byte, 1024)
		for {
			if _, err := conn.Read(buf); err != nil {
				return
			}
		}
	}()
	defer wg.Wait()

	c := New(&recordingDelegate{}, Options{Address: listener.Addr().String()})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	err = c.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunReportsServerError(t *testing.T) {
	server := newScriptedServer(t, false,
		`<joined roomId="r1"/>`,
		`<room roomId="r1"><data class="error" message="room is full"/></room>`,
	)

	c := New(&recordingDelegate{}, Options{Address: server.addr()})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := c.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "room is full")
}

func TestRunRequiresDelegate(t *testing.T) {
	c := New(nil, Options{Address: "127.0.0.1:1"})
	assert.ErrorIs(t, c.Run(context.Background()), ErrNoDelegate)
}

func TestMoveRequestBeforeStateFails(t *testing.T) {
	server := newScriptedServer(t, false,
		`<joined roomId="r1"/>`,
		`<room roomId="r1"><data class="welcomeMessage" color="RED"/></room>`,
		`<room roomId="r1"><data class="sc.framework.plugins.protocol.MoveRequest"/></room>`,
	)

	c := New(&recordingDelegate{}, Options{Address: server.addr()})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := c.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before the first state update")
}
