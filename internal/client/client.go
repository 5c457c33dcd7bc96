// Package client drives the XML protocol session with the game server: it
// joins a game, tracks the authoritative state and answers move requests
// through a pluggable delegate.
package client

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fwcd/socha-client-2020/internal/game"
	"github.com/fwcd/socha-client-2020/internal/metrics"
	"github.com/fwcd/socha-client-2020/internal/protocol"
	"github.com/fwcd/socha-client-2020/internal/telemetry"
)

// Delegate implements the player's behavior. RequestMove must return a legal
// move before ctx expires; the remaining callbacks are informational.
type Delegate interface {
	RequestMove(ctx context.Context, state *game.State, color game.Color) (game.Move, error)
	OnWelcome(color game.Color)
	OnStateUpdate(state *game.State)
	OnGameEnd(result protocol.Result, color game.Color)
}

// Options configures a client session.
type Options struct {
	Address      string        // host:port of the game server
	Reservation  string        // reservation code; empty joins any open game
	GameType     string        // defaults to protocol.DefaultGameType
	MoveDeadline time.Duration // budget for RequestMove, defaults to 1800ms
	DialTimeout  time.Duration // defaults to 10s
	Logger       zerolog.Logger
}

// Client is a single-game protocol session. It is not reusable.
type Client struct {
	delegate Delegate
	opts     Options
	log      zerolog.Logger

	connected  atomic.Bool
	roomID     string
	color      game.Color
	hasColor   bool
	state      *game.State
	result     *protocol.Result
	transcript []string
}

// ErrNoDelegate is returned by Run when no delegate was provided.
var ErrNoDelegate = errors.New("client needs a delegate")

// New creates a client for one game session.
func New(delegate Delegate, opts Options) *Client {
	if opts.MoveDeadline <= 0 {
		opts.MoveDeadline = 1800 * time.Millisecond
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 10 * time.Second
	}
	return &Client{delegate: delegate, opts: opts, log: opts.Logger}
}

// Connected reports whether the client currently holds a server connection.
func (c *Client) Connected() bool { return c.connected.Load() }

// Result returns the final game result once the game has ended.
func (c *Client) Result() (protocol.Result, bool) {
	if c.result == nil {
		return protocol.Result{}, false
	}
	return *c.result, true
}

// Color returns the player color assigned by the server.
func (c *Client) Color() (game.Color, bool) { return c.color, c.hasColor }

// State returns the last received game state.
func (c *Client) State() *game.State { return c.state }

// Transcript returns the top-level elements exchanged during the session in
// order, rendered back to XML. Useful for replay export.
func (c *Client) Transcript() []string {
	return append([]string(nil), c.transcript...)
}

// Run connects to the server and plays one game to completion. It returns
// nil once the server closes the room, or the first protocol or transport
// error. Cancelling ctx aborts the session.
func (c *Client) Run(ctx context.Context) error {
	if c.delegate == nil {
		return ErrNoDelegate
	}

	dialer := net.Dialer{Timeout: c.opts.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.opts.Address)
	if err != nil {
		return fmt.Errorf("dial game server: %w", err)
	}
	defer conn.Close()

	c.connected.Store(true)
	metrics.ConnectionUp.Set(1)
	defer func() {
		c.connected.Store(false)
		metrics.ConnectionUp.Set(0)
	}()

	// Unblock the read loop when the context is cancelled.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c.log.Info().
		Str("event", "session.connected").
		Str("addr", c.opts.Address).
		Msg("connected to game server")

	if err := c.join(conn); err != nil {
		return err
	}

	dec := xml.NewDecoder(conn)
	if err := c.enterProtocol(dec); err != nil {
		return c.mapErr(ctx, err)
	}

	for {
		elem, err := protocol.ReadElement(dec)
		if err != nil {
			if errors.Is(err, protocol.ErrStreamClosed) {
				c.log.Info().Str("event", "session.closed").Msg("server closed the protocol stream")
				return nil
			}
			return c.mapErr(ctx, fmt.Errorf("read protocol element: %w", err))
		}
		done, err := c.dispatch(ctx, conn, elem)
		if err != nil {
			return c.mapErr(ctx, err)
		}
		if done {
			return nil
		}
	}
}

func (c *Client) join(conn net.Conn) error {
	var join *protocol.Element
	if c.opts.Reservation != "" {
		join = protocol.JoinPreparedElement(c.opts.Reservation)
	} else {
		join = protocol.JoinElement(c.opts.GameType)
	}
	if _, err := fmt.Fprint(conn, "<protocol>", join.String()); err != nil {
		return fmt.Errorf("send join: %w", err)
	}
	c.log.Info().
		Str("event", "session.join_sent").
		Str("handshake", join.Name).
		Msg("sent join request")
	return nil
}

// enterProtocol consumes the opening <protocol> tag of the server stream.
func (c *Client) enterProtocol(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("await protocol stream: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			if start.Name.Local != "protocol" {
				return fmt.Errorf("expected <protocol>, got <%s>", start.Name.Local)
			}
			return nil
		}
	}
}

func (c *Client) dispatch(ctx context.Context, conn net.Conn, elem *protocol.Element) (bool, error) {
	c.transcript = append(c.transcript, elem.String())
	switch elem.Name {
	case "joined":
		joined, err := protocol.ParseJoined(elem)
		if err != nil {
			return false, err
		}
		c.roomID = joined.RoomID
		c.log.Info().Str("event", "room.joined").Str("room_id", joined.RoomID).Msg("joined room")
		return false, nil
	case "left":
		left, err := protocol.ParseLeft(elem)
		if err != nil {
			return false, err
		}
		c.log.Info().Str("event", "room.left").Str("room_id", left.RoomID).Msg("left room")
		return true, nil
	case "room":
		room, err := protocol.ParseRoom(elem)
		if err != nil {
			return false, err
		}
		return false, c.handleData(ctx, conn, room.Data)
	default:
		c.log.Warn().Str("event", "protocol.unhandled").Str("element", elem.Name).Msg("ignoring unknown element")
		return false, nil
	}
}

func (c *Client) handleData(ctx context.Context, conn net.Conn, data protocol.Data) error {
	switch d := data.(type) {
	case protocol.Welcome:
		c.color = d.Color
		c.hasColor = true
		c.log.Info().Str("event", "game.welcome").Stringer("color", d.Color).Msg("assigned player color")
		c.delegate.OnWelcome(d.Color)
		return nil
	case protocol.Memento:
		c.state = d.State
		metrics.TurnsTotal.Inc()
		c.log.Debug().
			Str("event", "game.state").
			Int("turn", d.State.Turn).
			Stringer("current", d.State.CurrentColor).
			Msg("received state update")
		c.delegate.OnStateUpdate(d.State)
		return nil
	case protocol.MoveRequest:
		return c.answerMoveRequest(ctx, conn)
	case protocol.Result:
		c.result = &d
		cause := "unknown"
		if len(d.Scores) > 0 {
			cause = d.Scores[0].Cause.String()
		}
		metrics.GamesTotal.WithLabelValues(cause).Inc()
		c.log.Info().
			Str("event", "game.result").
			Int("winners", len(d.Winners)).
			Msg("received game result")
		if c.hasColor {
			c.delegate.OnGameEnd(d, c.color)
		}
		return nil
	case protocol.ServerError:
		return fmt.Errorf("server error: %s", d.Message)
	default:
		return fmt.Errorf("unhandled room data %T", data)
	}
}

func (c *Client) answerMoveRequest(ctx context.Context, conn net.Conn) error {
	if c.state == nil {
		return errors.New("move requested before the first state update")
	}
	if !c.hasColor {
		return errors.New("move requested before the welcome message")
	}

	moveCtx, span := telemetry.Tracer("socha-client/client").Start(ctx, "move_request")
	span.SetAttributes(
		attribute.Int("game.turn", c.state.Turn),
		attribute.String("game.color", c.color.String()),
	)
	defer span.End()

	moveCtx, cancel := context.WithTimeout(moveCtx, c.opts.MoveDeadline)
	defer cancel()

	started := time.Now()
	move, err := c.delegate.RequestMove(moveCtx, c.state, c.color)
	elapsed := time.Since(started)
	metrics.ObserveMoveSelection(elapsed, err)
	if err != nil {
		return fmt.Errorf("select move: %w", err)
	}

	if err := c.state.ValidateMove(c.color, move); err != nil {
		return fmt.Errorf("delegate chose an illegal move %v: %w", move, err)
	}

	elem := protocol.MoveElement(c.roomID, move, c.state.Board)
	if _, err := fmt.Fprint(conn, elem.String()); err != nil {
		return fmt.Errorf("send move: %w", err)
	}
	c.transcript = append(c.transcript, elem.String())

	c.log.Info().
		Str("event", "game.move_sent").
		Int("turn", c.state.Turn).
		Dur("took", elapsed).
		Stringer("move", move).
		Msg("answered move request")
	return nil
}

// mapErr prefers the context error when the session was cancelled, since
// closing the connection surfaces as an opaque read error.
func (c *Client) mapErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
