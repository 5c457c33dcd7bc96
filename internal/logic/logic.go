// Package logic contains the move selection strategies. Each strategy
// implements client.Delegate and is picked by name at startup.
package logic

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/fwcd/socha-client-2020/internal/game"
	"github.com/fwcd/socha-client-2020/internal/hex"
	"github.com/fwcd/socha-client-2020/internal/metrics"
	"github.com/fwcd/socha-client-2020/internal/protocol"
)

// ErrNoMoves is returned when a strategy has no legal move to offer.
var ErrNoMoves = errors.New("no legal moves available")

// Names lists the registered strategies.
func Names() []string { return []string{"random", "greedy"} }

// New constructs the strategy with the given name. A zero seed falls back to
// the current time.
func New(name string, seed int64, logger zerolog.Logger) (Strategy, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	switch name {
	case "", "random":
		return &Random{base: base{rng: rng, log: logger}}, nil
	case "greedy":
		return &Greedy{base: base{rng: rng, log: logger}}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (have %v)", name, Names())
	}
}

// Strategy is a named move selection policy.
type Strategy interface {
	Name() string
	RequestMove(ctx context.Context, state *game.State, color game.Color) (game.Move, error)
	OnWelcome(color game.Color)
	OnStateUpdate(state *game.State)
	OnGameEnd(result protocol.Result, color game.Color)
}

// base carries the callbacks shared by all strategies.
type base struct {
	rng *rand.Rand
	log zerolog.Logger
}

func (b *base) OnWelcome(color game.Color) {
	b.log.Info().Str("event", "logic.welcome").Stringer("color", color).Msg("playing as")
}

func (b *base) OnStateUpdate(state *game.State) {}

func (b *base) OnGameEnd(result protocol.Result, color game.Color) {
	outcome := "draw"
	if winner, ok := result.Winner(); ok {
		if winner == color {
			outcome = "won"
		} else {
			outcome = "lost"
		}
	}
	b.log.Info().Str("event", "logic.game_end").Str("outcome", outcome).Msg("game over")
}

// Random picks a uniformly random legal move.
type Random struct {
	base
}

func (r *Random) Name() string { return "random" }

func (r *Random) RequestMove(ctx context.Context, state *game.State, color game.Color) (game.Move, error) {
	moves := state.PossibleMoves(color)
	metrics.PossibleMoves.Observe(float64(len(moves)))
	if len(moves) == 0 {
		return game.Move{}, ErrNoMoves
	}
	move := moves[r.rng.Intn(len(moves))]
	r.log.Debug().
		Str("event", "logic.move_picked").
		Int("candidates", len(moves)).
		Stringer("move", move).
		Msg("picked a random move")
	return move, nil
}

// Greedy scores every legal move with a one-ply heuristic built around the
// bees: crowd the opponent's bee, keep the own bee breathable, and otherwise
// prefer moves near the action. Ties break randomly.
type Greedy struct {
	base
}

func (g *Greedy) Name() string { return "greedy" }

func (g *Greedy) RequestMove(ctx context.Context, state *game.State, color game.Color) (game.Move, error) {
	moves := state.PossibleMoves(color)
	metrics.PossibleMoves.Observe(float64(len(moves)))
	if len(moves) == 0 {
		return game.Move{}, ErrNoMoves
	}

	bestScore := 0
	var best []game.Move
	for i, move := range moves {
		select {
		case <-ctx.Done():
			// Out of time, answer with the best move found so far.
			if len(best) == 0 {
				return moves[0], nil
			}
			return best[0], nil
		default:
		}
		score := evaluate(applyMove(state, color, move), color)
		switch {
		case i == 0 || score > bestScore:
			bestScore = score
			best = append(best[:0], move)
		case score == bestScore:
			best = append(best, move)
		}
	}

	// Pick randomly among the best-scoring moves.
	move := best[g.rng.Intn(len(best))]
	g.log.Debug().
		Str("event", "logic.move_picked").
		Int("candidates", len(moves)).
		Int("score", bestScore).
		Stringer("move", move).
		Msg("picked the greedy move")
	return move, nil
}

// applyMove plays the move on a copy of the board.
func applyMove(state *game.State, color game.Color, move game.Move) game.Board {
	board := state.Board.Clone()
	switch move.Kind {
	case game.SetMove:
		board.Push(move.Destination, move.Piece)
	case game.DragMove:
		if piece, ok := board.Pop(move.Start); ok {
			board.Push(move.Destination, piece)
		}
	}
	return board
}

// evaluate scores a position for the given color. Higher is better. The
// dominant terms count occupied fields around each bee, since surrounding
// the opponent's bee wins the game.
func evaluate(board game.Board, color game.Color) int {
	score := 0
	if coords, ok := beePosition(board, color.Opponent()); ok {
		score += 100 * occupiedNeighbors(board, coords)
	}
	if coords, ok := beePosition(board, color); ok {
		score -= 80 * occupiedNeighbors(board, coords)
	} else {
		// No bee on the board yet, nothing to defend.
		score -= 10
	}
	return score
}

func beePosition(board game.Board, color game.Color) (hex.Axial, bool) {
	for _, pos := range board.All() {
		for _, piece := range pos.Field.Stack() {
			if piece.Kind == game.Bee && piece.Owner == color {
				return pos.Coords, true
			}
		}
	}
	return hex.Axial{}, false
}

func occupiedNeighbors(board game.Board, coords hex.Axial) int {
	count := 0
	for _, n := range coords.Neighbors() {
		if field, ok := board.Field(n); ok && !field.Empty() {
			count++
		}
	}
	return count
}
