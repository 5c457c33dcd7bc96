package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwcd/socha-client-2020/internal/hex"
)

func testPlayers() (Player, Player) {
	return Player{Red, "alice"}, Player{Blue, "bob"}
}

// buildState wires a board into a state with reserves reduced by the pieces
// already on the board.
func buildState(t *testing.T, turn int, board Board) *State {
	t.Helper()
	red, blue := testPlayers()
	undeployed := map[Color][]Piece{
		Red:  InitialPieces(Red),
		Blue: InitialPieces(Blue),
	}
	for _, p := range board.All() {
		for _, piece := range p.Field.Stack() {
			reserve := undeployed[piece.Owner]
			for i, r := range reserve {
				if r == piece {
					undeployed[piece.Owner] = append(reserve[:i], reserve[i+1:]...)
					break
				}
			}
		}
	}
	current := Red
	if turn%2 == 1 {
		current = Blue
	}
	return NewState(turn, Red, current, red, blue, board, undeployed[Red], undeployed[Blue])
}

func TestFirstTurnSetMovesCoverWholeBoard(t *testing.T) {
	state := NewInitialState(testPlayers())
	moves := state.PossibleSetMoves(Red)

	destinations := map[hex.Axial]struct{}{}
	kinds := map[PieceKind]struct{}{}
	for _, m := range moves {
		require.Equal(t, SetMove, m.Kind)
		destinations[m.Destination] = struct{}{}
		kinds[m.Piece.Kind] = struct{}{}
	}
	assert.Len(t, destinations, FieldCount)
	assert.Len(t, kinds, 5)
	assert.Empty(t, state.PossibleDragMoves(Red), "nothing to drag on an empty board")
}

func TestSecondTurnSetMovesTouchOpponent(t *testing.T) {
	board := FillRadius(BoardRadius, nil)
	board.Push(hex.Axial{X: 0, Y: 0}, Piece{Red, Spider})
	state := buildState(t, 1, board)

	moves := state.PossibleSetMoves(Blue)
	require.NotEmpty(t, moves)
	for _, m := range moves {
		assert.True(t, state.Board.NextTo(Red, m.Destination),
			"second placement %v must touch the opponent", m)
	}
}

func TestBeeForcedAfterTurnFive(t *testing.T) {
	board := FillRadius(BoardRadius, nil)
	board.Push(hex.Axial{X: 0, Y: 0}, Piece{Red, Spider})
	board.Push(hex.Axial{X: 0, Y: 1}, Piece{Blue, Spider})
	board.Push(hex.Axial{X: 0, Y: -1}, Piece{Red, Ant})
	board.Push(hex.Axial{X: 0, Y: 2}, Piece{Blue, Ant})
	board.Push(hex.Axial{X: 1, Y: -2}, Piece{Red, Ant})
	board.Push(hex.Axial{X: -1, Y: 3}, Piece{Blue, Ant})
	state := buildState(t, 6, board)

	moves := state.PossibleSetMoves(Red)
	require.NotEmpty(t, moves)
	for _, m := range moves {
		assert.Equal(t, Bee, m.Piece.Kind, "only bee placements are legal, got %v", m)
	}
}

func TestForcedBeePlacementNeedsBeeInReserve(t *testing.T) {
	// Past turn five with no bee on the board and an exhausted reserve there
	// is nothing left to place.
	red, blue := testPlayers()
	state := NewState(6, Red, Red, red, blue, FillRadius(BoardRadius, nil), nil, nil)

	assert.Empty(t, state.PossibleSetMoves(Red))
	assert.Empty(t, state.PossibleMoves(Red))
}

func TestValidateSetMoveRejectsOpponentContact(t *testing.T) {
	board := FillRadius(BoardRadius, nil)
	board.Push(hex.Axial{X: 0, Y: 0}, Piece{Red, Bee})
	board.Push(hex.Axial{X: 0, Y: 1}, Piece{Blue, Bee})
	state := buildState(t, 2, board)

	// (1, 0) touches both hives.
	err := state.ValidateMove(Red, NewSetMove(Piece{Red, Ant}, hex.Axial{X: 1, Y: 0}))
	assert.ErrorIs(t, err, ErrTouchingEnemy)

	// (1, -1) only touches red.
	assert.NoError(t, state.ValidateMove(Red, NewSetMove(Piece{Red, Ant}, hex.Axial{X: 1, Y: -1})))

	// Occupied fields are never valid destinations.
	err = state.ValidateMove(Red, NewSetMove(Piece{Red, Ant}, hex.Axial{X: 0, Y: 1}))
	assert.ErrorIs(t, err, ErrOccupied)

	// Off-board placements neither.
	err = state.ValidateMove(Red, NewSetMove(Piece{Red, Ant}, hex.Axial{X: 9, Y: 9}))
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestDragRequiresPlacedBee(t *testing.T) {
	board := FillRadius(BoardRadius, nil)
	board.Push(hex.Axial{X: 0, Y: 0}, Piece{Red, Spider})
	board.Push(hex.Axial{X: 0, Y: 1}, Piece{Blue, Bee})
	state := buildState(t, 2, board)

	err := state.ValidateMove(Red, NewDragMove(hex.Axial{X: 0, Y: 0}, hex.Axial{X: 1, Y: 0}))
	assert.ErrorIs(t, err, ErrBeeNotPlaced)
}

func TestDragMoveKeepsSwarmConnected(t *testing.T) {
	// red bee - blue bee - blue ant in a line; dragging the blue bee would
	// split red bee from the ant.
	board := FillRadius(BoardRadius, nil)
	board.Push(hex.Axial{X: 0, Y: -1}, Piece{Red, Bee})
	board.Push(hex.Axial{X: 0, Y: 0}, Piece{Blue, Bee})
	board.Push(hex.Axial{X: 0, Y: 1}, Piece{Blue, Ant})
	state := buildState(t, 4, board)

	err := state.ValidateMove(Blue, NewDragMove(hex.Axial{X: 0, Y: 0}, hex.Axial{X: 1, Y: 0}))
	assert.ErrorIs(t, err, ErrSwarmSplit)
}

func TestBeeMovesOneAccessibleStep(t *testing.T) {
	board := FillRadius(BoardRadius, nil)
	board.Push(hex.Axial{X: 0, Y: 0}, Piece{Red, Bee})
	board.Push(hex.Axial{X: 0, Y: 1}, Piece{Blue, Bee})
	state := buildState(t, 4, board)

	// One step around the blue bee is fine.
	assert.NoError(t, state.ValidateMove(Red, NewDragMove(hex.Axial{X: 0, Y: 0}, hex.Axial{X: 1, Y: 0})))

	// Two steps are not.
	err := state.ValidateMove(Red, NewDragMove(hex.Axial{X: 0, Y: 0}, hex.Axial{X: 1, Y: 1}))
	assert.Error(t, err)
}

func TestGrasshopperJumpsOverPieces(t *testing.T) {
	board := FillRadius(BoardRadius, nil)
	board.Push(hex.Axial{X: 0, Y: 0}, Piece{Red, Grasshopper})
	board.Push(hex.Axial{X: 0, Y: 1}, Piece{Blue, Bee})
	board.Push(hex.Axial{X: 0, Y: 2}, Piece{Red, Bee})
	state := buildState(t, 4, board)

	// Jump over both bees onto the empty field behind them.
	assert.NoError(t, state.ValidateMove(Red, NewDragMove(hex.Axial{X: 0, Y: 0}, hex.Axial{X: 0, Y: 3})))

	// A jump over an empty field is illegal.
	err := state.ValidateMove(Red, NewDragMove(hex.Axial{X: 0, Y: 0}, hex.Axial{X: 2, Y: -2}))
	assert.Error(t, err)

	// Moving to a neighbor is illegal for the grasshopper.
	err = state.ValidateMove(Red, NewDragMove(hex.Axial{X: 0, Y: 0}, hex.Axial{X: 1, Y: 0}))
	assert.Error(t, err)
}

func TestOnlyBeetleClimbs(t *testing.T) {
	board := FillRadius(BoardRadius, nil)
	board.Push(hex.Axial{X: 0, Y: 0}, Piece{Red, Bee})
	board.Push(hex.Axial{X: 1, Y: 0}, Piece{Red, Beetle})
	board.Push(hex.Axial{X: 0, Y: 1}, Piece{Blue, Bee})
	state := buildState(t, 4, board)

	// The beetle may climb onto the red bee.
	assert.NoError(t, state.ValidateMove(Red, NewDragMove(hex.Axial{X: 1, Y: 0}, hex.Axial{X: 0, Y: 0})))

	// The bee may not climb onto the beetle.
	err := state.ValidateMove(Red, NewDragMove(hex.Axial{X: 0, Y: 0}, hex.Axial{X: 1, Y: 0}))
	assert.ErrorIs(t, err, ErrOnlyBeetleClimb)
}

func TestPossibleMovesAreAllValid(t *testing.T) {
	board := FillRadius(BoardRadius, nil)
	board.Push(hex.Axial{X: 0, Y: 0}, Piece{Red, Bee})
	board.Push(hex.Axial{X: 0, Y: 1}, Piece{Blue, Bee})
	board.Push(hex.Axial{X: 1, Y: -1}, Piece{Red, Ant})
	board.Push(hex.Axial{X: 0, Y: 2}, Piece{Blue, Spider})
	state := buildState(t, 4, board)

	for _, color := range []Color{Red, Blue} {
		moves := state.PossibleMoves(color)
		require.NotEmpty(t, moves)
		for _, m := range moves {
			assert.NoError(t, state.ValidateMove(color, m), "generated move %v must validate", m)
		}
	}
}
