package game

import (
	"fmt"

	"github.com/fwcd/socha-client-2020/internal/hex"
)

// MoveKind discriminates the two move shapes of the game.
type MoveKind uint8

const (
	// SetMove places an undeployed piece on the board.
	SetMove MoveKind = iota
	// DragMove slides or jumps a placed piece to a new position.
	DragMove
)

// Move is a transition between two game states. Set moves carry the placed
// piece and a destination; drag moves carry a start and a destination.
type Move struct {
	Kind        MoveKind
	Piece       Piece // set moves only
	Start       hex.Axial
	Destination hex.Axial
}

// NewSetMove creates a placement move.
func NewSetMove(piece Piece, destination hex.Axial) Move {
	return Move{Kind: SetMove, Piece: piece, Destination: destination}
}

// NewDragMove creates a movement move.
func NewDragMove(start, destination hex.Axial) Move {
	return Move{Kind: DragMove, Start: start, Destination: destination}
}

func (m Move) String() string {
	switch m.Kind {
	case SetMove:
		return fmt.Sprintf("set %v at %v", m.Piece, m.Destination)
	default:
		return fmt.Sprintf("drag %v -> %v", m.Start, m.Destination)
	}
}
