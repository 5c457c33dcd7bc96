package game

import (
	"errors"
	"fmt"

	"github.com/fwcd/socha-client-2020/internal/hex"
)

// Rule violations reported by move validation.
var (
	ErrOutOfBounds     = errors.New("position is not on the board")
	ErrObstructed      = errors.New("destination is obstructed")
	ErrOccupied        = errors.New("destination is occupied")
	ErrBeeRequired     = errors.New("bee has to be placed in the fourth round or earlier")
	ErrNotUndeployed   = errors.New("piece is not in the undeployed reserve")
	ErrNotTouchingOwn  = errors.New("placement must touch an own piece")
	ErrTouchingEnemy   = errors.New("placement must not touch an opponent's piece")
	ErrBeeNotPlaced    = errors.New("bee has to be placed before dragging pieces")
	ErrNotOwnPiece     = errors.New("cannot move an opponent's piece")
	ErrNoPiece         = errors.New("no piece to move")
	ErrNullMove        = errors.New("start and destination are equal")
	ErrOnlyBeetleClimb = errors.New("only the beetle may climb onto other pieces")
	ErrSwarmSplit      = errors.New("move would disconnect the swarm")
)

// State is a snapshot of the game at a specific turn: the board plus both
// players and their undeployed reserves.
type State struct {
	Turn         int
	StartColor   Color
	CurrentColor Color
	Board        Board

	red, blue      Player
	undeployedRed  []Piece
	undeployedBlue []Piece
}

// NewState assembles a state snapshot. The undeployed slices are copied.
func NewState(turn int, startColor, currentColor Color, red, blue Player, board Board, undeployedRed, undeployedBlue []Piece) *State {
	return &State{
		Turn:           turn,
		StartColor:     startColor,
		CurrentColor:   currentColor,
		Board:          board,
		red:            red,
		blue:           blue,
		undeployedRed:  append([]Piece(nil), undeployedRed...),
		undeployedBlue: append([]Piece(nil), undeployedBlue...),
	}
}

// NewInitialState builds the empty radius-6 board with full reserves,
// useful for tests and local analysis.
func NewInitialState(red, blue Player) *State {
	return NewState(0, Red, Red, red, blue,
		FillRadius(BoardRadius, nil),
		InitialPieces(Red), InitialPieces(Blue))
}

// Player returns the metadata for the given color.
func (s *State) Player(color Color) Player {
	if color == Red {
		return s.red
	}
	return s.blue
}

// Undeployed returns the undeployed reserve of the given color.
func (s *State) Undeployed(color Color) []Piece {
	if color == Red {
		return s.undeployedRed
	}
	return s.undeployedBlue
}

// Round returns the current round, which is half the turn.
func (s *State) Round() int { return s.Turn / 2 }

// ValidateMove checks the move against the rules for the given color.
func (s *State) ValidateMove(color Color, move Move) error {
	if move.Kind == SetMove {
		return s.validateSetMove(color, move.Piece, move.Destination)
	}
	return s.validateDragMove(color, move.Start, move.Destination)
}

func (s *State) validateSetMove(color Color, piece Piece, destination hex.Axial) error {
	field, ok := s.Board.Field(destination)
	if !ok {
		return fmt.Errorf("set move to %v: %w", destination, ErrOutOfBounds)
	}
	if field.Obstructed() {
		return fmt.Errorf("set move to %v: %w", destination, ErrObstructed)
	}
	if field.HasPieces() {
		return fmt.Errorf("set move to %v: %w", destination, ErrOccupied)
	}
	if !s.Board.HasPieces() {
		// Very first placement may go anywhere.
		return nil
	}
	if len(s.Board.OwnedBy(color)) == 0 {
		// Second placement has to touch the opponent.
		if s.Board.NextTo(color.Opponent(), destination) {
			return nil
		}
		return fmt.Errorf("second placement at %v must touch the opponent", destination)
	}
	if s.Round() == 3 && !s.Board.HasPlacedBee(color) && piece.Kind != Bee {
		return ErrBeeRequired
	}
	if !containsPiece(s.Undeployed(color), piece) {
		return fmt.Errorf("%v: %w", piece, ErrNotUndeployed)
	}
	if !s.Board.NextTo(color, destination) {
		return fmt.Errorf("set move to %v: %w", destination, ErrNotTouchingOwn)
	}
	if s.Board.NextTo(color.Opponent(), destination) {
		return fmt.Errorf("set move to %v: %w", destination, ErrTouchingEnemy)
	}
	return nil
}

func (s *State) validateDragMove(color Color, start, destination hex.Axial) error {
	if !s.Board.HasPlacedBee(color) {
		return ErrBeeNotPlaced
	}
	startField, ok := s.Board.Field(start)
	if !ok {
		return fmt.Errorf("drag move from %v: %w", start, ErrOutOfBounds)
	}
	destField, ok := s.Board.Field(destination)
	if !ok {
		return fmt.Errorf("drag move to %v: %w", destination, ErrOutOfBounds)
	}
	dragged, ok := startField.Top()
	if !ok {
		return fmt.Errorf("drag move from %v: %w", start, ErrNoPiece)
	}
	if dragged.Owner != color {
		return fmt.Errorf("drag move from %v: %w", start, ErrNotOwnPiece)
	}
	if start == destination {
		return ErrNullMove
	}
	if destField.Obstructed() {
		return fmt.Errorf("drag move to %v: %w", destination, ErrObstructed)
	}
	if destField.HasPieces() && dragged.Kind != Beetle {
		return ErrOnlyBeetleClimb
	}

	lifted := s.Board.Clone()
	lifted.Pop(start)
	if !lifted.SwarmConnected() {
		return ErrSwarmSplit
	}

	switch dragged.Kind {
	case Ant:
		if !s.Board.ConnectedByBoundaryPath(start, destination) {
			return fmt.Errorf("ant found no boundary path from %v to %v", start, destination)
		}
	case Bee:
		if !start.AdjacentTo(destination) {
			return fmt.Errorf("bee may only move one step from %v", start)
		}
		if !s.Board.CanMoveBetween(start, destination) {
			return fmt.Errorf("bee cannot slide from %v to %v", start, destination)
		}
	case Beetle:
		if !start.AdjacentTo(destination) {
			return fmt.Errorf("beetle may only move one step from %v", start)
		}
		if !s.beetleStaysOnSwarm(start, destination) {
			return fmt.Errorf("beetle has to move along the swarm from %v", start)
		}
	case Grasshopper:
		if !start.FormsLineWith(destination) {
			return fmt.Errorf("grasshopper may only jump along straight lines")
		}
		if start.AdjacentTo(destination) {
			return fmt.Errorf("grasshopper must not move to a neighbor")
		}
		for _, c := range start.LineBetween(destination) {
			if f, ok := s.Board.Field(c); ok && f.Empty() {
				return fmt.Errorf("grasshopper cannot jump over the empty field %v", c)
			}
		}
	case Spider:
		if !s.Board.ReachableInThreeSteps(start, destination) {
			return fmt.Errorf("spider found no three-step path from %v to %v", start, destination)
		}
	}
	return nil
}

func (s *State) beetleStaysOnSwarm(start, destination hex.Axial) bool {
	for _, n := range s.Board.sharedNeighbors(start, destination, nil) {
		if n.Field.HasPieces() {
			return true
		}
	}
	destField, _ := s.Board.Field(destination)
	return destField.HasPieces()
}

// PossibleMoves returns all legal moves for the given color.
func (s *State) PossibleMoves(color Color) []Move {
	moves := s.PossibleSetMoves(color)
	return append(moves, s.PossibleDragMoves(color)...)
}

// PossibleSetMoves returns all legal placements for the given color.
func (s *State) PossibleSetMoves(color Color) []Move {
	undeployed := s.Undeployed(color)
	opponent := color.Opponent()

	var destinations []hex.Axial
	switch {
	case !s.Board.HasPieces():
		// First placement: anywhere.
		for _, p := range s.Board.EmptyFields() {
			destinations = append(destinations, p.Coords)
		}
	case len(s.Board.OwnedBy(color)) == 0:
		// Second placement: next to the opponent's opening piece.
		seen := map[hex.Axial]struct{}{}
		for _, owned := range s.Board.OwnedBy(opponent) {
			for _, n := range s.Board.EmptyNeighbors(owned.Coords) {
				if _, ok := seen[n.Coords]; !ok {
					seen[n.Coords] = struct{}{}
					destinations = append(destinations, n.Coords)
				}
			}
		}
	default:
		destinations = s.Board.SetMoveDestinations(color)
	}

	if !s.Board.HasPlacedBee(color) && s.Turn > 5 {
		// Placing the bee is the only legal placement now.
		bee := Piece{Owner: color, Kind: Bee}
		if !containsPiece(undeployed, bee) {
			return nil
		}
		moves := make([]Move, 0, len(destinations))
		for _, d := range destinations {
			moves = append(moves, NewSetMove(bee, d))
		}
		return moves
	}

	kinds := map[PieceKind]struct{}{}
	var moves []Move
	for _, piece := range undeployed {
		if _, ok := kinds[piece.Kind]; ok {
			continue
		}
		kinds[piece.Kind] = struct{}{}
		for _, d := range destinations {
			moves = append(moves, NewSetMove(piece, d))
		}
	}
	return moves
}

// PossibleDragMoves returns all legal piece movements for the given color.
func (s *State) PossibleDragMoves(color Color) []Move {
	var moves []Move
	boundary := s.Board.SwarmBoundary()
	for _, owned := range s.Board.OwnedBy(color) {
		targets := boundary
		if top, ok := owned.Field.Top(); ok && top.Kind == Beetle {
			targets = append(append([]Positioned(nil), boundary...), s.Board.Neighbors(owned.Coords)...)
		}
		for _, target := range targets {
			move := NewDragMove(owned.Coords, target.Coords)
			if s.ValidateMove(color, move) == nil {
				moves = append(moves, move)
			}
		}
	}
	return moves
}

func containsPiece(pieces []Piece, piece Piece) bool {
	for _, p := range pieces {
		if p == piece {
			return true
		}
	}
	return false
}
