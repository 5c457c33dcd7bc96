package game

import (
	"fmt"
	"strings"
)

// Field is a single board position holding a stack of pieces. The last
// element of the stack is the topmost piece. A field may also be obstructed
// by a blackberry, in which case it can never be entered.
//
// Field intentionally does not know its own position; see Positioned.
type Field struct {
	stack      []Piece
	obstructed bool
}

// NewField creates a field with the given stack (bottom first).
func NewField(stack []Piece, obstructed bool) Field {
	return Field{stack: append([]Piece(nil), stack...), obstructed: obstructed}
}

// Top returns the topmost piece, if any.
func (f Field) Top() (Piece, bool) {
	if len(f.stack) == 0 {
		return Piece{}, false
	}
	return f.stack[len(f.stack)-1], true
}

// Owner returns the color of the topmost piece, if any.
func (f Field) Owner() (Color, bool) {
	top, ok := f.Top()
	return top.Owner, ok
}

// OwnedBy reports whether the topmost piece belongs to the given color.
func (f Field) OwnedBy(color Color) bool {
	owner, ok := f.Owner()
	return ok && owner == color
}

// Obstructed reports whether the field is blocked by an obstruction.
func (f Field) Obstructed() bool { return f.obstructed }

// Occupied reports whether the field is obstructed or carries pieces.
func (f Field) Occupied() bool { return f.obstructed || len(f.stack) > 0 }

// Empty reports whether the field can be entered.
func (f Field) Empty() bool { return !f.Occupied() }

// HasPieces reports whether any piece is stacked on the field.
func (f Field) HasPieces() bool { return len(f.stack) > 0 }

// Stack returns the piece stack, bottom first.
func (f Field) Stack() []Piece { return f.stack }

// push stacks a piece on top.
func (f *Field) push(piece Piece) {
	f.stack = append(f.stack, piece)
}

// pop removes and returns the topmost piece.
func (f *Field) pop() (Piece, bool) {
	if len(f.stack) == 0 {
		return Piece{}, false
	}
	top := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return top, true
}

func (f Field) clone() Field {
	return Field{stack: append([]Piece(nil), f.stack...), obstructed: f.obstructed}
}

// ParseField parses the two-character notation used in ASCII board diagrams:
// owner color followed by piece kind, e.g. "RB" for a red bee. An empty
// string yields an empty field. Stacks and obstructions have no notation.
func ParseField(raw string) (Field, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Field{}, nil
	}
	runes := []rune(raw)
	if len(runes) != 2 {
		return Field{}, fmt.Errorf("field %q does not match the two-character notation", raw)
	}
	owner, err := colorFromRune(runes[0])
	if err != nil {
		return Field{}, err
	}
	kind, err := pieceKindFromRune(runes[1])
	if err != nil {
		return Field{}, err
	}
	return Field{stack: []Piece{{Owner: owner, Kind: kind}}}, nil
}

// String renders the field in two-character notation, or "[]" when empty.
func (f Field) String() string {
	if top, ok := f.Top(); ok {
		return top.String()
	}
	return "[]"
}
