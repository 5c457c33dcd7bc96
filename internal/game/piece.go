package game

import (
	"fmt"
	"strings"
)

// PieceKind is the type of an insect piece.
type PieceKind uint8

const (
	Ant PieceKind = iota
	Bee
	Beetle
	Grasshopper
	Spider
)

// String returns the protocol spelling ("ANT", "BEE", ...).
func (k PieceKind) String() string {
	switch k {
	case Ant:
		return "ANT"
	case Bee:
		return "BEE"
	case Beetle:
		return "BEETLE"
	case Grasshopper:
		return "GRASSHOPPER"
	case Spider:
		return "SPIDER"
	default:
		return fmt.Sprintf("PieceKind(%d)", uint8(k))
	}
}

// Rune returns the single-character notation used by ASCII board diagrams.
// Note that the beetle uses 'T' since 'B' is taken by the bee.
func (k PieceKind) Rune() rune {
	switch k {
	case Ant:
		return 'A'
	case Bee:
		return 'B'
	case Beetle:
		return 'T'
	case Grasshopper:
		return 'G'
	default:
		return 'S'
	}
}

// ParsePieceKind parses the protocol spelling of a piece kind.
func ParsePieceKind(raw string) (PieceKind, error) {
	switch strings.ToUpper(raw) {
	case "ANT":
		return Ant, nil
	case "BEE":
		return Bee, nil
	case "BEETLE":
		return Beetle, nil
	case "GRASSHOPPER":
		return Grasshopper, nil
	case "SPIDER":
		return Spider, nil
	default:
		return 0, fmt.Errorf("unrecognized piece kind %q", raw)
	}
}

func pieceKindFromRune(r rune) (PieceKind, error) {
	switch r {
	case 'A', 'a':
		return Ant, nil
	case 'B', 'b':
		return Bee, nil
	case 'T', 't':
		return Beetle, nil
	case 'G', 'g':
		return Grasshopper, nil
	case 'S', 's':
		return Spider, nil
	default:
		return 0, fmt.Errorf("unrecognized piece kind %q", r)
	}
}

// Piece is a single insect owned by a player.
type Piece struct {
	Owner Color
	Kind  PieceKind
}

func (p Piece) String() string {
	return fmt.Sprintf("%c%c", p.Owner.Rune(), p.Kind.Rune())
}
