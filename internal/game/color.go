package game

import (
	"fmt"
	"strings"
)

// Color identifies one of the two players.
type Color uint8

const (
	Red Color = iota
	Blue
)

// Opponent returns the other player's color.
func (c Color) Opponent() Color {
	if c == Red {
		return Blue
	}
	return Red
}

// String returns the protocol spelling ("RED"/"BLUE").
func (c Color) String() string {
	if c == Red {
		return "RED"
	}
	return "BLUE"
}

// Rune returns the single-character notation used by ASCII board diagrams.
func (c Color) Rune() rune {
	if c == Red {
		return 'R'
	}
	return 'B'
}

// ParseColor parses the protocol spelling of a color, case-insensitively.
func ParseColor(raw string) (Color, error) {
	switch strings.ToUpper(raw) {
	case "RED":
		return Red, nil
	case "BLUE":
		return Blue, nil
	default:
		return 0, fmt.Errorf("unrecognized player color %q", raw)
	}
}

func colorFromRune(r rune) (Color, error) {
	switch r {
	case 'R', 'r':
		return Red, nil
	case 'B', 'b':
		return Blue, nil
	default:
		return 0, fmt.Errorf("unrecognized player color %q", r)
	}
}

// Player holds the metadata the server reports about a participant.
type Player struct {
	Color       Color
	DisplayName string
}
