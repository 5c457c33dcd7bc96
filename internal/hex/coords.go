// Package hex provides geometry on hexagonal grids. Positions are usually
// handled as axial coordinates; the wire protocol uses cube coordinates and
// ASCII board diagrams use doubled coordinates.
//
// See https://www.redblobgames.com/grids/hexagons/#coordinates for the
// relationships between the three systems.
package hex

import "fmt"

// Axial is a position in axial coordinates.
type Axial struct {
	X, Y int
}

// Cube is a position in cube coordinates. Valid cube coordinates satisfy
// X + Y + Z == 0.
type Cube struct {
	X, Y, Z int
}

// Doubled is a position in doubled-height offset coordinates, with x growing
// to the right and y growing downwards. Useful when reading ASCII hex grids.
type Doubled struct {
	X, Y int
}

func (a Axial) Add(b Axial) Axial { return Axial{a.X + b.X, a.Y + b.Y} }

func (a Axial) Sub(b Axial) Axial { return Axial{a.X - b.X, a.Y - b.Y} }

// Neighbors returns the six adjacent positions, regardless of any board
// boundary.
func (a Axial) Neighbors() [6]Axial {
	return [6]Axial{
		{a.X, a.Y + 1},
		{a.X + 1, a.Y},
		{a.X + 1, a.Y - 1},
		{a.X, a.Y - 1},
		{a.X - 1, a.Y},
		{a.X - 1, a.Y + 1},
	}
}

// AdjacentTo reports whether b is one of a's six neighbors.
func (a Axial) AdjacentTo(b Axial) bool {
	for _, n := range a.Neighbors() {
		if n == b {
			return true
		}
	}
	return false
}

// Cube converts to cube coordinates.
func (a Axial) Cube() Cube { return Cube{a.X, a.Y, -(a.X + a.Y)} }

// Doubled converts to doubled coordinates.
func (a Axial) Doubled() Doubled { return Doubled{a.X - a.Y, -(a.X + a.Y)} }

// FormsLineWith reports whether a and b lie on a shared straight hex line,
// i.e. share a cube coordinate component.
func (a Axial) FormsLineWith(b Axial) bool {
	ac, bc := a.Cube(), b.Cube()
	return ac.X == bc.X || ac.Y == bc.Y || ac.Z == bc.Z
}

// LineBetween returns the positions strictly between a and b, walking along
// the straight line from a to b. The result is empty when the positions are
// adjacent. Both endpoints are excluded. The caller is responsible for
// checking FormsLineWith first; for non-collinear input the walk is
// truncated after a full board diameter to avoid spinning forever.
func (a Axial) LineBetween(b Axial) []Axial {
	ac, bc := a.Cube(), b.Cube()
	diff := bc.Sub(ac)
	step := Cube{sign(diff.X), sign(diff.Y), sign(diff.Z)}

	var between []Axial
	for cur, i := ac.Add(step), 0; cur != bc && i < 64; cur, i = cur.Add(step), i+1 {
		between = append(between, cur.Axial())
	}
	return between
}

func (a Axial) String() string { return fmt.Sprintf("(%d, %d)", a.X, a.Y) }

// Axial converts to axial coordinates, dropping the redundant z component.
func (c Cube) Axial() Axial { return Axial{c.X, c.Y} }

// Valid reports whether the components sum to zero.
func (c Cube) Valid() bool { return c.X+c.Y+c.Z == 0 }

func (c Cube) Add(d Cube) Cube { return Cube{c.X + d.X, c.Y + d.Y, c.Z + d.Z} }

func (c Cube) Sub(d Cube) Cube { return Cube{c.X - d.X, c.Y - d.Y, c.Z - d.Z} }

func (c Cube) String() string { return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z) }

// Axial converts to axial coordinates.
func (d Doubled) Axial() Axial { return Axial{(d.X - d.Y) / 2, -(d.X + d.Y) / 2} }

func (d Doubled) Add(e Doubled) Doubled { return Doubled{d.X + e.X, d.Y + e.Y} }

func (d Doubled) Sub(e Doubled) Doubled { return Doubled{d.X - e.X, d.Y - e.Y} }

func (d Doubled) String() string { return fmt.Sprintf("(%d, %d)", d.X, d.Y) }

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
