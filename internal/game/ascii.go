package game

import (
	"strings"

	"github.com/fwcd/socha-client-2020/internal/hex"
)

// ParseASCIIHexGrid parses a plain-text hex grid of the form
//
//	   /\  /\
//	  /  \/  \
//	  |BR |   |
//	 /\  /\  /\
//	/  \/  \/  \
//	|   |GB |   |
//	\  /\  /\  /
//	 \/  \/  \/
//	  |   |   |
//	  \  /\  /
//	   \/  \/
//
// into a board. Rows are indented alternatingly with a perfectly centered
// field; each cell may contain a field in two-character notation (owner
// color, then piece kind). Empty or unparsable cells become empty fields.
// Stacks and obstructions are not representable.
//
// The resulting fields use axial coordinates with the origin at the center
// of the grid. Mainly useful for building test positions.
func ParseASCIIHexGrid(grid string) (Board, error) {
	lines := []string{}
	for _, line := range strings.Split(grid, "\n") {
		lines = append(lines, strings.TrimSpace(line))
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}

	type cell struct {
		coords hex.Doubled
		field  Field
	}
	var cells []cell
	maxX, maxY := 0, 0

	y := 0
	for i := 2; i < len(lines); i += 3 {
		x := 0
		for _, frag := range strings.Split(lines[i], "|") {
			if frag == "" {
				continue
			}
			field, err := ParseField(frag)
			if err != nil {
				field = Field{}
			}
			coords := hex.Doubled{X: 2*x + (y+1)%2, Y: y}
			if coords.X > maxX {
				maxX = coords.X
			}
			if coords.Y > maxY {
				maxY = coords.Y
			}
			cells = append(cells, cell{coords, field})
			x++
		}
		y++
	}

	center := hex.Doubled{X: maxX / 2, Y: maxY / 2}
	fields := make(map[hex.Axial]Field, len(cells))
	for _, c := range cells {
		fields[c.coords.Sub(center).Axial()] = c.field
	}
	return NewBoard(fields), nil
}
