package game

import (
	"sort"
	"strings"

	"github.com/fwcd/socha-client-2020/internal/hex"
)

// Positioned pairs a field with its position on the board.
type Positioned struct {
	Coords hex.Axial
	Field  Field
}

// Board is the hexagonal playing field, a radius-6 hex grid of 91 fields.
type Board struct {
	fields map[hex.Axial]Field
}

// NewBoard creates a board containing exactly the given fields.
func NewBoard(fields map[hex.Axial]Field) Board {
	copied := make(map[hex.Axial]Field, len(fields))
	for c, f := range fields {
		copied[c] = f
	}
	return Board{fields: copied}
}

// FillRadius creates a board from the given fields, padded with empty fields
// up to the given radius around the origin.
func FillRadius(radius int, fields map[hex.Axial]Field) Board {
	board := NewBoard(fields)
	inner := radius - 1
	for y := -inner; y <= inner; y++ {
		lo := max(-(inner + y), -inner)
		hi := min(inner-y, inner)
		for x := lo; x <= hi; x++ {
			c := hex.Axial{X: x, Y: y}
			if _, ok := board.fields[c]; !ok {
				board.fields[c] = Field{}
			}
		}
	}
	return board
}

// Field returns the field at the given position.
func (b Board) Field(c hex.Axial) (Field, bool) {
	f, ok := b.fields[c]
	return f, ok
}

// Contains reports whether the position lies on the board.
func (b Board) Contains(c hex.Axial) bool {
	_, ok := b.fields[c]
	return ok
}

// Occupied reports whether the position is occupied. Positions off the board
// count as occupied.
func (b Board) Occupied(c hex.Axial) bool {
	f, ok := b.fields[c]
	return !ok || f.Occupied()
}

// FieldCount returns the number of fields on the board.
func (b Board) FieldCount() int { return len(b.fields) }

// All returns every field together with its position.
func (b Board) All() []Positioned {
	out := make([]Positioned, 0, len(b.fields))
	for c, f := range b.fields {
		out = append(out, Positioned{c, f})
	}
	return out
}

// OwnedBy returns the fields whose topmost piece belongs to the given color.
func (b Board) OwnedBy(color Color) []Positioned {
	var out []Positioned
	for c, f := range b.fields {
		if f.OwnedBy(color) {
			out = append(out, Positioned{c, f})
		}
	}
	return out
}

// EmptyFields returns all enterable fields.
func (b Board) EmptyFields() []Positioned {
	var out []Positioned
	for c, f := range b.fields {
		if f.Empty() {
			out = append(out, Positioned{c, f})
		}
	}
	return out
}

// HasPieces reports whether any piece has been placed.
func (b Board) HasPieces() bool {
	for _, f := range b.fields {
		if f.HasPieces() {
			return true
		}
	}
	return false
}

// Neighbors returns the on-board neighbor fields of the given position.
func (b Board) Neighbors(c hex.Axial) []Positioned {
	var out []Positioned
	for _, n := range c.Neighbors() {
		if f, ok := b.fields[n]; ok {
			out = append(out, Positioned{n, f})
		}
	}
	return out
}

// EmptyNeighbors returns the enterable neighbor fields.
func (b Board) EmptyNeighbors(c hex.Axial) []Positioned {
	var out []Positioned
	for _, n := range b.Neighbors(c) {
		if n.Field.Empty() {
			out = append(out, n)
		}
	}
	return out
}

// SwarmBoundary returns the empty fields adjacent to at least one piece.
// Positions adjacent to several pieces appear once.
func (b Board) SwarmBoundary() []Positioned {
	seen := make(map[hex.Axial]struct{})
	var out []Positioned
	for c, f := range b.fields {
		if !f.Occupied() {
			continue
		}
		for _, n := range b.EmptyNeighbors(c) {
			if _, ok := seen[n.Coords]; ok {
				continue
			}
			seen[n.Coords] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

// HasPlacedBee reports whether the bee of the given color is on the board.
func (b Board) HasPlacedBee(color Color) bool {
	bee := Piece{Owner: color, Kind: Bee}
	for _, f := range b.fields {
		for _, p := range f.Stack() {
			if p == bee {
				return true
			}
		}
	}
	return false
}

// NextTo reports whether the position touches a field owned by color.
func (b Board) NextTo(color Color, c hex.Axial) bool {
	for _, n := range b.Neighbors(c) {
		if n.Field.OwnedBy(color) {
			return true
		}
	}
	return false
}

// SetMoveDestinations returns the empty positions where the given color may
// place a new piece: adjacent to an own piece and not adjacent to an
// opponent's piece. The first two placements follow special rules handled by
// State.
func (b Board) SetMoveDestinations(color Color) []hex.Axial {
	opponent := color.Opponent()
	seen := make(map[hex.Axial]struct{})
	var out []hex.Axial
	for _, owned := range b.OwnedBy(color) {
		for _, n := range b.EmptyNeighbors(owned.Coords) {
			if _, ok := seen[n.Coords]; ok {
				continue
			}
			seen[n.Coords] = struct{}{}
			if !b.NextTo(opponent, n.Coords) {
				out = append(out, n.Coords)
			}
		}
	}
	return out
}

// sharedNeighbors returns the common neighbors of p and q. The exception
// marks the field the moving piece is being lifted from: if it carries only
// that one piece it is skipped, since it will be empty once the move happens.
func (b Board) sharedNeighbors(p, q hex.Axial, exception *hex.Axial) []Positioned {
	var out []Positioned
	for _, n := range b.Neighbors(p) {
		if !q.AdjacentTo(n.Coords) {
			continue
		}
		if exception != nil && *exception == n.Coords && len(n.Field.Stack()) == 1 {
			continue
		}
		out = append(out, n)
	}
	return out
}

// canMoveBetween reports whether a piece can slide between two adjacent
// positions without violating the freedom-to-move rule, optionally treating
// the excepted position as vacated.
func (b Board) canMoveBetween(p, q hex.Axial, exception *hex.Axial) bool {
	shared := b.sharedNeighbors(p, q, exception)
	anyEmpty := false
	anyPieces := false
	for _, s := range shared {
		if s.Field.Empty() {
			anyEmpty = true
		}
		if s.Field.HasPieces() {
			anyPieces = true
		}
	}
	return (len(shared) == 1 || anyEmpty) && anyPieces
}

// CanMoveBetween reports whether a piece can slide between two adjacent
// positions.
func (b Board) CanMoveBetween(p, q hex.Axial) bool {
	return b.canMoveBetween(p, q, nil)
}

// accessibleNeighbors returns the empty neighbors reachable by a sliding
// step, optionally treating the excepted position as vacated.
func (b Board) accessibleNeighbors(c hex.Axial, exception *hex.Axial) []Positioned {
	var out []Positioned
	for _, n := range b.Neighbors(c) {
		if n.Field.Empty() && b.canMoveBetween(c, n.Coords, exception) {
			out = append(out, n)
		}
	}
	return out
}

// ConnectedByBoundaryPath reports whether the destination can be reached
// from start by sliding along the swarm boundary (the ant's movement).
func (b Board) ConnectedByBoundaryPath(start, destination hex.Axial) bool {
	queue := []hex.Axial{start}
	visited := map[hex.Axial]struct{}{}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == destination {
			return true
		}
		visited[cur] = struct{}{}
		for _, n := range b.accessibleNeighbors(cur, &start) {
			if _, ok := visited[n.Coords]; !ok {
				queue = append(queue, n.Coords)
			}
		}
	}
	return false
}

// ReachableInThreeSteps reports whether the destination is exactly three
// sliding steps away from start without revisiting fields (the spider's
// movement).
func (b Board) ReachableInThreeSteps(start, destination hex.Axial) bool {
	type path [3]hex.Axial
	queue := []path{}
	lengths := []int{}
	queue = append(queue, path{start})
	lengths = append(lengths, 1)

	contains := func(p path, n int, c hex.Axial) bool {
		for i := 0; i < n; i++ {
			if p[i] == c {
				return true
			}
		}
		return false
	}

	for len(queue) > 0 {
		cur, n := queue[0], lengths[0]
		queue, lengths = queue[1:], lengths[1:]
		last := cur[n-1]
		if n < 3 {
			for _, nb := range b.accessibleNeighbors(last, &start) {
				if contains(cur, n, nb.Coords) {
					continue
				}
				next := cur
				next[n] = nb.Coords
				queue = append(queue, next)
				lengths = append(lengths, n+1)
			}
			continue
		}
		for _, nb := range b.accessibleNeighbors(last, &start) {
			if nb.Coords == destination && !contains(cur, n, destination) {
				return true
			}
		}
	}
	return false
}

// SwarmConnected reports whether all pieces form a single connected swarm.
// An empty swarm counts as connected.
func (b Board) SwarmConnected() bool {
	unvisited := make(map[hex.Axial]struct{})
	var start hex.Axial
	for c, f := range b.fields {
		if f.HasPieces() {
			unvisited[c] = struct{}{}
			start = c
		}
	}
	if len(unvisited) == 0 {
		return true
	}
	b.visitSwarm(start, unvisited)
	return len(unvisited) == 0
}

func (b Board) visitSwarm(c hex.Axial, unvisited map[hex.Axial]struct{}) {
	if f, ok := b.fields[c]; !ok || !f.HasPieces() {
		return
	}
	delete(unvisited, c)
	for _, n := range b.Neighbors(c) {
		if _, ok := unvisited[n.Coords]; ok {
			b.visitSwarm(n.Coords, unvisited)
		}
	}
}

// Push stacks a piece on the field at the given position.
func (b *Board) Push(c hex.Axial, piece Piece) bool {
	f, ok := b.fields[c]
	if !ok {
		return false
	}
	f.push(piece)
	b.fields[c] = f
	return true
}

// Pop removes the topmost piece from the field at the given position.
func (b *Board) Pop(c hex.Axial) (Piece, bool) {
	f, ok := b.fields[c]
	if !ok {
		return Piece{}, false
	}
	top, ok := f.pop()
	if ok {
		b.fields[c] = f
	}
	return top, ok
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	fields := make(map[hex.Axial]Field, len(b.fields))
	for c, f := range b.fields {
		fields[c] = f.clone()
	}
	return Board{fields: fields}
}

// String renders the board row by row in two-character field notation,
// padding positions outside the board with "00".
func (b Board) String() string {
	if len(b.fields) == 0 {
		return ""
	}
	coords := make([]hex.Axial, 0, len(b.fields))
	for c := range b.fields {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Y != coords[j].Y {
			return coords[i].Y < coords[j].Y
		}
		return coords[i].X < coords[j].X
	})
	minX, maxX := coords[0].X, coords[0].X
	for _, c := range coords {
		if c.X < minX {
			minX = c.X
		}
		if c.X > maxX {
			maxX = c.X
		}
	}
	minY, maxY := coords[0].Y, coords[len(coords)-1].Y

	var sb strings.Builder
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if f, ok := b.fields[hex.Axial{X: -y, Y: -x}]; ok {
				sb.WriteString(f.String())
			} else {
				sb.WriteString("00")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
