package game

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwcd/socha-client-2020/internal/hex"
)

const emptyGrid = `    /\  /\
   /  \/  \
   |   |   |
  /\  /\  /\
 /  \/  \/  \
 |   |   |   |
 \  /\  /\  /
  \/  \/  \/
   |   |   |
   \  /\  /
    \/  \/    `

const filledGrid = `    /\  /\  /\
   /  \/  \ / \
   |   |   |   |
  /\  /\  /\  /\
 /  \/  \/  \/  \
 |   |RB |BA |BA |
 \  /\  /\  /\  /
  \/  \/  \/  \/
   |   |RG |   |
  /\  /\  /\  /\
 /  \/  \/  \/  \
 |   |   |   |   |
 \  /\  /\  /\  /
  \/  \/  \/  \/
   |   |   |   |
   \  /\  /\  /
    \/  \/  \/`

func TestParseEmptyASCIIHexGrid(t *testing.T) {
	board, err := ParseASCIIHexGrid(emptyGrid)
	require.NoError(t, err)
	assert.Equal(t, 7, board.FieldCount())
	assert.False(t, board.HasPieces())
}

func ownedCoords(b Board, color Color) map[hex.Axial]Piece {
	out := map[hex.Axial]Piece{}
	for _, p := range b.OwnedBy(color) {
		top, _ := p.Field.Top()
		out[p.Coords] = top
	}
	return out
}

func TestParseFilledASCIIHexGrid(t *testing.T) {
	board, err := ParseASCIIHexGrid(filledGrid)
	require.NoError(t, err)
	assert.Equal(t, 17, board.FieldCount())
	assert.True(t, board.HasPieces())

	assert.Equal(t, map[hex.Axial]Piece{
		{X: 0, Y: 0}: {Owner: Red, Kind: Grasshopper},
		{X: 0, Y: 1}: {Owner: Red, Kind: Bee},
	}, ownedCoords(board, Red))
	assert.Equal(t, map[hex.Axial]Piece{
		{X: 1, Y: 0}:  {Owner: Blue, Kind: Ant},
		{X: 2, Y: -1}: {Owner: Blue, Kind: Ant},
	}, ownedCoords(board, Blue))
}

func TestFillRadius(t *testing.T) {
	board := FillRadius(BoardRadius, nil)
	assert.Equal(t, FieldCount, board.FieldCount())
	for _, p := range board.All() {
		cube := p.Coords.Cube()
		assert.True(t, cube.Valid(), "cube coords %v must sum to zero", cube)
	}
}

func TestFillRadiusTwoIsOriginPlusNeighbors(t *testing.T) {
	board := FillRadius(2, nil)
	origin := hex.Axial{}
	expected := map[hex.Axial]struct{}{origin: {}}
	for _, n := range origin.Neighbors() {
		expected[n] = struct{}{}
	}
	actual := map[hex.Axial]struct{}{}
	for _, p := range board.All() {
		actual[p.Coords] = struct{}{}
	}
	assert.Equal(t, expected, actual)
}

func TestBoardString(t *testing.T) {
	board := FillRadius(4, nil)
	assert.Equal(t, `000000[][][][]
0000[][][][][]
00[][][][][][]
[][][][][][][]
[][][][][][]00
[][][][][]0000
[][][][]000000
`, board.String())
}

func TestNeighborsStayInBounds(t *testing.T) {
	board := FillRadius(BoardRadius, nil)
	for _, p := range board.All() {
		for _, n := range board.Neighbors(p.Coords) {
			cube := n.Coords.Cube()
			assert.Less(t, abs(cube.X), BoardRadius)
			assert.Less(t, abs(cube.Y), BoardRadius)
			assert.Less(t, abs(cube.Z), BoardRadius)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestSwarmConnected(t *testing.T) {
	board := FillRadius(3, nil)
	assert.True(t, board.SwarmConnected(), "empty swarm counts as connected")

	require.True(t, board.Push(hex.Axial{X: 0, Y: 0}, Piece{Red, Bee}))
	require.True(t, board.Push(hex.Axial{X: 0, Y: 1}, Piece{Blue, Bee}))
	assert.True(t, board.SwarmConnected())

	require.True(t, board.Push(hex.Axial{X: 2, Y: -2}, Piece{Red, Ant}))
	assert.False(t, board.SwarmConnected())
}

func TestSwarmBoundaryIsDeduplicatedAndEmpty(t *testing.T) {
	board := FillRadius(3, nil)
	board.Push(hex.Axial{X: 0, Y: 0}, Piece{Red, Bee})
	board.Push(hex.Axial{X: 0, Y: 1}, Piece{Blue, Bee})

	boundary := board.SwarmBoundary()
	seen := map[hex.Axial]struct{}{}
	for _, p := range boundary {
		assert.True(t, p.Field.Empty())
		_, dup := seen[p.Coords]
		assert.False(t, dup, "boundary contains %v twice", p.Coords)
		seen[p.Coords] = struct{}{}
	}
	// Two adjacent pieces share two neighbors: 6 + 6 - 2 shared - 2 occupied.
	assert.Len(t, boundary, 8)
}

func boardContents(b Board) map[hex.Axial][]Piece {
	out := map[hex.Axial][]Piece{}
	for _, p := range b.All() {
		if pieces := p.Field.Stack(); len(pieces) > 0 {
			out[p.Coords] = pieces
		}
	}
	return out
}

func TestCloneIsIndependent(t *testing.T) {
	board := FillRadius(3, nil)
	require.True(t, board.Push(hex.Axial{X: 0, Y: 0}, Piece{Red, Bee}))

	clone := board.Clone()
	assert.Empty(t, cmp.Diff(boardContents(board), boardContents(clone)))

	require.True(t, clone.Push(hex.Axial{X: 0, Y: 1}, Piece{Blue, Bee}))
	assert.NotEmpty(t, cmp.Diff(boardContents(board), boardContents(clone)),
		"mutating the clone must not touch the original")
	field, ok := board.Field(hex.Axial{X: 0, Y: 1})
	require.True(t, ok)
	assert.True(t, field.Empty())
}

func TestSetMoveDestinationsAvoidOpponent(t *testing.T) {
	board := FillRadius(4, nil)
	board.Push(hex.Axial{X: 0, Y: 0}, Piece{Red, Bee})
	board.Push(hex.Axial{X: 0, Y: 1}, Piece{Blue, Bee})

	for _, d := range board.SetMoveDestinations(Red) {
		assert.True(t, board.NextTo(Red, d))
		assert.False(t, board.NextTo(Blue, d))
	}
	assert.NotEmpty(t, board.SetMoveDestinations(Red))
}
