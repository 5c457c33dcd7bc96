package protocol

import (
	"strconv"

	"github.com/fwcd/socha-client-2020/internal/game"
	"github.com/fwcd/socha-client-2020/internal/hex"
)

// JoinElement builds the handshake element joining any open game.
func JoinElement(gameType string) *Element {
	if gameType == "" {
		gameType = DefaultGameType
	}
	return NewElement("join").WithAttr("gameType", gameType)
}

// JoinPreparedElement builds the handshake element joining a reserved game.
func JoinPreparedElement(reservation string) *Element {
	return NewElement("joinPrepared").WithAttr("reservationCode", reservation)
}

// MoveElement encodes a move as a room message. The board provides the field
// contents the wire format embeds into start and destination.
func MoveElement(roomID string, move game.Move, board game.Board) *Element {
	var data *Element
	if move.Kind == game.SetMove {
		data = NewElement("data").
			WithAttr("class", "setmove").
			WithChild(pieceElement(move.Piece)).
			WithChild(fieldElement("destination", move.Destination, board))
	} else {
		data = NewElement("data").
			WithAttr("class", "dragmove").
			WithChild(fieldElement("start", move.Start, board)).
			WithChild(fieldElement("destination", move.Destination, board))
	}
	return NewElement("room").WithAttr("roomId", roomID).WithChild(data)
}

func pieceElement(piece game.Piece) *Element {
	return NewElement("piece").
		WithAttr("owner", piece.Owner.String()).
		WithAttr("type", piece.Kind.String())
}

func fieldElement(name string, coords hex.Axial, board game.Board) *Element {
	cube := coords.Cube()
	field, _ := board.Field(coords)
	e := NewElement(name).
		WithAttr("class", "field").
		WithAttr("x", strconv.Itoa(cube.X)).
		WithAttr("y", strconv.Itoa(cube.Y)).
		WithAttr("z", strconv.Itoa(cube.Z)).
		WithAttr("isObstructed", strconv.FormatBool(field.Obstructed()))
	for _, p := range field.Stack() {
		e.WithChild(pieceElement(p))
	}
	return e
}
