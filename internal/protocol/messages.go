package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fwcd/socha-client-2020/internal/game"
	"github.com/fwcd/socha-client-2020/internal/hex"
)

// DefaultGameType is the game type joined when none is configured.
const DefaultGameType = "swc_2020_hive"

// moveRequestClass is the fully qualified class the server uses for move
// requests.
const moveRequestClass = "sc.framework.plugins.protocol.MoveRequest"

// Joined tells the client it has entered a room.
type Joined struct {
	RoomID string
}

// Left tells the client the room was closed.
type Left struct {
	RoomID string
}

// Room wraps a data payload addressed to a room.
type Room struct {
	RoomID string
	Data   Data
}

// Data is a polymorphic room payload, discriminated by the element's class
// attribute.
type Data interface {
	isData()
}

// Welcome assigns the client its player color.
type Welcome struct {
	Color game.Color
}

// Memento carries the authoritative game state after each turn.
type Memento struct {
	State *game.State
}

// MoveRequest asks the client to answer with a move.
type MoveRequest struct{}

// Result is the final outcome of a game.
type Result struct {
	Definition ScoreDefinition
	Scores     []PlayerScore
	Winners    []game.Player
}

// ServerError is an error message sent inside a room.
type ServerError struct {
	Message string
}

func (Welcome) isData()     {}
func (Memento) isData()     {}
func (MoveRequest) isData() {}
func (Result) isData()      {}
func (ServerError) isData() {}

// ParseJoined decodes a <joined> element.
func ParseJoined(e *Element) (Joined, error) {
	roomID, err := e.Attr("roomId")
	if err != nil {
		return Joined{}, err
	}
	return Joined{RoomID: roomID}, nil
}

// ParseLeft decodes a <left> element.
func ParseLeft(e *Element) (Left, error) {
	roomID, err := e.Attr("roomId")
	if err != nil {
		return Left{}, err
	}
	return Left{RoomID: roomID}, nil
}

// ParseRoom decodes a <room> element including its data payload.
func ParseRoom(e *Element) (Room, error) {
	roomID, err := e.Attr("roomId")
	if err != nil {
		return Room{}, err
	}
	dataElem, err := e.Child("data")
	if err != nil {
		return Room{}, err
	}
	data, err := parseData(dataElem)
	if err != nil {
		return Room{}, err
	}
	return Room{RoomID: roomID, Data: data}, nil
}

func parseData(e *Element) (Data, error) {
	class, err := e.Attr("class")
	if err != nil {
		return nil, err
	}
	switch class {
	case "welcomeMessage":
		raw, err := e.Attr("color")
		if err != nil {
			return nil, err
		}
		color, err := game.ParseColor(raw)
		if err != nil {
			return nil, err
		}
		return Welcome{Color: color}, nil
	case "memento":
		stateElem, err := e.Child("state")
		if err != nil {
			return nil, err
		}
		state, err := parseState(stateElem)
		if err != nil {
			return nil, err
		}
		return Memento{State: state}, nil
	case moveRequestClass:
		return MoveRequest{}, nil
	case "result":
		return parseResult(e)
	case "error":
		msg, err := e.Attr("message")
		if err != nil {
			return nil, err
		}
		return ServerError{Message: msg}, nil
	default:
		return nil, fmt.Errorf("unrecognized data class %q", class)
	}
}

func parseState(e *Element) (*game.State, error) {
	turn, err := e.AttrInt("turn")
	if err != nil {
		return nil, err
	}
	startColor, err := parseColorAttr(e, "startPlayerColor")
	if err != nil {
		return nil, err
	}
	currentColor, err := parseColorAttr(e, "currentPlayerColor")
	if err != nil {
		return nil, err
	}
	red, err := parsePlayerChild(e, "red")
	if err != nil {
		return nil, err
	}
	blue, err := parsePlayerChild(e, "blue")
	if err != nil {
		return nil, err
	}
	boardElem, err := e.Child("board")
	if err != nil {
		return nil, err
	}
	board, err := parseBoard(boardElem)
	if err != nil {
		return nil, err
	}
	undeployedRed, err := parseUndeployed(e, "undeployedRedPieces")
	if err != nil {
		return nil, err
	}
	undeployedBlue, err := parseUndeployed(e, "undeployedBluePieces")
	if err != nil {
		return nil, err
	}
	return game.NewState(turn, startColor, currentColor, red, blue, board, undeployedRed, undeployedBlue), nil
}

func parseColorAttr(e *Element, key string) (game.Color, error) {
	raw, err := e.Attr(key)
	if err != nil {
		return 0, err
	}
	return game.ParseColor(raw)
}

func parsePlayerChild(e *Element, name string) (game.Player, error) {
	child, err := e.Child(name)
	if err != nil {
		return game.Player{}, err
	}
	return parsePlayer(child)
}

func parsePlayer(e *Element) (game.Player, error) {
	color, err := parseColorAttr(e, "color")
	if err != nil {
		return game.Player{}, err
	}
	name, err := e.Attr("displayName")
	if err != nil {
		return game.Player{}, err
	}
	return game.Player{Color: color, DisplayName: name}, nil
}

func parseUndeployed(e *Element, name string) ([]game.Piece, error) {
	container, err := e.Child(name)
	if err != nil {
		return nil, err
	}
	var pieces []game.Piece
	for _, p := range container.ChildrenNamed("piece") {
		piece, err := parsePiece(p)
		if err != nil {
			return nil, err
		}
		pieces = append(pieces, piece)
	}
	return pieces, nil
}

func parsePiece(e *Element) (game.Piece, error) {
	owner, err := parseColorAttr(e, "owner")
	if err != nil {
		return game.Piece{}, err
	}
	raw, err := e.Attr("type")
	if err != nil {
		return game.Piece{}, err
	}
	kind, err := game.ParsePieceKind(raw)
	if err != nil {
		return game.Piece{}, err
	}
	return game.Piece{Owner: owner, Kind: kind}, nil
}

func parseBoard(e *Element) (game.Board, error) {
	fields := map[hex.Axial]game.Field{}
	for _, fieldsElem := range e.ChildrenNamed("fields") {
		for _, fieldElem := range fieldsElem.ChildrenNamed("field") {
			coords, field, err := parseField(fieldElem)
			if err != nil {
				return game.Board{}, err
			}
			fields[coords] = field
		}
	}
	return game.FillRadius(game.BoardRadius, fields), nil
}

func parseField(e *Element) (hex.Axial, game.Field, error) {
	x, err := e.AttrInt("x")
	if err != nil {
		return hex.Axial{}, game.Field{}, err
	}
	y, err := e.AttrInt("y")
	if err != nil {
		return hex.Axial{}, game.Field{}, err
	}
	z, err := e.AttrInt("z")
	if err != nil {
		return hex.Axial{}, game.Field{}, err
	}
	cube := hex.Cube{X: x, Y: y, Z: z}
	if !cube.Valid() {
		return hex.Axial{}, game.Field{}, fmt.Errorf("invalid cube coordinates %v", cube)
	}
	obstructed, err := e.AttrBool("isObstructed")
	if err != nil {
		return hex.Axial{}, game.Field{}, err
	}
	var stack []game.Piece
	for _, p := range e.ChildrenNamed("piece") {
		piece, err := parsePiece(p)
		if err != nil {
			return hex.Axial{}, game.Field{}, err
		}
		stack = append(stack, piece)
	}
	return cube.Axial(), game.NewField(stack, obstructed), nil
}

func parseResult(e *Element) (Result, error) {
	defElem, err := e.Child("definition")
	if err != nil {
		return Result{}, err
	}
	var definition ScoreDefinition
	for _, f := range defElem.ChildrenNamed("fragment") {
		fragment, err := parseFragment(f)
		if err != nil {
			return Result{}, err
		}
		definition.Fragments = append(definition.Fragments, fragment)
	}

	var scores []PlayerScore
	for _, s := range e.ChildrenNamed("score") {
		rawCause, err := s.Attr("cause")
		if err != nil {
			return Result{}, err
		}
		cause, err := ParseScoreCause(rawCause)
		if err != nil {
			return Result{}, err
		}
		reason := s.Attrs["reason"]
		scores = append(scores, PlayerScore{Cause: cause, Reason: reason})
	}

	var winners []game.Player
	for _, w := range e.ChildrenNamed("winner") {
		player, err := parsePlayer(w)
		if err != nil {
			return Result{}, err
		}
		winners = append(winners, player)
	}
	return Result{Definition: definition, Scores: scores, Winners: winners}, nil
}

func parseFragment(e *Element) (ScoreFragment, error) {
	name, err := e.Attr("name")
	if err != nil {
		return ScoreFragment{}, err
	}
	aggElem, err := e.Child("aggregation")
	if err != nil {
		return ScoreFragment{}, err
	}
	aggregation, err := ParseScoreAggregation(strings.TrimSpace(aggElem.Text))
	if err != nil {
		return ScoreFragment{}, err
	}
	relElem, err := e.Child("relevantForRanking")
	if err != nil {
		return ScoreFragment{}, err
	}
	relevant, err := strconv.ParseBool(strings.TrimSpace(relElem.Text))
	if err != nil {
		return ScoreFragment{}, err
	}
	return ScoreFragment{Name: name, Aggregation: aggregation, RelevantForRanking: relevant}, nil
}

// Winner returns the winning color of a result, if there is a single winner.
func (r Result) Winner() (game.Color, bool) {
	if len(r.Winners) != 1 {
		return 0, false
	}
	return r.Winners[0].Color, true
}
