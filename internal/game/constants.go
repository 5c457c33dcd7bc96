package game

const (
	// RoundLimit is the number of rounds after which the server adjudicates
	// the game. The client does not enforce it.
	RoundLimit = 30

	// BoardRadius is the side length of the hexagonal board.
	BoardRadius = 6

	// FieldCount is the number of fields on a board of radius 6.
	FieldCount = 91
)

// InitialPieceKinds lists the undeployed pieces every player starts with.
var InitialPieceKinds = [...]PieceKind{
	Bee,
	Spider,
	Spider,
	Spider,
	Grasshopper,
	Grasshopper,
	Beetle,
	Beetle,
	Ant,
	Ant,
	Ant,
}

// InitialPieces returns the starting reserve for the given color.
func InitialPieces(color Color) []Piece {
	pieces := make([]Piece, 0, len(InitialPieceKinds))
	for _, kind := range InitialPieceKinds {
		pieces = append(pieces, Piece{Owner: color, Kind: kind})
	}
	return pieces
}
