// Package engine adapts the chess rules library behind the narrow
// interface the session layer consumes. Nothing outside this package
// touches the library types.
package engine

import (
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// Colors and results as they travel on the wire.
const (
	White = "white"
	Black = "black"

	ResultWhiteWin = "white_win"
	ResultBlackWin = "black_win"
	ResultDraw     = "draw"
	ResultNone     = "none"
)

// Engine is one game's rules oracle: move legality and application,
// position queries, termination. Implementations are not safe for
// concurrent use; the owning session serializes access.
type Engine interface {
	// ApplyMove attempts from→to (promotion is "q", "r", "b" or "n",
	// empty when not promoting). It reports whether the move was legal
	// and, when a piece was taken, its FEN symbol ("P".."k").
	ApplyMove(from, to, promotion string) (accepted bool, captured string)
	// CurrentTurn returns the side to move, "white" or "black".
	CurrentTurn() string
	IsGameOver() bool
	// Result returns white_win, black_win, draw, or none while running.
	Result() string
	// Reason names how the game ended: checkmate, stalemate,
	// insufficient_material, repetition, fifty_move_rule, resign.
	Reason() string
	// Position returns the FEN serialization of the current position.
	Position() string
	// LegalMoves lists destination squares for the piece on square.
	LegalMoves(square string) []string
	// PieceColor reports the color of the piece on square, "" if empty.
	PieceColor(square string) string
	// Resign ends the game with the given color losing.
	Resign(color string)
}

type game struct {
	g *nchess.Game
}

// New returns an engine at the standard starting position.
func New() Engine {
	return &game{g: nchess.NewGame()}
}

func (e *game) ApplyMove(from, to, promotion string) (bool, string) {
	uci := strings.ToLower(strings.TrimSpace(from) + strings.TrimSpace(to) + strings.TrimSpace(promotion))
	if len(uci) < 4 {
		return false, ""
	}
	pos := e.g.Position()
	mv, err := nchess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return false, ""
	}

	// Capture detection must look at the board before the move lands.
	// En passant takes the pawn behind the destination square.
	captureSq := mv.S2()
	if mv.HasTag(nchess.EnPassant) {
		if pos.Turn() == nchess.White {
			captureSq = nchess.NewSquare(mv.S2().File(), mv.S2().Rank()-1)
		} else {
			captureSq = nchess.NewSquare(mv.S2().File(), mv.S2().Rank()+1)
		}
	}
	captured := ""
	if p := pos.Board().Piece(captureSq); p != nchess.NoPiece && p.Color() != pos.Turn() {
		captured = fenSymbol(p)
	}

	if err := e.g.Move(mv, nil); err != nil {
		return false, ""
	}
	return true, captured
}

func (e *game) CurrentTurn() string {
	if e.g.Position().Turn() == nchess.White {
		return White
	}
	return Black
}

func (e *game) IsGameOver() bool {
	return e.g.Outcome() != nchess.NoOutcome
}

func (e *game) Result() string {
	switch e.g.Outcome() {
	case nchess.WhiteWon:
		return ResultWhiteWin
	case nchess.BlackWon:
		return ResultBlackWin
	case nchess.Draw:
		return ResultDraw
	default:
		return ResultNone
	}
}

func (e *game) Reason() string {
	switch strings.ToLower(e.g.Method().String()) {
	case "checkmate":
		return "checkmate"
	case "stalemate":
		return "stalemate"
	case "insufficientmaterial", "insufficient material":
		return "insufficient_material"
	case "threefoldrepetition", "fivefoldrepetition":
		return "repetition"
	case "fiftymoverule", "seventyfivemoverule":
		return "fifty_move_rule"
	case "resignation":
		return "resign"
	default:
		return strings.ToLower(e.g.Method().String())
	}
}

func (e *game) Position() string {
	return e.g.FEN()
}

func (e *game) LegalMoves(square string) []string {
	sq, ok := parseSquare(square)
	if !ok {
		return nil
	}
	var moves []string
	seen := map[string]bool{}
	for _, mv := range e.g.ValidMoves() {
		if mv.S1() != sq {
			continue
		}
		dest := mv.S2().String()
		if seen[dest] {
			// promotions enumerate four moves per destination
			continue
		}
		seen[dest] = true
		moves = append(moves, dest)
	}
	return moves
}

func (e *game) PieceColor(square string) string {
	sq, ok := parseSquare(square)
	if !ok {
		return ""
	}
	p := e.g.Position().Board().Piece(sq)
	if p == nchess.NoPiece {
		return ""
	}
	if p.Color() == nchess.White {
		return White
	}
	return Black
}

func (e *game) Resign(color string) {
	if color == Black {
		e.g.Resign(nchess.Black)
		return
	}
	e.g.Resign(nchess.White)
}

func parseSquare(s string) (nchess.Square, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, false
	}
	return nchess.NewSquare(nchess.File(s[0]-'a'), nchess.Rank(s[1]-'1')), true
}

func fenSymbol(p nchess.Piece) string {
	var s string
	switch p.Type() {
	case nchess.Pawn:
		s = "p"
	case nchess.Knight:
		s = "n"
	case nchess.Bishop:
		s = "b"
	case nchess.Rook:
		s = "r"
	case nchess.Queen:
		s = "q"
	case nchess.King:
		s = "k"
	default:
		return ""
	}
	if p.Color() == nchess.White {
		return strings.ToUpper(s)
	}
	return s
}
