package match

import (
	"time"

	"github.com/google/uuid"

	"github.com/park285/chess-arena/internal/engine"
)

// GameSession is the live turn-taking state of one in-progress game. It
// wraps the rules engine and keeps what the engine does not: the move
// list and the captured-piece bookkeeping. The owning Room's lock guards
// every access; the session itself has no locking.
//
// Captured pieces are derived here, once per applied move, and shipped
// to both clients. Receivers never recompute them.
type GameSession struct {
	ID        string
	StartedAt time.Time

	eng             engine.Engine
	movesUCI        []string
	capturedByWhite []string
	capturedByBlack []string
}

func newGameSession() *GameSession {
	return &GameSession{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		eng:       engine.New(),
	}
}

// MoveUpdate is the outcome of a legal move, snapshotted for broadcast.
type MoveUpdate struct {
	From            string
	To              string
	Promotion       string
	BoardState      string
	CurrentTurn     string
	CapturedPiece   string // FEN symbol, "" when nothing was taken
	CapturedByWhite []string
	CapturedByBlack []string
}

// GameEnd reports a finished game.
type GameEnd struct {
	Result string // white_win, black_win, draw
	Reason string // checkmate, stalemate, insufficient_material, resign, ...
}

func (s *GameSession) turn() string { return s.eng.CurrentTurn() }

func (s *GameSession) position() string { return s.eng.Position() }

func (s *GameSession) moveCount() int { return len(s.movesUCI) }

// applyMove delegates to the engine and updates session bookkeeping.
// The caller has already verified that color is the side to move.
func (s *GameSession) applyMove(color, from, to, promotion string) (*MoveUpdate, *GameEnd, error) {
	accepted, captured := s.eng.ApplyMove(from, to, promotion)
	if !accepted {
		return nil, nil, ErrIllegalMove
	}
	s.movesUCI = append(s.movesUCI, from+to+promotion)
	if captured != "" {
		if color == engine.White {
			s.capturedByWhite = append(s.capturedByWhite, captured)
		} else {
			s.capturedByBlack = append(s.capturedByBlack, captured)
		}
	}

	upd := &MoveUpdate{
		From:            from,
		To:              to,
		Promotion:       promotion,
		BoardState:      s.eng.Position(),
		CurrentTurn:     s.eng.CurrentTurn(),
		CapturedPiece:   captured,
		CapturedByWhite: append([]string(nil), s.capturedByWhite...),
		CapturedByBlack: append([]string(nil), s.capturedByBlack...),
	}

	if s.eng.IsGameOver() {
		return upd, &GameEnd{Result: s.eng.Result(), Reason: s.eng.Reason()}, nil
	}
	return upd, nil, nil
}

// resign ends the game with color losing.
func (s *GameSession) resign(color string) *GameEnd {
	s.eng.Resign(color)
	result := engine.ResultWhiteWin
	if color == engine.White {
		result = engine.ResultBlackWin
	}
	return &GameEnd{Result: result, Reason: "resign"}
}

// legalMoves lists destinations for the piece on square, but only when
// the piece belongs to color; foreign and empty squares yield nothing.
func (s *GameSession) legalMoves(color, square string) []string {
	if s.eng.PieceColor(square) != color {
		return []string{}
	}
	moves := s.eng.LegalMoves(square)
	if moves == nil {
		moves = []string{}
	}
	return moves
}
