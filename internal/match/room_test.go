package match

import (
	"errors"
	"testing"

	"github.com/park285/chess-arena/internal/engine"
)

func playingRoom(t *testing.T) (*Room, *Player, *Player) {
	t.Helper()
	white := &Player{Username: "alice", Peer: &fakePeer{}}
	black := &Player{Username: "bob", Peer: &fakePeer{}}
	room := newRoom("ab12cd34", "arena", white)
	start, err := room.addPlayer(black)
	if err != nil {
		t.Fatalf("addPlayer: %v", err)
	}
	if start == nil {
		t.Fatalf("game did not start")
	}
	return room, white, black
}

func TestApplyMoveAlternatesTurns(t *testing.T) {
	room, white, black := playingRoom(t)

	upd, end, err := room.ApplyMove(white, "e2", "e4", "")
	if err != nil {
		t.Fatalf("white move: %v", err)
	}
	if end != nil {
		t.Fatalf("game over after one move")
	}
	if upd.CurrentTurn != engine.Black {
		t.Fatalf("turn = %s, want %s", upd.CurrentTurn, engine.Black)
	}

	if _, _, err := room.ApplyMove(white, "d2", "d4", ""); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("double move: got %v, want %v", err, ErrNotYourTurn)
	}

	upd, _, err = room.ApplyMove(black, "e7", "e5", "")
	if err != nil {
		t.Fatalf("black move: %v", err)
	}
	if upd.CurrentTurn != engine.White {
		t.Fatalf("turn = %s, want %s", upd.CurrentTurn, engine.White)
	}
}

func TestIllegalMoveKeepsState(t *testing.T) {
	room, white, _ := playingRoom(t)

	before := room.session.position()
	if _, _, err := room.ApplyMove(white, "e2", "e5", ""); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("got %v, want %v", err, ErrIllegalMove)
	}
	if room.session.position() != before {
		t.Fatalf("rejected move mutated the position")
	}
	if room.session.turn() != engine.White {
		t.Fatalf("rejected move flipped the turn")
	}
}

func TestOutsiderCannotMove(t *testing.T) {
	room, _, _ := playingRoom(t)
	mallory := &Player{Username: "mallory", Peer: &fakePeer{}}

	if _, _, err := room.ApplyMove(mallory, "e2", "e4", ""); !errors.Is(err, ErrNotInGame) {
		t.Fatalf("got %v, want %v", err, ErrNotInGame)
	}
}

func TestCapturedPiecesAccumulate(t *testing.T) {
	room, white, black := playingRoom(t)

	mustMove := func(p *Player, from, to string) *MoveUpdate {
		t.Helper()
		upd, _, err := room.ApplyMove(p, from, to, "")
		if err != nil {
			t.Fatalf("%s %s%s: %v", p.Username, from, to, err)
		}
		return upd
	}

	mustMove(white, "e2", "e4")
	mustMove(black, "d7", "d5")
	upd := mustMove(white, "e4", "d5")

	if upd.CapturedPiece != "p" {
		t.Fatalf("captured = %q, want p", upd.CapturedPiece)
	}
	if len(upd.CapturedByWhite) != 1 || upd.CapturedByWhite[0] != "p" {
		t.Fatalf("captured_by_white = %v", upd.CapturedByWhite)
	}
	if len(upd.CapturedByBlack) != 0 {
		t.Fatalf("captured_by_black = %v", upd.CapturedByBlack)
	}

	mustMove(black, "d8", "d5") // queen takes the pawn back
	if got := room.session.capturedByBlack; len(got) != 1 || got[0] != "P" {
		t.Fatalf("captured_by_black = %v", got)
	}
}

func TestResignEndsGame(t *testing.T) {
	room, _, black := playingRoom(t)

	end, err := room.Resign(black)
	if err != nil {
		t.Fatalf("resign: %v", err)
	}
	if end.Result != "white_win" || end.Reason != "resign" {
		t.Fatalf("end = %+v", end)
	}
	if room.Status() != StatusFinished {
		t.Fatalf("status = %s", room.Status())
	}

	// No further moves accepted.
	if _, _, err := room.ApplyMove(black, "e7", "e5", ""); !errors.Is(err, ErrNotInGame) {
		t.Fatalf("post-game move: got %v, want %v", err, ErrNotInGame)
	}
}

func TestLegalMovesOwnPiecesOnly(t *testing.T) {
	room, white, black := playingRoom(t)

	moves, err := room.LegalMoves(white, "e2")
	if err != nil {
		t.Fatalf("legal moves: %v", err)
	}
	if len(moves) != 2 {
		t.Fatalf("e2 moves = %v, want e3 and e4", moves)
	}

	moves, err = room.LegalMoves(black, "e7")
	if err != nil {
		t.Fatalf("legal moves: %v", err)
	}
	if len(moves) != 2 {
		t.Fatalf("e7 moves = %v, want e6 and e5", moves)
	}

	// Empty square answers an empty list, never nil.
	moves, err = room.LegalMoves(black, "e4")
	if err != nil {
		t.Fatalf("legal moves: %v", err)
	}
	if moves == nil || len(moves) != 0 {
		t.Fatalf("empty square moves = %v, want empty list", moves)
	}
}

func TestLegalMovesForeignSquareEmpty(t *testing.T) {
	room, white, _ := playingRoom(t)

	// White asking about black's pawn gets nothing.
	moves, err := room.LegalMoves(white, "e7")
	if err != nil {
		t.Fatalf("legal moves: %v", err)
	}
	if len(moves) != 0 {
		t.Fatalf("foreign square moves = %v, want none", moves)
	}
}

func TestCheckmateFinishesRoom(t *testing.T) {
	room, white, black := playingRoom(t)

	seq := []struct {
		p        *Player
		from, to string
	}{
		{white, "f2", "f3"},
		{black, "e7", "e5"},
		{white, "g2", "g4"},
	}
	for _, m := range seq {
		if _, _, err := room.ApplyMove(m.p, m.from, m.to, ""); err != nil {
			t.Fatalf("%s%s: %v", m.from, m.to, err)
		}
	}

	_, end, err := room.ApplyMove(black, "d8", "h4", "")
	if err != nil {
		t.Fatalf("mating move: %v", err)
	}
	if end == nil {
		t.Fatalf("no game end after checkmate")
	}
	if end.Result != "black_win" || end.Reason != "checkmate" {
		t.Fatalf("end = %+v", end)
	}
	if room.Status() != StatusFinished {
		t.Fatalf("status = %s", room.Status())
	}

	rec := room.RecordFor(end)
	if rec == nil {
		t.Fatalf("no record for finished game")
	}
	if rec.White != "alice" || rec.Black != "bob" || rec.Moves != 4 {
		t.Fatalf("record = %+v", rec)
	}
}

func TestClosedRoomRejectsJoin(t *testing.T) {
	creator := &Player{Username: "alice", Peer: &fakePeer{}}
	room := newRoom("ab12cd34", "arena", creator)
	if _, empty := room.removePlayer(creator); !empty {
		t.Fatalf("room not empty after creator left")
	}

	late := &Player{Username: "bob", Peer: &fakePeer{}}
	if _, err := room.addPlayer(late); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("join after close: got %v, want %v", err, ErrRoomNotFound)
	}
}
