package engine

import (
	"strings"
	"testing"
)

func mustApply(t *testing.T, e Engine, from, to string) {
	t.Helper()
	ok, _ := e.ApplyMove(from, to, "")
	if !ok {
		t.Fatalf("move %s%s rejected", from, to)
	}
}

func TestStartingState(t *testing.T) {
	e := New()
	if e.CurrentTurn() != White {
		t.Fatalf("turn = %q, want white", e.CurrentTurn())
	}
	if e.IsGameOver() {
		t.Fatalf("fresh game reported over")
	}
	if e.Result() != ResultNone {
		t.Fatalf("result = %q, want none", e.Result())
	}
	if !strings.HasPrefix(e.Position(), "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w") {
		t.Fatalf("unexpected start FEN: %s", e.Position())
	}
}

func TestApplyMoveFlipsTurn(t *testing.T) {
	e := New()
	ok, captured := e.ApplyMove("e2", "e4", "")
	if !ok {
		t.Fatalf("e2e4 rejected")
	}
	if captured != "" {
		t.Fatalf("captured = %q, want none", captured)
	}
	if e.CurrentTurn() != Black {
		t.Fatalf("turn = %q, want black", e.CurrentTurn())
	}
}

func TestIllegalMoveLeavesStateUntouched(t *testing.T) {
	e := New()
	fen := e.Position()
	for _, mv := range [][2]string{{"e2", "e5"}, {"e7", "e5"}, {"a1", "a3"}, {"zz", "e4"}} {
		if ok, _ := e.ApplyMove(mv[0], mv[1], ""); ok {
			t.Fatalf("move %v accepted, want rejection", mv)
		}
	}
	if e.Position() != fen {
		t.Fatalf("position changed after rejected moves")
	}
	if e.CurrentTurn() != White {
		t.Fatalf("turn changed after rejected moves")
	}
}

func TestCaptureReportsSymbol(t *testing.T) {
	e := New()
	mustApply(t, e, "e2", "e4")
	mustApply(t, e, "d7", "d5")
	ok, captured := e.ApplyMove("e4", "d5", "")
	if !ok {
		t.Fatalf("exd5 rejected")
	}
	if captured != "p" {
		t.Fatalf("captured = %q, want black pawn %q", captured, "p")
	}
}

func TestEnPassantCapture(t *testing.T) {
	e := New()
	mustApply(t, e, "e2", "e4")
	mustApply(t, e, "a7", "a6")
	mustApply(t, e, "e4", "e5")
	mustApply(t, e, "d7", "d5")
	ok, captured := e.ApplyMove("e5", "d6", "")
	if !ok {
		t.Fatalf("en passant rejected")
	}
	if captured != "p" {
		t.Fatalf("captured = %q, want %q", captured, "p")
	}
}

func TestFoolsMate(t *testing.T) {
	e := New()
	mustApply(t, e, "f2", "f3")
	mustApply(t, e, "e7", "e5")
	mustApply(t, e, "g2", "g4")
	mustApply(t, e, "d8", "h4")
	if !e.IsGameOver() {
		t.Fatalf("expected game over after fool's mate")
	}
	if e.Result() != ResultBlackWin {
		t.Fatalf("result = %q, want black_win", e.Result())
	}
	if e.Reason() != "checkmate" {
		t.Fatalf("reason = %q, want checkmate", e.Reason())
	}
}

func TestLegalMovesForSquare(t *testing.T) {
	e := New()
	moves := e.LegalMoves("e2")
	if len(moves) != 2 {
		t.Fatalf("e2 moves = %v, want e3 and e4", moves)
	}
	got := map[string]bool{}
	for _, m := range moves {
		got[m] = true
	}
	if !got["e3"] || !got["e4"] {
		t.Fatalf("e2 moves = %v", moves)
	}
	if moves := e.LegalMoves("e5"); len(moves) != 0 {
		t.Fatalf("empty square yielded moves: %v", moves)
	}
	if moves := e.LegalMoves("not-a-square"); len(moves) != 0 {
		t.Fatalf("bad square yielded moves: %v", moves)
	}
}

func TestPieceColor(t *testing.T) {
	e := New()
	if c := e.PieceColor("e2"); c != White {
		t.Fatalf("e2 color = %q, want white", c)
	}
	if c := e.PieceColor("e7"); c != Black {
		t.Fatalf("e7 color = %q, want black", c)
	}
	if c := e.PieceColor("e4"); c != "" {
		t.Fatalf("e4 color = %q, want empty", c)
	}
}

func TestResign(t *testing.T) {
	e := New()
	mustApply(t, e, "e2", "e4")
	e.Resign(Black)
	if !e.IsGameOver() {
		t.Fatalf("expected game over after resign")
	}
	if e.Result() != ResultWhiteWin {
		t.Fatalf("result = %q, want white_win", e.Result())
	}
	if e.Reason() != "resign" {
		t.Fatalf("reason = %q, want resign", e.Reason())
	}
}

func TestPromotion(t *testing.T) {
	e := New()
	// march the a-pawn through b-file captures to promotion
	mustApply(t, e, "a2", "a4")
	mustApply(t, e, "b7", "b5")
	if ok, captured := e.ApplyMove("a4", "b5", ""); !ok || captured != "p" {
		t.Fatalf("axb5: ok=%v captured=%q", ok, captured)
	}
	mustApply(t, e, "h7", "h6")
	mustApply(t, e, "b5", "b6")
	mustApply(t, e, "h6", "h5")
	mustApply(t, e, "b6", "b7")
	mustApply(t, e, "h5", "h4")
	if ok, captured := e.ApplyMove("b7", "a8", "q"); !ok || captured != "r" {
		t.Fatalf("bxa8=Q: ok=%v captured=%q", ok, captured)
	}
}

