package msgcat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/park285/chess-arena/internal/match"
)

func TestEmbeddedDefaults(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := c.Render("error.not_your_turn", nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Not your turn" {
		t.Fatalf("rendered %q", got)
	}
}

func TestErrorTextCoversValidationErrors(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cases := map[error]string{
		match.ErrUsernameEmpty: "Username required",
		match.ErrUsernameTaken: "Username already taken",
		match.ErrNotLoggedIn:   "Not logged in",
		match.ErrRoomNotFound:  "Room not found",
		match.ErrRoomFull:      "Room is full",
		match.ErrAlreadyInRoom: "Already in a room",
		match.ErrNotInGame:     "Not in a game",
		match.ErrNotYourTurn:   "Not your turn",
		match.ErrIllegalMove:   "Invalid move",
	}
	for err, want := range cases {
		if got := c.ErrorText(err); got != want {
			t.Fatalf("ErrorText(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestErrorTextFallsBackToKey(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.ErrorText(errUnknown("mystery_key")); got != "mystery_key" {
		t.Fatalf("fallback = %q", got)
	}
}

type errUnknown string

func (e errUnknown) Error() string { return string(e) }

func TestTemplateData(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("game.forfeit", map[string]string{"Username": "alice"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "alice left the game" {
		t.Fatalf("rendered %q", got)
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	override := "error:\n  not_your_turn: \"Wait for your opponent\"\n"
	if err := os.WriteFile(filepath.Join(dir, "10-local.yaml"), []byte(override), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.ErrorText(match.ErrNotYourTurn); got != "Wait for your opponent" {
		t.Fatalf("override not applied: %q", got)
	}
	// Untouched keys keep their defaults.
	if got := c.ErrorText(match.ErrRoomFull); got != "Room is full" {
		t.Fatalf("default lost: %q", got)
	}
}
