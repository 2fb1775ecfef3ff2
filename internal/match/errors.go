package match

type staticErr string

func (e staticErr) Error() string { return string(e) }

// Validation errors surfaced to the sender as ERROR frames. The values
// are catalog keys; internal/msgcat renders the human-readable text.
var (
	ErrUsernameEmpty   = staticErr("username_empty")
	ErrUsernameTaken   = staticErr("username_taken")
	ErrAlreadyLoggedIn = staticErr("already_logged_in")
	ErrNotLoggedIn     = staticErr("not_logged_in")
	ErrRoomNotFound    = staticErr("room_not_found")
	ErrRoomFull        = staticErr("room_full")
	ErrAlreadyInRoom   = staticErr("already_in_room")
	ErrNotInGame       = staticErr("not_in_game")
	ErrNotYourTurn     = staticErr("not_your_turn")
	ErrIllegalMove     = staticErr("illegal_move")
)
