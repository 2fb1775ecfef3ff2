package protocol

// Payload structs, one fixed field set per kind. Clients and server share
// these; ad-hoc map access is deliberately avoided.

type LoginPayload struct {
	Username string `json:"username"`
}

type LoginSuccessPayload struct {
	Username string `json:"username"`
	Rating   int    `json:"rating"`
}

type LoginFailedPayload struct {
	Error string `json:"error"`
}

type CreateRoomPayload struct {
	RoomName string `json:"room_name"`
}

type RoomSummary struct {
	RoomID  string `json:"room_id"`
	Name    string `json:"name"`
	Players int    `json:"players"`
	Status  string `json:"status"`
	Creator string `json:"creator"`
}

type RoomListPayload struct {
	Rooms []RoomSummary `json:"rooms"`
}

type JoinRoomPayload struct {
	RoomID string `json:"room_id"`
}

type RoomJoinedPayload struct {
	RoomID   string `json:"room_id"`
	RoomName string `json:"room_name"`
	Status   string `json:"status"`
}

type GameStartPayload struct {
	GameID      string `json:"game_id"`
	WhitePlayer string `json:"white_player"`
	BlackPlayer string `json:"black_player"`
	BoardState  string `json:"board_state"`
	YourColor   string `json:"your_color"`
}

type GetLegalMovesPayload struct {
	Square string `json:"square"`
}

type LegalMovesPayload struct {
	Square string   `json:"square"`
	Moves  []string `json:"moves"`
}

type MovePayload struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

type MoveUpdatePayload struct {
	From            string   `json:"from"`
	To              string   `json:"to"`
	Promotion       string   `json:"promotion,omitempty"`
	BoardState      string   `json:"board_state"`
	CurrentTurn     string   `json:"current_turn"`
	CapturedPiece   *string  `json:"captured_piece"`
	CapturedByWhite []string `json:"captured_by_white"`
	CapturedByBlack []string `json:"captured_by_black"`
}

type ChatPayload struct {
	Message string `json:"message"`
}

type ChatMessagePayload struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

type DrawOfferedPayload struct {
	Username string `json:"username"`
}

type GameOverPayload struct {
	Result string `json:"result"`
	Reason string `json:"reason"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}
