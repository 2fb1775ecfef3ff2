// Package protocol defines the wire envelope exchanged between arena
// clients and the server: a JSON message tagged with a kind, carrying a
// typed payload, framed one-per-line over a byte stream.
package protocol

import (
	"encoding/json"
	"time"
)

// Kind selects the payload shape of a message.
type Kind string

const (
	KindLogin         Kind = "LOGIN"
	KindLoginSuccess  Kind = "LOGIN_SUCCESS"
	KindLoginFailed   Kind = "LOGIN_FAILED"
	KindCreateRoom    Kind = "CREATE_ROOM"
	KindListRooms     Kind = "LIST_ROOMS"
	KindRoomList      Kind = "ROOM_LIST"
	KindJoinRoom      Kind = "JOIN_ROOM"
	KindRoomJoined    Kind = "ROOM_JOINED"
	KindGameStart     Kind = "GAME_START"
	KindGetLegalMoves Kind = "GET_LEGAL_MOVES"
	KindLegalMoves    Kind = "LEGAL_MOVES"
	KindMove          Kind = "MOVE"
	KindMoveUpdate    Kind = "MOVE_UPDATE"
	KindChat          Kind = "CHAT"
	KindChatMessage   Kind = "CHAT_MESSAGE"
	KindResign        Kind = "RESIGN"
	KindOfferDraw     Kind = "OFFER_DRAW"
	KindDrawOffered   Kind = "DRAW_OFFERED"
	KindGameOver      Kind = "GAME_OVER"
	KindLogout        Kind = "LOGOUT"
	KindError         Kind = "ERROR"
)

// Message is one decoded frame. Payload stays raw until the dispatcher
// knows which typed struct to decode it into.
type Message struct {
	Kind      Kind            `json:"kind"`
	Timestamp string          `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// New builds a stamped message for the given kind. A payload that cannot
// be marshalled is a programming error and yields ErrBadPayload.
func New(kind Kind, payload any) (*Message, error) {
	m := &Message{
		Kind:      kind,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, ErrBadPayload
		}
		m.Payload = raw
	}
	return m, nil
}

// Decode unmarshals the payload into out, which must be a pointer to the
// payload struct matching m.Kind. A mismatched or malformed payload is a
// recoverable protocol error.
func (m *Message) Decode(out any) error {
	if len(m.Payload) == 0 {
		// Kinds like LIST_ROOMS and LOGOUT legitimately carry nothing.
		return nil
	}
	if err := json.Unmarshal(m.Payload, out); err != nil {
		return ErrMalformedFrame
	}
	return nil
}

type staticErr string

func (e staticErr) Error() string { return string(e) }

var (
	// ErrMalformedFrame marks a frame that failed structural decoding.
	// It is recoverable: the sender gets an ERROR frame, the connection
	// stays open.
	ErrMalformedFrame = staticErr("malformed frame")
	// ErrFrameTooLarge marks a frame exceeding MaxFrameSize.
	ErrFrameTooLarge = staticErr("frame exceeds size limit")
	// ErrBadPayload marks a payload that cannot be marshalled.
	ErrBadPayload = staticErr("payload not marshallable")
)
