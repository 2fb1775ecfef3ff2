package match

import (
	"github.com/park285/chess-arena/pkg/protocol"
)

const defaultRating = 1200

// Peer delivers frames to one connected player. The server side
// implements it on top of the framed connection; tests substitute a
// recording fake. Send must not block indefinitely: one slow peer must
// never stall another's delivery.
type Peer interface {
	Send(m *protocol.Message) error
	Close() error
}

// Player is a logged-in connection's identity. The Registry owns every
// Player; connection handlers hold references only. Username and Peer
// are immutable after Login, so handlers may read them freely. A
// player's color is deliberately not stored here: it derives from seat
// order inside the room, under the room lock, so no game state is
// exposed as lock-free mutable fields.
type Player struct {
	Username string
	Rating   int
	Peer     Peer

	// roomID is written only through registry operations invoked by the
	// player's own session goroutine.
	roomID string
}

// RoomID returns the id of the room the player currently occupies.
func (p *Player) RoomID() string { return p.roomID }
