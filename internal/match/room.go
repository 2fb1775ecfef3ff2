package match

import (
	"sync"

	"github.com/park285/chess-arena/internal/engine"
	"github.com/park285/chess-arena/pkg/protocol"
)

// Status is a room's lifecycle state.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Room is one match container: up to two players and, once full, the
// game session. Each room carries its own lock so games never contend
// with each other; only registry membership takes the registry lock.
//
// Colors are positional: the first occupant plays white, the second
// black. Everything derived from seat order is computed under the room
// lock and returned in snapshots, never read back off the Player.
type Room struct {
	ID      string
	Name    string
	Creator string

	mu      sync.Mutex
	players []*Player
	status  Status
	session *GameSession
	closed  bool // set when the last player left and the registry evicted it
}

func newRoom(id, name string, creator *Player) *Room {
	r := &Room{
		ID:      id,
		Name:    name,
		Creator: creator.Username,
		players: []*Player{creator},
		status:  StatusWaiting,
	}
	creator.roomID = id
	return r
}

// GameStart is the snapshot broadcast when the second player arrives.
// White is always the room creator, black the joiner.
type GameStart struct {
	GameID     string
	White      *Player
	Black      *Player
	BoardState string
}

// Forfeit describes a Playing room ended by departure or disconnect
// rather than by an in-game action.
type Forfeit struct {
	RoomID string
	GameID string
	Loser  string
	Winner *Player // remaining occupant, nil if nobody is left
	Result string  // white_win or black_win
	Reason string  // always "resign"
	Moves  int
	White  string
	Black  string
	Final  string // final position, FEN
}

func (r *Room) Summary() protocol.RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return protocol.RoomSummary{
		RoomID:  r.ID,
		Name:    r.Name,
		Players: len(r.players),
		Status:  string(r.status),
		Creator: r.Creator,
	}
}

func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Players returns a snapshot of the occupant list. Broadcast callers
// use this so no room lock is held during socket I/O.
func (r *Room) Players() []*Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Player(nil), r.players...)
}

// Member reports whether p occupies the room.
func (r *Room) Member(p *Player) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexOf(p) >= 0
}

func (r *Room) indexOf(p *Player) int {
	for i, q := range r.players {
		if q == p {
			return i
		}
	}
	return -1
}

// colorAt maps a seat index to its side. Valid while the seat order is
// intact, which ApplyMove and friends guarantee by holding the lock.
func (r *Room) colorAt(i int) string {
	if i == 0 {
		return engine.White
	}
	return engine.Black
}

// addPlayer admits p and, when the room fills, starts the game. Returns
// the start snapshot when this join triggered it. A rejected join
// mutates nothing.
func (r *Room) addPlayer(p *Player) (*GameStart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRoomNotFound
	}
	if r.indexOf(p) >= 0 {
		return nil, ErrAlreadyInRoom
	}
	if len(r.players) >= 2 || r.status != StatusWaiting {
		return nil, ErrRoomFull
	}
	r.players = append(r.players, p)
	p.roomID = r.ID

	if len(r.players) < 2 {
		return nil, nil
	}

	// Room is full: start atomically under the same lock.
	r.session = newGameSession()
	r.status = StatusPlaying
	return &GameStart{
		GameID:     r.session.ID,
		White:      r.players[0],
		Black:      r.players[1],
		BoardState: r.session.position(),
	}, nil
}

// removePlayer takes p out of the room. Leaving a Playing room forfeits:
// the engine records a resignation, the room transitions to Finished,
// and the returned Forfeit names the remaining occupant as winner.
// The second return value reports whether the room is now empty.
func (r *Room) removePlayer(p *Player) (*Forfeit, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(p)
	if i < 0 {
		return nil, len(r.players) == 0
	}

	// Build the forfeit while the seat order is still intact.
	var forfeit *Forfeit
	if r.status == StatusPlaying && r.session != nil {
		end := r.session.resign(r.colorAt(i))
		r.status = StatusFinished
		forfeit = &Forfeit{
			RoomID: r.ID,
			GameID: r.session.ID,
			Loser:  p.Username,
			Result: end.Result,
			Reason: end.Reason,
			Moves:  r.session.moveCount(),
			White:  r.players[0].Username,
			Black:  r.players[1].Username,
			Final:  r.session.position(),
		}
		if other := r.players[1-i]; other != p {
			forfeit.Winner = other
		}
	}

	r.players = append(r.players[:i], r.players[i+1:]...)
	// The player may already be seated elsewhere (join-then-leave on
	// room switch); only clear a binding that still points here.
	if p.roomID == r.ID {
		p.roomID = ""
	}

	empty := len(r.players) == 0
	if empty {
		r.closed = true
	}
	return forfeit, empty
}

// ApplyMove arbitrates one move request. Wrong-turn and non-member
// requests are rejected with no side effects.
func (r *Room) ApplyMove(p *Player, from, to, promotion string) (*MoveUpdate, *GameEnd, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != StatusPlaying || r.session == nil {
		return nil, nil, ErrNotInGame
	}
	i := r.indexOf(p)
	if i < 0 {
		return nil, nil, ErrNotInGame
	}
	color := r.colorAt(i)
	if color != r.session.turn() {
		return nil, nil, ErrNotYourTurn
	}
	upd, end, err := r.session.applyMove(color, from, to, promotion)
	if err != nil {
		return nil, nil, err
	}
	if end != nil {
		r.status = StatusFinished
	}
	return upd, end, nil
}

// Resign ends the game immediately with p losing. Out-of-turn safe.
func (r *Room) Resign(p *Player) (*GameEnd, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(p)
	if r.status != StatusPlaying || r.session == nil || i < 0 {
		return nil, ErrNotInGame
	}
	end := r.session.resign(r.colorAt(i))
	r.status = StatusFinished
	return end, nil
}

// LegalMoves answers a hint request for p's own piece on square.
func (r *Room) LegalMoves(p *Player, square string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(p)
	if r.status != StatusPlaying || r.session == nil || i < 0 {
		return nil, ErrNotInGame
	}
	return r.session.legalMoves(r.colorAt(i), square), nil
}

// GameID returns the active session id, "" when no game ran yet.
func (r *Room) GameID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return ""
	}
	return r.session.ID
}

// Record snapshots the finished game for archiving.
type Record struct {
	GameID string
	RoomID string
	White  string
	Black  string
	Result string
	Reason string
	Moves  int
	Final  string // final position, FEN
}

// RecordFor builds an archive record after the game ended. Returns nil
// while the room is not Finished.
func (r *Room) RecordFor(end *GameEnd) *Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil || r.status != StatusFinished || end == nil {
		return nil
	}
	rec := &Record{
		GameID: r.session.ID,
		RoomID: r.ID,
		Result: end.Result,
		Reason: end.Reason,
		Moves:  r.session.moveCount(),
		Final:  r.session.position(),
	}
	if len(r.players) == 2 {
		rec.White = r.players[0].Username
		rec.Black = r.players[1].Username
	}
	return rec
}
