// Package match holds the server's shared mutable state: the registry
// of connected players and open rooms, and the per-room game sessions.
package match

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/chess-arena/pkg/protocol"
)

// Registry is the process-wide table of players and rooms. It is an
// injected service object, never a package-level singleton, so each test
// can run against its own isolated instance.
//
// Locking is two-level: the registry mutex guards only map membership
// (who exists), each Room guards its own contents. Unrelated games never
// block each other.
type Registry struct {
	log *zap.Logger

	mu      sync.RWMutex
	players map[string]*Player // username → player
	rooms   map[string]*Room   // room id → room
}

func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		log:     log,
		players: make(map[string]*Player),
		rooms:   make(map[string]*Room),
	}
}

// Login registers a new player. Usernames are the only identity the
// server knows; they must be non-empty and unique among live
// connections.
func (r *Registry) Login(username string, peer Peer) (*Player, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameEmpty
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.players[username]; taken {
		return nil, ErrUsernameTaken
	}
	p := &Player{Username: username, Rating: defaultRating, Peer: peer}
	r.players[username] = p
	r.log.Info("login_ok", zap.String("username", username), zap.Int("players", len(r.players)))
	return p, nil
}

// CreateRoom opens a Waiting room with p as sole occupant. A player
// already in a room leaves it first; if that room was Playing the
// departure forfeits, and the returned Forfeit must be relayed to the
// abandoned opponent.
func (r *Registry) CreateRoom(p *Player, name string) (*Room, *Forfeit) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = p.Username + "'s room"
	}
	forfeit := r.LeaveRoom(p)

	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	room := newRoom(id, name, p)

	r.mu.Lock()
	r.rooms[id] = room
	r.mu.Unlock()

	r.log.Info("room_create",
		zap.String("room_id", id),
		zap.String("name", name),
		zap.String("creator", p.Username),
	)
	return room, forfeit
}

// ListRooms summarizes joinable rooms: Waiting status only. Two calls
// with no intervening mutation return identical summaries.
func (r *Registry) ListRooms() []protocol.RoomSummary {
	r.mu.RLock()
	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.RUnlock()

	out := make([]protocol.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		s := room.Summary()
		if s.Status == string(StatusWaiting) {
			out = append(out, s)
		}
	}
	return out
}

// Room looks up a room by id.
func (r *Registry) Room(id string) (*Room, error) {
	r.mu.RLock()
	room, ok := r.rooms[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// JoinRoom admits p into the identified room. Filling the room starts
// the game atomically. Admission happens before the implicit departure
// from any previous room, so a rejected join (full, closed, unknown)
// leaves the player exactly where they were.
func (r *Registry) JoinRoom(roomID string, p *Player) (*Room, *GameStart, *Forfeit, error) {
	room, err := r.Room(roomID)
	if err != nil {
		return nil, nil, nil, err
	}
	if room.Member(p) {
		return nil, nil, nil, ErrAlreadyInRoom
	}
	oldRoomID := p.RoomID()

	start, err := room.addPlayer(p)
	if err != nil {
		return nil, nil, nil, err
	}

	var forfeit *Forfeit
	if oldRoomID != "" && oldRoomID != roomID {
		forfeit = r.leaveRoom(oldRoomID, p)
	}
	r.log.Info("room_join",
		zap.String("room_id", roomID),
		zap.String("username", p.Username),
		zap.Bool("game_started", start != nil),
	)
	return room, start, forfeit, nil
}

// LeaveRoom removes p from its room, if any. An empty room is evicted
// from the registry; a Playing room finishes first via forfeit.
func (r *Registry) LeaveRoom(p *Player) *Forfeit {
	roomID := p.RoomID()
	if roomID == "" {
		return nil
	}
	return r.leaveRoom(roomID, p)
}

func (r *Registry) leaveRoom(roomID string, p *Player) *Forfeit {
	room, err := r.Room(roomID)
	if err != nil {
		return nil
	}
	forfeit, empty := room.removePlayer(p)
	if empty {
		r.mu.Lock()
		delete(r.rooms, roomID)
		r.mu.Unlock()
		r.log.Info("room_evict", zap.String("room_id", roomID))
	}
	if forfeit != nil {
		r.log.Info("game_forfeit",
			zap.String("room_id", forfeit.RoomID),
			zap.String("loser", forfeit.Loser),
			zap.String("result", forfeit.Result),
		)
	}
	return forfeit
}

// RemovePlayer is LeaveRoom plus deregistration; used on logout and on
// disconnect.
func (r *Registry) RemovePlayer(p *Player) *Forfeit {
	forfeit := r.LeaveRoom(p)
	r.mu.Lock()
	delete(r.players, p.Username)
	remaining := len(r.players)
	r.mu.Unlock()
	r.log.Info("player_remove", zap.String("username", p.Username), zap.Int("players", remaining))
	return forfeit
}

// Counts reports live players and rooms, for the status endpoint.
func (r *Registry) Counts() (players, rooms int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players), len(r.rooms)
}
