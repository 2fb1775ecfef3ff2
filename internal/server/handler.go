// Package server owns the connection surface: TCP and WebSocket
// acceptors, per-connection framing, and the dispatch of protocol
// messages onto the match registry.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/park285/chess-arena/internal/engine"
	"github.com/park285/chess-arena/internal/match"
	"github.com/park285/chess-arena/internal/msgcat"
	"github.com/park285/chess-arena/pkg/protocol"
)

// Archiver persists finished games. Attachment is optional; a nil
// archiver means results are only logged.
type Archiver interface {
	Archive(ctx context.Context, rec *match.Record) error
}

// Handler dispatches decoded frames for all connections. It is
// stateless per message; session state lives in the per-connection
// session struct.
type Handler struct {
	reg  *match.Registry
	cat  *msgcat.Catalog
	arch Archiver
	log  *zap.Logger

	readTimeout time.Duration
}

func NewHandler(reg *match.Registry, cat *msgcat.Catalog, readTimeout time.Duration, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{reg: reg, cat: cat, readTimeout: readTimeout, log: log}
}

// AttachArchiver enables result persistence. Call before serving.
func (h *Handler) AttachArchiver(a Archiver) { h.arch = a }

// session is one connection's view: its peer and, after LOGIN, its
// player identity.
type session struct {
	h      *Handler
	peer   *peer
	player *match.Player
}

// HandleConn runs the read loop for one connection until the client
// disconnects, logs out, or the context is canceled. Cleanup always
// runs: an abandoned game forfeits and the opponent is told.
func (h *Handler) HandleConn(ctx context.Context, conn net.Conn, p *peer) {
	s := &session{h: h, peer: p}
	defer s.cleanup()

	fr := protocol.NewFrameReader(conn)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if h.readTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(h.readTimeout))
		}
		msg, err := fr.Next()
		switch {
		case err == nil:
			if !s.dispatch(msg) {
				return
			}
		case errors.Is(err, protocol.ErrMalformedFrame):
			s.sendErrorText(h.mustRender("error.malformed_frame", nil))
		case errors.Is(err, protocol.ErrFrameTooLarge):
			s.sendErrorText(h.mustRender("error.frame_too_large", nil))
			return
		case errors.Is(err, io.EOF):
			return
		default:
			h.log.Debug("conn_read_err",
				zap.String("remote_addr", conn.RemoteAddr().String()),
				zap.Error(err),
			)
			return
		}
	}
}

// dispatch routes one frame. Returns false when the session should end.
func (s *session) dispatch(msg *protocol.Message) bool {
	switch msg.Kind {
	case protocol.KindLogin:
		s.handleLogin(msg)
		return true
	case protocol.KindLogout:
		return false
	}

	if s.player == nil {
		s.sendError(match.ErrNotLoggedIn)
		return true
	}

	switch msg.Kind {
	case protocol.KindCreateRoom:
		s.handleCreateRoom(msg)
	case protocol.KindListRooms:
		s.handleListRooms()
	case protocol.KindJoinRoom:
		s.handleJoinRoom(msg)
	case protocol.KindGetLegalMoves:
		s.handleGetLegalMoves(msg)
	case protocol.KindMove:
		s.handleMove(msg)
	case protocol.KindChat:
		s.handleChat(msg)
	case protocol.KindResign:
		s.handleResign()
	case protocol.KindOfferDraw:
		s.handleOfferDraw()
	default:
		s.sendErrorText(s.h.mustRender("error.unknown_kind", map[string]string{"Kind": string(msg.Kind)}))
	}
	return true
}

func (s *session) handleLogin(msg *protocol.Message) {
	if s.player != nil {
		s.sendError(match.ErrAlreadyLoggedIn)
		return
	}
	var req protocol.LoginPayload
	if err := msg.Decode(&req); err != nil {
		s.sendError(err)
		return
	}
	p, err := s.h.reg.Login(req.Username, s.peer)
	if err != nil {
		s.send(protocol.KindLoginFailed, protocol.LoginFailedPayload{Error: s.h.cat.ErrorText(err)})
		return
	}
	s.player = p
	s.send(protocol.KindLoginSuccess, protocol.LoginSuccessPayload{
		Username: p.Username,
		Rating:   p.Rating,
	})
}

func (s *session) handleCreateRoom(msg *protocol.Message) {
	var req protocol.CreateRoomPayload
	if err := msg.Decode(&req); err != nil {
		s.sendError(err)
		return
	}
	room, forfeit := s.h.reg.CreateRoom(s.player, req.RoomName)
	s.h.settleForfeit(forfeit)
	s.send(protocol.KindRoomJoined, protocol.RoomJoinedPayload{
		RoomID:   room.ID,
		RoomName: room.Name,
		Status:   string(room.Status()),
	})
}

func (s *session) handleListRooms() {
	s.send(protocol.KindRoomList, protocol.RoomListPayload{Rooms: s.h.reg.ListRooms()})
}

func (s *session) handleJoinRoom(msg *protocol.Message) {
	var req protocol.JoinRoomPayload
	if err := msg.Decode(&req); err != nil {
		s.sendError(err)
		return
	}
	room, start, forfeit, err := s.h.reg.JoinRoom(req.RoomID, s.player)
	s.h.settleForfeit(forfeit)
	if err != nil {
		s.sendError(err)
		return
	}
	s.send(protocol.KindRoomJoined, protocol.RoomJoinedPayload{
		RoomID:   room.ID,
		RoomName: room.Name,
		Status:   string(room.Status()),
	})
	if start != nil {
		s.h.announceStart(start)
	}
}

// announceStart tells both players the game began. Each frame carries
// the receiver's own color; everything else is shared. Colors come from
// the start snapshot's seats, never from player state.
func (h *Handler) announceStart(start *match.GameStart) {
	base := protocol.GameStartPayload{
		GameID:      start.GameID,
		WhitePlayer: start.White.Username,
		BlackPlayer: start.Black.Username,
		BoardState:  start.BoardState,
	}
	seats := []struct {
		p     *match.Player
		color string
	}{
		{start.White, engine.White},
		{start.Black, engine.Black},
	}
	for _, seat := range seats {
		pay := base
		pay.YourColor = seat.color
		h.unicast(seat.p, protocol.KindGameStart, pay)
	}
	h.log.Info("game_start",
		zap.String("game_id", start.GameID),
		zap.String("white", start.White.Username),
		zap.String("black", start.Black.Username),
	)
}

func (s *session) handleGetLegalMoves(msg *protocol.Message) {
	var req protocol.GetLegalMovesPayload
	if err := msg.Decode(&req); err != nil {
		s.sendError(err)
		return
	}
	room, err := s.currentRoom()
	if err != nil {
		s.sendError(err)
		return
	}
	moves, err := room.LegalMoves(s.player, req.Square)
	if err != nil {
		s.sendError(err)
		return
	}
	s.send(protocol.KindLegalMoves, protocol.LegalMovesPayload{Square: req.Square, Moves: moves})
}

func (s *session) handleMove(msg *protocol.Message) {
	var req protocol.MovePayload
	if err := msg.Decode(&req); err != nil {
		s.sendError(err)
		return
	}
	room, err := s.currentRoom()
	if err != nil {
		s.sendError(err)
		return
	}
	upd, end, err := room.ApplyMove(s.player, req.From, req.To, req.Promotion)
	if err != nil {
		// Rejections go to the sender only; the opponent sees nothing.
		s.sendError(err)
		return
	}

	pay := protocol.MoveUpdatePayload{
		From:            upd.From,
		To:              upd.To,
		Promotion:       upd.Promotion,
		BoardState:      upd.BoardState,
		CurrentTurn:     upd.CurrentTurn,
		CapturedByWhite: upd.CapturedByWhite,
		CapturedByBlack: upd.CapturedByBlack,
	}
	if upd.CapturedPiece != "" {
		pay.CapturedPiece = &upd.CapturedPiece
	}
	s.h.broadcast(room, protocol.KindMoveUpdate, pay)

	if end != nil {
		s.h.finishGame(room, end)
	}
}

func (s *session) handleChat(msg *protocol.Message) {
	var req protocol.ChatPayload
	if err := msg.Decode(&req); err != nil {
		s.sendError(err)
		return
	}
	room, err := s.currentRoom()
	if err != nil {
		// Chat outside a room is dropped, not an error.
		return
	}
	s.h.broadcast(room, protocol.KindChatMessage, protocol.ChatMessagePayload{
		Username: s.player.Username,
		Message:  req.Message,
	})
}

func (s *session) handleResign() {
	room, err := s.currentRoom()
	if err != nil {
		s.sendError(err)
		return
	}
	end, err := room.Resign(s.player)
	if err != nil {
		s.sendError(err)
		return
	}
	s.h.log.Info("game_resign",
		zap.String("room_id", room.ID),
		zap.String("username", s.player.Username),
	)
	s.h.finishGame(room, end)
}

// handleOfferDraw relays the offer to the opponent. The server does not
// arbitrate acceptance; clients settle it via RESIGN or play on.
func (s *session) handleOfferDraw() {
	room, err := s.currentRoom()
	if err != nil {
		s.sendError(err)
		return
	}
	if room.Status() != match.StatusPlaying {
		s.sendError(match.ErrNotInGame)
		return
	}
	for _, p := range room.Players() {
		if p != s.player {
			s.h.unicast(p, protocol.KindDrawOffered, protocol.DrawOfferedPayload{Username: s.player.Username})
		}
	}
}

func (s *session) currentRoom() (*match.Room, error) {
	id := s.player.RoomID()
	if id == "" {
		return nil, match.ErrNotInGame
	}
	return s.h.reg.Room(id)
}

// finishGame broadcasts GAME_OVER and archives the result.
func (h *Handler) finishGame(room *match.Room, end *match.GameEnd) {
	h.broadcast(room, protocol.KindGameOver, protocol.GameOverPayload{
		Result: end.Result,
		Reason: end.Reason,
	})
	h.log.Info("game_over",
		zap.String("room_id", room.ID),
		zap.String("result", end.Result),
		zap.String("reason", end.Reason),
	)
	if rec := room.RecordFor(end); rec != nil {
		h.archive(rec)
	}
}

// settleForfeit notifies the abandoned opponent and archives the result
// of a game ended by departure. Nil forfeits are ignored.
func (h *Handler) settleForfeit(forfeit *match.Forfeit) {
	if forfeit == nil {
		return
	}
	if forfeit.Winner != nil {
		h.unicast(forfeit.Winner, protocol.KindGameOver, protocol.GameOverPayload{
			Result: forfeit.Result,
			Reason: forfeit.Reason,
		})
	}
	h.archive(&match.Record{
		GameID: forfeit.GameID,
		RoomID: forfeit.RoomID,
		White:  forfeit.White,
		Black:  forfeit.Black,
		Result: forfeit.Result,
		Reason: forfeit.Reason,
		Moves:  forfeit.Moves,
		Final:  forfeit.Final,
	})
}

func (h *Handler) archive(rec *match.Record) {
	if h.arch == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.arch.Archive(ctx, rec); err != nil {
		h.log.Warn("archive_failed", zap.String("game_id", rec.GameID), zap.Error(err))
	}
}

// broadcast sends one frame to every room occupant. Failures are
// independent: one dead peer never blocks the other's delivery.
func (h *Handler) broadcast(room *match.Room, kind protocol.Kind, payload any) {
	for _, p := range room.Players() {
		h.unicast(p, kind, payload)
	}
}

func (h *Handler) unicast(p *match.Player, kind protocol.Kind, payload any) {
	msg, err := protocol.New(kind, payload)
	if err != nil {
		h.log.Error("frame_encode_err", zap.String("kind", string(kind)), zap.Error(err))
		return
	}
	if err := p.Peer.Send(msg); err != nil {
		h.log.Debug("unicast_failed",
			zap.String("username", p.Username),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

// mustRender renders a catalog message, falling back to the key.
func (h *Handler) mustRender(key string, data any) string {
	s, err := h.cat.Render(key, data)
	if err != nil {
		return key
	}
	return s
}

func (s *session) send(kind protocol.Kind, payload any) {
	msg, err := protocol.New(kind, payload)
	if err != nil {
		s.h.log.Error("frame_encode_err", zap.String("kind", string(kind)), zap.Error(err))
		return
	}
	_ = s.peer.Send(msg)
}

func (s *session) sendError(err error) {
	if errors.Is(err, protocol.ErrMalformedFrame) {
		s.sendErrorText(s.h.mustRender("error.malformed_frame", nil))
		return
	}
	s.sendErrorText(s.h.cat.ErrorText(err))
}

func (s *session) sendErrorText(text string) {
	s.send(protocol.KindError, protocol.ErrorPayload{Error: text})
}

// cleanup tears the session down on any exit path. A player mid-game
// forfeits; the opponent learns via GAME_OVER.
func (s *session) cleanup() {
	if s.player != nil {
		forfeit := s.h.reg.RemovePlayer(s.player)
		s.h.settleForfeit(forfeit)
		s.player = nil
	}
	_ = s.peer.Close()
}
