// Package status exposes a small HTTP surface for liveness probes and
// lobby inspection.
package status

import (
	"encoding/json"
	"sync"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/chess-arena/internal/match"
)

// Server answers /healthz and /rooms. It reads the registry through its
// snapshot accessors, so probes never contend with game traffic.
type Server struct {
	addr string
	reg  *match.Registry
	log  *zap.Logger

	mu  sync.Mutex
	srv *fasthttp.Server
}

func New(addr string, reg *match.Registry, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{addr: addr, reg: reg, log: log}
}

// ListenAndServe blocks until Shutdown.
func (s *Server) ListenAndServe() error {
	srv := &fasthttp.Server{
		Handler: s.route,
		Name:    "arena-status",
	}
	s.mu.Lock()
	s.srv = srv
	s.mu.Unlock()

	s.log.Info("status_listening", zap.String("addr", s.addr))
	return srv.ListenAndServe(s.addr)
}

func (s *Server) Shutdown() error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown()
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/healthz":
		s.handleHealth(ctx)
	case "/rooms":
		s.handleRooms(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	players, rooms := s.reg.Counts()
	writeJSON(ctx, map[string]any{
		"status":  "ok",
		"players": players,
		"rooms":   rooms,
	})
}

func (s *Server) handleRooms(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, map[string]any{
		"rooms": s.reg.ListRooms(),
	})
}

func writeJSON(ctx *fasthttp.RequestCtx, v any) {
	ctx.SetContentType("application/json; charset=utf-8")
	body, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetBody(body)
}
