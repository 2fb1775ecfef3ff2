package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/chess-arena/internal/config"
)

// Server accepts TCP connections and runs one handler session per
// connection. Stop closes the listener and waits for sessions to drain.
type Server struct {
	cfg     config.Config
	handler *Handler
	log     *zap.Logger

	listener net.Listener
	wg       sync.WaitGroup
	quit     chan struct{}
	mu       sync.Mutex
	running  bool
}

func New(cfg config.Config, handler *Handler, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:     cfg,
		handler: handler,
		log:     log,
		quit:    make(chan struct{}),
	}
}

// ListenAndServe blocks until Stop is called or the listener fails.
func (s *Server) ListenAndServe() error {
	start := time.Now()

	listener, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr(), err)
	}

	s.mu.Lock()
	s.listener = listener
	s.running = true
	s.mu.Unlock()

	s.log.Info("arena_listening",
		zap.String("addr", listener.Addr().String()),
		zap.Duration("startup", time.Since(start)),
	)

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return nil
			default:
				s.log.Error("accept_err", zap.Error(err))
				continue
			}
		}
		s.wg.Add(1)
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer s.wg.Done()
	start := time.Now()
	addr := conn.RemoteAddr().String()

	s.log.Info("client_connected", zap.String("remote_addr", addr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.quit:
			cancel()
			_ = conn.Close()
		case <-ctx.Done():
		}
	}()

	p := newPeer(conn, s.cfg.WriteTimeout, s.log)
	s.handler.HandleConn(ctx, conn, p)

	s.log.Info("client_disconnected",
		zap.String("remote_addr", addr),
		zap.Duration("duration", time.Since(start)),
	)
}

// Stop closes the listener and waits for active sessions to finish.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false

	close(s.quit)
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	s.log.Info("arena_stopped")
}

// Addr reports the bound address, "" before ListenAndServe.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// IsRunning reports whether the server accepts connections.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
