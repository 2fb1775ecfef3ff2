package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/park285/chess-arena/internal/config"
)

// WSServer accepts WebSocket connections and adapts each to the same
// newline-framed session the TCP listener runs. websocket.NetConn
// exposes the socket as a net.Conn, so browser clients speak the exact
// wire protocol with no second dispatch path.
type WSServer struct {
	cfg     config.Config
	handler *Handler
	log     *zap.Logger

	srv *http.Server
	mu  sync.Mutex
	wg  sync.WaitGroup
}

func NewWS(cfg config.Config, handler *Handler, log *zap.Logger) *WSServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSServer{cfg: cfg, handler: handler, log: log}
}

// ListenAndServe serves /ws until Shutdown. Blocks.
func (w *WSServer) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", w.accept)

	srv := &http.Server{
		Addr:              w.cfg.WSAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	w.mu.Lock()
	w.srv = srv
	w.mu.Unlock()

	w.log.Info("ws_listening", zap.String("addr", w.cfg.WSAddr))
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (w *WSServer) accept(rw http.ResponseWriter, req *http.Request) {
	c, err := websocket.Accept(rw, req, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		w.log.Debug("ws_accept_err", zap.Error(err))
		return
	}

	w.wg.Add(1)
	defer w.wg.Done()

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()

	conn := websocket.NetConn(ctx, c, websocket.MessageText)
	w.log.Info("ws_client_connected", zap.String("remote_addr", req.RemoteAddr))

	p := newPeer(conn, w.cfg.WriteTimeout, w.log)
	w.handler.HandleConn(ctx, conn, p)

	c.Close(websocket.StatusNormalClosure, "")
	w.log.Info("ws_client_disconnected", zap.String("remote_addr", req.RemoteAddr))
}

// Shutdown stops the HTTP listener and waits for sessions to finish.
func (w *WSServer) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	srv := w.srv
	w.mu.Unlock()
	if srv == nil {
		return nil
	}
	err := srv.Shutdown(ctx)
	w.wg.Wait()
	return err
}
