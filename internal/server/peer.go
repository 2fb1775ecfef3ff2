package server

import (
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/chess-arena/pkg/protocol"
)

const outboundDepth = 32

// peer is the server-side delivery endpoint for one connection. Frames
// are queued on a buffered channel and drained by a dedicated writer
// goroutine, so broadcast callers never block on a slow socket and each
// receiver sees frames in queue order.
type peer struct {
	conn net.Conn
	fw   *protocol.FrameWriter
	log  *zap.Logger

	writeTimeout time.Duration
	out          chan *protocol.Message

	closeOnce sync.Once
	done      chan struct{}
}

func newPeer(conn net.Conn, writeTimeout time.Duration, log *zap.Logger) *peer {
	p := &peer{
		conn:         conn,
		fw:           protocol.NewFrameWriter(conn),
		log:          log,
		writeTimeout: writeTimeout,
		out:          make(chan *protocol.Message, outboundDepth),
		done:         make(chan struct{}),
	}
	go p.writeLoop()
	return p
}

func (p *peer) writeLoop() {
	for {
		select {
		case m := <-p.out:
			if p.writeTimeout > 0 {
				_ = p.conn.SetWriteDeadline(time.Now().Add(p.writeTimeout))
			}
			if err := p.fw.WriteFrame(m); err != nil {
				p.log.Debug("peer_write_failed",
					zap.String("remote_addr", p.conn.RemoteAddr().String()),
					zap.Error(err),
				)
				// Closing the socket unblocks the read loop, which
				// performs the session cleanup.
				_ = p.Close()
				return
			}
		case <-p.done:
			return
		}
	}
}

// Send queues a frame for delivery. A full queue or closed peer drops
// the frame and reports the failure; the caller decides whether that
// ends the session.
func (p *peer) Send(m *protocol.Message) error {
	select {
	case <-p.done:
		return net.ErrClosed
	case p.out <- m:
		return nil
	default:
		p.log.Warn("peer_queue_full",
			zap.String("remote_addr", p.conn.RemoteAddr().String()),
			zap.String("kind", string(m.Kind)),
		)
		_ = p.Close()
		return net.ErrClosed
	}
}

func (p *peer) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		err = p.conn.Close()
	})
	return err
}
