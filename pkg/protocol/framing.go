package protocol

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"sync"
)

// MaxFrameSize bounds a single frame. A peer announcing more is either
// broken or hostile; the read fails and the connection is torn down.
const MaxFrameSize = 64 * 1024

// Frames are newline-delimited JSON. A stream socket gives no message
// boundaries on its own: one read may carry several logical messages, or
// a message may span reads. The reader below buffers incrementally so
// both cases decode correctly.

// FrameReader decodes messages from a byte stream.
type FrameReader struct {
	sc *bufio.Scanner
}

func NewFrameReader(r io.Reader) *FrameReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), MaxFrameSize)
	return &FrameReader{sc: sc}
}

// Next returns the next complete frame.
//
// A structurally malformed frame yields ErrMalformedFrame, which callers
// recover from; any other error (EOF, deadline, oversize) is fatal to the
// connection.
func (r *FrameReader) Next() (*Message, error) {
	for {
		if !r.sc.Scan() {
			if err := r.sc.Err(); err != nil {
				if errors.Is(err, bufio.ErrTooLong) {
					return nil, ErrFrameTooLarge
				}
				return nil, err
			}
			return nil, io.EOF
		}
		line := r.sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var m Message
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, ErrMalformedFrame
		}
		if m.Kind == "" {
			return nil, ErrMalformedFrame
		}
		return &m, nil
	}
}

// FrameWriter encodes messages onto a byte stream. Writes are serialized
// so concurrent senders cannot interleave frame bytes.
type FrameWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

func (fw *FrameWriter) WriteFrame(m *Message) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return ErrBadPayload
	}
	if len(raw) > MaxFrameSize {
		return ErrFrameTooLarge
	}
	raw = append(raw, '\n')
	fw.mu.Lock()
	defer fw.mu.Unlock()
	_, err = fw.w.Write(raw)
	return err
}
