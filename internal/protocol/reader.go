package protocol

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"snakearena/internal/game"
)

// Reader reads framed messages off a connection. Poll-style reads peek the
// 3-byte header through the buffered reader under a short deadline, so the
// caller never blocks past its tick and a deadline expiry between polls
// never consumes a partial frame.
type Reader struct {
	conn    net.Conn
	br      *peekBuffer
	timeout time.Duration
}

// peekBuffer is a minimal buffered reader that keeps unconsumed bytes across
// deadline expiries. bufio.Reader drops nothing either, but it caches read
// errors, and a cached timeout would make every later Peek fail; this buffer
// retries the underlying read instead.
type peekBuffer struct {
	r   io.Reader
	buf []byte
}

// peek returns n bytes without consuming them, reading from the connection
// as needed. A deadline expiry surfaces as the underlying timeout error with
// any partial bytes retained for the next call.
func (b *peekBuffer) peek(n int) ([]byte, error) {
	for len(b.buf) < n {
		chunk := make([]byte, 512)
		m, err := b.r.Read(chunk)
		b.buf = append(b.buf, chunk[:m]...)
		if err != nil {
			return nil, err
		}
	}
	return b.buf[:n], nil
}

// readFull consumes exactly n bytes.
func (b *peekBuffer) readFull(n int) ([]byte, error) {
	if _, err := b.peek(n); err != nil {
		return nil, err
	}
	out := b.buf[:n:n]
	b.buf = b.buf[n:]
	return out, nil
}

// NewReader wraps conn with a polling message reader. timeout bounds how
// long a single poll may wait for the header to appear.
func NewReader(conn net.Conn, timeout time.Duration) *Reader {
	return &Reader{
		conn:    conn,
		br:      &peekBuffer{r: conn},
		timeout: timeout,
	}
}

// Poll returns the next pending message. ok is false when no complete header
// arrived before the deadline; that is not an error, just "no message yet
// this tick". Unknown type ids and truncated payloads are fatal.
func (r *Reader) Poll() (t MsgType, payload []byte, ok bool, err error) {
	_ = r.conn.SetReadDeadline(time.Now().Add(r.timeout))
	defer func() { _ = r.conn.SetReadDeadline(time.Time{}) }()

	hdr, err := r.br.peek(HeaderSize)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return 0, nil, false, nil
		}
		return 0, nil, false, err
	}
	t = MsgType(hdr[0])
	if t > MsgMove {
		return 0, nil, false, fmt.Errorf("%w: %d", ErrUnknownMessage, hdr[0])
	}
	length := int(hdr[1]) | int(hdr[2])<<8

	// The header is in; the payload is committed, so block for the rest.
	_ = r.conn.SetReadDeadline(time.Time{})
	if _, err := r.br.readFull(HeaderSize); err != nil {
		return 0, nil, false, err
	}
	payload, err = r.br.readFull(length)
	if err != nil {
		return 0, nil, false, fmt.Errorf("%w: %v", ErrShortBuffer, err)
	}
	return t, payload, true, nil
}

// PollMove drains every queued Move message and returns the latest one, so a
// consumer that fell behind acts on the freshest intent. ok is false when
// nothing was pending. Any pending message that is not a Move is fatal.
func (r *Reader) PollMove() (d game.Direction, ok bool, err error) {
	for {
		t, payload, pending, err := r.Poll()
		if err != nil {
			return 0, false, err
		}
		if !pending {
			return d, ok, nil
		}
		if t != MsgMove {
			return 0, false, fmt.Errorf("%w: expected move, got %s", ErrMalformed, t)
		}
		if d, err = DecodeMove(payload); err != nil {
			return 0, false, err
		}
		ok = true
	}
}

// Next blocks until a complete message arrives. Clients use it for the
// handshake and the frame stream, where there is no other work to
// interleave with reads.
func (r *Reader) Next() (MsgType, []byte, error) {
	_ = r.conn.SetReadDeadline(time.Time{})
	hdr, err := r.br.readFull(HeaderSize)
	if err != nil {
		return 0, nil, err
	}
	t := MsgType(hdr[0])
	if t > MsgMove {
		return 0, nil, fmt.Errorf("%w: %d", ErrUnknownMessage, hdr[0])
	}
	length := int(hdr[1]) | int(hdr[2])<<8
	payload, err := r.br.readFull(length)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrShortBuffer, err)
	}
	return t, payload, nil
}
