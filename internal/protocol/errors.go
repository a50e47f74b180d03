package protocol

import "errors"

// Decode failures are fatal for the connection that produced them: they
// signal a protocol version mismatch or a desynchronized stream, never a
// transient condition. Absence of data is not an error and is reported as
// "no message" by the Reader instead.
var (
	// ErrUnknownMessage reports a type id outside the protocol.
	ErrUnknownMessage = errors.New("protocol: unknown message type")

	// ErrMalformed reports a recognized message whose payload cannot be
	// valid (wrong length, byte outside its enum range).
	ErrMalformed = errors.New("protocol: malformed message")

	// ErrShortBuffer reports an attempt to read past the end of a payload,
	// which means the framing is desynchronized and the stream cannot be
	// recovered.
	ErrShortBuffer = errors.New("protocol: buffer underrun")
)
