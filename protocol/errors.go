package protocol

import (
	"errors"
	"fmt"
)

// Error types for Hot Rod wire protocol operations. Each indicates a
// different connection-handling strategy; see ShouldCloseConnection.

// ProtocolError indicates decoded bytes violate the wire framing:
// wrong magic, an overlong VInt/VLong, a message-id mismatch, an
// owner index out of range, or an impossible media-type discriminant.
//
// Connection handling: CLOSE. The codec cannot know how many bytes of
// the malformed frame remain unread, so the stream position is no
// longer trustworthy.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string { return "hotrod: protocol error: " + e.Message }

// ShouldCloseConnection returns true.
func (e *ProtocolError) ShouldCloseConnection() bool { return true }

// ServerError represents a response whose status byte is one of the
// error codes (0x81..0x86) or whose opcode is the dedicated
// ERROR_RESPONSE opcode (0x50). It carries the server's decoded error
// message. The framing itself is intact, so the connection remains
// usable; the caller may retry, redirect using the topology update
// that may have been piggybacked on the same response, or propagate.
type ServerError struct {
	Status  Status
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("hotrod: server error (status 0x%02x): %s", byte(e.Status), e.Message)
}

// ShouldCloseConnection returns false.
func (e *ServerError) ShouldCloseConnection() bool { return false }

// TransportError wraps a failure reported by the Reader or Writer
// capability. The codec cannot recover from it; the connection is
// considered poisoned.
type TransportError struct {
	Op  string // "fill" or "emit"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("hotrod: transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ShouldCloseConnection returns true.
func (e *TransportError) ShouldCloseConnection() bool { return true }

// ErrorWithConnectionState is implemented by every error type this
// package returns, so callers can decide whether to discard a
// connection without a type switch over every concrete error type.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection reports whether err indicates the connection
// that produced it must be discarded rather than reused. Unknown
// error types are treated conservatively (connection closed), mirroring
// any I/O failure that escaped the codec's own error types.
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}
	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}
	return true
}
