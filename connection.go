package hotrod

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pior/hotrod/internal/coarsetime"
	"github.com/pior/hotrod/protocol"
)

// ErrConnectionClosed is returned by any operation attempted on a
// Connection after Close has been called.
var ErrConnectionClosed = errors.New("hotrod: connection closed")

// Connection is a single TCP connection to one Hot Rod server,
// implementing protocol.Reader and protocol.Writer directly over the
// socket. A Connection runs exactly one request at a time: there is no
// pipelining, so Exec holds execMu for the full round trip.
// inFlight/lastUsed are atomics rather than fields guarded by execMu so
// that stats/health-check callers (and a callback running inside Exec
// itself) can read them without risking a self-deadlock on the
// non-reentrant execMu.
type Connection struct {
	addr   string
	conn   net.Conn
	reader *bufio.Reader

	execMu sync.Mutex

	mu     sync.Mutex
	closed bool

	inFlight atomic.Int32
	lastUsed atomic.Int64 // UnixNano
}

// NewConnection dials addr with the given connect timeout.
func NewConnection(addr string, timeout time.Duration) (*Connection, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}

	c := &Connection{
		addr:   addr,
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
	c.lastUsed.Store(coarsetime.Now().UnixNano())
	return c, nil
}

// Fill implements protocol.Reader by reading exactly len(buf) bytes
// from the connection's buffered reader.
func (c *Connection) Fill(ctx context.Context, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := io.ReadFull(c.reader, buf)
	return err
}

// Emit implements protocol.Writer by writing buf to the socket in
// full.
func (c *Connection) Emit(ctx context.Context, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.conn.Write(buf)
	return err
}

// Exec runs fn with the connection's deadline set from ctx and the
// in-flight counter held up, serializing callers against each other via
// execMu: only one operation may use the connection's Reader/Writer at
// a time.
func (c *Connection) Exec(ctx context.Context, fn func(w protocol.Writer, r protocol.Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.execMu.Lock()
	defer c.execMu.Unlock()

	if c.IsClosed() {
		return ErrConnectionClosed
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
	} else {
		c.conn.SetDeadline(time.Time{})
	}

	c.inFlight.Add(1)
	defer c.inFlight.Add(-1)

	err := fn(c, c)

	c.lastUsed.Store(coarsetime.Now().UnixNano())
	return err
}

// InFlight returns the number of requests currently executing on this
// connection (0 or 1, since the protocol forbids pipelining here). Safe
// to call from within the Exec callback itself.
func (c *Connection) InFlight() int {
	return int(c.inFlight.Load())
}

// LastUsed returns when the connection last completed a request.
func (c *Connection) LastUsed() time.Time {
	return time.Unix(0, c.lastUsed.Load())
}

// IsClosed reports whether Close has been called.
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Addr returns the server address this connection is dialed to.
func (c *Connection) Addr() string {
	return c.addr
}

// Close closes the underlying socket. Safe to call more than once.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
