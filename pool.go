package hotrod

import (
	"context"
	"time"
)

// Pool manages a set of Connections to a single server address. Two
// implementations are provided: a channel-based pool (NewChannelPool,
// the default) and a puddle-backed pool (NewPuddlePool, for callers
// that want puddle's health-check and lifetime-limit machinery).
type Pool interface {
	// Acquire returns a Resource wrapping a ready Connection, blocking
	// until one is available or ctx is done.
	Acquire(ctx context.Context) (Resource, error)

	// AcquireAllIdle returns every currently idle Resource without
	// blocking, used by health checks.
	AcquireAllIdle() []Resource

	// Stats returns a snapshot of the pool's counters.
	Stats() PoolStats

	// Close closes every connection the pool holds, idle or not yet
	// returned, and refuses further Acquire calls.
	Close()
}

// Resource is a leased Connection. Exactly one of Release or Destroy
// must be called once the caller is done with it.
type Resource interface {
	// Value returns the leased Connection.
	Value() *Connection

	// Release returns a healthy connection to the pool for reuse.
	Release()

	// ReleaseUnused returns a connection that was acquired but never
	// used (e.g. a health-check probe that found it already healthy),
	// without updating its last-used timestamp.
	ReleaseUnused()

	// Destroy closes the connection and removes it from the pool,
	// used when protocol.ShouldCloseConnection(err) is true.
	Destroy()

	// CreationTime reports when the underlying connection was dialed.
	CreationTime() time.Time

	// IdleDuration reports how long the connection has sat idle since
	// its last Release.
	IdleDuration() time.Duration
}
