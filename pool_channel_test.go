package hotrod

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startAcceptingListener(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				buf := make([]byte, 1024)
				for {
					if _, err := c.Read(buf); err != nil {
						return
					}
				}
			}(conn)
		}
	}()

	return listener.Addr().String()
}

func TestChannelPoolAcquireCreatesUpToMaxSize(t *testing.T) {
	addr := startAcceptingListener(t)

	constructor := func(ctx context.Context) (*Connection, error) {
		return NewConnection(addr, time.Second)
	}

	pool, err := NewChannelPool(constructor, 2)
	require.NoError(t, err)
	defer pool.Close()

	r1, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	r2, err := pool.Acquire(context.Background())
	require.NoError(t, err)

	stats := pool.Stats()
	require.Equal(t, int32(2), stats.TotalConns)
	require.Equal(t, int32(2), stats.ActiveConns)

	r1.Release()
	r2.Release()

	stats = pool.Stats()
	require.Equal(t, int32(2), stats.IdleConns)
}

func TestChannelPoolAcquireBlocksAtMaxSize(t *testing.T) {
	addr := startAcceptingListener(t)

	constructor := func(ctx context.Context) (*Connection, error) {
		return NewConnection(addr, time.Second)
	}

	pool, err := NewChannelPool(constructor, 1)
	require.NoError(t, err)
	defer pool.Close()

	r1, err := pool.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = pool.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	r1.Release()
}

func TestChannelPoolDestroyShrinksSize(t *testing.T) {
	addr := startAcceptingListener(t)

	constructor := func(ctx context.Context) (*Connection, error) {
		return NewConnection(addr, time.Second)
	}

	pool, err := NewChannelPool(constructor, 2)
	require.NoError(t, err)
	defer pool.Close()

	r, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	r.Destroy()

	stats := pool.Stats()
	require.Equal(t, int32(0), stats.TotalConns)
	require.Equal(t, uint64(1), stats.DestroyedConns)
}

func TestChannelPoolAcquireAllIdle(t *testing.T) {
	addr := startAcceptingListener(t)

	constructor := func(ctx context.Context) (*Connection, error) {
		return NewConnection(addr, time.Second)
	}

	pool, err := NewChannelPool(constructor, 2)
	require.NoError(t, err)
	defer pool.Close()

	r1, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	r2, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	r1.Release()
	r2.Release()

	idle := pool.AcquireAllIdle()
	require.Len(t, idle, 2)
}

func TestChannelPoolCloseClosesIdleConnections(t *testing.T) {
	addr := startAcceptingListener(t)

	constructor := func(ctx context.Context) (*Connection, error) {
		return NewConnection(addr, time.Second)
	}

	pool, err := NewChannelPool(constructor, 2)
	require.NoError(t, err)

	r, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	r.Release()

	pool.Close()

	_, err = pool.Acquire(context.Background())
	require.Error(t, err)
}
