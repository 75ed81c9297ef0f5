package hotrod

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPoolStatsCollectorAcquireFromCreate(t *testing.T) {
	c := newPoolStatsCollector()
	c.recordAcquire()
	c.recordCreate()
	c.recordActivate()

	snap := c.snapshot()
	require.Equal(t, uint64(1), snap.AcquireCount)
	require.Equal(t, uint64(1), snap.CreatedConns)
	require.Equal(t, int32(1), snap.TotalConns)
	require.Equal(t, int32(1), snap.ActiveConns)
	require.Equal(t, int32(0), snap.IdleConns)
}

func TestPoolStatsCollectorReleaseAndReacquire(t *testing.T) {
	c := newPoolStatsCollector()
	c.recordAcquire()
	c.recordCreate()
	c.recordActivate()
	c.recordRelease()

	snap := c.snapshot()
	require.Equal(t, int32(1), snap.IdleConns)
	require.Equal(t, int32(0), snap.ActiveConns)

	c.recordAcquire()
	c.recordAcquireFromIdle()

	snap = c.snapshot()
	require.Equal(t, int32(0), snap.IdleConns)
	require.Equal(t, int32(1), snap.ActiveConns)
	require.Equal(t, uint64(2), snap.AcquireCount)
}

func TestPoolStatsCollectorDestroy(t *testing.T) {
	c := newPoolStatsCollector()
	c.recordCreate()
	c.recordDestroy()

	snap := c.snapshot()
	require.Equal(t, int32(0), snap.TotalConns)
	require.Equal(t, uint64(1), snap.DestroyedConns)
}

func TestPoolStatsCollectorAcquireWaitAndErrors(t *testing.T) {
	c := newPoolStatsCollector()
	c.recordAcquireWait(10 * time.Millisecond)
	c.recordAcquireError()

	snap := c.snapshot()
	require.Equal(t, uint64(1), snap.AcquireWaitCount)
	require.Equal(t, uint64(1), snap.AcquireErrors)
	require.GreaterOrEqual(t, snap.AcquireWaitTimeNs, uint64(10*time.Millisecond))
}

func TestClientStatsCollectorRecordsPerOperation(t *testing.T) {
	c := newClientStatsCollector()
	c.recordPing()
	c.recordGet(true)
	c.recordGet(false)
	c.recordPut()
	c.recordError()

	snap := c.snapshot()
	require.Equal(t, uint64(1), snap.Pings)
	require.Equal(t, uint64(2), snap.Gets)
	require.Equal(t, uint64(1), snap.GetHits)
	require.Equal(t, uint64(1), snap.Puts)
	require.Equal(t, uint64(1), snap.Errors)
}
