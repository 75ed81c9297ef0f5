// Package hotrod implements a client for the Hot Rod wire protocol
// (versions 2.8 and 3.0), the binary request/response protocol spoken
// by a distributed in-memory key/value store. It covers the protocol
// codec, cluster topology tracking, MurmurHash3-based key routing, and
// the PING/GET/PUT operations; it deliberately says nothing about
// connection pooling internals beyond what's needed to exercise them,
// reconnection policy, TLS, or authentication — see package protocol
// and package ops for the parts that do.
package hotrod

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pior/hotrod/ops"
	"github.com/pior/hotrod/protocol"
	"github.com/sony/gobreaker/v2"
)

// Config holds configuration for the Hot Rod client connection pools.
type Config struct {
	// MaxSize is the maximum number of connections per server in each
	// pool. Required: must be > 0.
	MaxSize int32

	// MaxConnLifetime is the maximum duration a connection can be
	// reused. Zero means no limit.
	MaxConnLifetime time.Duration

	// MaxConnIdleTime is the maximum duration a connection can sit
	// idle before being closed. Zero means no limit.
	MaxConnIdleTime time.Duration

	// HealthCheckInterval is how often idle connections are pinged.
	// Zero disables health checks.
	HealthCheckInterval time.Duration

	// ConnectTimeout bounds how long dialing a new connection may
	// take. Zero means 10 seconds.
	ConnectTimeout time.Duration

	// Pool is the connection pool factory. If nil, NewChannelPool is
	// used. Pass NewPuddlePool to use puddle's pool instead.
	Pool func(constructor func(ctx context.Context) (*Connection, error), maxSize int32) (Pool, error)

	// NewCircuitBreaker creates a circuit breaker for a server
	// address, called once per address when its pool is created. If
	// nil, no circuit breaker wraps requests to that server.
	NewCircuitBreaker func(serverAddr string) *gobreaker.CircuitBreaker[bool]

	// CacheName selects the cache the client talks to. Empty means
	// the server's default cache.
	CacheName string

	// ClientIntelligence controls how much topology information the
	// server piggybacks on responses. Defaults to HashDistributionAware,
	// which is required for client-side routing via Router.
	ClientIntelligence protocol.Intelligence

	// Version is the wire protocol revision to speak. Defaults to
	// Version30.
	Version protocol.Version

	// for testing purposes only
	constructor func(ctx context.Context) (*Connection, error)
}

// serverPool pairs a connection pool with its server address and,
// optionally, a circuit breaker guarding requests to it.
type serverPool struct {
	addr           string
	pool           Pool
	circuitBreaker *gobreaker.CircuitBreaker[bool]
}

// poolConfig holds the pool configuration shared by every server's
// pool, extracted from Config once at client construction.
type poolConfig struct {
	maxSize             int32
	maxConnLifetime     time.Duration
	maxConnIdleTime     time.Duration
	healthCheckInterval time.Duration
	connectTimeout      time.Duration
	poolFactory         func(constructor func(ctx context.Context) (*Connection, error), maxSize int32) (Pool, error)
	newCircuitBreaker   func(serverAddr string) *gobreaker.CircuitBreaker[bool]
	constructor         func(ctx context.Context) (*Connection, error) // for testing
}

// Client is a Hot Rod client: it bootstraps a cluster topology via
// PING against a configured seed list, then routes GET/PUT requests
// directly to the segment owner using Router, falling back to
// bootstrap selection until a topology has been received.
type Client struct {
	servers Servers
	router  Router

	cacheName          []byte
	clientIntelligence protocol.Intelligence
	version            protocol.Version
	messageID          atomic.Uint64

	mu    sync.RWMutex
	pools map[string]*serverPool

	poolConfig poolConfig

	stopHealthCheck chan struct{}

	stats *clientStatsCollector
}

// NewClient creates a Hot Rod client over the given bootstrap seed
// list. The client has no topology until its first operation (or an
// explicit call to Bootstrap) succeeds.
func NewClient(servers Servers, config Config) (*Client, error) {
	if len(servers.All()) == 0 {
		return nil, fmt.Errorf("hotrod: no bootstrap servers provided")
	}

	poolFactory := config.Pool
	if poolFactory == nil {
		poolFactory = NewChannelPool
	}

	intelligence := config.ClientIntelligence
	if intelligence == 0 {
		intelligence = protocol.HashDistributionAware
	}
	version := config.Version
	if version == 0 {
		version = protocol.Version30
	}
	connectTimeout := config.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = 10 * time.Second
	}

	client := &Client{
		servers:             servers,
		cacheName:           []byte(config.CacheName),
		clientIntelligence:  intelligence,
		version:             version,
		pools:               make(map[string]*serverPool),
		stopHealthCheck:     make(chan struct{}),
		stats:               newClientStatsCollector(),
		poolConfig: poolConfig{
			maxSize:             config.MaxSize,
			maxConnLifetime:     config.MaxConnLifetime,
			maxConnIdleTime:     config.MaxConnIdleTime,
			healthCheckInterval: config.HealthCheckInterval,
			connectTimeout:      connectTimeout,
			poolFactory:         poolFactory,
			newCircuitBreaker:   config.NewCircuitBreaker,
			constructor:         config.constructor,
		},
	}

	if config.HealthCheckInterval > 0 {
		go client.healthCheckLoop()
	}

	return client, nil
}

// Close closes the client and every connection in every pool.
func (c *Client) Close() {
	if c.poolConfig.healthCheckInterval > 0 {
		close(c.stopHealthCheck)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sp := range c.pools {
		sp.pool.Close()
	}
}

// addrForKey picks the server address to contact for key: the
// segment's primary owner if the client has a usable topology, the
// bootstrap selection otherwise.
func (c *Client) addrForKey(key []byte) string {
	if primary, err := c.router.Primary(key); err == nil {
		return net.JoinHostPort(primary.Address, fmt.Sprint(primary.Port))
	}
	return c.servers.Select(string(key))
}

func (c *Client) getOrCreatePool(addr string) (*serverPool, error) {
	c.mu.RLock()
	sp, exists := c.pools[addr]
	c.mu.RUnlock()
	if exists {
		return sp, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if sp, exists := c.pools[addr]; exists {
		return sp, nil
	}

	pool, cb, err := c.createPool(addr)
	if err != nil {
		return nil, err
	}

	sp = &serverPool{addr: addr, pool: pool, circuitBreaker: cb}
	c.pools[addr] = sp
	return sp, nil
}

func (c *Client) createPool(addr string) (Pool, *gobreaker.CircuitBreaker[bool], error) {
	constructor := c.poolConfig.constructor
	if constructor == nil {
		constructor = func(ctx context.Context) (*Connection, error) {
			return NewConnection(addr, c.poolConfig.connectTimeout)
		}
	}

	pool, err := c.poolConfig.poolFactory(constructor, c.poolConfig.maxSize)
	if err != nil {
		return nil, nil, err
	}

	var cb *gobreaker.CircuitBreaker[bool]
	if c.poolConfig.newCircuitBreaker != nil {
		cb = c.poolConfig.newCircuitBreaker(addr)
	}
	return pool, cb, nil
}

// header builds a fresh RequestHeader template for one operation: a
// new message id, the client's fixed cache/intelligence/version
// settings, and the topology id the router last observed.
func (c *Client) header() *protocol.RequestHeader {
	return &protocol.RequestHeader{
		MessageID:          c.messageID.Add(1),
		Version:            c.version,
		CacheName:          c.cacheName,
		ClientIntelligence: c.clientIntelligence,
		TopologyID:         c.router.TopologyID(),
	}
}

// applyTopology installs topo on the router if non-nil.
func (c *Client) applyTopology(topo *protocol.TopologyInfo) {
	if topo != nil {
		c.router.Update(topo)
	}
}

// withConnection acquires a connection from addr's pool, runs fn, and
// releases or destroys the connection per protocol.ShouldCloseConnection,
// wrapping the call in addr's circuit breaker if one is configured.
func (c *Client) withConnection(ctx context.Context, addr string, fn func(w protocol.Writer, r protocol.Reader) error) error {
	sp, err := c.getOrCreatePool(addr)
	if err != nil {
		c.stats.recordError()
		return err
	}

	run := func() (bool, error) {
		resource, err := sp.pool.Acquire(ctx)
		if err != nil {
			return false, err
		}

		conn := resource.Value()
		err = conn.Exec(ctx, fn)
		if err != nil && protocol.ShouldCloseConnection(err) {
			resource.Destroy()
		} else {
			resource.Release()
		}
		return err == nil, err
	}

	var execErr error
	if sp.circuitBreaker != nil {
		_, execErr = sp.circuitBreaker.Execute(run)
	} else {
		_, execErr = run()
	}
	if execErr != nil {
		c.stats.recordError()
	}
	return execErr
}

// Ping sends a PING to a server for key (bootstrap selection if no
// topology is known yet, the routed owner otherwise), applying any
// topology update the response carries. Called with an empty key, it
// always uses bootstrap selection — the usual way to seed the initial
// topology.
func (c *Client) Ping(ctx context.Context, key []byte) (*ops.PingResult, error) {
	var addr string
	if len(key) == 0 {
		addr = c.servers.Select("")
	} else {
		addr = c.addrForKey(key)
	}

	var result *ops.PingResult
	err := c.withConnection(ctx, addr, func(w protocol.Writer, r protocol.Reader) error {
		header := c.header()
		res, topo, err := ops.Ping(ctx, w, r, header)
		c.applyTopology(topo)
		result = res
		return err
	})
	c.stats.recordPing()
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Bootstrap sends a PING to every configured bootstrap server in turn
// until one succeeds, populating the router's topology. Safe to call
// more than once; a client that has already received a topology via a
// prior operation doesn't need it.
func (c *Client) Bootstrap(ctx context.Context) error {
	var lastErr error
	for _, addr := range c.servers.All() {
		err := c.withConnection(ctx, addr, func(w protocol.Writer, r protocol.Reader) error {
			header := c.header()
			_, topo, err := ops.Ping(ctx, w, r, header)
			c.applyTopology(topo)
			return err
		})
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("hotrod: bootstrap failed against all servers: %w", lastErr)
}

// Get retrieves the value stored under key. found is false if the key
// doesn't exist.
func (c *Client) Get(ctx context.Context, key []byte) (value []byte, found bool, err error) {
	addr := c.addrForKey(key)

	err = c.withConnection(ctx, addr, func(w protocol.Writer, r protocol.Reader) error {
		header := c.header()
		v, f, topo, opErr := ops.Get(ctx, w, r, header, key)
		c.applyTopology(topo)
		value, found = v, f
		return opErr
	})
	c.stats.recordGet(found)
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}

// Put stores value under key with the given expiration.
func (c *Client) Put(ctx context.Context, key, value []byte, expiration ops.ExpirationPair) error {
	addr := c.addrForKey(key)

	err := c.withConnection(ctx, addr, func(w protocol.Writer, r protocol.Reader) error {
		header := c.header()
		topo, opErr := ops.Put(ctx, w, r, header, key, value, expiration)
		c.applyTopology(topo)
		return opErr
	})
	c.stats.recordPut()
	return err
}

// healthCheckLoop periodically PINGs idle connections and prunes those
// past their lifetime/idle limits or that fail the check.
func (c *Client) healthCheckLoop() {
	ticker := time.NewTicker(c.poolConfig.healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopHealthCheck:
			return
		case <-ticker.C:
			c.checkAllPools()
		}
	}
}

func (c *Client) checkAllPools() {
	c.mu.RLock()
	pools := make([]*serverPool, 0, len(c.pools))
	for _, sp := range c.pools {
		pools = append(pools, sp)
	}
	c.mu.RUnlock()

	for _, sp := range pools {
		c.checkPoolConnections(sp.pool)
	}
}

func (c *Client) checkPoolConnections(pool Pool) {
	now := time.Now()

	for _, res := range pool.AcquireAllIdle() {
		conn := res.Value()

		if c.poolConfig.maxConnLifetime > 0 && now.Sub(res.CreationTime()) > c.poolConfig.maxConnLifetime {
			res.Destroy()
			continue
		}

		if c.poolConfig.maxConnIdleTime > 0 && res.IdleDuration() > c.poolConfig.maxConnIdleTime {
			res.Destroy()
			continue
		}

		if err := c.healthCheck(conn); err != nil {
			res.Destroy()
			continue
		}

		res.ReleaseUnused()
	}
}

// healthCheck sends a PING over an already-acquired connection to
// confirm it's still responsive.
func (c *Client) healthCheck(conn *Connection) error {
	return conn.Exec(context.Background(), func(w protocol.Writer, r protocol.Reader) error {
		header := c.header()
		_, topo, err := ops.Ping(context.Background(), w, r, header)
		c.applyTopology(topo)
		return err
	})
}

// Stats returns a snapshot of client-level operation statistics.
func (c *Client) Stats() ClientStats {
	return c.stats.snapshot()
}

// ServerPoolStats reports the pool statistics and circuit breaker
// state for one server address.
type ServerPoolStats struct {
	Addr                string
	PoolStats           PoolStats
	CircuitBreakerState gobreaker.State
}

// AllPoolStats returns stats for every server pool the client has
// created so far.
func (c *Client) AllPoolStats() []ServerPoolStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := make([]ServerPoolStats, 0, len(c.pools))
	for _, sp := range c.pools {
		s := ServerPoolStats{Addr: sp.addr, PoolStats: sp.pool.Stats()}
		if sp.circuitBreaker != nil {
			s.CircuitBreakerState = sp.circuitBreaker.State()
		}
		stats = append(stats, s)
	}
	return stats
}
