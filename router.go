package hotrod

import (
	"errors"
	"sync/atomic"

	"github.com/pior/hotrod/internal/murmur3"
	"github.com/pior/hotrod/protocol"
)

// ErrNoServersAvailable is raised when a Router has no topology to
// route with yet.
var ErrNoServersAvailable = errors.New("hotrod: no servers available")

// ErrNotRoutable is returned when the current topology carries no
// segment/owner map (the client wasn't HashDistributionAware, or the
// server's hashFuncNum isn't HashFuncMurmur3) and callers must fall
// back to bootstrap server selection instead.
var ErrNotRoutable = errors.New("hotrod: topology has no usable segment map")

// Server is one cluster member reachable at Address:Port, paired with
// its index in the topology's node list (the index owner lists refer
// to).
type Server struct {
	Index   int
	Address string
	Port    uint16
}

// Router maps keys to owning servers from the most recently received
// TopologyInfo. It is safe for concurrent use: the topology is held
// behind an atomic pointer and swapped wholesale on update, so readers
// never block a routing decision on a response-parsing goroutine and
// never observe a partially updated topology.
//
// Updates swap in a new snapshot rather than mutating one in place,
// via atomic.Pointer instead of a lock. Updates from concurrent
// operations on different connections are safe; the last one stored
// wins, whatever its topology id.
type Router struct {
	topology atomic.Pointer[routedTopology]
}

type routedTopology struct {
	info    *protocol.TopologyInfo
	servers []Server
}

// Update installs info as the router's current topology. Safe to call
// from the connection's response-reading path whenever a response
// carries a non-nil ResponseHeader.Topology.
func (r *Router) Update(info *protocol.TopologyInfo) {
	servers := make([]Server, len(info.Nodes))
	for i, n := range info.Nodes {
		servers[i] = Server{Index: i, Address: string(n.Address), Port: n.Port}
	}
	r.topology.Store(&routedTopology{info: info, servers: servers})
}

// TopologyID returns the id of the currently installed topology, or 0
// if none has been installed yet — the value a bootstrap PING must
// carry as its RequestHeader.TopologyID.
func (r *Router) TopologyID() uint32 {
	t := r.topology.Load()
	if t == nil {
		return 0
	}
	return t.info.TopologyID
}

// Servers returns every server in the current topology, in index
// order, or nil if no topology has been installed yet.
func (r *Router) Servers() []Server {
	t := r.topology.Load()
	if t == nil {
		return nil
	}
	return t.servers
}

// Owners returns the ordered owner list for key's segment, primary
// first. It returns ErrNoServersAvailable if no topology has been
// installed yet, and ErrNotRoutable if the installed topology has no
// usable segment map.
func (r *Router) Owners(key []byte) ([]Server, error) {
	t := r.topology.Load()
	if t == nil {
		return nil, ErrNoServersAvailable
	}
	if t.info.HashFunc != protocol.HashFuncMurmur3 || t.info.SegmentsNum() == 0 {
		return nil, ErrNotRoutable
	}

	segment := KeySegment(key, t.info.SegmentsNum())
	indices := t.info.OwnersPerSegment[segment]

	owners := make([]Server, len(indices))
	for i, idx := range indices {
		owners[i] = t.servers[idx]
	}
	return owners, nil
}

// Primary returns the primary owner for key, i.e. Owners(key)[0].
func (r *Router) Primary(key []byte) (Server, error) {
	owners, err := r.Owners(key)
	if err != nil {
		return Server{}, err
	}
	return owners[0], nil
}

// KeySegment computes the segment index for key under a topology with
// segmentsNum segments: normalize a MurmurHash3 digest to 31 bits,
// divide by the segment size.
func KeySegment(key []byte, segmentsNum int) int {
	h := murmur3.Sum32(key) & 0x7FFFFFFF
	segmentSize := uint32(0x7FFFFFFF)/uint32(segmentsNum) + 1
	return int(h / segmentSize)
}
