package protocol

import "context"

// Node is one server in a cluster topology: the address bytes are
// ASCII/UTF-8 host bytes as sent by the server, kept raw rather than
// parsed into a net.IP since the protocol places no constraint on
// their form.
type Node struct {
	Address []byte
	Port    uint16
}

// TopologyInfo is the cluster map a response may piggyback: the
// server list, and — only when the originating request declared
// HashDistributionAware — the segment-to-owners map used for
// client-side routing.
//
// A TopologyInfo owns all of its heap allocations (addresses, owner
// arrays); decoding never shares memory with a previous TopologyInfo.
type TopologyInfo struct {
	TopologyID uint32
	Nodes      []Node

	// HashFunc is 0 when the segment/owner section was absent from
	// the wire (client intelligence < HashDistributionAware).
	// HashFuncMurmur3 (0x03) is the only value this client can route
	// with; any other non-zero value means the server uses a hash
	// function this client doesn't implement.
	HashFunc byte

	// OwnersPerSegment[i] lists the node indices owning segment i,
	// primary first. Empty when HashFunc == 0.
	OwnersPerSegment [][]uint32
}

// SegmentsNum reports how many segments the topology describes, or 0
// if the segment map is absent.
func (t *TopologyInfo) SegmentsNum() int { return len(t.OwnersPerSegment) }

// ReadTopologyInfo decodes a TopologyInfo from r. requestIntelligence
// must be the client intelligence declared on the request this
// response answers: the segment/owner section is only present on the
// wire when it was HashDistributionAware, and reading it
// unconditionally would desynchronize the stream.
func ReadTopologyInfo(ctx context.Context, r Reader, requestIntelligence Intelligence) (*TopologyInfo, error) {
	topologyID, err := ReadVInt(ctx, r)
	if err != nil {
		return nil, err
	}

	serversNum, err := ReadVInt(ctx, r)
	if err != nil {
		return nil, err
	}

	nodes := make([]Node, serversNum)
	for i := range nodes {
		addr, err := ReadByteArray(ctx, r)
		if err != nil {
			return nil, err
		}
		port, err := ReadShort(ctx, r)
		if err != nil {
			return nil, err
		}
		nodes[i] = Node{Address: addr, Port: port}
	}

	info := &TopologyInfo{TopologyID: topologyID, Nodes: nodes}

	if requestIntelligence != HashDistributionAware {
		return info, nil
	}

	hashFunc, err := ReadByte(ctx, r)
	if err != nil {
		return nil, err
	}
	info.HashFunc = hashFunc
	if hashFunc == 0 {
		return info, nil
	}

	segmentsNum, err := ReadVInt(ctx, r)
	if err != nil {
		return nil, err
	}

	owners := make([][]uint32, segmentsNum)
	for i := range owners {
		ownersNum, err := ReadByte(ctx, r)
		if err != nil {
			return nil, err
		}
		if ownersNum == 0 {
			return nil, &ProtocolError{Message: "segment has zero owners"}
		}
		segOwners := make([]uint32, ownersNum)
		for k := range segOwners {
			idx, err := ReadVInt(ctx, r)
			if err != nil {
				return nil, err
			}
			if idx >= uint32(serversNum) {
				return nil, &ProtocolError{Message: "owner index out of range"}
			}
			segOwners[k] = idx
		}
		owners[i] = segOwners
	}
	info.OwnersPerSegment = owners

	return info, nil
}

// WriteTopologyInfo appends info's wire encoding to buf, writing the
// segment/owner section only when requestIntelligence is
// HashDistributionAware. It exists primarily to build loopback test
// fixtures and server-side test doubles; production clients only
// decode topology, never encode it.
func WriteTopologyInfo(buf []byte, info *TopologyInfo, requestIntelligence Intelligence) []byte {
	buf = PutVInt(buf, info.TopologyID)
	buf = PutVInt(buf, uint32(len(info.Nodes)))
	for _, n := range info.Nodes {
		buf = PutByteArray(buf, n.Address)
		buf = PutShort(buf, n.Port)
	}

	if requestIntelligence != HashDistributionAware {
		return buf
	}

	buf = PutByte(buf, info.HashFunc)
	if info.HashFunc == 0 {
		return buf
	}

	buf = PutVInt(buf, uint32(len(info.OwnersPerSegment)))
	for _, owners := range info.OwnersPerSegment {
		buf = PutByte(buf, byte(len(owners)))
		for _, idx := range owners {
			buf = PutVInt(buf, idx)
		}
	}
	return buf
}
