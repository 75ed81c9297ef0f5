package ops

import (
	"context"

	"github.com/pior/hotrod/protocol"
)

// PingResult is the decoded payload of a PING response. SupportedOps
// is only populated for Version30 servers; Version28 servers respond
// with the header alone.
type PingResult struct {
	KeyMediaType   protocol.MediaType
	ValueMediaType protocol.MediaType
	ServerVersion  byte
	SupportedOps   []uint16
}

// Ping sends a PING request. Clients typically send one with
// header.TopologyID == 0 to receive the cluster's initial topology on
// the response (see the Topology return value).
func Ping(ctx context.Context, w protocol.Writer, r protocol.Reader, header *protocol.RequestHeader) (*PingResult, *protocol.TopologyInfo, error) {
	header.OpCode = protocol.OpPing

	buf := protocol.WriteHeader(nil, header)
	if err := w.Emit(ctx, buf); err != nil {
		return nil, nil, &protocol.TransportError{Op: "emit", Err: err}
	}

	resp, err := protocol.ReadHeader(ctx, r, header)
	if err != nil && resp == nil {
		return nil, nil, err
	}
	if err != nil {
		// A ServerError still carries a valid header and possibly a
		// topology update; PING has no further payload on error.
		return nil, resp.Topology, err
	}

	result := &PingResult{}
	if header.Version < protocol.Version30 {
		return result, resp.Topology, nil
	}

	result.KeyMediaType, err = protocol.ReadMediaType(ctx, r)
	if err != nil {
		return nil, resp.Topology, err
	}
	result.ValueMediaType, err = protocol.ReadMediaType(ctx, r)
	if err != nil {
		return nil, resp.Topology, err
	}
	result.ServerVersion, err = protocol.ReadByte(ctx, r)
	if err != nil {
		return nil, resp.Topology, err
	}

	opsNum, err := protocol.ReadVInt(ctx, r)
	if err != nil {
		return nil, resp.Topology, err
	}
	result.SupportedOps = make([]uint16, opsNum)
	for i := range result.SupportedOps {
		result.SupportedOps[i], err = protocol.ReadShort(ctx, r)
		if err != nil {
			return nil, resp.Topology, err
		}
	}

	return result, resp.Topology, nil
}
