package ops

import (
	"context"

	"github.com/pior/hotrod/protocol"
)

// Get sends a GET request for key. found is false when the server
// reported StatusNotFound (0x02); value is nil in that case. Any other
// non-success status surfaces as err, a *protocol.ServerError: ReadHeader
// raises it for the error statuses (0x81..0x86) and OpError, Get itself
// for any other unexpected status.
func Get(ctx context.Context, w protocol.Writer, r protocol.Reader, header *protocol.RequestHeader, key []byte) (value []byte, found bool, topology *protocol.TopologyInfo, err error) {
	header.OpCode = protocol.OpGet

	buf := protocol.WriteHeader(nil, header)
	buf = protocol.PutByteArray(buf, key)

	if err := w.Emit(ctx, buf); err != nil {
		return nil, false, nil, &protocol.TransportError{Op: "emit", Err: err}
	}

	resp, err := protocol.ReadHeader(ctx, r, header)
	if resp == nil {
		return nil, false, nil, err
	}
	if err != nil {
		return nil, false, resp.Topology, err
	}

	switch resp.Status {
	case protocol.StatusOK:
		value, err = protocol.ReadByteArray(ctx, r)
		if err != nil {
			return nil, false, resp.Topology, err
		}
		return value, true, resp.Topology, nil
	case protocol.StatusNotFound:
		return nil, false, resp.Topology, nil
	default:
		return nil, false, resp.Topology, &protocol.ServerError{Status: resp.Status, Message: "unexpected GET status"}
	}
}
