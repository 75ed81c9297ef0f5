// Package protocol implements the Hot Rod 2.8/3.0 wire codec: the
// variable-length integer encoding, request/response header framing,
// the media-type descriptor format, and the new-topology descriptor
// format a server piggybacks on any response.
//
// This package does not open sockets. It consumes a pair of small
// capability interfaces, Reader and Writer, each parameterized by a
// caller-owned context.Context, so the codec can be exercised against
// an in-memory buffer in tests with no transport at all.
//
// # Core Types
//
//   - RequestHeader / ResponseHeader: the fields framing every operation
//   - TopologyInfo: the cluster map piggybacked on a response
//   - MediaType: the key/value serialization descriptor
//
// # Serialization and Parsing
//
//	hdr := &protocol.RequestHeader{
//	    MessageID:          1,
//	    Version:            protocol.Version30,
//	    OpCode:             protocol.OpGet,
//	    ClientIntelligence: protocol.HashDistributionAware,
//	}
//	buf := protocol.WriteHeader(nil, hdr)
//	err := w.Emit(ctx, buf)
//
//	resp, err := protocol.ReadHeader(ctx, r, hdr)
//	if err != nil {
//	    // a piggybacked topology is decoded into resp.Topology before
//	    // any ServerError is returned, per the wire protocol's own design:
//	    // a stale client may be rejected *because* it's stale, with
//	    // the fix piggybacked on the same response.
//	}
//
// # Error Handling
//
// ProtocolError indicates the bytes on the wire violate framing and
// the connection must be discarded. ServerError indicates the server
// rejected the request for an operation-specific reason and carries a
// decoded message; the connection remains usable. TransportError wraps
// a failure reported by the Reader/Writer capability itself. All three
// implement ShouldCloseConnection() bool; see ShouldCloseConnection.
package protocol
