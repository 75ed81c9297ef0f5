// Package ops implements the operation dispatchers layered on top of
// package protocol: PING, GET and PUT. Each dispatcher writes a
// request header plus its operation-specific payload, then reads and
// parses the matching response.
//
// # Dispatch pattern
//
// Every dispatcher follows the same shape: take a *protocol.RequestHeader
// template (caller-owned, mutated only to set OpCode), a protocol.Writer
// to emit the request and a protocol.Reader to fill the response, and
// return an operation-specific result plus any topology update the
// response carried:
//
//	value, found, topo, err := ops.Get(ctx, w, r, header, key)
//	if topo != nil {
//	    router.Update(topo)
//	}
//	if err != nil {
//	    if protocol.ShouldCloseConnection(err) {
//	        conn.Close()
//	    }
//	    return err
//	}
//
// # Bootstrap
//
// PING is the topology-bootstrap operation: sent with TopologyID=0, its
// response typically carries the cluster's initial TopologyInfo.
package ops
