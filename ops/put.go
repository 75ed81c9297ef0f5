package ops

import (
	"context"

	"github.com/pior/hotrod/protocol"
)

// TimeSpec is one nibble of an expiration descriptor: a TimeUnit with
// no accompanying duration value, since the single expiration byte
// packs two 4-bit unit fields. DEFAULT leaves the server's configured
// default lifespan/max-idle in effect.
type TimeSpec = protocol.TimeUnit

// ExpirationPair is the decoded form of PUT's expiration descriptor
// byte: lifespan in the high nibble, max-idle in the low nibble.
// DefaultExpiration (0x88) is the zero-cost default used when a caller
// doesn't care about expiration.
type ExpirationPair struct {
	Lifespan TimeSpec
	MaxIdle  TimeSpec
}

// DefaultExpiration matches the reference byte 0x88: both fields set
// to protocol.TimeUnitDefault.
var DefaultExpiration = ExpirationPair{Lifespan: protocol.TimeUnitDefault, MaxIdle: protocol.TimeUnitDefault}

func (e ExpirationPair) encode() byte {
	return byte(e.Lifespan)<<4 | byte(e.MaxIdle)&0x0F
}

// Put sends a PUT request storing value under key with the given
// expiration, and reads the response header. A nil TopologyInfo return
// means the response carried no topology update.
func Put(ctx context.Context, w protocol.Writer, r protocol.Reader, header *protocol.RequestHeader, key, value []byte, expiration ExpirationPair) (*protocol.TopologyInfo, error) {
	header.OpCode = protocol.OpPut

	buf := protocol.WriteHeader(nil, header)
	buf = protocol.PutByteArray(buf, key)
	buf = protocol.PutByte(buf, expiration.encode())
	buf = protocol.PutByteArray(buf, value)

	if err := w.Emit(ctx, buf); err != nil {
		return nil, &protocol.TransportError{Op: "emit", Err: err}
	}

	resp, err := protocol.ReadHeader(ctx, r, header)
	if resp == nil {
		return nil, err
	}
	return resp.Topology, err
}
