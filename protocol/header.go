package protocol

import "context"

// RequestHeader is the fixed preamble written before every operation's
// own payload. CacheName empty means the default cache.
type RequestHeader struct {
	MessageID          uint64
	Version            Version
	OpCode             OpCode
	CacheName          []byte
	ClientIntelligence Intelligence
	TopologyID         uint32

	// KeyMediaType/ValueMediaType are only written when Version >= 30;
	// the zero value (NoMediaType) is correct for Version28 requests.
	KeyMediaType   MediaType
	ValueMediaType MediaType
}

// WriteHeader appends req's wire encoding to buf. Flags are fixed at
// 0 (no server-specific header flags are used by this client; the
// flags byte is forward-reserved for the server's own use).
func WriteHeader(buf []byte, req *RequestHeader) []byte {
	buf = append(buf, byte(MagicRequest))
	buf = PutVLong(buf, req.MessageID)
	buf = append(buf, byte(req.Version))
	buf = append(buf, byte(req.OpCode))
	buf = PutByteArray(buf, req.CacheName)
	buf = PutVInt(buf, 0) // flags
	buf = append(buf, byte(req.ClientIntelligence))
	buf = PutVInt(buf, req.TopologyID)

	if req.Version >= Version30 {
		buf = WriteMediaType(buf, req.KeyMediaType)
		buf = WriteMediaType(buf, req.ValueMediaType)
	}

	return buf
}

// ResponseHeader is the fixed preamble read before every operation's
// own payload. Topology is non-nil only when the response carried an
// updated cluster map (TopologyChanged was set on the wire).
type ResponseHeader struct {
	MessageID uint64
	OpCode    OpCode
	Status    Status
	Topology  *TopologyInfo
}

// ReadHeader decodes a ResponseHeader from r and validates it against
// the request that provoked it: the magic byte must be MagicResponse
// and the message id must match req's, since a mismatch means the
// stream has desynchronized and any further read is meaningless.
//
// A topology update is decoded before the status is inspected: the
// server piggybacks topology changes on error responses too, so a
// client that bailed out on error status first would silently drop a
// topology it needs for its next request.
//
// When the response carries an error (status in the 0x81..0x86 range,
// or opcode is OpError regardless of status), ReadHeader returns a
// non-nil *ServerError alongside the parsed header; the header itself
// is valid and its Topology field, if set, must still be applied by
// the caller.
func ReadHeader(ctx context.Context, r Reader, req *RequestHeader) (*ResponseHeader, error) {
	magic, err := ReadByte(ctx, r)
	if err != nil {
		return nil, err
	}
	if Magic(magic) != MagicResponse {
		return nil, &ProtocolError{Message: "response magic byte mismatch"}
	}

	messageID, err := ReadVLong(ctx, r)
	if err != nil {
		return nil, err
	}
	if messageID != req.MessageID {
		return nil, &ProtocolError{Message: "response message id does not match request"}
	}

	opCodeByte, err := ReadByte(ctx, r)
	if err != nil {
		return nil, err
	}
	opCode := OpCode(opCodeByte)

	statusByte, err := ReadByte(ctx, r)
	if err != nil {
		return nil, err
	}
	status := Status(statusByte)

	topologyChanged, err := ReadByte(ctx, r)
	if err != nil {
		return nil, err
	}

	header := &ResponseHeader{MessageID: messageID, OpCode: opCode, Status: status}

	if topologyChanged != 0 {
		topo, err := ReadTopologyInfo(ctx, r, req.ClientIntelligence)
		if err != nil {
			return nil, err
		}
		header.Topology = topo
	}

	if opCode == OpError || status.IsError() {
		message, err := ReadByteArray(ctx, r)
		if err != nil {
			return nil, err
		}
		return header, &ServerError{Status: status, Message: string(message)}
	}

	return header, nil
}
