package protocol

import "context"

// maxVIntBytes/maxVLongBytes bound the number of bytes the decoder will
// read for one value before giving up. The wire format has no
// explicit maximum length; this guards against an unbounded read on a
// corrupt or adversarial stream.
const (
	maxVIntBytes  = 5
	maxVLongBytes = 10
)

// PutVInt appends the VInt encoding of v to buf and returns the
// extended slice. Encoding is little-endian base-128: 7 value bits
// per byte, MSB set on every byte but the last. The encoding of 0 is
// exactly one byte, 0x00.
func PutVInt(buf []byte, v uint32) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// PutVLong appends the VLong encoding of v to buf, identical to
// PutVInt but over a 64-bit accumulator.
func PutVLong(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// ReadVInt decodes a VInt from r.
func ReadVInt(ctx context.Context, r Reader) (uint32, error) {
	var result uint32
	var shift uint
	var b [1]byte
	for i := 0; ; i++ {
		if i >= maxVIntBytes {
			return 0, &ProtocolError{Message: "VInt longer than 5 bytes"}
		}
		if err := r.Fill(ctx, b[:]); err != nil {
			return 0, &TransportError{Op: "fill", Err: err}
		}
		result |= uint32(b[0]&0x7F) << shift
		if b[0]&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// ReadVLong decodes a VLong from r.
func ReadVLong(ctx context.Context, r Reader) (uint64, error) {
	var result uint64
	var shift uint
	var b [1]byte
	for i := 0; ; i++ {
		if i >= maxVLongBytes {
			return 0, &ProtocolError{Message: "VLong longer than 10 bytes"}
		}
		if err := r.Fill(ctx, b[:]); err != nil {
			return 0, &TransportError{Op: "fill", Err: err}
		}
		result |= uint64(b[0]&0x7F) << shift
		if b[0]&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// PutShort appends the big-endian 16-bit encoding of v to buf.
func PutShort(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

// ReadShort decodes a big-endian 16-bit value from r.
func ReadShort(ctx context.Context, r Reader) (uint16, error) {
	var b [2]byte
	if err := r.Fill(ctx, b[:]); err != nil {
		return 0, &TransportError{Op: "fill", Err: err}
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// PutByteArray appends the VInt length prefix and raw bytes of data
// to buf.
func PutByteArray(buf []byte, data []byte) []byte {
	buf = PutVInt(buf, uint32(len(data)))
	return append(buf, data...)
}

// ReadByteArray reads a VInt length L followed by L raw bytes from r,
// allocating and returning a fresh L-byte buffer owned by the caller.
// L may legally be zero.
func ReadByteArray(ctx context.Context, r Reader) ([]byte, error) {
	length, err := ReadVInt(ctx, r)
	if err != nil {
		return nil, err
	}
	out := make([]byte, length)
	if length == 0 {
		return out, nil
	}
	if err := r.Fill(ctx, out); err != nil {
		return nil, &TransportError{Op: "fill", Err: err}
	}
	return out, nil
}

// PutByte appends a single byte to buf.
func PutByte(buf []byte, b byte) []byte { return append(buf, b) }

// ReadByte reads a single byte from r.
func ReadByte(ctx context.Context, r Reader) (byte, error) {
	var b [1]byte
	if err := r.Fill(ctx, b[:]); err != nil {
		return 0, &TransportError{Op: "fill", Err: err}
	}
	return b[0], nil
}
