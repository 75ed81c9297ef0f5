package protocol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type sliceReader struct {
	data []byte
	pos  int
}

func (r *sliceReader) Fill(ctx context.Context, buf []byte) error {
	n := copy(buf, r.data[r.pos:])
	if n < len(buf) {
		return &TransportError{Op: "fill", Err: context.Canceled}
	}
	r.pos += n
	return nil
}

func TestVIntRoundTrip(t *testing.T) {
	cases := []uint32{0, 1, 127, 128, 300, 16384, 1<<31 - 1, 1 << 31, ^uint32(0)}
	for _, v := range cases {
		buf := PutVInt(nil, v)
		got, err := ReadVInt(context.Background(), &sliceReader{data: buf})
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestVIntZeroIsOneByte(t *testing.T) {
	buf := PutVInt(nil, 0)
	require.Equal(t, []byte{0x00}, buf)
}

func TestVLongRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 1 << 40, ^uint64(0)}
	for _, v := range cases {
		buf := PutVLong(nil, v)
		got, err := ReadVLong(context.Background(), &sliceReader{data: buf})
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestReadVIntOverlong(t *testing.T) {
	buf := make([]byte, 6)
	for i := range buf {
		buf[i] = 0x80
	}
	_, err := ReadVInt(context.Background(), &sliceReader{data: buf})
	require.Error(t, err)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
}

func TestShortRoundTrip(t *testing.T) {
	buf := PutShort(nil, 0xBEEF)
	require.Equal(t, []byte{0xBE, 0xEF}, buf)

	got, err := ReadShort(context.Background(), &sliceReader{data: buf})
	require.NoError(t, err)
	require.Equal(t, uint16(0xBEEF), got)
}

func TestByteArrayRoundTrip(t *testing.T) {
	data := []byte("hello, hotrod")
	buf := PutByteArray(nil, data)

	got, err := ReadByteArray(context.Background(), &sliceReader{data: buf})
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestByteArrayEmpty(t *testing.T) {
	buf := PutByteArray(nil, nil)
	got, err := ReadByteArray(context.Background(), &sliceReader{data: buf})
	require.NoError(t, err)
	require.Len(t, got, 0)
}

func FuzzVIntRoundTrip(f *testing.F) {
	f.Add(uint32(0))
	f.Add(uint32(127))
	f.Add(uint32(128))
	f.Add(^uint32(0))
	f.Fuzz(func(t *testing.T, v uint32) {
		buf := PutVInt(nil, v)
		got, err := ReadVInt(context.Background(), &sliceReader{data: buf})
		require.NoError(t, err)
		require.Equal(t, v, got)
	})
}
