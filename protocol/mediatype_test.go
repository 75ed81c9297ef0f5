package protocol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMediaTypeRoundTripNone(t *testing.T) {
	buf := WriteMediaType(nil, NoMediaType)
	got, err := ReadMediaType(context.Background(), &sliceReader{data: buf})
	require.NoError(t, err)
	require.Equal(t, NoMediaType, got)
}

func TestMediaTypeRoundTripPredefined(t *testing.T) {
	mt := PredefinedMediaType(7)
	buf := WriteMediaType(nil, mt)
	got, err := ReadMediaType(context.Background(), &sliceReader{data: buf})
	require.NoError(t, err)
	require.Equal(t, mt, got)
}

func TestMediaTypeRoundTripCustom(t *testing.T) {
	mt := MediaType{
		InfoType: mediaTypeInfoCustom,
		Name:     []byte("application/x-protostream"),
		Params: []MediaTypeParam{
			{Key: []byte("charset"), Value: []byte("utf-8")},
		},
	}
	buf := WriteMediaType(nil, mt)
	got, err := ReadMediaType(context.Background(), &sliceReader{data: buf})
	require.NoError(t, err)
	require.Equal(t, mt.Name, got.Name)
	require.Equal(t, mt.Params, got.Params)
}

func TestMediaTypeUnknownDiscriminant(t *testing.T) {
	_, err := ReadMediaType(context.Background(), &sliceReader{data: []byte{0x09}})
	require.Error(t, err)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
}
