package murmur3

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSum32KnownVectors(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want uint32
	}{
		{"empty", []byte{}, 0},
		{"one", []byte("a"), 0x3c2569b2},
		{"four", []byte("abcd"), 0x43ed676a},
		{"longer", []byte("Hello, world!"), 0xc0363e43},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, Sum32(c.data))
		})
	}
}

func TestSum32DeterministicAndLengthSensitive(t *testing.T) {
	a := Sum32([]byte("segment-routing-key"))
	b := Sum32([]byte("segment-routing-key"))
	require.Equal(t, a, b)

	c := Sum32([]byte("segment-routing-key2"))
	require.NotEqual(t, a, c)
}

func FuzzSum32NoPanic(f *testing.F) {
	f.Add([]byte(""))
	f.Add([]byte("k"))
	f.Add([]byte("a longer key used for segment routing"))
	f.Fuzz(func(t *testing.T, data []byte) {
		_ = Sum32(data)
	})
}
