package hotrod

import (
	"github.com/pior/hotrod/internal"
	"github.com/zeebo/xxh3"
)

// Servers picks a bootstrap server address to PING when no topology
// has been received yet. It is never used for key routing once a
// Router has a usable topology: the wire protocol mandates MurmurHash3
// for that (see KeySegment), which is a different hash for a different
// purpose — this one only needs to spread the very first connection
// attempts across a configured seed list.
type Servers interface {
	// Select returns the address of the bootstrap server to contact
	// for key. key may be any caller-chosen discriminator (e.g. an
	// operation's actual cache key) used only to spread load; it has
	// no protocol meaning here.
	Select(key string) string

	// All returns every configured bootstrap address, in order.
	All() []string
}

// bootstrapServers implements Servers over a fixed address list using
// Jump Hash over an xxh3 digest of the key: Jump Hash minimizes key
// movement when the seed list grows or shrinks, which matters here
// since the seed list is operator config, not the authoritative
// topology.
type bootstrapServers struct {
	addresses []string
}

// ServersFromAddr builds a Servers over a fixed, non-empty list of
// "host:port" bootstrap addresses.
func ServersFromAddr(addresses ...string) Servers {
	if len(addresses) == 0 {
		panic("hotrod: ServersFromAddr requires at least one address")
	}
	return &bootstrapServers{addresses: addresses}
}

func (s *bootstrapServers) Select(key string) string {
	if len(s.addresses) == 1 {
		return s.addresses[0]
	}
	index := internal.JumpHash(xxh3.HashString(key), len(s.addresses))
	return s.addresses[index]
}

func (s *bootstrapServers) All() []string {
	return s.addresses
}
