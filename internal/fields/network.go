package fields

import (
	"fmt"
	"math/rand"
	"net/netip"

	"github.com/google/uuid"
)

// uuidGen draws version 4 UUIDs from the field's random source so seeded
// runs are reproducible.
type uuidGen struct{ rng *rand.Rand }

func newUUID(_ Config, env Env) (Generator, error) {
	return &uuidGen{rng: env.Rand}, nil
}

func (g *uuidGen) Generate() any {
	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (*uuidGen) Reset() {}

// ipGen draws IPv4 host addresses from a prefix.
type ipGen struct {
	base  uint32
	first uint32
	size  uint32 // number of candidate hosts
	rng   *rand.Rand
}

const defaultCIDR = "10.0.0.0/8"

func newIP(cfg Config, env Env) (Generator, error) {
	cidr, err := cfg.String("cidr", defaultCIDR)
	if err != nil {
		return nil, err
	}
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid cidr %q: %w", cidr, err)
	}
	if !prefix.Addr().Is4() {
		return nil, fmt.Errorf("cidr %q: only IPv4 prefixes are supported", cidr)
	}
	prefix = prefix.Masked()

	a := prefix.Addr().As4()
	g := &ipGen{
		base: uint32(a[0])<<24 | uint32(a[1])<<16 | uint32(a[2])<<8 | uint32(a[3]),
		rng:  env.Rand,
	}
	hostBits := 32 - prefix.Bits()
	total := uint64(1) << hostBits
	if hostBits >= 2 {
		// Skip the network and broadcast addresses.
		g.first, g.size = 1, uint32(total-2)
	} else {
		g.first, g.size = 0, uint32(total)
	}
	return g, nil
}

func (g *ipGen) Generate() any {
	n := g.base + g.first + uint32(g.rng.Int63n(int64(g.size)))
	return netip.AddrFrom4([4]byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}).String()
}

func (*ipGen) Reset() {}
