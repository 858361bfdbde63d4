package bgp

import (
	"fmt"

	"github.com/alyssa18grasso/bgpRouterProject/network"
)

// Prefix is an IPv4 address range expressed as a (network, mask) pair of
// 32-bit values, per spec §3 and §4.1. Network must have no bits set
// outside of mask, and mask must be left-contiguous (some number of
// leading 1-bits followed only by 0-bits).
type Prefix struct {
	Network uint32
	Mask    uint32
}

// ParsePrefix builds a Prefix from dotted-quad network and netmask
// strings, validating both spec invariants.
func ParsePrefix(networkQuad, maskQuad string) (Prefix, error) {
	n, err := network.QuadToUint32(networkQuad)
	if err != nil {
		return Prefix{}, fmt.Errorf("bgp: bad prefix network: %w", err)
	}
	m, err := network.QuadToUint32(maskQuad)
	if err != nil {
		return Prefix{}, fmt.Errorf("bgp: bad prefix netmask: %w", err)
	}
	if !network.LeftContiguous(m) {
		return Prefix{}, fmt.Errorf("bgp: netmask %s is not left-contiguous", maskQuad)
	}
	if n&m != n {
		return Prefix{}, fmt.Errorf("bgp: network %s has host bits set under mask %s", networkQuad, maskQuad)
	}
	return Prefix{Network: n, Mask: m}, nil
}

// Len returns the prefix length: the popcount of the mask.
func (p Prefix) Len() int {
	return network.MaskLen(p.Mask)
}

// Contains reports whether addr falls within p.
func (p Prefix) Contains(addr uint32) bool {
	return addr&p.Mask == p.Network
}

// NetworkQuad and MaskQuad render the prefix back to the dotted-quad wire
// format used in update/withdraw/table messages.
func (p Prefix) NetworkQuad() string { return network.Uint32ToIP(p.Network).String() }
func (p Prefix) MaskQuad() string    { return network.Uint32ToIP(p.Mask).String() }

// Siblings reports whether a and b are aggregable per spec §4.1: equal
// masks, identical bits in positions [0, len-1), differing only in bit
// position len-1 (0-indexed from the MSB). When true it also returns the
// prefix that results from merging them — the numerically lower network
// with the mask shortened by one bit.
func Siblings(a, b Prefix) (merged Prefix, ok bool) {
	if a.Mask != b.Mask {
		return Prefix{}, false
	}
	length := a.Len()
	if length == 0 {
		// A /0 prefix has no sibling: there is no bit to differ on.
		return Prefix{}, false
	}

	bit := uint32(1) << uint(32-length)
	// Bits above the differing one (the prefix shared by both siblings)
	// must match; the differing bit itself must not.
	aboveMask := ^uint32(0) << uint(33-length)
	if a.Network&aboveMask != b.Network&aboveMask {
		return Prefix{}, false
	}
	if a.Network&bit == b.Network&bit {
		return Prefix{}, false
	}

	lower := a.Network
	if b.Network < lower {
		lower = b.Network
	}
	return Prefix{Network: lower, Mask: a.Mask << 1}, true
}
