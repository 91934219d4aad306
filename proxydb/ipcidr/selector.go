// Package ipcidr selects source IP addresses out of a CIDR range for
// outbound connections, the way an IpCidrConnector picks a NAT/egress
// address for a proxied dial.
package ipcidr

import (
	"context"
	"crypto/rand"
	"fmt"
	"hash/fnv"
	"math/big"
	"net"
	"net/netip"
	"sync/atomic"
)

// Mode selects how the primary address is generated for each dial.
type Mode int

const (
	// ModeRandom draws a uniformly random host address from the CIDR
	// on every call.
	ModeRandom Mode = iota
	// ModeRoundRobin increments an atomic counter and maps it onto a
	// deterministic host address via Extension.
	ModeRoundRobin
)

// Extension maps a session id (0-based, already reduced modulo
// capacity) onto a host offset within the range. The default extension
// (defaultExtension) spreads the id with an FNV-1a hash modulo capacity;
// a caller can plug in a different spread
// (e.g. one derived from a client fingerprint) to decorrelate
// consecutive session ids from consecutive addresses.
type Extension func(sessionID *big.Int, capacity *big.Int) *big.Int

// defaultExtension spreads a session id across the range with FNV-1a,
// so consecutive round-robin session ids don't produce consecutive
// (and therefore easily fingerprinted) addresses.
func defaultExtension(sessionID, capacity *big.Int) *big.Int {
	if capacity.Sign() <= 0 {
		return big.NewInt(0)
	}
	h := fnv.New64a()
	h.Write(sessionID.Bytes())
	mixed := new(big.Int).SetUint64(h.Sum64())
	return mixed.Mod(mixed, capacity)
}

// Connector draws a source address from ip_cidr (and optionally a
// fallback from a second CIDR) for each dial, retrying generated
// addresses that fall in Excluded.
type Connector struct {
	Mode      Mode
	IPCIDR    netip.Prefix
	CIDRRange int // overrides IPCIDR's own prefix length when > 0
	Fallback  *netip.Prefix
	Excluded  map[netip.Addr]struct{}
	Extension Extension

	counter uint64
}

const maxExclusionRetries = 1000

// ErrCIDRRangeTooWide is returned when CIDRRange exceeds the address
// family's bit width.
var ErrCIDRRangeTooWide = fmt.Errorf("ipcidr: cidr_range exceeds address family width")

// NewConnector validates cidrRange against prefix's address family and
// returns a ready Connector.
func NewConnector(mode Mode, prefix netip.Prefix, cidrRange int, fallback *netip.Prefix) (*Connector, error) {
	maxBits := 32
	if prefix.Addr().Is6() {
		maxBits = 128
	}
	if cidrRange > maxBits {
		return nil, ErrCIDRRangeTooWide
	}
	return &Connector{
		Mode:      mode,
		IPCIDR:    prefix,
		CIDRRange: cidrRange,
		Fallback:  fallback,
		Excluded:  make(map[netip.Addr]struct{}),
		Extension: defaultExtension,
	}, nil
}

// Capacity returns 2^(addrBits-prefixLen) - 1, clamped so a /0 prefix
// reports the full address space and a prefix at or past the address
// width reports 1 (a single usable host).
func Capacity(addrBits, prefixLen int) *big.Int {
	if prefixLen <= 0 {
		prefixLen = 0
	}
	if prefixLen >= addrBits {
		return big.NewInt(1)
	}
	cap := new(big.Int).Lsh(big.NewInt(1), uint(addrBits-prefixLen))
	return cap.Sub(cap, big.NewInt(1))
}

func (c *Connector) effectivePrefixLen() int {
	if c.CIDRRange > 0 {
		return c.CIDRRange
	}
	return c.IPCIDR.Bits()
}

func (c *Connector) addrBits() int {
	if c.IPCIDR.Addr().Is6() {
		return 128
	}
	return 32
}

func (c *Connector) capacity() *big.Int {
	return Capacity(c.addrBits(), c.effectivePrefixLen())
}

// GetConnector returns the primary and, if configured, fallback socket
// addresses with port 0 so the OS assigns an ephemeral source port.
func (c *Connector) GetConnector() (primary netip.AddrPort, fallback *netip.AddrPort, err error) {
	addr, err := c.generatePrimary()
	if err != nil {
		return netip.AddrPort{}, nil, err
	}
	primary = netip.AddrPortFrom(addr, 0)

	if c.Fallback != nil {
		fb, err := c.sampleExcluding(*c.Fallback, c.addrBitsFor(*c.Fallback))
		if err != nil {
			return netip.AddrPort{}, nil, err
		}
		ap := netip.AddrPortFrom(fb, 0)
		fallback = &ap
	}
	return primary, fallback, nil
}

func (c *Connector) addrBitsFor(p netip.Prefix) int {
	if p.Addr().Is6() {
		return 128
	}
	return 32
}

func (c *Connector) generatePrimary() (netip.Addr, error) {
	switch c.Mode {
	case ModeRoundRobin:
		cap := c.capacity()
		n := atomic.AddUint64(&c.counter, 1)
		sessionID := new(big.Int).Mod(new(big.Int).SetUint64(n), cap)
		offset := c.Extension(sessionID, cap)
		return c.sampleOffsetExcluding(offset)
	default:
		return c.sampleExcluding(c.IPCIDR, c.addrBits())
	}
}

// sampleOffsetExcluding builds the host address for a deterministic
// offset, retrying with offset+1 (mod capacity) up to maxExclusionRetries
// times if the result collides with Excluded.
func (c *Connector) sampleOffsetExcluding(offset *big.Int) (netip.Addr, error) {
	cap := c.capacity()
	base := prefixBase(c.IPCIDR)
	for i := 0; i < maxExclusionRetries; i++ {
		addr := addOffset(base, offset, c.addrBits())
		if _, excluded := c.Excluded[addr]; !excluded {
			return addr, nil
		}
		offset = new(big.Int).Mod(new(big.Int).Add(offset, big.NewInt(1)), cap)
	}
	return addOffset(base, offset, c.addrBits()), nil
}

// sampleExcluding draws a uniformly random host address within prefix,
// retrying on an Excluded collision up to maxExclusionRetries times and
// then accepting whatever was last drawn, bounding worst-case latency
// under adversarial exclusion sets.
func (c *Connector) sampleExcluding(prefix netip.Prefix, bits int) (netip.Addr, error) {
	base := prefixBase(prefix)
	cap := Capacity(bits, prefix.Bits())
	var addr netip.Addr
	for i := 0; i < maxExclusionRetries; i++ {
		offset, err := rand.Int(rand.Reader, new(big.Int).Add(cap, big.NewInt(1)))
		if err != nil {
			return netip.Addr{}, err
		}
		addr = addOffset(base, offset, bits)
		if _, excluded := c.Excluded[addr]; !excluded {
			return addr, nil
		}
	}
	return addr, nil
}

func prefixBase(p netip.Prefix) netip.Addr {
	return p.Masked().Addr()
}

func addOffset(base netip.Addr, offset *big.Int, bits int) netip.Addr {
	baseInt := new(big.Int).SetBytes(base.AsSlice())
	sum := new(big.Int).Add(baseInt, offset)
	max := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	sum.Mod(sum, max)

	buf := make([]byte, bits/8)
	sum.FillBytes(buf)
	addr, _ := netip.AddrFromSlice(buf)
	if base.Is4() {
		addr = addr.Unmap()
	}
	return addr
}

// Dial attempts the primary address as the local source address for a
// TCP dial to remoteAddr, falling back to the fallback address on any
// error if one is configured, and aggregating both failures otherwise.
func (c *Connector) Dial(ctx context.Context, network, remoteAddr string) (net.Conn, error) {
	primary, fallback, err := c.GetConnector()
	if err != nil {
		return nil, err
	}

	dialer := &net.Dialer{LocalAddr: &net.TCPAddr{IP: primary.Addr().AsSlice(), Port: 0}}
	conn, primaryErr := dialer.DialContext(ctx, network, remoteAddr)
	if primaryErr == nil {
		return conn, nil
	}
	if fallback == nil {
		return nil, primaryErr
	}

	fbDialer := &net.Dialer{LocalAddr: &net.TCPAddr{IP: fallback.Addr().AsSlice(), Port: 0}}
	conn, fallbackErr := fbDialer.DialContext(ctx, network, remoteAddr)
	if fallbackErr == nil {
		return conn, nil
	}
	return nil, fmt.Errorf("ipcidr: primary dial failed (%w) and fallback dial failed (%v)", primaryErr, fallbackErr)
}
