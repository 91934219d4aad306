// Package proxydb holds an in-memory, indexed table of upstream proxy
// records and the filter/predicate query algorithm used to pick one for
// a connection, the same role middleware/proxy/policy.go plays for
// caddy's reverse-proxy upstream pool but keyed by proxy attributes
// instead of host health.
package proxydb

import "fmt"

// Wildcard is the sentinel string attribute value that matches any
// filter candidate for that attribute.
const Wildcard = "*"

// Proxy is one upstream entry in the database.
type Proxy struct {
	ID      string
	Address string

	TCP     bool
	UDP     bool
	HTTP    bool
	HTTPS   bool
	SOCKS5  bool
	SOCKS5H bool

	Datacenter bool
	Residential bool
	Mobile      bool

	PoolID    string
	Continent string
	Country   string
	State     string
	City      string
	Carrier   string
	ASN       string
}

// Valid reports whether p satisfies the structural validity predicate:
// it must be one of {datacenter, residential, mobile}, and it must
// support TCP transport for an HTTP-family protocol or TCP/UDP for a
// SOCKS5 family protocol.
func (p *Proxy) Valid() bool {
	kind := p.Datacenter || p.Residential || p.Mobile
	httpFamily := (p.HTTP || p.HTTPS) && p.TCP
	socksFamily := (p.SOCKS5 || p.SOCKS5H) && (p.TCP || p.UDP)
	return kind && (httpFamily || socksFamily)
}

func wildcardEq(field, candidate string) bool {
	return field == candidate || field == Wildcard
}

func anyMatch(field string, candidates []string) bool {
	if len(candidates) == 0 {
		return true
	}
	for _, c := range candidates {
		if wildcardEq(field, c) {
			return true
		}
	}
	return false
}

func boolMatch(field bool, want *bool) bool {
	if want == nil {
		return true
	}
	return field == *want
}

// Transport names the transport a connection request needs from a
// proxy, per the transport-specific matching rules in the component
// design.
type Transport int

const (
	TransportTCP Transport = iota
	TransportUDP
)

func (p *Proxy) supportsTransport(t Transport) bool {
	switch t {
	case TransportUDP:
		return p.UDP && p.SOCKS5
	default:
		return p.TCP
	}
}

// ProxyFilter is an optional multi-criteria query: each non-empty list
// field is an OR of candidates, and all fields are ANDed together.
// Boolean fields are exact-match when set, unconstrained when nil.
type ProxyFilter struct {
	ID string

	PoolID    []string
	Continent []string
	Country   []string
	State     []string
	City      []string
	Carrier   []string
	ASN       []string

	TCP         *bool
	UDP         *bool
	HTTP        *bool
	HTTPS       *bool
	SOCKS5      *bool
	SOCKS5H     *bool
	Datacenter  *bool
	Residential *bool
	Mobile      *bool
}

// Matches reports whether p satisfies f, independent of any index.
func (f *ProxyFilter) Matches(p *Proxy) bool {
	return anyMatch(p.PoolID, f.PoolID) &&
		anyMatch(p.Continent, f.Continent) &&
		anyMatch(p.Country, f.Country) &&
		anyMatch(p.State, f.State) &&
		anyMatch(p.City, f.City) &&
		anyMatch(p.Carrier, f.Carrier) &&
		anyMatch(p.ASN, f.ASN) &&
		boolMatch(p.TCP, f.TCP) &&
		boolMatch(p.UDP, f.UDP) &&
		boolMatch(p.HTTP, f.HTTP) &&
		boolMatch(p.HTTPS, f.HTTPS) &&
		boolMatch(p.SOCKS5, f.SOCKS5) &&
		boolMatch(p.SOCKS5H, f.SOCKS5H) &&
		boolMatch(p.Datacenter, f.Datacenter) &&
		boolMatch(p.Residential, f.Residential) &&
		boolMatch(p.Mobile, f.Mobile)
}

// ErrNotFound is returned when a filter's id key has no matching row.
var ErrNotFound = fmt.Errorf("proxydb: proxy not found")

// ErrMismatch is returned when a filter's id key resolves to a row that
// fails the rest of the filter or the caller's predicate.
var ErrMismatch = fmt.Errorf("proxydb: proxy found but does not satisfy filter or predicate")
