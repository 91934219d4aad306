package proxydb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProxyValidRequiresKindAndTransportPairing(t *testing.T) {
	valid := &Proxy{Datacenter: true, TCP: true, HTTP: true}
	require.True(t, valid.Valid())

	noKind := &Proxy{TCP: true, HTTP: true}
	require.False(t, noKind.Valid())

	socksNeedsTCPOrUDP := &Proxy{Residential: true, SOCKS5: true, UDP: true}
	require.True(t, socksNeedsTCPOrUDP.Valid())

	httpNeedsTCP := &Proxy{Mobile: true, HTTP: true}
	require.False(t, httpNeedsTCP.Valid())
}

func TestProxyFilterWildcardMatchesAnyCandidate(t *testing.T) {
	p := &Proxy{City: Wildcard}
	f := &ProxyFilter{City: []string{"Berlin"}}
	require.True(t, f.Matches(p))
}

func TestProxyFilterORWithinAttributeANDBetweenAttributes(t *testing.T) {
	p := &Proxy{Country: "DE", City: "Berlin"}
	f := &ProxyFilter{Country: []string{"FR", "DE"}, City: []string{"Paris"}}
	require.False(t, f.Matches(p))

	f2 := &ProxyFilter{Country: []string{"FR", "DE"}, City: []string{"Paris", "Berlin"}}
	require.True(t, f2.Matches(p))
}

func TestProxyFilterBooleanAbsentMeansUnconstrained(t *testing.T) {
	p := &Proxy{TCP: true}
	f := &ProxyFilter{}
	require.True(t, f.Matches(p))

	want := false
	f2 := &ProxyFilter{TCP: &want}
	require.False(t, f2.Matches(p))
}

func TestSupportsTransportRequiresSocks5ForUDP(t *testing.T) {
	tcpOnly := &Proxy{TCP: true, HTTP: true}
	require.True(t, tcpOnly.supportsTransport(TransportTCP))
	require.False(t, tcpOnly.supportsTransport(TransportUDP))

	socksUDP := &Proxy{UDP: true, SOCKS5: true}
	require.True(t, socksUDP.supportsTransport(TransportUDP))
}
