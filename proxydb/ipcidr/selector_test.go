package ipcidr

import (
	"math/big"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCapacityClampsAtFullSpaceAndSingleHost(t *testing.T) {
	require.Equal(t, new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 32), big.NewInt(1)), Capacity(32, 0))
	require.Equal(t, big.NewInt(1), Capacity(32, 32))
	require.Equal(t, big.NewInt(1), Capacity(32, 40))
	require.Equal(t, big.NewInt(255), Capacity(32, 24))
}

func TestNewConnectorRejectsOversizeCIDRRange(t *testing.T) {
	prefix := netip.MustParsePrefix("10.0.0.0/24")
	_, err := NewConnector(ModeRandom, prefix, 33, nil)
	require.ErrorIs(t, err, ErrCIDRRangeTooWide)
}

func TestGetConnectorPrimaryWithinRange(t *testing.T) {
	prefix := netip.MustParsePrefix("10.0.0.0/24")
	c, err := NewConnector(ModeRandom, prefix, 0, nil)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		primary, fallback, err := c.GetConnector()
		require.NoError(t, err)
		require.Nil(t, fallback)
		require.True(t, prefix.Contains(primary.Addr()))
		require.Equal(t, uint16(0), primary.Port())
	}
}

func TestGetConnectorFallbackAlwaysRandomAcrossModes(t *testing.T) {
	prefix := netip.MustParsePrefix("10.0.0.0/24")
	fallback := netip.MustParsePrefix("192.168.0.0/24")
	c, err := NewConnector(ModeRoundRobin, prefix, 0, &fallback)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		primary, fb, err := c.GetConnector()
		require.NoError(t, err)
		require.True(t, prefix.Contains(primary.Addr()))
		require.NotNil(t, fb)
		require.True(t, fallback.Contains(fb.Addr()))
	}
}

func TestGetConnectorRoundRobinDeterministicProgression(t *testing.T) {
	prefix := netip.MustParsePrefix("10.0.0.0/30")
	c, err := NewConnector(ModeRoundRobin, prefix, 0, nil)
	require.NoError(t, err)

	first, _, err := c.GetConnector()
	require.NoError(t, err)
	second, _, err := c.GetConnector()
	require.NoError(t, err)
	require.True(t, prefix.Contains(first.Addr()))
	require.True(t, prefix.Contains(second.Addr()))
}

func TestGetConnectorExcludedAddressIsSkipped(t *testing.T) {
	prefix := netip.MustParsePrefix("10.0.0.0/30") // capacity 3: offsets 0..2 give .0, .1, .2
	c, err := NewConnector(ModeRoundRobin, prefix, 0, nil)
	require.NoError(t, err)
	c.Excluded[netip.MustParseAddr("10.0.0.0")] = struct{}{}
	c.Excluded[netip.MustParseAddr("10.0.0.1")] = struct{}{}
	c.Excluded[netip.MustParseAddr("10.0.0.2")] = struct{}{}
	c.Excluded[netip.MustParseAddr("10.0.0.3")] = struct{}{}

	// every host is excluded; the retry loop must still terminate and
	// return some address within the prefix rather than hang.
	addr, _, err := c.GetConnector()
	require.NoError(t, err)
	require.True(t, prefix.Contains(addr.Addr()))
}
