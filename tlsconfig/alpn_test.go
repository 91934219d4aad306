package tlsconfig

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestALPNRoundTrip(t *testing.T) {
	wire := EncodeALPN("h2", "http/1.1")
	protos, err := DecodeALPN(wire)
	require.NoError(t, err)
	require.Equal(t, []string{"h2", "http/1.1"}, protos)
}

func TestALPNRejectsOversizeProtocol(t *testing.T) {
	_, err := TryEncodeALPN(strings.Repeat("a", 256))
	require.Error(t, err)
}

func TestALPNDecodeRejectsTruncatedSegment(t *testing.T) {
	_, err := DecodeALPN([]byte{5, 'h', 'i'})
	require.Error(t, err)
}
