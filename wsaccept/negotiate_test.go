package wsaccept

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNegotiateProtocolPicksFirstClientOfferInServerList(t *testing.T) {
	acc := &Acceptor{Protocols: []string{"chat", "superchat"}}
	got, err := acc.NegotiateProtocol([]string{"superchat", "chat"})
	require.NoError(t, err)
	require.Equal(t, "superchat", got)
}

func TestNegotiateProtocolStrictRequiresBothSides(t *testing.T) {
	acc := &Acceptor{Protocols: []string{"chat"}, ProtocolsFlex: false}
	_, err := acc.NegotiateProtocol(nil)
	require.ErrorIs(t, err, ErrProtocolMismatch)

	acc2 := &Acceptor{ProtocolsFlex: false}
	_, err = acc2.NegotiateProtocol([]string{"chat"})
	require.ErrorIs(t, err, ErrProtocolMismatch)
}

func TestNegotiateProtocolFlexAllowsEitherSideSilent(t *testing.T) {
	acc := &Acceptor{Protocols: []string{"chat"}, ProtocolsFlex: true}
	got, err := acc.NegotiateProtocol(nil)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestParseDeflateOfferExtractsParameters(t *testing.T) {
	offer, ok := ParseDeflateOffer(`permessage-deflate; server_no_context_takeover; client_max_window_bits=10`)
	require.True(t, ok)
	require.True(t, offer.ServerNoContextTakeover)
	require.NotNil(t, offer.ClientMaxWindowBits)
	require.Equal(t, 10, *offer.ClientMaxWindowBits)
	require.Nil(t, offer.ServerMaxWindowBits)
}

func TestParseDeflateOfferBareClientMaxWindowBitsDefaultsTo15(t *testing.T) {
	offer, ok := ParseDeflateOffer(`permessage-deflate; client_max_window_bits`)
	require.True(t, ok)
	require.NotNil(t, offer.ClientMaxWindowBits)
	require.Equal(t, 15, *offer.ClientMaxWindowBits)
}

func TestNegotiateDeflateANDsNoContextTakeover(t *testing.T) {
	policy := &DeflatePolicy{NoContextTakeover: false}
	offer := DeflateOffer{ServerNoContextTakeover: true}
	resp := NegotiateDeflate(policy, offer)
	require.False(t, resp.ServerNoContextTakeover)

	policy2 := &DeflatePolicy{NoContextTakeover: true}
	resp2 := NegotiateDeflate(policy2, offer)
	require.True(t, resp2.ServerNoContextTakeover)
}

func TestNegotiateDeflateServerMaxWindowBitsIsMinOfOfferAndCap(t *testing.T) {
	policy := &DeflatePolicy{MaxWindowBits: 12}
	bits := 14
	offer := DeflateOffer{ServerMaxWindowBits: &bits}
	resp := NegotiateDeflate(policy, offer)
	require.Equal(t, 12, resp.ServerMaxWindowBits)
}

func TestNegotiateDeflateClientMaxWindowBitsOmittedWhenNotOffered(t *testing.T) {
	policy := &DeflatePolicy{}
	resp := NegotiateDeflate(policy, DeflateOffer{})
	require.Nil(t, resp.ClientMaxWindowBits)
}

func TestNegotiateDeflateClientMaxWindowBitsClampedToCap(t *testing.T) {
	policy := &DeflatePolicy{MaxWindowBits: 10}
	bits := 15
	offer := DeflateOffer{ClientMaxWindowBits: &bits}
	resp := NegotiateDeflate(policy, offer)
	require.NotNil(t, resp.ClientMaxWindowBits)
	require.Equal(t, 10, *resp.ClientMaxWindowBits)
}

func TestShouldEmitServerMaxWindowBitsWhenConstrainedOrRequested(t *testing.T) {
	require.True(t, ShouldEmitServerMaxWindowBits(DeflateResponse{ServerMaxWindowBits: 12}, DeflateOffer{}))
	require.False(t, ShouldEmitServerMaxWindowBits(DeflateResponse{ServerMaxWindowBits: 15}, DeflateOffer{}))
	bits := 15
	require.True(t, ShouldEmitServerMaxWindowBits(DeflateResponse{ServerMaxWindowBits: 15}, DeflateOffer{ServerMaxWindowBits: &bits}))
}

func TestEncodeDeflateResponseOmitsUnsetParameters(t *testing.T) {
	resp := DeflateResponse{ServerMaxWindowBits: 15}
	encoded := EncodeDeflateResponse(resp, DeflateOffer{})
	require.Equal(t, "permessage-deflate", encoded)
}
