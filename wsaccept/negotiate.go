package wsaccept

import (
	"fmt"
	"strconv"
	"strings"
)

// Acceptor holds a server's WebSocket negotiation policy: the
// sub-protocol allow-list, whether protocol presence is required on
// both sides, and the advertised extensions.
type Acceptor struct {
	Protocols     []string
	ProtocolsFlex bool
	Deflate       *DeflatePolicy
}

// ErrProtocolMismatch is returned by NegotiateProtocol when
// ProtocolsFlex is false and exactly one side is silent about
// sub-protocols.
var ErrProtocolMismatch = fmt.Errorf("wsaccept: sub-protocol negotiation failed")

// NegotiateProtocol picks the first client-offered protocol that
// appears in the server allow-list, per the component design's
// negotiation rule. With ProtocolsFlex=false, either both sides must
// name protocols or neither may; a lone silent side is an error. The
// empty string return with a nil error means "no protocol negotiated",
// which is valid whenever ProtocolsFlex is true.
func (a *Acceptor) NegotiateProtocol(clientOffered []string) (string, error) {
	serverOffers := len(a.Protocols) > 0
	clientOffers := len(clientOffered) > 0

	if !a.ProtocolsFlex && serverOffers != clientOffers {
		return "", ErrProtocolMismatch
	}
	if !serverOffers || !clientOffers {
		return "", nil
	}

	for _, want := range clientOffered {
		for _, have := range a.Protocols {
			if want == have {
				return want, nil
			}
		}
	}
	if !a.ProtocolsFlex {
		return "", ErrProtocolMismatch
	}
	return "", nil
}

// DeflatePolicy is the server's permessage-deflate capability, per RFC
// 7692.
type DeflatePolicy struct {
	NoContextTakeover bool
	MaxWindowBits     int // server's cap, clamped to [8,15]; 0 means "use 15"
}

func (p *DeflatePolicy) cap() int {
	if p == nil || p.MaxWindowBits == 0 {
		return 15
	}
	return clampBits(p.MaxWindowBits)
}

func clampBits(v int) int {
	if v < 8 {
		return 8
	}
	if v > 15 {
		return 15
	}
	return v
}

// DeflateOffer is the client's permessage-deflate extension offer,
// parsed from a Sec-WebSocket-Extensions header segment.
type DeflateOffer struct {
	ServerNoContextTakeover bool
	ServerMaxWindowBits     *int
	ClientMaxWindowBits     *int
}

// DeflateResponse is the negotiated response parameters.
type DeflateResponse struct {
	ServerNoContextTakeover bool
	ServerMaxWindowBits     int
	ClientMaxWindowBits     *int // nil means "omit the parameter"
}

// NegotiateDeflate derives response parameters by intersecting the
// client's offer with the server's policy, per the component design:
// server_no_context_takeover is ANDed, server_max_window_bits is
// min'd (defaulting to 15, surfaced only when it constrains or was
// explicitly requested), and client_max_window_bits is surfaced only
// when the client offered it at all.
func NegotiateDeflate(policy *DeflatePolicy, offer DeflateOffer) DeflateResponse {
	cap := policy.cap()

	serverBits := cap
	if offer.ServerMaxWindowBits != nil {
		if clamped := clampBits(*offer.ServerMaxWindowBits); clamped < serverBits {
			serverBits = clamped
		}
	}

	resp := DeflateResponse{
		ServerNoContextTakeover: offer.ServerNoContextTakeover && policy != nil && policy.NoContextTakeover,
		ServerMaxWindowBits:     serverBits,
	}

	if offer.ClientMaxWindowBits != nil {
		v := clampBits(*offer.ClientMaxWindowBits)
		if v > cap {
			v = cap
		}
		resp.ClientMaxWindowBits = &v
	}
	return resp
}

// ShouldEmitServerMaxWindowBits reports whether resp's
// ServerMaxWindowBits parameter should appear on the wire: either it
// constrains below the RFC default of 15, or the client explicitly
// asked for the parameter.
func ShouldEmitServerMaxWindowBits(resp DeflateResponse, offer DeflateOffer) bool {
	return resp.ServerMaxWindowBits < 15 || offer.ServerMaxWindowBits != nil
}

// ParseDeflateOffer extracts permessage-deflate parameters from one
// Sec-WebSocket-Extensions offer segment (already split on comma,
// trimmed). Unrecognized parameters are ignored.
func ParseDeflateOffer(segment string) (DeflateOffer, bool) {
	parts := strings.Split(segment, ";")
	if len(parts) == 0 || strings.TrimSpace(parts[0]) != "permessage-deflate" {
		return DeflateOffer{}, false
	}

	var offer DeflateOffer
	for _, raw := range parts[1:] {
		param := strings.TrimSpace(raw)
		name, value, _ := strings.Cut(param, "=")
		name = strings.TrimSpace(name)
		value = strings.Trim(strings.TrimSpace(value), `"`)

		switch name {
		case "server_no_context_takeover":
			offer.ServerNoContextTakeover = true
		case "server_max_window_bits":
			if v, err := strconv.Atoi(value); err == nil {
				offer.ServerMaxWindowBits = &v
			}
		case "client_max_window_bits":
			if value == "" {
				v := 15
				offer.ClientMaxWindowBits = &v
				continue
			}
			if v, err := strconv.Atoi(value); err == nil {
				offer.ClientMaxWindowBits = &v
			}
		}
	}
	return offer, true
}

// EncodeDeflateResponse renders resp as a Sec-WebSocket-Extensions
// value.
func EncodeDeflateResponse(resp DeflateResponse, offer DeflateOffer) string {
	var b strings.Builder
	b.WriteString("permessage-deflate")
	if resp.ServerNoContextTakeover {
		b.WriteString("; server_no_context_takeover")
	}
	if ShouldEmitServerMaxWindowBits(resp, offer) {
		fmt.Fprintf(&b, "; server_max_window_bits=%d", resp.ServerMaxWindowBits)
	}
	if resp.ClientMaxWindowBits != nil {
		fmt.Fprintf(&b, "; client_max_window_bits=%d", *resp.ClientMaxWindowBits)
	}
	return b.String()
}
