// Package wsaccept matches and validates incoming WebSocket upgrade
// requests, negotiates sub-protocol and per-message-deflate parameters,
// and builds the switching-protocols response — the h1/h2 counterpart
// of middleware/websocket/websocket.go's upgrader, generalized to also
// accept RFC 8441 extended CONNECT on HTTP/2.
package wsaccept

import (
	"net/http"
	"strings"
)

// FailureKind enumerates why an incoming request failed to validate as
// a WebSocket handshake.
type FailureKind int

const (
	FailNone FailureKind = iota
	FailUnexpectedHTTPMethod
	FailUnexpectedHTTPVersion
	FailUnexpectedPseudoProtocolHeader
	FailMissingUpgradeWebSocketHeader
	FailMissingConnectionUpgradeHeader
	FailInvalidSecWebSocketVersionHeader
	FailInvalidSecWebSocketKeyHeader
)

func (k FailureKind) String() string {
	switch k {
	case FailUnexpectedHTTPMethod:
		return "unexpected_http_method"
	case FailUnexpectedHTTPVersion:
		return "unexpected_http_version"
	case FailUnexpectedPseudoProtocolHeader:
		return "unexpected_pseudo_protocol_header"
	case FailMissingUpgradeWebSocketHeader:
		return "missing_upgrade_websocket_header"
	case FailMissingConnectionUpgradeHeader:
		return "missing_connection_upgrade_header"
	case FailInvalidSecWebSocketVersionHeader:
		return "invalid_sec_websocket_version_header"
	case FailInvalidSecWebSocketKeyHeader:
		return "invalid_sec_websocket_key_header"
	default:
		return "none"
	}
}

// ValidationError wraps the FailureKind that rejected a handshake.
type ValidationError struct{ Kind FailureKind }

func (e *ValidationError) Error() string { return "wsaccept: " + e.Kind.String() }

// ClientRequestData is what a validated handshake yields: the
// candidate accept-key material (h1 only), requested sub-protocols,
// and requested extensions.
type ClientRequestData struct {
	AcceptHeader string // Sec-WebSocket-Key value, h1 only
	Protocols    []string
	Extensions   []string
}

// IsUpgradeRequest reports whether r looks like a WebSocket upgrade
// attempt at all, before full Validate runs — h1 GET+Upgrade/Connection,
// or h2 CONNECT with :protocol=websocket (exposed to Go's net/http as
// r.Proto == "HTTP/2.0" && r.Method == http.MethodConnect with the
// protocol carried in r.Header's synthetic extended-CONNECT field,
// following the same net/http surface gorilla/websocket's h2 support
// uses).
func IsUpgradeRequest(r *http.Request) bool {
	if isHTTP2(r) {
		return r.Method == http.MethodConnect && strings.EqualFold(extendedConnectProtocol(r), "websocket")
	}
	return r.Method == http.MethodGet &&
		headerContainsToken(r.Header, "Upgrade", "websocket") &&
		headerContainsToken(r.Header, "Connection", "upgrade")
}

func isHTTP2(r *http.Request) bool {
	return r.ProtoMajor == 2
}

// extendedConnectProtocol returns the RFC 8441 :protocol pseudo-header
// value. net/http surfaces it via the synthetic ":protocol" request
// header once net/http.Server is configured to allow extended CONNECT.
func extendedConnectProtocol(r *http.Request) string {
	return r.Header.Get(":protocol")
}

func headerContainsToken(h http.Header, name, token string) bool {
	for _, v := range h.Values(name) {
		for _, part := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(part), token) {
				return true
			}
		}
	}
	return false
}

// Validate checks r against the h1/h2 matcher rules and returns the
// extracted ClientRequestData, or a *ValidationError naming the first
// rule that failed.
func Validate(r *http.Request) (*ClientRequestData, error) {
	if r.ProtoMajor != 1 && r.ProtoMajor != 2 {
		return nil, &ValidationError{FailUnexpectedHTTPVersion}
	}

	if isHTTP2(r) {
		if r.Method != http.MethodConnect {
			return nil, &ValidationError{FailUnexpectedHTTPMethod}
		}
		if !strings.EqualFold(extendedConnectProtocol(r), "websocket") {
			return nil, &ValidationError{FailUnexpectedPseudoProtocolHeader}
		}
		data := &ClientRequestData{
			Protocols:  splitCSVHeader(r.Header.Get("Sec-WebSocket-Protocol")),
			Extensions: splitCSVHeader(r.Header.Get("Sec-WebSocket-Extensions")),
		}
		return data, nil
	}

	if r.Method != http.MethodGet {
		return nil, &ValidationError{FailUnexpectedHTTPMethod}
	}
	if !headerContainsToken(r.Header, "Upgrade", "websocket") {
		return nil, &ValidationError{FailMissingUpgradeWebSocketHeader}
	}
	if !headerContainsToken(r.Header, "Connection", "upgrade") {
		return nil, &ValidationError{FailMissingConnectionUpgradeHeader}
	}
	if r.Header.Get("Sec-WebSocket-Version") != "13" {
		return nil, &ValidationError{FailInvalidSecWebSocketVersionHeader}
	}
	key := r.Header.Get("Sec-WebSocket-Key")
	if !validSecWebSocketKey(key) {
		return nil, &ValidationError{FailInvalidSecWebSocketKeyHeader}
	}

	return &ClientRequestData{
		AcceptHeader: key,
		Protocols:    splitCSVHeader(r.Header.Get("Sec-WebSocket-Protocol")),
		Extensions:   splitCSVHeader(r.Header.Get("Sec-WebSocket-Extensions")),
	}, nil
}

// validSecWebSocketKey requires a present, base64-decodable 16-byte
// nonce per RFC 6455 §4.2.1.
func validSecWebSocketKey(key string) bool {
	if key == "" {
		return false
	}
	decoded, err := decodeBase64Strict(key)
	return err == nil && len(decoded) == 16
}

func splitCSVHeader(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
