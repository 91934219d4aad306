package wsaccept

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAcceptH1Scenario(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Connection", "upgrade")
	r.Header.Set("Upgrade", "websocket")
	r.Header.Set("Sec-WebSocket-Version", "13")
	r.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")

	result, err := Accept(r, &Acceptor{})
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, result.StatusCode)
	require.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", result.Header.Get("Sec-WebSocket-Accept"))
	require.Equal(t, "websocket", result.Header.Get("Upgrade"))
}

func TestAcceptH2UsesStatus200(t *testing.T) {
	r := httptest.NewRequest(http.MethodConnect, "/chat", nil)
	r.ProtoMajor = 2
	r.Header.Set(":protocol", "websocket")

	result, err := Accept(r, &Acceptor{})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, result.StatusCode)
	require.Empty(t, result.Header.Get("Sec-WebSocket-Accept"))
}

func TestAcceptNegotiatesSubProtocol(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Connection", "upgrade")
	r.Header.Set("Upgrade", "websocket")
	r.Header.Set("Sec-WebSocket-Version", "13")
	r.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	r.Header.Set("Sec-WebSocket-Protocol", "superchat, chat")

	result, err := Accept(r, &Acceptor{Protocols: []string{"chat"}})
	require.NoError(t, err)
	require.Equal(t, "chat", result.Protocol)
	require.Equal(t, "chat", result.Header.Get("Sec-WebSocket-Protocol"))
}

func TestAcceptNegotiatesDeflateExtension(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Connection", "upgrade")
	r.Header.Set("Upgrade", "websocket")
	r.Header.Set("Sec-WebSocket-Version", "13")
	r.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	r.Header.Set("Sec-WebSocket-Extensions", "permessage-deflate; client_max_window_bits")

	result, err := Accept(r, &Acceptor{Deflate: &DeflatePolicy{MaxWindowBits: 12}})
	require.NoError(t, err)
	require.NotNil(t, result.Deflate)
	require.Equal(t, 12, result.Deflate.ServerMaxWindowBits)
	require.Contains(t, result.Header.Get("Sec-WebSocket-Extensions"), "permessage-deflate")
}

func TestAcceptRejectsInvalidHandshake(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	_, err := Accept(r, &Acceptor{})
	require.Error(t, err)
}
