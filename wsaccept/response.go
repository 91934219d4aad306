package wsaccept

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/caddyserver/wireframe/internal/wflog"
)

// readBufferSize and writeBufferSize size the Upgrader's per-connection
// buffers, matching the 4096-byte defaults the previous hand-rolled
// framing used.
const (
	readBufferSize  = 4096
	writeBufferSize = 4096
)

// HandshakeResult is what Accept returns on a successful negotiation:
// the response headers to write and the negotiated parameters a
// background task needs to spin up the framed connection.
type HandshakeResult struct {
	StatusCode int
	Header     http.Header
	Protocol   string
	Deflate    *DeflateResponse
}

// Accept validates r against acc, negotiates sub-protocol and
// permessage-deflate, and returns the response to write. It does not
// perform the hijack/upgrade itself — callers that need the framed
// connection call Upgrade with the returned HandshakeResult afterward.
func Accept(r *http.Request, acc *Acceptor) (*HandshakeResult, error) {
	data, err := Validate(r)
	if err != nil {
		return nil, err
	}

	protocol, err := acc.NegotiateProtocol(data.Protocols)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Upgrade", "websocket")
	header.Set("Connection", "upgrade")
	if protocol != "" {
		header.Set("Sec-WebSocket-Protocol", protocol)
	}

	var deflateResp *DeflateResponse
	if acc.Deflate != nil {
		for _, seg := range data.Extensions {
			if offer, ok := ParseDeflateOffer(seg); ok {
				resp := NegotiateDeflate(acc.Deflate, offer)
				deflateResp = &resp
				header.Set("Sec-WebSocket-Extensions", EncodeDeflateResponse(resp, offer))
				break
			}
		}
	}

	status := http.StatusSwitchingProtocols
	if isHTTP2(r) {
		status = http.StatusOK
	} else {
		header.Set("Sec-WebSocket-Accept", ComputeAccept(data.AcceptHeader))
	}

	return &HandshakeResult{
		StatusCode: status,
		Header:     header,
		Protocol:   protocol,
		Deflate:    deflateResp,
	}, nil
}

// Upgrade drives gorilla/websocket's Upgrader.Upgrade — the package's
// only exported path to a framed server-role *websocket.Conn, since its
// Conn type carries no public constructor — passing through the
// sub-protocol and extension values Accept already negotiated via
// responseHeader rather than letting the Upgrader renegotiate them.
// Upgrader.Upgrade performs the HTTP/1.1 GET+Upgrade handshake on a
// hijackable connection; an RFC 8441 extended-CONNECT request over
// HTTP/2, which Accept does validate, is not upgraded by it and Upgrade
// returns an error for that request shape.
func Upgrade(w http.ResponseWriter, r *http.Request, result *HandshakeResult, logger *zap.Logger) (*websocket.Conn, error) {
	logger = wflog.OrNop(logger)

	responseHeader := http.Header{}
	if protocol := result.Header.Get("Sec-WebSocket-Protocol"); protocol != "" {
		responseHeader.Set("Sec-WebSocket-Protocol", protocol)
	}
	if extensions := result.Header.Get("Sec-WebSocket-Extensions"); extensions != "" {
		responseHeader.Set("Sec-WebSocket-Extensions", extensions)
	}

	upgrader := &websocket.Upgrader{
		ReadBufferSize:  readBufferSize,
		WriteBufferSize: writeBufferSize,
		// Origin checking is not part of the matcher's validation
		// contract (see match.go); callers wanting it layer it on top.
		CheckOrigin: func(*http.Request) bool { return true },
	}

	conn, err := upgrader.Upgrade(w, r, responseHeader)
	if err != nil {
		return nil, fmt.Errorf("wsaccept: upgrading connection: %w", err)
	}

	if result.Deflate != nil {
		logger.Debug("negotiated permessage-deflate",
			zap.Bool("server_no_context_takeover", result.Deflate.ServerNoContextTakeover),
			zap.Int("server_max_window_bits", result.Deflate.ServerMaxWindowBits),
		)
	}
	return conn, nil
}
