package h2frame

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/http2/hpack"
)

func encodeSimpleRequest(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := hpack.NewEncoder(&buf)
	fields := []hpack.HeaderField{
		{Name: ":method", Value: "GET"},
		{Name: ":scheme", Value: "https"},
		{Name: ":authority", Value: "example.com"},
		{Name: ":path", Value: "/"},
		{Name: "user-agent", Value: "x"},
	}
	for _, f := range fields {
		require.NoError(t, enc.WriteField(f))
	}
	return buf.Bytes()
}

func TestLoadParsesPseudoOrderAndFields(t *testing.T) {
	block := encodeSimpleRequest(t)
	decoder := NewDecoder(4096)

	h, err := Load(1, FlagEndHeaders|FlagEndStream, block, 1<<20, decoder)
	require.NoError(t, err)
	require.Equal(t, uint32(1), h.StreamID)
	require.Equal(t, "GET", *h.HeaderBlock.Pseudo.Method)
	require.Equal(t, "https", *h.HeaderBlock.Pseudo.Scheme)
	require.Equal(t, "example.com", *h.HeaderBlock.Pseudo.Authority)
	require.Equal(t, "/", *h.HeaderBlock.Pseudo.Path)
	require.Equal(t, []string{":method", ":scheme", ":authority", ":path"}, h.HeaderBlock.Pseudo.Order)
	require.Len(t, h.HeaderBlock.Fields, 1)
	require.Equal(t, "user-agent", h.HeaderBlock.Fields[0].Name)
}

func TestLoadRejectsZeroStreamID(t *testing.T) {
	_, err := Load(0, FlagEndHeaders, encodeSimpleRequest(t), 1<<20, NewDecoder(4096))
	require.ErrorIs(t, err, ErrInvalidStreamID)
}

func TestLoadRejectsPriorityTooShort(t *testing.T) {
	_, err := Load(1, FlagPriority, []byte{1, 2, 3}, 1<<20, NewDecoder(4096))
	require.ErrorIs(t, err, ErrMalformedMessage)
}

func TestLoadRejectsSelfDependency(t *testing.T) {
	payload := make([]byte, 5)
	payload[3] = 1 // dependency stream id = 1, same as frame's own stream id
	_, err := Load(1, FlagPriority, payload, 1<<20, NewDecoder(4096))
	require.ErrorIs(t, err, ErrInvalidDependencyID)
}

func TestLoadRejectsTooMuchPadding(t *testing.T) {
	// pad length byte says 10, but there are no more bytes
	_, err := Load(1, FlagPadded, []byte{10}, 1<<20, NewDecoder(4096))
	require.ErrorIs(t, err, ErrTooMuchPadding)
}

func TestConnectionLevelFieldIsMalformed(t *testing.T) {
	var buf bytes.Buffer
	enc := hpack.NewEncoder(&buf)
	require.NoError(t, enc.WriteField(hpack.HeaderField{Name: ":method", Value: "GET"}))
	require.NoError(t, enc.WriteField(hpack.HeaderField{Name: "connection", Value: "keep-alive"}))

	_, err := Load(1, FlagEndHeaders, buf.Bytes(), 1<<20, NewDecoder(4096))
	require.ErrorIs(t, err, ErrMalformedMessage)
}

func TestTeTrailersOnlyAllowed(t *testing.T) {
	var buf bytes.Buffer
	enc := hpack.NewEncoder(&buf)
	require.NoError(t, enc.WriteField(hpack.HeaderField{Name: ":method", Value: "GET"}))
	require.NoError(t, enc.WriteField(hpack.HeaderField{Name: "te", Value: "gzip"}))

	_, err := Load(1, FlagEndHeaders, buf.Bytes(), 1<<20, NewDecoder(4096))
	require.ErrorIs(t, err, ErrMalformedMessage)
}

func TestFieldSizeLatchesOverSizeWithoutOtherErrors(t *testing.T) {
	var buf bytes.Buffer
	enc := hpack.NewEncoder(&buf)
	require.NoError(t, enc.WriteField(hpack.HeaderField{Name: ":method", Value: "GET"}))
	require.NoError(t, enc.WriteField(hpack.HeaderField{Name: "a", Value: "b"}))
	require.NoError(t, enc.WriteField(hpack.HeaderField{Name: "c", Value: "d"}))

	h, err := Load(1, FlagEndHeaders, buf.Bytes(), 34, NewDecoder(4096))
	require.NoError(t, err)
	require.True(t, h.HeaderBlock.IsOverSize)
	// "a: b" costs 1+1+32 = 34, which already reaches the 34-byte limit,
	// so the size latches on it and neither regular field is stored.
	require.Len(t, h.HeaderBlock.Fields, 0)
}

func TestEncodeRequestPseudoOrderThenFields(t *testing.T) {
	method := "GET"
	scheme := "https"
	authority := "example.com"
	path := "/"
	h := &Headers{
		StreamID: 1,
		Flags:    FlagEndHeaders | FlagEndStream,
		HeaderBlock: HeaderBlock{
			Pseudo: Pseudo{
				Method: &method, Scheme: &scheme, Authority: &authority, Path: &path,
				Order: []string{PseudoMethod, PseudoScheme, PseudoAuthority, PseudoPath},
			},
			Fields: []hpack.HeaderField{{Name: "user-agent", Value: "x"}},
		},
	}

	var out bytes.Buffer
	cont, err := Encode(h, &out, 0)
	require.NoError(t, err)
	require.Nil(t, cont)
	require.True(t, out.Len() > 9)

	// re-decode what we just wrote (skip the 9-byte frame head) and
	// check it parses back to the same shape
	raw := out.Bytes()
	length := int(raw[0])<<16 | int(raw[1])<<8 | int(raw[2])
	payload := raw[9 : 9+length]

	h2, err := Load(1, FlagEndHeaders|FlagEndStream, payload, 1<<20, NewDecoder(4096))
	require.NoError(t, err)
	require.Equal(t, "GET", *h2.HeaderBlock.Pseudo.Method)
	require.Equal(t, "https", *h2.HeaderBlock.Pseudo.Scheme)
	require.Len(t, h2.HeaderBlock.Fields, 1)
	require.Equal(t, "user-agent", h2.HeaderBlock.Fields[0].Name)
}

func TestExtendedConnect(t *testing.T) {
	proto := "the-bread-protocol"
	p, err := Request("CONNECT", "https://example.com:8443/test", &proto)
	require.NoError(t, err)
	require.Equal(t, "CONNECT", *p.Method)
	require.Equal(t, "example.com:8443", *p.Authority)
	require.Equal(t, "https", *p.Scheme)
	require.Equal(t, "/test", *p.Path)
	require.Equal(t, "the-bread-protocol", *p.Protocol)
}

func TestConnectWithoutProtocolOmitsSchemeAndPath(t *testing.T) {
	p, err := Request("CONNECT", "example.com:443", nil)
	require.NoError(t, err)
	require.Nil(t, p.Scheme)
	require.Nil(t, p.Path)
	require.Equal(t, "example.com:443", *p.Authority)
}

func TestOptionsEmptyPathBecomesStar(t *testing.T) {
	p, err := Request("OPTIONS", "https://example.com", nil)
	require.NoError(t, err)
	require.Equal(t, "*", *p.Path)
}

func TestPushPromiseRejectsUnsafeMethod(t *testing.T) {
	var buf bytes.Buffer
	enc := hpack.NewEncoder(&buf)
	require.NoError(t, enc.WriteField(hpack.HeaderField{Name: ":method", Value: "POST"}))

	var idAndBlock bytes.Buffer
	writePromisedStreamID(&idAndBlock, 2)
	idAndBlock.Write(buf.Bytes())

	_, err := LoadPushPromise(1, PPFlagEndHeaders, idAndBlock.Bytes(), 1<<20, NewDecoder(4096))
	require.ErrorIs(t, err, ErrUnsafePushMethod)
}
