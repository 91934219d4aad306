package status

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	grpccodes "google.golang.org/grpc/codes"
)

// needsPercentEscape reports whether b is in the fixed set that is
// percent-encoded in grpc-message: control characters plus space plus the literal set
// " # % < > ` ? { }". Everything else, including UTF-8 continuation
// bytes, passes through unescaped, matching the wire format's intent of
// staying ASCII-header friendly without mangling non-ASCII message text.
func needsPercentEscape(b byte) bool {
	if b <= 0x20 || b == 0x7f {
		return true
	}
	switch b {
	case '"', '#', '%', '<', '>', '`', '?', '{', '}':
		return true
	}
	return false
}

// encodeMessage percent-encodes msg for the grpc-message header.
func encodeMessage(msg string) string {
	var b strings.Builder
	for i := 0; i < len(msg); i++ {
		c := msg[i]
		if needsPercentEscape(c) {
			fmt.Fprintf(&b, "%%%02X", c)
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// decodeMessage reverses encodeMessage. Malformed percent sequences are
// passed through literally rather than rejected, and the result is
// validated as UTF-8 with a lossy fallback: invalid UTF-8 yields a
// diagnostic message rather than an error, since a message header is
// never load-bearing enough to fail the whole decode over.
func decodeMessage(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] == '%' && i+2 < len(raw) {
			hi := hexVal(raw[i+1])
			lo := hexVal(raw[i+2])
			if hi >= 0 && lo >= 0 {
				b.WriteByte(byte(hi<<4 | lo))
				i += 2
				continue
			}
		}
		b.WriteByte(raw[i])
	}
	decoded := b.String()
	if !utf8.ValidString(decoded) {
		return "<invalid utf-8 in grpc-message: " + strconv.Quote(raw) + ">"
	}
	return decoded
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}

// encodeStatusCode renders the ASCII decimal grpc-status value.
func encodeStatusCode(c Code) string {
	return strconv.FormatInt(int64(c), 10)
}

// decodeStatusCode parses grpc-status by length as specified: a
// single-digit value covers 0..9, a two-digit value covers 10..16,
// anything else (wrong length, non-digits, out of range) is Unknown.
func decodeStatusCode(raw string) Code {
	switch len(raw) {
	case 1:
		if raw[0] < '0' || raw[0] > '9' {
			return Unknown
		}
		return Code(raw[0] - '0')
	case 2:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 10 || n > int(_maxKnownCode) {
			return Unknown
		}
		return Code(n)
	default:
		return Unknown
	}
}

// encodeDetails base64-encodes details using the standard alphabet
// without padding, per the wire format.
func encodeDetails(details []byte) string {
	if len(details) == 0 {
		return ""
	}
	return base64.RawStdEncoding.EncodeToString(details)
}

// decodeDetails is lenient on parse: it accepts both padded and
// unpadded standard-alphabet base64.
func decodeDetails(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(raw); err == nil {
		return b, nil
	}
	return base64.StdEncoding.DecodeString(raw)
}

// IntoHeaderMap renders s onto an http.Header, emitting grpc-status,
// grpc-message (only if non-empty), grpc-status-details-bin (only if
// non-empty details), followed by sanitised user metadata.
func (s *Status) IntoHeaderMap() http.Header {
	h := http.Header{}
	h.Set(HeaderStatus, encodeStatusCode(s.code))
	if msg := s.Message(); msg != "" {
		h.Set(HeaderMessage, encodeMessage(msg))
	}
	if len(s.details) > 0 {
		h.Set(HeaderDetails, encodeDetails(s.details))
	}
	for k, vs := range s.Metadata {
		if isReservedHeader(k) {
			continue
		}
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	return h
}

// FromHeaderMap reconstructs a Status from a header map carrying
// grpc-status (required), grpc-message and grpc-status-details-bin
// (optional). Everything else becomes Metadata.
func FromHeaderMap(h http.Header) (*Status, error) {
	rawCode := h.Get(HeaderStatus)
	if rawCode == "" {
		return nil, fmt.Errorf("status: missing %s header", HeaderStatus)
	}
	code := decodeStatusCode(rawCode)

	message := decodeMessage(h.Get(HeaderMessage))

	details, err := decodeDetails(h.Get(HeaderDetails))
	if err != nil {
		return nil, fmt.Errorf("status: decoding %s: %w", HeaderDetails, err)
	}

	s := New(code, message)
	s.details = details
	s.Metadata = http.Header{}
	for k, vs := range h {
		if isReservedHeader(k) {
			continue
		}
		for _, v := range vs {
			s.Metadata.Add(k, v)
		}
	}
	return s, nil
}

func isReservedHeader(name string) bool {
	switch http.CanonicalHeaderKey(name) {
	case http.CanonicalHeaderKey(HeaderStatus),
		http.CanonicalHeaderKey(HeaderMessage),
		http.CanonicalHeaderKey(HeaderDetails):
		return true
	default:
		return false
	}
}

// TryIntoHTTP validates that every header s would emit is valid for an
// HTTP header value, returning an Internal status describing the first
// violation if not.
func (s *Status) TryIntoHTTP() (http.Header, *Status) {
	h := s.IntoHeaderMap()
	for k, vs := range h {
		for _, v := range vs {
			if !validHTTPHeaderValue(v) {
				return nil, InternalErr(fmt.Sprintf("invalid header value for %s", k))
			}
		}
	}
	return h, nil
}

func validHTTPHeaderValue(v string) bool {
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c == '\r' || c == '\n' || c == 0 {
			return false
		}
	}
	return true
}

// ToGRPCCode converts to the equivalent grpc-go codes.Code, which is
// numerically identical to Code by construction (see code.go); provided
// so callers embedding grpc-go can interoperate without a lookup table.
func (c Code) ToGRPCCode() grpccodes.Code { return grpccodes.Code(c) }

// FromGRPCCode is the inverse of ToGRPCCode.
func FromGRPCCode(c grpccodes.Code) Code { return FromInt32(int32(c)) }

// FromGRPCStatusError builds a *Status from a grpc-go code and message
// (for example the Code() and Message() of a grpc-go status error), for
// callers that receive errors from a grpc-go client and want to report
// them through this package's model uniformly with HTTP/2 and I/O errors.
func FromGRPCStatusError(code grpccodes.Code, message string) *Status {
	return New(Code(code), message)
}
