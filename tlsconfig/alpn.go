package tlsconfig

import "fmt"

// EncodeALPN renders protocols as ALPN wire bytes: a sequence of
// <len:u8><bytes> segments. Protocols of 256 bytes or more are rejected,
// matching the external-interfaces contract in spec.md §6.
func EncodeALPN(protocols ...string) []byte {
	wire, err := TryEncodeALPN(protocols...)
	if err != nil {
		panic(err)
	}
	return wire
}

// TryEncodeALPN is the fallible form of EncodeALPN.
func TryEncodeALPN(protocols ...string) ([]byte, error) {
	out := make([]byte, 0, len(protocols)*8)
	for _, p := range protocols {
		if len(p) >= 256 {
			return nil, fmt.Errorf("tlsconfig: ALPN protocol %q is %d bytes, must be < 256", p, len(p))
		}
		out = append(out, byte(len(p)))
		out = append(out, p...)
	}
	return out, nil
}

// DecodeALPN parses ALPN wire bytes back into a protocol list.
func DecodeALPN(wire []byte) ([]string, error) {
	var out []string
	for len(wire) > 0 {
		n := int(wire[0])
		wire = wire[1:]
		if n > len(wire) {
			return nil, fmt.Errorf("tlsconfig: truncated ALPN segment")
		}
		out = append(out, string(wire[:n]))
		wire = wire[n:]
	}
	return out, nil
}
