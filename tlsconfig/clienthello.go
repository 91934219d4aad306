package tlsconfig

import (
	"crypto/tls"
	"encoding/binary"
)

// TLS extension ids this package understands when decoding a declarative
// ClientConfig (IANA TLS ExtensionType registry).
const (
	extServerName            uint16 = 0
	extStatusRequest         uint16 = 5
	extSupportedGroups       uint16 = 10
	extSignatureAlgorithms   uint16 = 13
	extALPN                  uint16 = 16
	extSignedCertTimestamp   uint16 = 18
	extRecordSizeLimit       uint16 = 28
	extSupportedVersions     uint16 = 43
	extDelegatedCredentials  uint16 = 34
	extEncryptedClientHello  uint16 = 0xfe0d
)

// IsGREASE reports whether id is a GREASE value per RFC 8701: any 16-bit
// value matching the mask 0x0f0f == 0x0a0a. GREASE entries must never be
// forwarded to the engine as real configuration, only used to flip the
// builder's GREASE toggle.
func IsGREASE(id uint16) bool { return id&0x0f0f == 0x0a0a }

// ClientHelloExtension is one ordered entry of a declarative ClientHello
// extension list, as produced by a fingerprint capture or a profile
// author.
type ClientHelloExtension struct {
	ID   uint16
	Data []byte
}

// DecodeClientConfig walks an ordered ClientHelloExtension list and
// returns a Builder with the corresponding slots populated, per the
// component design's extension-decoding table. GREASE entries flip the
// GREASE toggle but are not themselves forwarded. Unknown data within a
// known toggle-only extension (status-request, signed-cert-timestamp)
// still flips the toggle.
func DecodeClientConfig(exts []ClientHelloExtension, base ...*Builder) *Builder {
	b := NewBuilder(base...)

	order := make([]uint16, 0, len(exts))

	for _, e := range exts {
		if IsGREASE(e.ID) {
			b.SetGREASEEnabled(true)
			continue
		}
		order = append(order, e.ID)

		switch e.ID {
		case extServerName:
			if name, ok := parseSNI(e.Data); ok {
				b.SetServerName(name)
			}
		case extStatusRequest:
			b.SetOCSPStapling(true)
		case extSignedCertTimestamp:
			b.SetSCTEnabled(true)
		case extSupportedGroups:
			b.SetCurves(parseCurveList(e.Data))
		case extSignatureAlgorithms:
			b.SetSignatureSchemes(parseUint16List(e.Data))
		case extALPN:
			if wire, ok := parseALPNExtension(e.Data); ok {
				b.SetALPNWire(wire)
			}
		case extSupportedVersions:
			versions := parseSupportedVersions(e.Data)
			if len(versions) > 0 {
				min, max := versions[0], versions[0]
				for _, v := range versions {
					if v < min {
						min = v
					}
					if v > max {
						max = v
					}
				}
				b.SetMinVersion(min)
				b.SetMaxVersion(max)
			}
		case extRecordSizeLimit:
			if len(e.Data) == 2 {
				b.SetRecordSizeLimit(binary.BigEndian.Uint16(e.Data))
			}
		case extEncryptedClientHello:
			b.SetECHEnabled(true)
		case extDelegatedCredentials:
			b.SetDelegatedCredentialSchemes(parseUint16List(e.Data))
		}
	}

	b.SetExtensionOrder(order)
	return b
}

func parseSNI(data []byte) (string, bool) {
	// ServerNameList: u16 list-length, then [type:u8][u16 len][name]...
	if len(data) < 2 {
		return "", false
	}
	listLen := int(binary.BigEndian.Uint16(data))
	rest := data[2:]
	if listLen > len(rest) {
		return "", false
	}
	rest = rest[:listLen]
	for len(rest) >= 3 {
		typ := rest[0]
		l := int(binary.BigEndian.Uint16(rest[1:3]))
		rest = rest[3:]
		if l > len(rest) {
			return "", false
		}
		name := string(rest[:l])
		rest = rest[l:]
		if typ == 0 { // host_name
			return name, true
		}
	}
	return "", false
}

func parseCurveList(data []byte) []tls.CurveID {
	ids := parseUint16List(data)
	out := make([]tls.CurveID, len(ids))
	for i, id := range ids {
		out[i] = tls.CurveID(id)
	}
	return out
}

// parseSupportedVersions parses the supported_versions ClientHello
// extension body, which uses a one-byte list length (unlike most other
// TLS extensions, which use two), per RFC 8446 §4.2.1.
func parseSupportedVersions(data []byte) []uint16 {
	if len(data) < 1 {
		return nil
	}
	n := int(data[0])
	rest := data[1:]
	if n > len(rest) {
		n = len(rest)
	}
	rest = rest[:n]
	out := make([]uint16, 0, len(rest)/2)
	for len(rest) >= 2 {
		out = append(out, binary.BigEndian.Uint16(rest[:2]))
		rest = rest[2:]
	}
	return out
}

func parseUint16List(data []byte) []uint16 {
	if len(data) < 2 {
		return nil
	}
	n := int(binary.BigEndian.Uint16(data))
	rest := data[2:]
	if n > len(rest) {
		n = len(rest)
	}
	rest = rest[:n]
	out := make([]uint16, 0, len(rest)/2)
	for len(rest) >= 2 {
		out = append(out, binary.BigEndian.Uint16(rest[:2]))
		rest = rest[2:]
	}
	return out
}

// parseALPNExtension extracts the wire-format protocol list from an ALPN
// extension body: a u16 list-length followed by <len:u8><bytes> segments
// — already in the exact shape EncodeALPN/DecodeALPN operate on.
func parseALPNExtension(data []byte) ([]byte, bool) {
	if len(data) < 2 {
		return nil, false
	}
	listLen := int(binary.BigEndian.Uint16(data))
	rest := data[2:]
	if listLen > len(rest) {
		return nil, false
	}
	return rest[:listLen], true
}
