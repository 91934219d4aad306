package tlsconfig

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"

	"golang.org/x/crypto/ocsp"
)

// ParseOCSPStaple parses the OCSP response a server stapled onto its
// handshake (tls.ConnectionState.OCSPResponse) against the peer's leaf
// and issuer certificates, grounded on the same golang.org/x/crypto/ocsp
// parsing caddytls/crypto.go uses for its own certificate maintenance
// pipeline.
func ParseOCSPStaple(raw []byte, leaf, issuer *x509.Certificate) (*ocsp.Response, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("tlsconfig: empty OCSP staple")
	}
	resp, err := ocsp.ParseResponseForCert(raw, leaf, issuer)
	if err != nil {
		return nil, fmt.Errorf("tlsconfig: parsing OCSP staple: %w", err)
	}
	return resp, nil
}

// VerifyStapledOCSP builds a tls.Config.VerifyConnection callback that
// rejects a handshake when OCSP stapling was requested via
// Builder.SetOCSPStapling(true) but the peer either didn't staple a
// response or stapled one that isn't Good.
func VerifyStapledOCSP() func(tls.ConnectionState) error {
	return func(cs tls.ConnectionState) error {
		if len(cs.OCSPResponse) == 0 {
			return fmt.Errorf("tlsconfig: no OCSP staple presented")
		}
		if len(cs.PeerCertificates) == 0 {
			return fmt.Errorf("tlsconfig: no peer certificate to validate OCSP staple against")
		}
		leaf := cs.PeerCertificates[0]
		issuer := leaf
		if len(cs.PeerCertificates) > 1 {
			issuer = cs.PeerCertificates[1]
		}
		resp, err := ParseOCSPStaple(cs.OCSPResponse, leaf, issuer)
		if err != nil {
			return err
		}
		if resp.Status != ocsp.Good {
			return fmt.Errorf("tlsconfig: OCSP staple status is not good: %d", resp.Status)
		}
		return nil
	}
}
