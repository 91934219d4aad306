//go:build !windows

package tlsconfig

import "crypto/x509"

// platformRootCAs returns nil on non-Windows platforms, leaving
// cfg.RootCAs unset so crypto/tls falls back to its own default engine
// pool (OpenSSL-style system store resolution).
func platformRootCAs() (*x509.CertPool, error) {
	return nil, nil
}
