//go:build windows

package tlsconfig

import (
	"crypto/x509"
	"sync"
)

// windowsRootCache lazily loads and caches the current user's ROOT
// certificate store for the lifetime of the process, since re-reading
// the Windows cert store on every handshake is measurably slow.
var (
	windowsRootOnce sync.Once
	windowsRootPool *x509.CertPool
	windowsRootErr  error
)

func platformRootCAs() (*x509.CertPool, error) {
	windowsRootOnce.Do(func() {
		windowsRootPool, windowsRootErr = x509.SystemCertPool()
	})
	return windowsRootPool, windowsRootErr
}
