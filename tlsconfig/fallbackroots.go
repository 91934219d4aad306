package tlsconfig

// For running in minimal environments (distroless images, scratch
// containers) this eases headaches establishing TLS connections where
// the OS provides no system root pool: golang.org/x/crypto/x509roots/fallback
// calls x509.SetFallbackRoots on import, so crypto/x509 falls back to an
// embedded root set instead of failing closed. Importing it here (rather
// than only in a cmd/ binary) means any consumer of this package gets
// the same safety net certstore_other.go's platformRootCAs already
// leaves as nil on non-Windows platforms.
import (
	_ "golang.org/x/crypto/x509roots/fallback"
)
