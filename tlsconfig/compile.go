package tlsconfig

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/caddyserver/wireframe/internal/wflog"
)

// ErrEmptyClientChain is returned by Compile when ClientAuth is provided
// but its certificate chain is empty.
var ErrEmptyClientChain = errors.New("tlsconfig: client auth certificate chain is empty")

// Compile walks the compilation steps described in the component design,
// in order, and returns a handshake-ready *tls.Config. Each step writes
// onto the config built by the steps before it.
func Compile(b *Builder, logger *zap.Logger) (*tls.Config, error) {
	logger = wflog.OrNop(logger)

	// step 1: empty handshake config
	cfg := &tls.Config{}

	// step 2: certificate store
	if store := b.CertStore(); store != nil && store.Pool != nil {
		pool, err := store.Pool.CertPool()
		if err != nil {
			return nil, fmt.Errorf("tlsconfig: loading cert store: %w", err)
		}
		cfg.RootCAs = pool
	} else if pool, err := platformRootCAs(); err == nil && pool != nil {
		cfg.RootCAs = pool
	}

	// step 3: key-log callback
	if path := resolveKeyLogPath(b); path != "" {
		w, err := openKeyLogWriter(path)
		if err != nil {
			logger.Warn("could not open SSLKEYLOGFILE destination", zap.String("path", path), zap.Error(err))
		} else {
			cfg.KeyLogWriter = w
		}
	}

	// step 4: extension order, ciphers, ALPN, curves, versions, sig
	// schemes, GREASE/OCSP/SCT toggles. crypto/tls doesn't expose a raw
	// cipher list or an extension-order knob; those are recorded for
	// callers that drive their own ClientHello (e.g. a uTLS-style
	// engine) via CompiledExtras, following the framework's own
	// separation between "engine handshake config" and fingerprint
	// metadata. The builder's signature schemes are not applied: neither
	// the *tls.Config nor CompiledExtras carries them.
	if alpn := b.ALPNWire(); alpn != nil {
		protos, err := DecodeALPN(alpn)
		if err != nil {
			return nil, fmt.Errorf("tlsconfig: decoding ALPN: %w", err)
		}
		cfg.NextProtos = protos
	}
	if curves := b.Curves(); curves != nil {
		cfg.CurvePreferences = curves
	}
	if min := b.MinVersion(); min != nil {
		cfg.MinVersion = *min
	}
	if max := b.MaxVersion(); max != nil {
		cfg.MaxVersion = *max
	}

	// step 5: certificate compression
	for _, alg := range b.CertCompression() {
		if err := installCertCompression(cfg, alg, logger); err != nil {
			logger.Warn("certificate compression algorithm unavailable", zap.Any("algorithm", alg), zap.Error(err))
		}
	}

	// step 6: server verification policy
	switch mode := b.ServerVerify(); {
	case mode != nil && *mode == ServerVerifyDisable:
		cfg.InsecureSkipVerify = true
	}
	if v := b.OCSPStapling(); v != nil && *v {
		cfg.VerifyConnection = VerifyStapledOCSP()
	}

	// step 7: client auth
	if auth := b.ClientAuth(); auth != nil {
		cert, err := buildClientCertificate(auth)
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	// step 8: finalize — record size limit, delegated creds, ECH
	// grease are fingerprint/extension metadata that crypto/tls has no
	// direct knob for either; surfaced via CompiledExtras for callers
	// driving a lower-level engine.
	if sn := b.ServerName(); sn != nil {
		cfg.ServerName = *sn
	}

	return cfg, nil
}

// CompiledExtras carries the fields a stdlib *tls.Config cannot express
// but which a lower-level handshake engine (raw ClientHello writer, HPACK
// fingerprinting layer) needs: extension order, raw cipher suite ids,
// record size limit, delegated credential schemes, ECH/GREASE toggles.
type CompiledExtras struct {
	ExtensionOrder    []uint16
	CipherSuites      []uint16
	RecordSizeLimit   *uint16
	DelegatedCreds    []uint16
	ECHEnabled        bool
	ECHGREASE         bool
	GREASEEnabled     bool
	OCSPStapling      bool
	SignedCertTimestamps bool
}

// CompileExtras gathers the fields Compile cannot put on a *tls.Config.
func CompileExtras(b *Builder) CompiledExtras {
	e := CompiledExtras{
		ExtensionOrder:  b.ExtensionOrder(),
		CipherSuites:    b.CipherSuites(),
		RecordSizeLimit: b.RecordSizeLimit(),
		DelegatedCreds:  b.DelegatedCredentialSchemes(),
	}
	if v := b.ECHEnabled(); v != nil {
		e.ECHEnabled = *v
	}
	if v := b.GREASEEnabled(); v != nil {
		e.GREASEEnabled = *v
		e.ECHGREASE = *v && e.ECHEnabled
	}
	if v := b.OCSPStapling(); v != nil {
		e.OCSPStapling = *v
	}
	if v := b.SCTEnabled(); v != nil {
		e.SignedCertTimestamps = *v
	}
	return e
}

func resolveKeyLogPath(b *Builder) string {
	if p := b.KeyLogIntent(); p != nil && *p != "" {
		return *p
	}
	return os.Getenv("SSLKEYLOGFILE")
}

var (
	keyLogMu      sync.Mutex
	keyLogWriters = map[string]*os.File{}
)

// openKeyLogWriter deduplicates key-log file handles per path across the
// process, per the design note on process-wide key-log handles.
func openKeyLogWriter(path string) (*os.File, error) {
	keyLogMu.Lock()
	defer keyLogMu.Unlock()
	if f, ok := keyLogWriters[path]; ok {
		return f, nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}
	keyLogWriters[path] = f
	return f, nil
}

func buildClientCertificate(auth *ClientAuth) (tls.Certificate, error) {
	switch auth.Kind {
	case ClientAuthSelfSigned:
		return newSelfSignedCertificate()
	case ClientAuthSingle:
		if len(auth.Chain) == 0 {
			return tls.Certificate{}, ErrEmptyClientChain
		}
		cert := tls.Certificate{PrivateKey: auth.PrivateKey}
		for _, der := range auth.Chain {
			cert.Certificate = append(cert.Certificate, der)
		}
		leaf, err := x509.ParseCertificate(auth.Chain[0])
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("tlsconfig: parsing client leaf certificate: %w", err)
		}
		cert.Leaf = leaf
		return cert, nil
	default:
		return tls.Certificate{}, fmt.Errorf("tlsconfig: unknown client auth kind %d", auth.Kind)
	}
}
