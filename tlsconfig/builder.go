// Copyright 2015 Matthew Holt and The Caddy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tlsconfig compiles a declarative, layered ClientConfig into a
// concrete crypto/tls.Config ready for a handshake, the way caddytls
// compiles a declarative connection policy into a *tls.Config.
package tlsconfig

import (
	"crypto/tls"
	"crypto/x509"
)

// ServerVerifyMode selects how the client validates the server's chain.
type ServerVerifyMode int

const (
	// ServerVerifyAuto uses the engine's default verification.
	ServerVerifyAuto ServerVerifyMode = iota
	// ServerVerifyDisable accepts any chain (Compile sets InsecureSkipVerify).
	ServerVerifyDisable
)

// CertCompressionAlgorithm names a certificate-compression algorithm
// (RFC 8879). All three are treated uniformly when the compression
// feature is compiled in and degrade to a logged diagnostic otherwise,
// per the open question in spec.md §9.
type CertCompressionAlgorithm int

const (
	CertCompressionZlib CertCompressionAlgorithm = iota
	CertCompressionBrotli
	CertCompressionZstd
)

// ClientAuthKind selects how client-certificate auth material was
// supplied.
type ClientAuthKind int

const (
	ClientAuthNone ClientAuthKind = iota
	ClientAuthSelfSigned
	ClientAuthSingle
)

// ClientAuth carries client certificate/key material for mTLS.
type ClientAuth struct {
	Kind ClientAuthKind
	// Chain holds the leaf certificate first, intermediates after, DER
	// encoded. Required for ClientAuthSingle; ignored (generated) for
	// ClientAuthSelfSigned.
	Chain [][]byte
	// PrivateKey is the leaf's private key (crypto.Signer-compatible
	// concrete type, e.g. *rsa.PrivateKey or *ecdsa.PrivateKey).
	PrivateKey any
}

// Builder holds nullable configuration slots that compose via a chain of
// base builders. Resolving a slot scans the builder itself, then its base
// chain from last to first, returning the first non-nil value found — the
// layering primitive described in the component design that lets
// higher-level profiles (an "HTTP/2 profile" layered under a
// "user-agent emulation profile") stack contributions without mutating
// each other. The compiled Config is immutable; the Builder may be shared
// across handshakes.
type Builder struct {
	base []*Builder

	serverVerify     *ServerVerifyMode
	keyLogIntent     *string // file path; "" means "use SSLKEYLOGFILE env"
	cipherSuites     []uint16
	certStore        *CertStore
	storeServerChain *bool
	alpnWire         []byte
	minVersion       *uint16
	maxVersion       *uint16
	recordSizeLimit  *uint16
	echEnabled       *bool
	greaseEnabled    *bool
	ocspStapling     *bool
	sctEnabled       *bool
	extensionOrder   []uint16
	curves           []tls.CurveID
	sigSchemes       []uint16
	clientAuth       *ClientAuth
	certCompression  []CertCompressionAlgorithm
	delegatedCreds   []uint16
	serverName       *string
}

// CertStore abstracts a certificate pool source. On Windows the zero
// value falls back to a lazily-populated, process-wide cache of the
// current user's ROOT store (see certstore_windows.go); elsewhere it
// falls back to the engine default.
type CertStore struct {
	Pool *PoolProvider
}

// PoolProvider is the minimal capability tlsconfig needs from a
// *x509.CertPool source, modeled as an interface so callers can plug in
// their own lazily-populated store.
type PoolProvider interface {
	CertPool() (*x509.CertPool, error)
}

// NewBuilder returns an empty builder with no base layers.
func NewBuilder(base ...*Builder) *Builder {
	return &Builder{base: base}
}

// resolve scans b then b.base from last to first, returning the first
// non-nil pointer produced by get.
func resolve[T any](b *Builder, get func(*Builder) *T) *T {
	if v := get(b); v != nil {
		return v
	}
	for i := len(b.base) - 1; i >= 0; i-- {
		if v := resolveThrough(b.base[i], get); v != nil {
			return v
		}
	}
	return nil
}

// resolveThrough recurses into a base builder's own base chain.
func resolveThrough[T any](b *Builder, get func(*Builder) *T) *T {
	if v := get(b); v != nil {
		return v
	}
	for i := len(b.base) - 1; i >= 0; i-- {
		if v := resolveThrough(b.base[i], get); v != nil {
			return v
		}
	}
	return nil
}

func (b *Builder) ServerVerify() *ServerVerifyMode {
	return resolve(b, func(b *Builder) *ServerVerifyMode { return b.serverVerify })
}

// SetServerVerify sets the server verification mode, returning b for
// chaining.
func (b *Builder) SetServerVerify(m ServerVerifyMode) *Builder { b.serverVerify = &m; return b }

func (b *Builder) KeyLogIntent() *string {
	return resolve(b, func(b *Builder) *string { return b.keyLogIntent })
}
func (b *Builder) SetKeyLogIntent(path string) *Builder { b.keyLogIntent = &path; return b }

func (b *Builder) CipherSuites() []uint16 {
	return resolveSlice(b, func(b *Builder) []uint16 { return b.cipherSuites })
}
func (b *Builder) SetCipherSuites(cs []uint16) *Builder { b.cipherSuites = cs; return b }

func (b *Builder) CertStore() *CertStore {
	return resolve(b, func(b *Builder) *CertStore { return b.certStore })
}
func (b *Builder) SetCertStore(s *CertStore) *Builder { b.certStore = s; return b }

func (b *Builder) StoreServerChain() *bool {
	return resolve(b, func(b *Builder) *bool { return b.storeServerChain })
}
func (b *Builder) SetStoreServerChain(v bool) *Builder { b.storeServerChain = &v; return b }

func (b *Builder) ALPNWire() []byte {
	return resolveSlice(b, func(b *Builder) []byte { return b.alpnWire })
}
func (b *Builder) SetALPNWire(wire []byte) *Builder { b.alpnWire = wire; return b }

func (b *Builder) MinVersion() *uint16 {
	return resolve(b, func(b *Builder) *uint16 { return b.minVersion })
}
func (b *Builder) SetMinVersion(v uint16) *Builder { b.minVersion = &v; return b }

func (b *Builder) MaxVersion() *uint16 {
	return resolve(b, func(b *Builder) *uint16 { return b.maxVersion })
}
func (b *Builder) SetMaxVersion(v uint16) *Builder { b.maxVersion = &v; return b }

func (b *Builder) RecordSizeLimit() *uint16 {
	return resolve(b, func(b *Builder) *uint16 { return b.recordSizeLimit })
}
func (b *Builder) SetRecordSizeLimit(v uint16) *Builder { b.recordSizeLimit = &v; return b }

func (b *Builder) ECHEnabled() *bool {
	return resolve(b, func(b *Builder) *bool { return b.echEnabled })
}
func (b *Builder) SetECHEnabled(v bool) *Builder { b.echEnabled = &v; return b }

func (b *Builder) GREASEEnabled() *bool {
	return resolve(b, func(b *Builder) *bool { return b.greaseEnabled })
}
func (b *Builder) SetGREASEEnabled(v bool) *Builder { b.greaseEnabled = &v; return b }

func (b *Builder) OCSPStapling() *bool {
	return resolve(b, func(b *Builder) *bool { return b.ocspStapling })
}
func (b *Builder) SetOCSPStapling(v bool) *Builder { b.ocspStapling = &v; return b }

func (b *Builder) SCTEnabled() *bool {
	return resolve(b, func(b *Builder) *bool { return b.sctEnabled })
}
func (b *Builder) SetSCTEnabled(v bool) *Builder { b.sctEnabled = &v; return b }

func (b *Builder) ExtensionOrder() []uint16 {
	return resolveSlice(b, func(b *Builder) []uint16 { return b.extensionOrder })
}
func (b *Builder) SetExtensionOrder(order []uint16) *Builder { b.extensionOrder = order; return b }

func (b *Builder) Curves() []tls.CurveID {
	return resolveSlice(b, func(b *Builder) []tls.CurveID { return b.curves })
}
func (b *Builder) SetCurves(c []tls.CurveID) *Builder { b.curves = c; return b }

func (b *Builder) SignatureSchemes() []uint16 {
	return resolveSlice(b, func(b *Builder) []uint16 { return b.sigSchemes })
}
func (b *Builder) SetSignatureSchemes(s []uint16) *Builder { b.sigSchemes = s; return b }

func (b *Builder) ClientAuth() *ClientAuth {
	return resolve(b, func(b *Builder) *ClientAuth { return b.clientAuth })
}
func (b *Builder) SetClientAuth(a *ClientAuth) *Builder { b.clientAuth = a; return b }

func (b *Builder) CertCompression() []CertCompressionAlgorithm {
	return resolveSlice(b, func(b *Builder) []CertCompressionAlgorithm { return b.certCompression })
}
func (b *Builder) SetCertCompression(algs []CertCompressionAlgorithm) *Builder {
	b.certCompression = algs
	return b
}

func (b *Builder) DelegatedCredentialSchemes() []uint16 {
	return resolveSlice(b, func(b *Builder) []uint16 { return b.delegatedCreds })
}
func (b *Builder) SetDelegatedCredentialSchemes(s []uint16) *Builder {
	b.delegatedCreds = s
	return b
}

func (b *Builder) ServerName() *string {
	return resolve(b, func(b *Builder) *string { return b.serverName })
}
func (b *Builder) SetServerName(name string) *Builder { b.serverName = &name; return b }

// resolveSlice is resolve's counterpart for slice-typed (reference)
// fields, which compare against nil rather than a pointer.
func resolveSlice[T any](b *Builder, get func(*Builder) []T) []T {
	if v := get(b); v != nil {
		return v
	}
	for i := len(b.base) - 1; i >= 0; i-- {
		if v := resolveSliceThrough(b.base[i], get); v != nil {
			return v
		}
	}
	return nil
}

func resolveSliceThrough[T any](b *Builder, get func(*Builder) []T) []T {
	if v := get(b); v != nil {
		return v
	}
	for i := len(b.base) - 1; i >= 0; i-- {
		if v := resolveSliceThrough(b.base[i], get); v != nil {
			return v
		}
	}
	return nil
}

// NewHTTPAuto returns a builder pre-populated with ALPN = [h2, http/1.1].
func NewHTTPAuto(base ...*Builder) *Builder {
	b := NewBuilder(base...)
	return b.SetALPNWire(EncodeALPN("h2", "http/1.1"))
}

// NewHTTP1 returns a builder pre-populated with ALPN = [http/1.1].
func NewHTTP1(base ...*Builder) *Builder {
	return NewBuilder(base...).SetALPNWire(EncodeALPN("http/1.1"))
}

// NewHTTP2 returns a builder pre-populated with ALPN = [h2].
func NewHTTP2(base ...*Builder) *Builder {
	return NewBuilder(base...).SetALPNWire(EncodeALPN("h2"))
}
