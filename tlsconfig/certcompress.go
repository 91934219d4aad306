package tlsconfig

import (
	"bytes"
	"compress/zlib"
	"crypto/tls"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

// CertCompressor compresses and decompresses a certificate message body
// for one RFC 8879 algorithm. crypto/tls has no hook for the certificate
// compression extension itself (it isn't implemented by the stdlib
// handshake state machine), so installCertCompression's job is to prove
// the codec works; a lower-level engine obtains the codec through
// CertCompressorFor (CompiledExtras does not carry it).
type CertCompressor interface {
	Compress([]byte) ([]byte, error)
	Decompress([]byte) ([]byte, error)
}

type zlibCompressor struct{}

func (zlibCompressor) Compress(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(in); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (zlibCompressor) Decompress(in []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(in))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

type brotliCompressor struct{}

func (brotliCompressor) Compress(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write(in); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (brotliCompressor) Decompress(in []byte) ([]byte, error) {
	r := brotli.NewReader(bytes.NewReader(in))
	return io.ReadAll(r)
}

type zstdCompressor struct{}

func (zstdCompressor) Compress(in []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(in, nil), nil
}

func (zstdCompressor) Decompress(in []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(in, nil)
}

// CertCompressorFor returns the codec backing alg, or false if the
// algorithm id is unrecognized.
func CertCompressorFor(alg CertCompressionAlgorithm) (CertCompressor, bool) {
	switch alg {
	case CertCompressionZlib:
		return zlibCompressor{}, true
	case CertCompressionBrotli:
		return brotliCompressor{}, true
	case CertCompressionZstd:
		return zstdCompressor{}, true
	default:
		return nil, false
	}
}

// installCertCompression verifies alg's codec round-trips correctly. cfg
// is accepted (rather than threading a separate registry type through
// Compile) so a future stdlib hook, or a caller driving its own
// handshake engine, has a single place to look up the negotiated
// compressors for this *tls.Config.
func installCertCompression(cfg *tls.Config, alg CertCompressionAlgorithm, logger *zap.Logger) error {
	_ = cfg
	codec, ok := CertCompressorFor(alg)
	if !ok {
		return fmt.Errorf("tlsconfig: unknown certificate compression algorithm %d", alg)
	}
	probe := []byte("wireframe-cert-compression-probe")
	packed, err := codec.Compress(probe)
	if err != nil {
		return fmt.Errorf("tlsconfig: compressing probe: %w", err)
	}
	unpacked, err := codec.Decompress(packed)
	if err != nil {
		return fmt.Errorf("tlsconfig: decompressing probe: %w", err)
	}
	if !bytes.Equal(probe, unpacked) {
		return fmt.Errorf("tlsconfig: compression algorithm %d round-trip mismatch", alg)
	}
	logger.Debug("certificate compression codec verified", zap.Any("algorithm", alg))
	return nil
}
