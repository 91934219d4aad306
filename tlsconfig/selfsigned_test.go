package tlsconfig

import (
	"crypto/x509"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewSelfSignedCertificateShape(t *testing.T) {
	cert, err := newSelfSignedCertificate()
	require.NoError(t, err)
	require.NotNil(t, cert.Leaf)
	require.NotNil(t, cert.PrivateKey)

	leaf := cert.Leaf
	require.True(t, leaf.BasicConstraintsValid)
	require.True(t, leaf.IsCA)
	require.Equal(t, x509.SHA256WithRSA, leaf.SignatureAlgorithm)
	require.Equal(t, x509.KeyUsageCertSign|x509.KeyUsageCRLSign, leaf.KeyUsage)

	validity := leaf.NotAfter.Sub(leaf.NotBefore)
	require.InDelta(t, (90*24*time.Hour).Hours(), validity.Hours(), 1)

	require.True(t, leaf.SerialNumber.BitLen() <= 159)
}
