package status

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
	grpccodes "google.golang.org/grpc/codes"
)

func TestCodeRoundTrip(t *testing.T) {
	for n := int32(0); n <= int32(_maxKnownCode); n++ {
		c := FromInt32(n)
		require.Equal(t, n, c.Int32())
	}
	require.Equal(t, Unknown, FromInt32(999))
	require.Equal(t, Unknown, FromInt32(-1))
	require.Equal(t, int32(2), Unknown.Int32())
}

func TestStatusHeaderRoundTrip(t *testing.T) {
	s := WithDetails(Unavailable, "some message", []byte{0, 2, 3})
	h := s.IntoHeaderMap()

	require.Equal(t, "14", h.Get(HeaderStatus))
	require.Equal(t, "some%20message", h.Get(HeaderMessage))
	require.Equal(t, "AAID", h.Get(HeaderDetails))

	decoded, err := FromHeaderMap(h)
	require.NoError(t, err)
	require.Equal(t, Unavailable, decoded.Code())
	require.Equal(t, "some message", decoded.Message())
	require.Equal(t, []byte{0, 2, 3}, decoded.Details())
}

func TestStatusHeaderRoundTripGeneric(t *testing.T) {
	s := New(FailedPrecondition, "hello world! # % < > ` ? { }")
	h := s.IntoHeaderMap()
	decoded, err := FromHeaderMap(h)
	require.NoError(t, err)
	require.Equal(t, s.Code(), decoded.Code())
	require.Equal(t, s.Message(), decoded.Message())
}

func TestMetadataPreservedMinusReserved(t *testing.T) {
	s := New(OK, "")
	s.Metadata.Set("x-custom", "1")
	s.Metadata.Set(HeaderStatus, "should not leak through metadata path")
	h := s.IntoHeaderMap()
	require.Equal(t, "1", h.Get("x-custom"))
	require.Equal(t, "0", h.Get(HeaderStatus))
}

func TestOKInvariant(t *testing.T) {
	s := New(OK, "non-empty message is still OK")
	require.True(t, s.OK())
}

func TestGRPCCodeInteropIsNumericallyIdentical(t *testing.T) {
	require.Equal(t, grpccodes.Unavailable, Unavailable.ToGRPCCode())
	require.Equal(t, ResourceExhausted, FromGRPCCode(grpccodes.ResourceExhausted))
}

func TestDecodeDetailsLenientOnPadding(t *testing.T) {
	b, err := decodeDetails("AAID")
	require.NoError(t, err)
	require.Equal(t, []byte{0, 2, 3}, b)

	bPadded, err := decodeDetails(base64.StdEncoding.EncodeToString([]byte{0, 2, 3}))
	require.NoError(t, err)
	require.Equal(t, []byte{0, 2, 3}, bPadded)
}
