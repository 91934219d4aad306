//go:build linux

package sockopts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func boolPtr(b bool) *bool             { return &b }
func intPtr(i int) *int                { return &i }
func durationPtr(s int) *time.Duration { d := time.Duration(s) * time.Second; return &d }

func TestTryBuildSocketAppliesReuseAddrAndNoDelay(t *testing.T) {
	opts := Options{
		ReuseAddr: boolPtr(true),
		NoDelay:   boolPtr(true),
		KeepAlive: boolPtr(true),
		KeepAliveCfg: &TCPKeepAlive{
			Time: durationPtr(30),
		},
	}

	_, fd, err := TryBuildSocket(DomainInet, TypeStream, 0, "", opts, nil)
	require.NoError(t, err)
	defer unix.Close(fd)

	v, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR)
	require.NoError(t, err)
	require.NotZero(t, v)

	v, err = unix.GetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY)
	require.NoError(t, err)
	require.NotZero(t, v)
}

func TestTryBuildSocketBindsToLoopback(t *testing.T) {
	opts := Options{ReuseAddr: boolPtr(true)}
	_, fd, err := TryBuildSocket(DomainInet, TypeStream, 0, "127.0.0.1:0", opts, nil)
	require.NoError(t, err)
	defer unix.Close(fd)
}

func TestTryBuildSocketSkipsUnsupportedDCCPOptions(t *testing.T) {
	opts := Options{DCCPServiceCode: intPtr(1)}
	_, fd, err := TryBuildSocket(DomainInet, TypeStream, 0, "", opts, nil)
	require.NoError(t, err)
	defer unix.Close(fd)
}
