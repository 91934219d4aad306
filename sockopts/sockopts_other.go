//go:build !unix

package sockopts

import "net"

// sockopts_other.go covers non-unix targets (windows). None of this
// package's raw-socket options are available through a cross-platform
// syscall surface there (the host application itself has no
// listen_windows.go analogue for low-level socket control), so
// rawSocket returns errUnsupported and TryBuildSocket fails at socket
// creation before any option is applied; callers fall back to
// net.Listen/net.Dial for basic connectivity.

func rawSocket(domain Domain, typ Type, protocol int) (int, error) {
	return -1, errUnsupported
}

func closeRawSocket(fd int) {}

func rawBind(fd int, domain Domain, addr string) error { return errUnsupported }

func setReuseAddr(fd int, v bool) error           { return errUnsupported }
func setReusePort(fd int, v bool) error            { return errUnsupported }
func setBroadcast(fd int, v bool) error            { return errUnsupported }
func setFreebind(fd int, v bool) error             { return errUnsupported }
func setTransparent(fd int, v bool) error          { return errUnsupported }
func setBindToDevice(fd int, dev string) error     { return errUnsupported }
func setRecvBuffer(fd int, v int) error            { return errUnsupported }
func setSendBuffer(fd int, v int) error            { return errUnsupported }
func setLinger(fd int, seconds int) error          { return errUnsupported }
func setNoDelay(fd int, v bool) error              { return errUnsupported }
func setCork(fd int, v bool) error                 { return errUnsupported }
func setUserTimeout(fd int, millis int) error      { return errUnsupported }
func setCongestion(fd int, name string) error      { return errUnsupported }
func setKeepAlive(fd int, v bool) error            { return errUnsupported }
func setKeepAliveTuning(fd int, cfg TCPKeepAlive) error { return errUnsupported }
func setMark(fd int, v int) error                  { return errUnsupported }
func setIPTOS(fd int, v int) error                 { return errUnsupported }
func setIPv6TClass(fd int, v int) error             { return errUnsupported }
func setMulticastLoop(fd int, v bool) error        { return errUnsupported }
func setMulticastTTL(fd int, v int) error          { return errUnsupported }
func setMulticastInterface(fd int, iface net.Interface) error { return errUnsupported }
func setDCCPServiceCode(fd int, v int) error       { return errUnsupported }
func setDCCPCCID(fd int, v int) error              { return errUnsupported }
func setCPUAffinity(fd int, cpus []int) error      { return errUnsupported }
