//go:build linux

package sockopts

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

func domainToUnix(d Domain) int {
	switch d {
	case DomainInet6:
		return unix.AF_INET6
	case DomainUnix:
		return unix.AF_UNIX
	default:
		return unix.AF_INET
	}
}

func typeToUnix(t Type) int {
	if t == TypeDgram {
		return unix.SOCK_DGRAM
	}
	return unix.SOCK_STREAM
}

func rawSocket(domain Domain, typ Type, protocol int) (int, error) {
	fd, err := unix.Socket(domainToUnix(domain), typeToUnix(typ), protocol)
	if err != nil {
		return -1, err
	}
	return fd, nil
}

func closeRawSocket(fd int) { unix.Close(fd) }

func rawBind(fd int, domain Domain, addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	var portNum int
	if _, err := fmt.Sscanf(port, "%d", &portNum); err != nil {
		return err
	}

	switch domain {
	case DomainInet6:
		ip := net.ParseIP(host).To16()
		if ip == nil {
			return fmt.Errorf("sockopts: invalid IPv6 address %q", host)
		}
		var sa unix.SockaddrInet6
		copy(sa.Addr[:], ip)
		sa.Port = portNum
		return unix.Bind(fd, &sa)
	case DomainUnix:
		return unix.Bind(fd, &unix.SockaddrUnix{Name: addr})
	default:
		ip := net.ParseIP(host).To4()
		if ip == nil {
			return fmt.Errorf("sockopts: invalid IPv4 address %q", host)
		}
		var sa unix.SockaddrInet4
		copy(sa.Addr[:], ip)
		sa.Port = portNum
		return unix.Bind(fd, &sa)
	}
}

func setReuseAddr(fd int, v bool) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, boolToInt(v))
}

func setReusePort(fd int, v bool) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, boolToInt(v))
}

func setBroadcast(fd int, v bool) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_BROADCAST, boolToInt(v))
}

func setFreebind(fd int, v bool) error {
	return unix.SetsockoptInt(fd, unix.SOL_IP, unix.IP_FREEBIND, boolToInt(v))
}

func setTransparent(fd int, v bool) error {
	return unix.SetsockoptInt(fd, unix.SOL_IP, unix.IP_TRANSPARENT, boolToInt(v))
}

func setBindToDevice(fd int, dev string) error {
	return unix.BindToDevice(fd, dev)
}

func setRecvBuffer(fd int, v int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, v)
}

func setSendBuffer(fd int, v int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, v)
}

func setLinger(fd int, seconds int) error {
	onoff := int32(1)
	if seconds < 0 {
		onoff = 0
		seconds = 0
	}
	return unix.SetsockoptLinger(fd, unix.SOL_SOCKET, unix.SO_LINGER, &unix.Linger{
		Onoff:  onoff,
		Linger: int32(seconds),
	})
}

func setNoDelay(fd int, v bool) error {
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, boolToInt(v))
}

func setCork(fd int, v bool) error {
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_CORK, boolToInt(v))
}

func setUserTimeout(fd int, millis int) error {
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_USER_TIMEOUT, millis)
}

func setCongestion(fd int, name string) error {
	return unix.SetsockoptString(fd, unix.IPPROTO_TCP, unix.TCP_CONGESTION, name)
}

func setKeepAlive(fd int, v bool) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, boolToInt(v))
}

func setKeepAliveTuning(fd int, cfg TCPKeepAlive) error {
	if cfg.Time != nil {
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, int(cfg.Time.Seconds())); err != nil {
			return err
		}
	}
	if cfg.Interval != nil {
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, int(cfg.Interval.Seconds())); err != nil {
			return err
		}
	}
	if cfg.Retries != nil {
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPCNT, *cfg.Retries); err != nil {
			return err
		}
	}
	return nil
}

func setMark(fd int, v int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_MARK, v)
}

func setIPTOS(fd int, v int) error {
	return unix.SetsockoptInt(fd, unix.SOL_IP, unix.IP_TOS, v)
}

func setIPv6TClass(fd int, v int) error {
	return unix.SetsockoptInt(fd, unix.SOL_IPV6, unix.IPV6_TCLASS, v)
}

func setMulticastLoop(fd int, v bool) error {
	return unix.SetsockoptInt(fd, unix.SOL_IP, unix.IP_MULTICAST_LOOP, boolToInt(v))
}

func setMulticastTTL(fd int, v int) error {
	return unix.SetsockoptInt(fd, unix.SOL_IP, unix.IP_MULTICAST_TTL, v)
}

func setMulticastInterface(fd int, iface net.Interface) error {
	return unix.SetsockoptIPMreqn(fd, unix.SOL_IP, unix.IP_MULTICAST_IF, &unix.IPMreqn{Ifindex: int32(iface.Index)})
}

// setDCCPServiceCode and setDCCPCCID are unsupported: golang.org/x/sys/unix
// does not expose DCCP_SOCKOPT_* constants, and DCCP was removed from
// mainline Linux kernels in 2023, so there is no live target to test
// against even on this platform.
func setDCCPServiceCode(fd int, v int) error { return errUnsupported }
func setDCCPCCID(fd int, v int) error        { return errUnsupported }

func setCPUAffinity(fd int, cpus []int) error {
	var set unix.CPUSet
	set.Zero()
	for _, c := range cpus {
		set.Set(c)
	}
	return unix.SchedSetaffinity(0, &set)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
