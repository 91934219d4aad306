package sockopts

import (
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/caddyserver/wireframe/internal/wflog"
)

// TryBuildSocket creates a socket of (domain, typ, protocol), binds it
// to addr if addr is non-empty, and applies every option set in opts.
// SO_KEEPALIVE is always applied before the per-parameter keepalive
// sub-struct, so a platform that rejects tuning an unarmed keepalive
// timer still gets a consistent result.
func TryBuildSocket(domain Domain, typ Type, protocol int, addr BindAddress, opts Options, logger *zap.Logger) (*net.Conn, int, error) {
	logger = wflog.OrNop(logger)

	fd, err := rawSocket(domain, typ, protocol)
	if err != nil {
		return nil, -1, fmt.Errorf("sockopts: creating socket: %w", err)
	}

	if addr != "" {
		if err := rawBind(fd, domain, addr); err != nil {
			closeRawSocket(fd)
			return nil, -1, fmt.Errorf("sockopts: binding %s: %w", addr, err)
		}
	}

	if err := applyOptions(fd, opts, logger); err != nil {
		closeRawSocket(fd)
		return nil, -1, err
	}

	return nil, fd, nil
}

// applyOptions walks opts in the order the component design requires:
// reuse/bind-shape options first, then buffer, linger and TCP options,
// then SO_KEEPALIVE itself, then its tuning sub-struct, then the rest. Any unsupported-on-this-platform
// option is logged and skipped rather than failing the whole build.
func applyOptions(fd int, opts Options, logger *zap.Logger) error {
	type step struct {
		name string
		fn   func() error
	}
	steps := []step{
		{"SO_REUSEADDR", func() error { return withBool(opts.ReuseAddr, func(v bool) error { return setReuseAddr(fd, v) }) }},
		{"SO_REUSEPORT", func() error { return withBool(opts.ReusePort, func(v bool) error { return setReusePort(fd, v) }) }},
		{"SO_BROADCAST", func() error { return withBool(opts.Broadcast, func(v bool) error { return setBroadcast(fd, v) }) }},
		{"IP_FREEBIND", func() error { return withBool(opts.Freebind, func(v bool) error { return setFreebind(fd, v) }) }},
		{"IP_TRANSPARENT", func() error { return withBool(opts.Transparent, func(v bool) error { return setTransparent(fd, v) }) }},
		{"SO_BINDTODEVICE", func() error {
			if opts.BindToDevice == nil {
				return nil
			}
			return setBindToDevice(fd, *opts.BindToDevice)
		}},
		{"SO_RCVBUF", func() error { return withInt(opts.RecvBuffer, func(v int) error { return setRecvBuffer(fd, v) }) }},
		{"SO_SNDBUF", func() error { return withInt(opts.SendBuffer, func(v int) error { return setSendBuffer(fd, v) }) }},
		{"SO_LINGER", func() error { return withInt(opts.Linger, func(v int) error { return setLinger(fd, v) }) }},
		{"TCP_NODELAY", func() error { return withBool(opts.NoDelay, func(v bool) error { return setNoDelay(fd, v) }) }},
		{"TCP_CORK", func() error { return withBool(opts.Cork, func(v bool) error { return setCork(fd, v) }) }},
		{"TCP_USER_TIMEOUT", func() error { return withInt(opts.UserTimeout, func(v int) error { return setUserTimeout(fd, v) }) }},
		{"TCP_CONGESTION", func() error {
			if opts.Congestion == nil {
				return nil
			}
			return setCongestion(fd, *opts.Congestion)
		}},
		// SO_KEEPALIVE is enabled before per-parameter tuning, per the
		// component design's ordering requirement.
		{"SO_KEEPALIVE", func() error { return withBool(opts.KeepAlive, func(v bool) error { return setKeepAlive(fd, v) }) }},
		{"TCP_KEEPALIVE tuning", func() error {
			if opts.KeepAliveCfg == nil {
				return nil
			}
			return setKeepAliveTuning(fd, *opts.KeepAliveCfg)
		}},
		{"SO_MARK", func() error { return withInt(opts.Mark, func(v int) error { return setMark(fd, v) }) }},
		{"IP_TOS", func() error { return withInt(opts.IPTOS, func(v int) error { return setIPTOS(fd, v) }) }},
		{"IPV6_TCLASS", func() error { return withInt(opts.IPv6Class, func(v int) error { return setIPv6TClass(fd, v) }) }},
		{"IP_MULTICAST_LOOP", func() error { return withBool(opts.MulticastLoop, func(v bool) error { return setMulticastLoop(fd, v) }) }},
		{"IP_MULTICAST_TTL", func() error { return withInt(opts.MulticastTTL, func(v int) error { return setMulticastTTL(fd, v) }) }},
		{"IP_MULTICAST_IF", func() error {
			if opts.MulticastInterface == nil {
				return nil
			}
			return setMulticastInterface(fd, *opts.MulticastInterface)
		}},
		{"DCCP_SOCKOPT_SERVICE", func() error { return withInt(opts.DCCPServiceCode, func(v int) error { return setDCCPServiceCode(fd, v) }) }},
		{"DCCP_SOCKOPT_CCID", func() error { return withInt(opts.DCCPCCID, func(v int) error { return setDCCPCCID(fd, v) }) }},
		{"cpu affinity", func() error {
			if len(opts.CPUAffinity) == 0 {
				return nil
			}
			return setCPUAffinity(fd, opts.CPUAffinity)
		}},
	}

	for _, s := range steps {
		if err := s.fn(); err != nil {
			if err == errUnsupported {
				logger.Debug("socket option not supported on this platform, skipping", zap.String("option", s.name))
				continue
			}
			return fmt.Errorf("sockopts: applying %s: %w", s.name, err)
		}
	}
	return nil
}

func withBool(v *bool, set func(bool) error) error {
	if v == nil {
		return nil
	}
	return set(*v)
}

func withInt(v *int, set func(int) error) error {
	if v == nil {
		return nil
	}
	return set(*v)
}
