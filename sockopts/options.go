// Package sockopts declares a platform-aware bag of socket options and
// applies them to a freshly created socket, the same role
// listen_linux.go's reusePort plays for caddy's listener construction,
// generalized from "one option" to the full tuning surface a proxy
// dialer needs.
package sockopts

import "net"

// Domain names a socket address family.
type Domain int

const (
	DomainInet Domain = iota
	DomainInet6
	DomainUnix
)

// Type names a socket type.
type Type int

const (
	TypeStream Type = iota
	TypeDgram
)

// Options is a declarative bag of socket options. Every field is
// optional; a nil field leaves the platform default untouched. Options
// not supported on the build's target platform are simply never set —
// see sockopts_linux.go / sockopts_other.go.
type Options struct {
	// Core reuse/bind behaviour.
	ReuseAddr    *bool
	ReusePort    *bool
	Broadcast    *bool
	Freebind     *bool
	Transparent  *bool
	BindToDevice *string

	// Buffers and framing.
	RecvBuffer *int
	SendBuffer *int
	Linger     *int // seconds; negative disables SO_LINGER

	// TCP tuning.
	NoDelay      *bool
	Cork         *bool
	UserTimeout  *int // milliseconds
	Congestion   *string
	KeepAlive    *bool
	KeepAliveCfg *TCPKeepAlive

	// Routing/QoS markers.
	Mark      *int
	IPTOS     *int
	IPv6Class *int

	// Multicast.
	MulticastInterface *net.Interface
	MulticastLoop      *bool
	MulticastTTL       *int

	// DCCP service codes, relevant only for DCCP sockets.
	DCCPServiceCode *int
	DCCPCCID        *int

	// Scheduling.
	CPUAffinity []int
}

// BindAddress, if non-empty, is passed to bind(2) after socket
// creation and before option application, mirroring net.ListenConfig's
// bind-then-configure ordering.
type BindAddress = string
