package proxydb

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/caddyserver/wireframe/internal/wflog"
)

// Connector dials addr through a specific proxy. Implementations wrap
// whatever transport-level dialer understands the proxy's protocol.
type Connector interface {
	Connect(ctx context.Context, addr string) (net.Conn, error)
}

// SelectionMode chooses how ConnectorPool.GetConnector picks among its
// members, mirroring middleware/proxy/policy.go's Random/RoundRobin
// host-selection policies.
type SelectionMode int

const (
	SelectionRandom SelectionMode = iota
	SelectionRoundRobin
)

// ConnectorPool selects a Connector from a fixed membership using Mode,
// then dials through it.
type ConnectorPool struct {
	Mode    SelectionMode
	Members []Connector

	robin  uint32
	logger *zap.Logger
}

// NewConnectorPool returns a pool over members using mode. logger may be
// nil.
func NewConnectorPool(mode SelectionMode, members []Connector, logger *zap.Logger) *ConnectorPool {
	return &ConnectorPool{Mode: mode, Members: members, logger: wflog.OrNop(logger)}
}

// GetConnector returns the next connector per Mode, or nil if the pool
// is empty.
func (p *ConnectorPool) GetConnector() Connector {
	if len(p.Members) == 0 {
		return nil
	}
	switch p.Mode {
	case SelectionRoundRobin:
		idx := atomic.AddUint32(&p.robin, 1) % uint32(len(p.Members))
		return p.Members[idx]
	default:
		return p.Members[rand.Intn(len(p.Members))]
	}
}

// ErrEmptyPool is returned by Connect when the pool has no members.
var ErrEmptyPool = fmt.Errorf("proxydb: connector pool is empty")

// Connect selects a connector and dials addr through it, logging the
// selection the way policy.Select's callers log the chosen upstream
// host.
func (p *ConnectorPool) Connect(ctx context.Context, addr string) (net.Conn, error) {
	c := p.GetConnector()
	if c == nil {
		return nil, ErrEmptyPool
	}
	p.logger.Debug("selected connector from pool",
		zap.Int("mode", int(p.Mode)),
		zap.String("target", addr),
	)
	return c.Connect(ctx, addr)
}
