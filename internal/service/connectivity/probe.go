package connectivity

import (
	"context"
	"net"
	"strconv"
	"time"

	"radiantwavetech.com/radiantwave-updater/internal/logger"
)

// Prober checks whether a well-known TCP endpoint accepts connections.
type Prober struct {
	// address is the host:port dialed by Probe.
	address string
	// timeout bounds one dial attempt.
	timeout time.Duration
}

// NewProber creates a prober for host:port.
func NewProber(host string, port int, timeout time.Duration) *Prober {
	return &Prober{
		address: net.JoinHostPort(host, strconv.Itoa(port)),
		timeout: timeout,
	}
}

// Address returns the probed endpoint.
func (p *Prober) Address() string {
	return p.address
}

// Probe dials the endpoint once. Any error, including a timeout, yields false.
func (p *Prober) Probe(ctx context.Context) bool {
	logger.InfoKV(ctx, "Checking network connectivity", "address", p.address, "timeout", p.timeout)

	dialer := &net.Dialer{Timeout: p.timeout}

	conn, err := dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		logger.WarnKV(ctx, "Network unreachable", "address", p.address, "error", err)
		return false
	}

	_ = conn.Close()

	logger.Success(ctx, "Network reachable")

	return true
}
