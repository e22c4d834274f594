// Package connectivity reports network availability for sync admission.
package connectivity

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jbctechsolutions/markkeep/internal/application/ports"
)

// Probe defaults. Results are cached so repeated IsOnline calls between
// probes return without touching the network.
const (
	DefaultProbeTimeout = 2 * time.Second
	DefaultCacheTTL     = 30 * time.Second
)

// DefaultEndpoints are well-known public resolvers reachable over TCP from
// most networks. A probe succeeds on the first endpoint that accepts a
// connection.
var DefaultEndpoints = []string{
	"1.1.1.1:443",
	"8.8.8.8:53",
}

// Compile-time check that Prober implements ConnectivityPort.
var _ ports.ConnectivityPort = (*Prober)(nil)

// Prober implements ConnectivityPort with a TCP dial probe. Probe results
// are cached for a TTL, and a forced-offline override short-circuits the
// probe entirely.
type Prober struct {
	endpoints []string
	timeout   time.Duration
	ttl       time.Duration

	// dial is swapped out by tests.
	dial func(network, address string, timeout time.Duration) (net.Conn, error)

	forceOffline atomic.Bool

	mu       sync.Mutex
	probedAt time.Time
	online   bool
}

// NewProber creates a connectivity prober. Zero values fall back to the
// package defaults.
func NewProber(endpoints []string, timeout, ttl time.Duration) *Prober {
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &Prober{
		endpoints: endpoints,
		timeout:   timeout,
		ttl:       ttl,
		dial:      net.DialTimeout,
	}
}

// IsOnline reports current network availability. The forced-offline override
// wins over everything; otherwise a cached probe result is returned until it
// expires and the endpoints are dialed again.
func (p *Prober) IsOnline() bool {
	if p.forceOffline.Load() {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.probedAt.IsZero() && time.Since(p.probedAt) < p.ttl {
		return p.online
	}

	p.online = p.probe()
	p.probedAt = time.Now()
	return p.online
}

// ForceOffline switches the forced-offline override on or off. While forced,
// IsOnline reports false without probing.
func (p *Prober) ForceOffline(forced bool) {
	p.forceOffline.Store(forced)
}

// Forced reports whether the forced-offline override is active.
func (p *Prober) Forced() bool {
	return p.forceOffline.Load()
}

// Invalidate drops the cached probe result so the next IsOnline call
// probes again.
func (p *Prober) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probedAt = time.Time{}
}

// probe dials the endpoints in order and reports whether any accepted a
// connection. Callers hold p.mu.
func (p *Prober) probe() bool {
	for _, endpoint := range p.endpoints {
		conn, err := p.dial("tcp", endpoint, p.timeout)
		if err != nil {
			continue
		}
		conn.Close()
		return true
	}
	return false
}
