// Package probe decides which BGP peers are configured passive.
//
// Every peer gets exactly one TCP connect attempt to the BGP port, bounded
// by a timeout. Peers that cannot be reached are marked passive so the
// remote side has to open the session. If no peer at all can be reached the
// generating host most likely has no outbound connectivity, and all peers
// are reset to active instead.
package probe

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/pablomonte/mkbgp/pkg/metrics"
	"github.com/pablomonte/mkbgp/pkg/types"
	"golang.org/x/sync/errgroup"
)

const (
	// BGPPort is the port every peer is probed on
	BGPPort = 179

	// DefaultTimeout bounds a single connect attempt
	DefaultTimeout = 3 * time.Second

	// DefaultConcurrency caps the number of simultaneous connect attempts
	DefaultConcurrency = 256
)

// DialFunc opens a connection, see net.Dialer.DialContext
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Prober runs the reachability probes
type Prober struct {
	timeout     time.Duration
	port        int
	concurrency int
	dial        DialFunc
}

// Option configures a Prober
type Option func(*Prober)

// WithPort overrides the probed port
func WithPort(port int) Option {
	return func(p *Prober) { p.port = port }
}

// WithConcurrency caps simultaneous probes. n <= 0 starts one probe per peer
// with no cap.
func WithConcurrency(n int) Option {
	return func(p *Prober) { p.concurrency = n }
}

// WithDialer replaces the function used to open connections
func WithDialer(dial DialFunc) Option {
	return func(p *Prober) { p.dial = dial }
}

// New creates a Prober. A timeout <= 0 disables probing.
func New(timeout time.Duration, opts ...Option) *Prober {
	p := &Prober{
		timeout:     timeout,
		port:        BGPPort,
		concurrency: DefaultConcurrency,
		dial:        (&net.Dialer{}).DialContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result summarizes one probe run
type Result struct {
	Probed      int  // number of connect attempts
	Reachable   int  // successful attempts
	Unreachable int  // failed attempts
	Fallback    bool // every attempt failed and all peers were reset to active
}

// Enabled reports whether probes will be run
func (p *Prober) Enabled() bool {
	return p.timeout > 0
}

// Probe sets the Passive flag of every peer. It returns once all attempts
// have finished; the slice must not be touched by the caller meanwhile.
func (p *Prober) Probe(ctx context.Context, peers []types.Peer) Result {
	var result Result
	if !p.Enabled() || len(peers) == 0 {
		return result
	}

	var g errgroup.Group
	if p.concurrency > 0 {
		g.SetLimit(p.concurrency)
	}

	// Each goroutine writes only peers[i].Passive
	for i := range peers {
		i := i
		g.Go(func() error {
			peers[i].Passive = !p.reachable(ctx, peers[i].Address)
			return nil
		})
	}
	_ = g.Wait()

	result.Probed = len(peers)
	for _, peer := range peers {
		if peer.Passive {
			result.Unreachable++
		} else {
			result.Reachable++
		}
	}

	if result.Reachable == 0 {
		for i := range peers {
			peers[i].Passive = false
		}
		result.Fallback = true
		metrics.ProbeFallbackTotal.Inc()
	}

	return result
}

// reachable makes a single connect attempt and closes the connection
// without sending anything.
func (p *Prober) reachable(ctx context.Context, address string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	conn, err := p.dial(ctx, "tcp", net.JoinHostPort(address, strconv.Itoa(p.port)))
	metrics.ProbeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ProbeTotal.WithLabelValues("unreachable").Inc()
		return false
	}
	conn.Close()

	metrics.ProbeTotal.WithLabelValues("reachable").Inc()
	return true
}
