package router

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/dreamware/shardkv/internal/metrics"
	"github.com/dreamware/shardkv/internal/wire"
)

// ErrNotIPv6 marks a peer observed on accept or attempted on dial that is not
// an IPv6 socket. Per SPEC_FULL §4.B/§7 this is logged and ignored, never
// treated as a fatal error.
var ErrNotIPv6 = errors.New("router: only IPv6 peers are supported")

// Router owns the listening socket, the per-peer connection pool, and the
// Handler that every inbound frame is dispatched to. One Router exists per
// process; every node role (info server, write shard, read shard, client)
// builds exactly one.
type Router struct {
	handler  Handler
	bindAddr string
	role     string
	log      zerolog.Logger

	mu       sync.RWMutex
	conns    map[wire.Endpoint]*conn
	listener net.Listener

	// admit shapes the accept loop so a connection storm cannot starve it;
	// it never rejects a peer that would otherwise be admitted within its
	// burst, and has no bearing on protocol semantics (SPEC_FULL §10.D).
	admit *rate.Limiter
}

// Build constructs a Router around handler. bindAddr is the address to
// listen on; an empty string means "choose an ephemeral port on Bind",
// matching shards' default `[::1]:0`. role labels the requests_total metric
// so a single Prometheus scrape can separate an info server's traffic from
// a write shard's or a read shard's.
func Build(handler Handler, bindAddr string, role string, log zerolog.Logger) *Router {
	return &Router{
		handler:  handler,
		bindAddr: bindAddr,
		role:     role,
		log:      log,
		conns:    make(map[wire.Endpoint]*conn),
		admit:    rate.NewLimiter(rate.Limit(500), 500),
	}
}

// Bind opens the listening socket and returns the address actually bound
// (useful when bindAddr requested an ephemeral port). It must be called
// before Listen.
func (r *Router) Bind() (netip.AddrPort, error) {
	ln, err := net.Listen("tcp", r.bindAddr)
	if err != nil {
		return netip.AddrPort{}, err
	}
	r.listener = ln
	addr, err := netip.ParseAddrPort(ln.Addr().String())
	if err != nil {
		return netip.AddrPort{}, err
	}
	return addr, nil
}

// LocalAddr returns the bound listener's address. Bind must have succeeded
// first.
func (r *Router) LocalAddr() net.Addr {
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Listen runs the accept loop until ctx is cancelled or the listener is
// closed. Each accepted connection is split into a pool entry and an
// inbound-loop goroutine, per SPEC_FULL §4.B's connection lifecycle.
func (r *Router) Listen(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		if r.listener != nil {
			_ = r.listener.Close()
		}
	}()

	for {
		nc, err := r.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}

		if err := r.admit.Wait(ctx); err != nil {
			metrics.AdmissionRejected.Inc()
			_ = nc.Close()
			continue
		}

		addrPort, err := netip.ParseAddrPort(nc.RemoteAddr().String())
		if err != nil || !addrPort.Addr().Is6() || addrPort.Addr().Is4In6() {
			r.log.Info().Str("remote", nc.RemoteAddr().String()).Msg("ignoring non-IPv6 peer")
			_ = nc.Close()
			continue
		}

		peer := wire.EndpointFromAddrPort(addrPort)
		c := &conn{nc: nc, peer: peer}
		r.mu.Lock()
		r.conns[peer] = c
		r.mu.Unlock()
		go r.inboundLoop(c)
	}
}

// dropConn removes c from the pool and closes its socket. It is called by
// the inbound loop on any terminal read/dispatch error.
func (r *Router) dropConn(c *conn) {
	r.mu.Lock()
	if existing, ok := r.conns[c.peer]; ok && existing == c {
		delete(r.conns, c.peer)
	}
	r.mu.Unlock()
	_ = c.nc.Close()
}

// getOrDial returns the pool entry for peer, dialing and spawning an inbound
// loop if none exists yet.
func (r *Router) getOrDial(ctx context.Context, peer wire.Endpoint) (*conn, error) {
	r.mu.RLock()
	c, ok := r.conns[peer]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	if addr := peer.AddrPort().Addr(); !addr.Is6() || addr.Is4In6() {
		return nil, ErrNotIPv6
	}

	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", peer.String())
	if err != nil {
		return nil, err
	}

	c = &conn{nc: nc, peer: peer}

	r.mu.Lock()
	if existing, ok := r.conns[peer]; ok {
		r.mu.Unlock()
		_ = nc.Close()
		return existing, nil
	}
	r.conns[peer] = c
	r.mu.Unlock()

	go r.inboundLoop(c)
	return c, nil
}

// Client returns a RouterClient sharing this Router's connection pool. The
// returned value is cheap to copy and may be handed to any number of
// background goroutines (announce loops, catch-up loops, the client CLI).
func (r *Router) Client() *RouterClient {
	return &RouterClient{router: r}
}
