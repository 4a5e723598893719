// Package engine is the bidirectional forwarding engine: one ingress loop
// per listening socket, one reply loop per live flow, coupled through a
// flow table and a shared transform pipeline.
package engine

import (
	"context"
	"errors"
	"net"
	"time"

	"udpobfuscat/internal/flog"
	"udpobfuscat/internal/flowtable"
	"udpobfuscat/internal/pkg/buffer"
	"udpobfuscat/internal/sockets"
	"udpobfuscat/internal/transform"
)

// TimeoutSeconds is the single-stage idle timeout applied to every flow.
// Tests lower it through Listener's unexported timeout field rather than
// through config: spec.md does not ask for per-deployment tuning of it.
const TimeoutSeconds = 120

// Listener is one bound UDP socket paired with a set of upstream candidate
// addresses and a shared transform. Build one per bound listener socket;
// Engine runs any number of them concurrently.
type Listener struct {
	ID        int
	Conn      *net.UDPConn
	Upstreams []*net.UDPAddr
	Transform transform.Transform
	Table     *flowtable.Table
	timeout   time.Duration
}

// NewListener wires a bound listener socket to its upstream candidates. The
// flow table may be shared across listeners or private to one; callers
// decide by passing the same *flowtable.Table or a fresh one.
func NewListener(id int, conn *net.UDPConn, upstreams []*net.UDPAddr, tr transform.Transform, table *flowtable.Table) *Listener {
	return &Listener{
		ID:        id,
		Conn:      conn,
		Upstreams: upstreams,
		Transform: tr,
		Table:     table,
		timeout:   TimeoutSeconds * time.Second,
	}
}

// Engine owns every listener in the process and runs their ingress loops
// until one fails fatally.
type Engine struct {
	listeners []*Listener
}

// New builds an Engine over the given listeners.
func New(listeners ...*Listener) *Engine {
	return &Engine{listeners: listeners}
}

// Run starts every listener's ingress loop and blocks until ctx is
// cancelled or one loop exits with a fatal error, matching the spec's
// "only a failed recv_from is fatal; it propagates and terminates the
// process" contract: the first fatal error returned here is meant to be
// fatal to the whole process.
func (e *Engine) Run(ctx context.Context) error {
	if len(e.listeners) == 0 {
		return errors.New("engine has no listeners configured")
	}

	errCh := make(chan error, len(e.listeners))
	for _, l := range e.listeners {
		go func(l *Listener) {
			errCh <- l.runIngress(ctx)
		}(l)
	}

	select {
	case <-ctx.Done():
		for _, l := range e.listeners {
			l.Conn.Close()
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runIngress is the persistent per-listener ingress task: read a datagram,
// get-or-create its flow, notify the flow's wake signal, transform the
// datagram in place, send it to the flow's upstream socket. Only a failed
// ReadFromUDP is fatal; a failed Write to the upstream socket is logged and
// the datagram is dropped, since the idle timer will eventually reap a
// flow whose upstream has gone away.
func (l *Listener) runIngress(ctx context.Context) error {
	bufp, release := buffer.Get()
	buf := *bufp
	defer release()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, peer, err := l.Conn.ReadFromUDP(buf)
		if err != nil {
			return err
		}

		key := flowtable.NewKey(l.ID, peer)
		entry, created, err := l.Table.GetOrCreate(key, func() (*net.UDPConn, *net.UDPAddr, error) {
			upstream, connErr := sockets.ConnectUpstream(l.Upstreams)
			if connErr != nil {
				return nil, nil, connErr
			}
			return upstream, peer, nil
		})
		if err != nil {
			flog.Errorf("failed to establish upstream for peer %s: %v", peer, err)
			continue
		}
		if created {
			flog.Debugf("new flow %s -> %s", peer, entry.Upstream.RemoteAddr())
			go l.runReply(ctx, key, entry)
		}

		entry.NotifyDataIn()

		payload := buf[:n]
		l.Transform.Apply(payload)

		sent, werr := entry.Upstream.Write(payload)
		if werr != nil {
			flog.Errorf("send to upstream failed for peer %s: %v", peer, werr)
			continue
		}
		if sent != len(payload) {
			flog.Errorf("short send to upstream for peer %s: sent %d of %d bytes", peer, sent, len(payload))
			continue
		}
		entry.CountIn()
	}
}

// runReply is the per-flow reply task. It waits on whichever happens
// first: the idle timer expiring, a datagram arriving from upstream, or a
// data-in notification from the ingress side. Idle expiry with no
// competing event tears the flow down; the other two branches rearm the
// timer and loop.
func (l *Listener) runReply(ctx context.Context, key flowtable.Key, entry *flowtable.Entry) {
	defer l.Table.Remove(key)

	bufp, release := buffer.Get()
	buf := *bufp
	defer release()

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	readCh := make(chan readResult, 1)
	startUpstreamRead(entry.Upstream, buf, readCh)

	for {
		select {
		case <-ctx.Done():
			entry.Upstream.Close()
			<-readCh // wait out the in-flight read before the buffer is reused
			return

		case <-timer.C:
			flog.Debugf("flow %v idle timeout after %s", key, l.timeout)
			entry.Upstream.Close()
			<-readCh
			return

		case res := <-readCh:
			if res.err != nil {
				flog.Debugf("flow %v upstream recv error, tearing down: %v", key, res.err)
				return
			}
			payload := buf[:res.n]
			l.Transform.Apply(payload)
			sent, werr := l.Conn.WriteToUDP(payload, entry.Peer)
			switch {
			case werr != nil:
				flog.Errorf("send to peer %s failed: %v", entry.Peer, werr)
			case sent != len(payload):
				flog.Errorf("short send to peer %s: sent %d of %d bytes", entry.Peer, sent, len(payload))
			default:
				entry.CountOut()
			}
			resetTimer(timer, l.timeout)
			startUpstreamRead(entry.Upstream, buf, readCh)

		case <-entry.DataIn():
			resetTimer(timer, l.timeout)
		}
	}
}

type readResult struct {
	n   int
	err error
}

// startUpstreamRead issues exactly one blocking Read on upstream and
// delivers its result to ch. Only one read is ever in flight per flow,
// since runReply only calls this again after the previous result has been
// consumed.
func startUpstreamRead(upstream *net.UDPConn, buf []byte, ch chan<- readResult) {
	go func() {
		n, err := upstream.Read(buf)
		ch <- readResult{n: n, err: err}
	}()
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
