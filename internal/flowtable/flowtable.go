// Package flowtable tracks one entry per (listener, peer) UDP flow, mapping
// inbound datagrams to the upstream socket carrying their replies.
package flowtable

import (
	"net"
	"sync"
	"sync/atomic"
)

// Key identifies a flow by the listener it arrived on and the peer address
// that sent it. ListenerID distinguishes flows when more than one listener
// shares a single flow table, as every listener the app binds does.
type Key struct {
	ListenerID int
	Peer       string
}

// NewKey builds a Key from a listener id and a concrete peer address,
// normalizing the address through its String form so two *net.UDPAddr
// values describing the same peer always hash identically.
func NewKey(listenerID int, peer *net.UDPAddr) Key {
	return Key{ListenerID: listenerID, Peer: peer.String()}
}

// Entry holds the per-flow state shared between the ingress loop that
// created it and the reply loop that owns it until it expires.
type Entry struct {
	Upstream *net.UDPConn
	Peer     *net.UDPAddr

	// dataIn coalesces "a datagram just arrived" notifications: it is a
	// buffered channel of capacity 1, and sends to it never block. The reply
	// loop drains it to learn whether it should reset its idle timer.
	dataIn chan struct{}

	packetsIn  int32
	packetsOut int32
}

func newEntry(upstream *net.UDPConn, peer *net.UDPAddr) *Entry {
	return &Entry{
		Upstream: upstream,
		Peer:     peer,
		dataIn:   make(chan struct{}, 1),
	}
}

// NotifyDataIn records that a datagram arrived from the peer. It never
// blocks: if a notification is already pending, this call is a no-op.
func (e *Entry) NotifyDataIn() {
	select {
	case e.dataIn <- struct{}{}:
	default:
	}
}

// DataIn exposes the coalesced wake channel for use in a select statement.
func (e *Entry) DataIn() <-chan struct{} {
	return e.dataIn
}

// CountIn records one datagram having flowed from the peer to upstream.
func (e *Entry) CountIn() {
	atomic.AddInt32(&e.packetsIn, 1)
}

// CountOut records one datagram having flowed from upstream to the peer.
func (e *Entry) CountOut() {
	atomic.AddInt32(&e.packetsOut, 1)
}

// Assured reports whether this flow has seen enough traffic in both
// directions to be considered established, mirroring conntrack's notion of
// an assured entry. It is informational only: nothing in the forwarding
// engine currently branches on it.
func (e *Entry) Assured() bool {
	in := atomic.LoadInt32(&e.packetsIn)
	out := atomic.LoadInt32(&e.packetsOut)
	return in >= 1 && out >= 1 && (in >= 2 || out >= 2)
}

// Table is a single exclusive-lock map of live flows. GetOrCreate is the
// only way entries are inserted; Remove is the only way they are deleted.
type Table struct {
	mu    sync.Mutex
	flows map[Key]*Entry
}

// New returns an empty flow table.
func New() *Table {
	return &Table{flows: make(map[Key]*Entry)}
}

// GetOrCreate returns the existing entry for key, or creates one via create
// if none exists yet. created reports which happened. The entire
// lookup-or-insert is performed under the table's exclusive lock, so two
// concurrent calls for the same key can never both create an entry: one
// wins the race and the loser observes created == false.
//
// create is only invoked while the lock is held, which means it must not
// itself call back into the table. This matches the connect-then-insert
// ordering the engine uses: callers build create to perform the (possibly
// slow) upstream connect before returning the connected socket and peer
// address from which the stored *Entry is built.
func (t *Table) GetOrCreate(key Key, create func() (*net.UDPConn, *net.UDPAddr, error)) (entry *Entry, created bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.flows[key]; ok {
		return existing, false, nil
	}

	upstream, peer, err := create()
	if err != nil {
		return nil, false, err
	}
	entry = newEntry(upstream, peer)
	t.flows[key] = entry
	return entry, true, nil
}

// Remove deletes the entry for key, if any. It is safe to call even if the
// entry was already removed or never existed.
func (t *Table) Remove(key Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.flows, key)
}

// Len reports the number of live flows. Intended for tests and metrics.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.flows)
}
