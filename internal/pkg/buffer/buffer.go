// Package buffer provides the datagram-sized buffer pool shared by every
// ingress and reply task, so forwarding a packet never allocates.
package buffer

import "sync"

// MaxDatagramSize is the largest possible UDP payload.
const MaxDatagramSize = 65535

// Pool hands out MaxDatagramSize-byte buffers, each held by one ingress or
// reply task and reused for every datagram that task handles.
var Pool = sync.Pool{
	New: func() any {
		b := make([]byte, MaxDatagramSize)
		return &b
	},
}

// Get returns a pooled buffer and the function that returns it. Callers
// should defer the release.
func Get() (*[]byte, func()) {
	bufp := Pool.Get().(*[]byte)
	return bufp, func() { Pool.Put(bufp) }
}
