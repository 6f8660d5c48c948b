// Package link provides two concrete realizations of linkstack.LinkChannel:
// Buffered, an in-memory loopback pair for tests, and PCAP, a real
// libpcap-backed capture/injection handle.
package link

import (
	"errors"
	"sync"
	"time"

	"github.com/copperlink/linkstack"
)

// ErrClosed is returned by Recv/Reserve on a Buffered channel after Close.
var ErrClosed = errors.New("link: channel closed")

// Buffered is an in-memory linkstack.LinkChannel. Frames written via
// Reserve on one end of a NewBufferedPair become readable via Recv on the
// other — exactly the loopback shape of packet.TestNewBufferedConn
// (test/setup_test.go), translated from a pair of net.PacketConn onto
// linkstack.LinkChannel directly so tests don't need a real socket or the
// Ethernet wire format round-tripped through WriteTo/ReadFrom.
type Buffered struct {
	mu     sync.Mutex
	closed bool
	in     chan []byte // frames the peer wrote, delivered to our Recv
	out    chan []byte // frames we write, delivered to the peer's Recv
}

// NewBufferedPair returns two Buffered endpoints wired so a.Reserve feeds
// b.Recv and b.Reserve feeds a.Recv.
func NewBufferedPair() (a, b *Buffered) {
	ab := make(chan []byte, 64)
	ba := make(chan []byte, 64)
	a = &Buffered{in: ba, out: ab}
	b = &Buffered{in: ab, out: ba}
	return a, b
}

// Recv blocks until a frame is available or the channel is closed.
func (b *Buffered) Recv() (linkstack.Received, error) {
	data, ok := <-b.in
	if !ok {
		return linkstack.Received{}, ErrClosed
	}
	return linkstack.Received{Time: time.Now(), Data: data}, nil
}

// Reserve allocates n frames of frameSize bytes, invokes build on each, and
// delivers them to the peer's Recv in order.
func (b *Buffered) Reserve(n int, frameSize int, build func([]byte)) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}
	for i := 0; i < n; i++ {
		buf := make([]byte, frameSize)
		build(buf)
		b.out <- buf
	}
	return nil
}

// Close closes the send side; any blocked or future Recv on the peer
// observes ErrClosed once the peer drains what's already queued.
func (b *Buffered) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	close(b.out)
	return nil
}
