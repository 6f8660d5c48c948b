package linkstack

import "time"

// Received is a single frame read off a LinkChannel together with its
// receive timestamp, as handed from the ingress loop to EthernetRx.
type Received struct {
	Time time.Time
	Data []byte
}

// LinkChannel is the external collaborator this module depends on: a
// duplex byte-frame transport. This module never implements the real backend
// itself beyond the two provided in package link (link.PCAP over libpcap,
// link.Buffered for tests) — anything satisfying this interface (a raw
// socket, a TAP device, a dummy channel) can sit underneath EthernetTx/
// EthernetRx.
type LinkChannel interface {
	// Recv blocks until a complete link-layer frame is available.
	Recv() (Received, error)

	// Reserve asks the link for n frames of frameSize bytes each and
	// invokes build once per reserved buffer before flushing them to the
	// wire. build is responsible for filling every byte of its buffer;
	// EthernetTx pre-fills the Ethernet header before calling further into
	// the builder chain.
	Reserve(n int, frameSize int, build func([]byte)) error

	// Close releases the underlying transport.
	Close() error
}
