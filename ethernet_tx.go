package linkstack

import "net"

// EthernetTx builds and emits Ethernet frames over a LinkChannel's send
// half, pre-filling the source and destination MAC on every reserved
// buffer.
type EthernetTx struct {
	src  net.HardwareAddr
	dst  net.HardwareAddr
	link LinkChannel
}

// NewEthernetTx constructs an EthernetTx. When arpUse is true, dst MUST be
// the broadcast address — the special case for the ARP transmitter — and
// NewEthernetTx returns ErrNotBroadcastDst otherwise.
// original_source/src/arp.rs's arp() enforces this with a Rust
// assert_eq!; a Go constructor expresses the same precondition as a
// returned error rather than a panic, matching every other fallible
// constructor in this module (ipv4.NewConfig, config.Load).
func NewEthernetTx(src, dst net.HardwareAddr, link LinkChannel, arpUse bool) (*EthernetTx, error) {
	if arpUse && !IsBroadcast(dst) {
		return nil, ErrNotBroadcastDst
	}
	return &EthernetTx{src: dupMAC(src), dst: dupMAC(dst), link: link}, nil
}

// Src returns the local MAC address this transmitter stamps on outgoing
// frames.
func (tx *EthernetTx) Src() net.HardwareAddr { return tx.src }

// Dst returns the fixed destination MAC configured at construction.
func (tx *EthernetTx) Dst() net.HardwareAddr { return tx.dst }

// Send reserves nFrames buffers of EthHeaderSize+payloadSize bytes each on
// the underlying LinkChannel. For every buffer it pre-fills source,
// destination, then calls build with the frame so the caller can set
// EtherType and payload before the buffer is flushed to the link.
func (tx *EthernetTx) Send(nFrames, payloadSize int, build func(Frame)) *TxError {
	frameSize := EthHeaderSize + payloadSize
	err := tx.link.Reserve(nFrames, frameSize, func(b []byte) {
		f := Frame(b)
		f.SetSrc(tx.src)
		f.SetDst(tx.dst)
		build(f)
	})
	if err == nil {
		return nil
	}
	return NewTxIoError(err)
}
