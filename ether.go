package linkstack

import (
	"encoding/binary"
	"net"
)

// EtherType identifies the upper-layer protocol carried in an Ethernet
// frame.
type EtherType uint16

// EtherTypes used by this module.
const (
	EtherTypeARP  EtherType = 0x0806
	EtherTypeIPv4 EtherType = 0x0800
)

func (t EtherType) String() string {
	switch t {
	case EtherTypeARP:
		return "ARP"
	case EtherTypeIPv4:
		return "IPv4"
	default:
		return "unknown"
	}
}

// EthHeaderSize is the length in bytes of an Ethernet header: 6-byte
// destination, 6-byte source, 2-byte EtherType.
const EthHeaderSize = 6 + 6 + 2

// Frame is a memory-mapped view of an Ethernet frame: a byte slice with
// accessor methods reading/writing fields in place, rather than a
// struct-of-fields copy. This mirrors arp/packet.go's ARP []byte type
// (HType/Operation/SrcMAC/... methods over a raw buffer) generalized to
// the Ethernet header.
type Frame []byte

// NewFrame wraps b as an Ethernet frame view. It does not validate length;
// call Valid before trusting header accessors.
func NewFrame(b []byte) Frame { return Frame(b) }

// Valid reports whether the frame is at least long enough to hold a
// complete Ethernet header.
func (f Frame) Valid() bool { return len(f) >= EthHeaderSize }

// Dst returns the destination MAC address.
func (f Frame) Dst() net.HardwareAddr { return net.HardwareAddr(f[0:6]) }

// Src returns the source MAC address.
func (f Frame) Src() net.HardwareAddr { return net.HardwareAddr(f[6:12]) }

// EtherType returns the frame's EtherType field.
func (f Frame) EtherType() EtherType {
	return EtherType(binary.BigEndian.Uint16(f[12:14]))
}

// SetDst writes the destination MAC address.
func (f Frame) SetDst(mac net.HardwareAddr) { copy(f[0:6], mac) }

// SetSrc writes the source MAC address.
func (f Frame) SetSrc(mac net.HardwareAddr) { copy(f[6:12], mac) }

// SetEtherType writes the EtherType field.
func (f Frame) SetEtherType(t EtherType) { binary.BigEndian.PutUint16(f[12:14], uint16(t)) }

// Payload returns the bytes following the Ethernet header.
func (f Frame) Payload() []byte { return f[EthHeaderSize:] }

// BuildEthernet allocates (or reuses, if cap(b) is sufficient) a frame of
// EthHeaderSize+payloadSize bytes and pre-fills source/destination/EtherType.
// Tests use it to construct a frame the way arp/send.go's
// requestWithDstEthernet builds one via raw.EtherMarshalBinary;
// EthernetTx.Send does not call it and fills its reserved buffers directly.
func BuildEthernet(b []byte, payloadSize int, src, dst net.HardwareAddr, etherType EtherType) Frame {
	total := EthHeaderSize + payloadSize
	if cap(b) < total {
		b = make([]byte, total)
	}
	b = b[:total]
	f := Frame(b)
	f.SetDst(dst)
	f.SetSrc(src)
	f.SetEtherType(etherType)
	return f
}
