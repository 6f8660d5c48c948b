// Package arp implements ARP resolution: a shared IP->MAC table (Table), an
// ingress listener that populates it and wakes blocked resolvers (Rx), and
// a synchronous resolver that blocks its caller until a reply arrives (Tx).
package arp

import (
	"encoding/binary"
	"errors"
	"net"

	"github.com/copperlink/linkstack"
)

// Operation codes.
const (
	OpRequest uint16 = 1
	OpReply   uint16 = 2
)

// htypeEthernet and ptypeIPv4 are the only hardware/protocol type values
// this module produces or accepts: hardware type 1 (Ethernet), protocol
// type 0x0800 (IPv4).
const (
	htypeEthernet uint16 = 1
	ptypeIPv4     uint16 = 0x0800
)

// frameLen is the fixed 28-byte ARP packet length for Ethernet/IPv4: 8
// bytes of fixed header + 2*6 bytes of hardware address + 2*4 bytes of
// protocol address.
const frameLen = 8 + 2*6 + 2*4

var errBadAddr = errors.New("arp: addresses must be 6-byte MACs and IPv4 addresses")

// Frame is a memory-mapped view over a 28-byte ARP packet, in the same
// byte-accessor style as arp/packet.go's ARP []byte type; its accessors
// return net.HardwareAddr/net.IP views over the packet bytes.
type Frame []byte

// NewFrame wraps b as an ARP frame view.
func NewFrame(b []byte) Frame { return Frame(b) }

// Valid reports whether the frame has the expected fixed fields for
// Ethernet/IPv4 ARP: hardware type 1, protocol type IPv4, hw len 6, proto
// len 4, and a recognized operation.
func (f Frame) Valid() bool {
	if len(f) < frameLen {
		return false
	}
	if f.hardwareType() != htypeEthernet || f.protocolType() != ptypeIPv4 {
		return false
	}
	if f.hwLen() != 6 || f.protoLen() != 4 {
		return false
	}
	op := f.Operation()
	return op == OpRequest || op == OpReply
}

func (f Frame) hardwareType() uint16 { return binary.BigEndian.Uint16(f[0:2]) }
func (f Frame) protocolType() uint16 { return binary.BigEndian.Uint16(f[2:4]) }
func (f Frame) hwLen() uint8         { return f[4] }
func (f Frame) protoLen() uint8      { return f[5] }

// Operation returns the ARP operation code (OpRequest or OpReply).
func (f Frame) Operation() uint16 { return binary.BigEndian.Uint16(f[6:8]) }

// SenderMAC returns the sender hardware address field.
func (f Frame) SenderMAC() net.HardwareAddr { return net.HardwareAddr(f[8:14]) }

// SenderIP returns the sender protocol address field.
func (f Frame) SenderIP() net.IP { return net.IP(f[14:18]) }

// TargetMAC returns the target hardware address field.
func (f Frame) TargetMAC() net.HardwareAddr { return net.HardwareAddr(f[18:24]) }

// TargetIP returns the target protocol address field.
func (f Frame) TargetIP() net.IP { return net.IP(f[24:28]) }

// BuildRequest fills b (allocating frameLen bytes if b is too small) as an
// ARP request: hardware type Ethernet, protocol type IPv4, hw-len 6,
// proto-len 4, operation Request, sender = (senderMAC, senderIP), target HW
// = the null address, target proto = targetIP.
func BuildRequest(b []byte, senderMAC net.HardwareAddr, senderIP net.IP, targetIP net.IP) (Frame, error) {
	return build(b, OpRequest, senderMAC, senderIP, linkstack.Zero, targetIP)
}

// BuildReply fills b as an ARP reply: sender = (ourMAC, ourIP) — the
// address being claimed — target = (requesterMAC, requesterIP).
func BuildReply(b []byte, ourMAC net.HardwareAddr, ourIP net.IP, requesterMAC net.HardwareAddr, requesterIP net.IP) (Frame, error) {
	return build(b, OpReply, ourMAC, ourIP, requesterMAC, requesterIP)
}

func build(b []byte, op uint16, senderMAC net.HardwareAddr, senderIP net.IP, targetMAC net.HardwareAddr, targetIP net.IP) (Frame, error) {
	if cap(b) < frameLen {
		b = make([]byte, frameLen)
	}
	b = b[:frameLen]
	sip := senderIP.To4()
	tip := targetIP.To4()
	if len(senderMAC) != 6 || len(targetMAC) != 6 || sip == nil || tip == nil {
		return nil, errBadAddr
	}
	f := Frame(b)
	binary.BigEndian.PutUint16(f[0:2], htypeEthernet)
	binary.BigEndian.PutUint16(f[2:4], ptypeIPv4)
	f[4] = 6
	f[5] = 4
	binary.BigEndian.PutUint16(f[6:8], op)
	copy(f[8:14], senderMAC)
	copy(f[14:18], sip)
	copy(f[18:24], targetMAC)
	copy(f[24:28], tip)
	return f, nil
}
