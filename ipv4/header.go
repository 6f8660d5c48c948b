// Package ipv4 implements IPv4 egress and ingress over an Ethernet link:
// next-hop selection (direct vs gateway), header synthesis, and demux of
// incoming packets by (destination IP, next-header protocol).
package ipv4

import (
	"encoding/binary"
	"errors"
	"net"
)

// HeaderLen is the fixed length of an IPv4 header with no options (IHL=5).
// This module never emits or expects options; original_source's
// MutableIpv4Packet builder never sets options either.
const HeaderLen = 20

// Flag bits for the 3-bit flags field, as laid out by the pnet packet this
// module's semantics were translated from: bit 1 is don't-fragment.
const flagDontFragment = 0x2

// DefaultTTL matches original_source/src/ipv4.rs's hardcoded ip_pkg.set_ttl(40).
const DefaultTTL = 40

var errNotIPv4 = errors.New("ipv4: source and destination must be IPv4 addresses")

// Header is a memory-mapped view over an IPv4 header, in the same
// byte-accessor style as linkstack.Frame and arp.Frame.
type Header []byte

// NewHeader wraps b as an IPv4 header view.
func NewHeader(b []byte) Header { return Header(b) }

// Valid reports whether the header is long enough and has version 4.
func (h Header) Valid() bool {
	if len(h) < HeaderLen {
		return false
	}
	return h.Version() == 4
}

// Version returns the 4-bit version field (upper nibble of byte 0).
func (h Header) Version() uint8 { return h[0] >> 4 }

// IHL returns the header length in 32-bit words (lower nibble of byte 0).
func (h Header) IHL() uint8 { return h[0] & 0x0F }

// TotalLength returns the total packet length (header + payload) in bytes.
func (h Header) TotalLength() uint16 { return binary.BigEndian.Uint16(h[2:4]) }

// TTL returns the time-to-live field.
func (h Header) TTL() uint8 { return h[8] }

// Protocol returns the next-header protocol number (e.g. 6=TCP, 17=UDP).
func (h Header) Protocol() uint8 { return h[9] }

// Checksum returns the header checksum field as stored.
func (h Header) Checksum() uint16 { return binary.BigEndian.Uint16(h[10:12]) }

// Source returns the source IPv4 address.
func (h Header) Source() net.IP { return net.IP(h[12:16]) }

// Destination returns the destination IPv4 address.
func (h Header) Destination() net.IP { return net.IP(h[16:20]) }

// Payload returns the bytes following a header of this Header's own IHL.
// Callers needing a fixed HeaderLen-byte payload boundary (this module
// never emits options) can also just slice past HeaderLen directly.
func (h Header) Payload() []byte { return h[int(h.IHL())*4:] }

// SetVersionIHL writes the version and IHL fields packed into byte 0.
func (h Header) SetVersionIHL(version, ihl uint8) { h[0] = version<<4 | (ihl & 0x0F) }

// SetDSCPECN writes the combined DSCP/ECN byte.
func (h Header) SetDSCPECN(v uint8) { h[1] = v }

// SetTotalLength writes the total packet length field.
func (h Header) SetTotalLength(v uint16) { binary.BigEndian.PutUint16(h[2:4], v) }

// SetIdentification writes the fragment identification field.
func (h Header) SetIdentification(v uint16) { binary.BigEndian.PutUint16(h[4:6], v) }

// SetFlagsFragOffset writes the combined 3-bit flags + 13-bit fragment
// offset field.
func (h Header) SetFlagsFragOffset(flags uint8, fragOffset uint16) {
	v := uint16(flags&0x7)<<13 | (fragOffset & 0x1FFF)
	binary.BigEndian.PutUint16(h[6:8], v)
}

// SetTTL writes the time-to-live field.
func (h Header) SetTTL(v uint8) { h[8] = v }

// SetProtocol writes the next-header protocol field.
func (h Header) SetProtocol(v uint8) { h[9] = v }

// SetChecksum writes the header checksum field.
func (h Header) SetChecksum(v uint16) { binary.BigEndian.PutUint16(h[10:12], v) }

// SetSource writes the source IPv4 address.
func (h Header) SetSource(ip net.IP) { copy(h[12:16], ip.To4()) }

// SetDestination writes the destination IPv4 address.
func (h Header) SetDestination(ip net.IP) { copy(h[16:20], ip.To4()) }

// checksum computes the one's-complement 16-bit Internet checksum (RFC
// 791 §3.1) over h, which must be exactly the HeaderLen-byte header —
// never the payload, matching original_source's
// "checksum(&ip_pkg.to_immutable())", where pnet's packet view covers
// only the header region. The caller must zero the checksum field first
// — this function does not skip it, matching original_source's
// "set_checksum(0); checksum(&pkg); set_checksum(result)" sequence.
func checksum(h Header) uint16 {
	var sum uint32
	n := len(h)
	for i := 0; i+1 < n; i += 2 {
		sum += uint32(binary.BigEndian.Uint16(h[i : i+2]))
	}
	if n%2 == 1 {
		sum += uint32(h[n-1]) << 8
	}
	for sum>>16 != 0 {
		sum = (sum & 0xFFFF) + (sum >> 16)
	}
	return ^uint16(sum)
}

// Build fills b (allocating a HeaderLen+payloadLen buffer if b is too
// small) with a no-options IPv4 header whose fixed fields match
// original_source/src/ipv4.rs's Ipv4.send builder exactly: version 4, IHL
// 5, DSCP/ECN 0, identification 0, don't-fragment set, fragment offset 0,
// TTL 40. custom runs after the fixed fields are set and before the
// checksum is computed, mirroring the Rust source's "builder(&mut ip_pkg)"
// callback placement — it may override protocol or any other field, but
// the checksum is always computed last over whatever custom left behind.
func Build(b []byte, payloadLen int, src, dst net.IP, custom func(Header)) (Header, error) {
	total := HeaderLen + payloadLen
	if cap(b) < total {
		b = make([]byte, total)
	}
	b = b[:total]
	if src.To4() == nil || dst.To4() == nil {
		return nil, errNotIPv4
	}

	h := Header(b)
	h.SetVersionIHL(4, 5)
	h.SetDSCPECN(0)
	h.SetTotalLength(uint16(total))
	h.SetIdentification(0)
	h.SetFlagsFragOffset(flagDontFragment, 0)
	h.SetTTL(DefaultTTL)
	h.SetSource(src)
	h.SetDestination(dst)

	if custom != nil {
		custom(h)
	}

	h.SetChecksum(0)
	h.SetChecksum(checksum(h[:HeaderLen]))
	return h, nil
}
