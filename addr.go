// Package linkstack implements a user-space networking core — Ethernet
// frame demultiplexing, synchronous ARP resolution and IPv4 egress — meant
// to sit directly on a raw link-layer channel (raw socket, TAP device, pcap
// handle, or an in-memory test double) rather than the host network stack.
package linkstack

import "net"

// Addr pairs a link-layer address with a network-layer address, the same
// shape packet.Addr and the Rust source's (MacAddr, Ipv4Addr) pairs take
// at every resolver boundary.
type Addr struct {
	MAC net.HardwareAddr
	IP  net.IP
}

// Sentinel hardware addresses.
var (
	// Broadcast is the Ethernet broadcast address ff:ff:ff:ff:ff:ff.
	Broadcast = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	// Zero is the null hardware address, used as the ARP "target HW" field
	// in a request (the address being resolved is, by definition, unknown).
	Zero = net.HardwareAddr{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
)

// IsBroadcast reports whether mac is the Ethernet broadcast address.
func IsBroadcast(mac net.HardwareAddr) bool {
	return len(mac) == 6 && mac.String() == Broadcast.String()
}

// IsZero reports whether mac is the null hardware address.
func IsZero(mac net.HardwareAddr) bool {
	return len(mac) == 6 && mac.String() == Zero.String()
}

// dupMAC returns an owned copy of mac. Frames handed to listeners are views
// over a shared receive buffer that gets reused on the next read; anything
// that outlives a single recv call (table entries, waiter notifications)
// must copy out of it first.
func dupMAC(mac net.HardwareAddr) net.HardwareAddr {
	out := make(net.HardwareAddr, len(mac))
	copy(out, mac)
	return out
}

// dupIP returns an owned 4-byte copy of ip.
func dupIP(ip net.IP) net.IP {
	ip4 := ip.To4()
	out := make(net.IP, len(ip4))
	copy(out, ip4)
	return out
}
