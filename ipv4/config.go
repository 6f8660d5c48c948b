package ipv4

import (
	"errors"
	"fmt"
	"net"
)

// ErrInvalidNetwork and ErrGwNotInNetwork mirror
// original_source/src/ipv4.rs's IpConfError enum (InvalidNetwork /
// GwNotInNetwork), translated from a Rust enum-with-payload to a sentinel
// plus a wrapping error for the network-parse case.
var (
	ErrInvalidNetwork = errors.New("ipv4: invalid network")
	ErrGwNotInNetwork = errors.New("ipv4: gateway not in network")
)

// Network wraps net.IPNet with the Contains semantics the egress path
// needs, named to match the Ipv4Network vocabulary used elsewhere.
type Network struct {
	ipnet *net.IPNet
}

// NewNetwork parses a CIDR-style network from ip/prefixLen.
func NewNetwork(ip net.IP, prefixLen int) (Network, error) {
	ip4 := ip.To4()
	if ip4 == nil {
		return Network{}, fmt.Errorf("%w: %s is not an IPv4 address", ErrInvalidNetwork, ip)
	}
	if prefixLen < 0 || prefixLen > 32 {
		return Network{}, fmt.Errorf("%w: prefix length %d out of range", ErrInvalidNetwork, prefixLen)
	}
	mask := net.CIDRMask(prefixLen, 32)
	return Network{ipnet: &net.IPNet{IP: ip4.Mask(mask), Mask: mask}}, nil
}

// Contains reports whether ip falls inside this network.
func (n Network) Contains(ip net.IP) bool {
	if n.ipnet == nil {
		return false
	}
	return n.ipnet.Contains(ip)
}

func (n Network) String() string {
	if n.ipnet == nil {
		return "<invalid>"
	}
	return n.ipnet.String()
}

// Config is one IPv4 configuration on one Ethernet interface: our own
// address, the default gateway, and the local network those two
// numbers must agree on. Grounded on original_source/src/ipv4.rs's
// Ipv4Config.new, which runs the same "parse network, reject a gateway
// outside it" check.
type Config struct {
	IP  net.IP
	GW  net.IP
	Net Network
}

// NewConfig builds a Config for ip/prefixLen with default gateway gw. It
// returns ErrInvalidNetwork if ip/prefixLen don't describe a valid IPv4
// network, or ErrGwNotInNetwork if gw falls outside that network.
func NewConfig(ip net.IP, prefixLen int, gw net.IP) (Config, error) {
	nw, err := NewNetwork(ip, prefixLen)
	if err != nil {
		return Config{}, err
	}
	if !nw.Contains(gw) {
		return Config{}, ErrGwNotInNetwork
	}
	return Config{IP: ip.To4(), GW: gw.To4(), Net: nw}, nil
}

// NextHop returns the IP that must be ARP-resolved to reach dst: dst
// itself if it's inside our network, otherwise the configured gateway,
// following original_source's get_dst_mac.
func (c Config) NextHop(dst net.IP) net.IP {
	if c.Net.Contains(dst) {
		return dst
	}
	return c.GW
}
