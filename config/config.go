// Package config loads the on-disk YAML configuration for a linkstack
// instance: which interface to bind, this host's addresses, and the
// default gateway/network.
package config

import (
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/copperlink/linkstack/ipv4"
)

// DefaultLogLevel is used when LogLevel is left unset in the config file.
const DefaultLogLevel = "info"

// StackConfig is the top-level on-disk configuration. arp/handler.go's
// Config struct tags every field yaml:"-" because it builds its Config
// entirely in Go; this module inverts that and actually loads these
// fields from a file, so the tags carry real keys.
type StackConfig struct {
	Interface string `yaml:"interface"`
	HostMAC   string `yaml:"host_mac"`
	HostIP    string `yaml:"host_ip"`
	Gateway   string `yaml:"gateway"`
	Network   string `yaml:"network"` // CIDR prefix length, e.g. "24"
	LogLevel  string `yaml:"log_level"`
}

// Load reads and parses a YAML config file at path, filling in LogLevel's
// default if left blank.
func Load(path string) (StackConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return StackConfig{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var cfg StackConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return StackConfig{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return cfg, nil
}

// Resolved is a StackConfig with its string fields parsed into the typed
// values the rest of the module works with.
type Resolved struct {
	Interface string
	HostMAC   net.HardwareAddr
	HostIP    net.IP
	Ipv4      ipv4.Config
	LogLevel  string
}

// Resolve parses every field of cfg, returning a descriptive error for the
// first one that fails. ipv4.NewConfig's own checks (gateway-in-network)
// run as part of this, so a StackConfig with a gateway outside its network
// is rejected here, not downstream.
func (cfg StackConfig) Resolve() (Resolved, error) {
	if cfg.Interface == "" {
		return Resolved{}, fmt.Errorf("config: interface is required")
	}
	mac, err := net.ParseMAC(cfg.HostMAC)
	if err != nil {
		return Resolved{}, fmt.Errorf("config: host_mac %q: %w", cfg.HostMAC, err)
	}
	hostIP := net.ParseIP(cfg.HostIP)
	if hostIP == nil || hostIP.To4() == nil {
		return Resolved{}, fmt.Errorf("config: host_ip %q is not a valid IPv4 address", cfg.HostIP)
	}
	gw := net.ParseIP(cfg.Gateway)
	if gw == nil || gw.To4() == nil {
		return Resolved{}, fmt.Errorf("config: gateway %q is not a valid IPv4 address", cfg.Gateway)
	}
	var prefixLen int
	if _, err := fmt.Sscanf(cfg.Network, "%d", &prefixLen); err != nil {
		return Resolved{}, fmt.Errorf("config: network %q is not a prefix length: %w", cfg.Network, err)
	}
	ipConf, err := ipv4.NewConfig(hostIP, prefixLen, gw)
	if err != nil {
		return Resolved{}, fmt.Errorf("config: %w", err)
	}
	return Resolved{
		Interface: cfg.Interface,
		HostMAC:   mac,
		HostIP:    hostIP,
		Ipv4:      ipConf,
		LogLevel:  cfg.LogLevel,
	}, nil
}
