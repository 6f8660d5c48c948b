package link

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/gopacket/pcap"
	"github.com/sirupsen/logrus"

	"github.com/copperlink/linkstack"
)

// PCAP is a linkstack.LinkChannel backed by libpcap, for use against a real
// interface (raw socket / TAP device as seen by the OS). Grounded on
// Brightgate's ap_common/network/network.go, which opens interfaces via
// github.com/google/gopacket/pcap for exactly this kind of raw link
// capture/injection.
type PCAP struct {
	handle *pcap.Handle
	iface  string
	log    *logrus.Entry
}

// OpenLive opens iface in (non-)promiscuous mode with the given snapshot
// length and read timeout. Following the pattern in athena-dhcpd's
// conflict.NewARPProber ("try to open the raw capability;
// on failure, log loudly and return an error rather than panicking so the
// caller can decide whether to run degraded"), OpenLive never panics: a
// permission or device error comes back as a plain error.
func OpenLive(iface string, snaplen int32, promisc bool, timeout time.Duration) (*PCAP, error) {
	log := logrus.WithField("component", "link.pcap").WithField("interface", iface)
	handle, err := pcap.OpenLive(iface, snaplen, promisc, timeout)
	if err != nil {
		log.WithError(err).Error("failed to open pcap handle — raw link capture unavailable")
		return nil, fmt.Errorf("link: pcap open %s: %w", iface, err)
	}
	log.Info("pcap handle opened")
	return &PCAP{handle: handle, iface: iface, log: log}, nil
}

// Recv blocks until a frame is available on the interface.
func (p *PCAP) Recv() (linkstack.Received, error) {
	data, ci, err := p.handle.ReadPacketData()
	if err != nil {
		return linkstack.Received{}, err
	}
	return linkstack.Received{Time: ci.Timestamp, Data: data}, nil
}

// Reserve builds n frames of frameSize bytes and writes each to the wire in
// turn. libpcap has no notion of pre-reserved buffers shared with the
// kernel, so "reserve" here is just "allocate, build, write immediately" —
// the buffer is never retained past one WritePacketData call.
func (p *PCAP) Reserve(n int, frameSize int, build func([]byte)) error {
	if p.handle == nil {
		return errors.New("link: pcap handle not open")
	}
	for i := 0; i < n; i++ {
		buf := make([]byte, frameSize)
		build(buf)
		if err := p.handle.WritePacketData(buf); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the pcap handle.
func (p *PCAP) Close() error {
	if p.handle != nil {
		p.handle.Close()
	}
	return nil
}
