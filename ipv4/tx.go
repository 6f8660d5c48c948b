package ipv4

import (
	"context"
	"net"

	"github.com/sirupsen/logrus"

	"github.com/copperlink/linkstack"
	"github.com/copperlink/linkstack/arp"
)

// txRecorder is the minimal telemetry surface Tx needs.
type txRecorder interface {
	IncTxFrames(ethertype string)
}

// Resolver is the subset of arp.Tx that Tx needs, kept as an interface so
// tests can swap in a fake without standing up a real ARP table/link.
type Resolver interface {
	Resolve(ctx context.Context, senderIP, targetIP net.IP) (net.HardwareAddr, error)
}

// Tx sends IPv4 packets over an Ethernet link, resolving the next-hop MAC
// via arp before emitting. Grounded on original_source/src/ipv4.rs's
// Ipv4.send: compute the next-hop MAC first (the ARP lookup may block),
// then build the Ethernet+IPv4 headers, run the caller's builder, and
// checksum last.
type Tx struct {
	config   Config
	eth      *linkstack.EthernetTx
	resolver Resolver
	log      *logrus.Entry
	recorder txRecorder
}

// NewTx builds a Tx for config, sending over eth and resolving next-hops
// via resolver.
func NewTx(config Config, eth *linkstack.EthernetTx, resolver Resolver) *Tx {
	return &Tx{
		config:   config,
		eth:      eth,
		resolver: resolver,
		log:      logrus.WithField("component", "ipv4.tx"),
	}
}

// AttachRecorder wires an optional telemetry sink. Passing nil detaches it.
func (t *Tx) AttachRecorder(rec txRecorder) { t.recorder = rec }

// Send resolves dst's next-hop MAC, builds an Ethernet frame carrying an
// IPv4 header + payloadLen-byte payload destined for dst, runs custom to
// fill in the next-header protocol and payload, and transmits it.
// Checksum is always computed last over whatever custom leaves behind,
// mirroring original_source's builder-then-checksum order.
func (t *Tx) Send(ctx context.Context, dst net.IP, payloadLen int, custom func(Header)) error {
	nextHop := t.config.NextHop(dst)
	dstMAC, err := t.resolver.Resolve(ctx, t.config.IP, nextHop)
	if err != nil {
		return err
	}

	txErr := t.eth.Send(1, HeaderLen+payloadLen, func(f linkstack.Frame) {
		f.SetDst(dstMAC)
		f.SetEtherType(linkstack.EtherTypeIPv4)
		if _, err := Build(f.Payload(), payloadLen, t.config.IP, dst, custom); err != nil {
			t.log.WithError(err).Error("failed to build ipv4 header")
		}
	})
	if txErr != nil {
		return txErr
	}
	if t.recorder != nil {
		t.recorder.IncTxFrames(linkstack.EtherTypeIPv4.String())
	}
	return nil
}

var _ Resolver = (*arp.Tx)(nil)
