package arp

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/copperlink/linkstack"
)

// ErrResolveFailed is returned by Resolve when the waiter channel is
// closed/abandoned without ever receiving a reply. There is no built-in
// retry or timeout here — callers apply their own via ctx.
var ErrResolveFailed = errors.New("arp: resolve failed")

// txRecorder is the resolve-telemetry surface Tx needs.
type txRecorder interface {
	IncResolve(result string)
	ObserveResolveDuration(seconds float64)
}

// Tx is the synchronous ARP resolver: Resolve blocks the calling
// goroutine until either Table already has the answer or a reply
// arrives for a request Tx just broadcast. Grounded on
// original_source/src/arp.rs's arp() function, which performs the same
// "check table, else send request and block on a channel" sequence.
type Tx struct {
	table    *Table
	tx       *linkstack.EthernetTx
	ourMAC   net.HardwareAddr
	log      *logrus.Entry
	recorder txRecorder
}

// NewTx builds a Tx that resolves against table and broadcasts requests
// via tx. tx must have been constructed with arpUse=true (broadcast dst).
func NewTx(table *Table, tx *linkstack.EthernetTx, ourMAC net.HardwareAddr) *Tx {
	return &Tx{
		table:  table,
		tx:     tx,
		ourMAC: ourMAC,
		log:    logrus.WithField("component", "arp.tx"),
	}
}

// AttachRecorder wires an optional telemetry sink. Passing nil detaches it.
func (t *Tx) AttachRecorder(rec txRecorder) { t.recorder = rec }

// Resolve returns the MAC address bound to targetIP, blocking until one is
// known. If the table has no entry, it registers a waiter BEFORE emitting
// the broadcast request — a reply racing the request between "send" and
// "register" would otherwise be lost forever. Resolve returns ctx.Err() if ctx is
// cancelled first, or ErrResolveFailed if the waiter channel is closed
// without a value.
func (t *Tx) Resolve(ctx context.Context, senderIP, targetIP net.IP) (net.HardwareAddr, error) {
	start := time.Now()
	mac, waiter, ok := t.table.Get(targetIP)
	if ok {
		t.record("cached", start)
		return mac, nil
	}

	if err := t.request(senderIP, targetIP); err != nil {
		t.record("send_error", start)
		return nil, err
	}

	select {
	case mac, ok := <-waiter:
		if !ok {
			t.record("failed", start)
			return nil, ErrResolveFailed
		}
		t.record("resolved", start)
		return mac, nil
	case <-ctx.Done():
		t.record("timeout", start)
		return nil, ctx.Err()
	}
}

func (t *Tx) request(senderIP, targetIP net.IP) *linkstack.TxError {
	return t.tx.Send(1, frameLen, func(f linkstack.Frame) {
		f.SetEtherType(linkstack.EtherTypeARP)
		if _, err := BuildRequest(f.Payload(), t.ourMAC, senderIP, targetIP); err != nil {
			t.log.WithError(err).Error("failed to build arp request")
		}
	})
}

func (t *Tx) record(result string, start time.Time) {
	if t.recorder == nil {
		return
	}
	t.recorder.IncResolve(result)
	t.recorder.ObserveResolveDuration(time.Since(start).Seconds())
}
