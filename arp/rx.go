package arp

import (
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/copperlink/linkstack"
)

// rxRecorder is the resolve-telemetry surface Rx needs; satisfied
// structurally by telemetry.Recorder.
type rxRecorder interface {
	IncResolve(result string)
}

// Rx implements linkstack.EthernetListener for EtherTypeARP. It parses
// incoming ARP frames, learns the sender's (IP, MAC) into the
// shared Table — waking any Tx.Resolve callers blocked on that IP — and, if
// the frame is a request for our own IP, emits a reply. Grounded on
// arp/handler.go's dispatch loop, generalized from "record every sighting
// for the spoof/hunt engine" to "resolve and reply".
type Rx struct {
	table    *Table
	ourIP    net.IP
	ourMAC   net.HardwareAddr
	tx       *linkstack.EthernetTx
	log      *logrus.Entry
	recorder rxRecorder
}

// NewRx builds an Rx that learns into table (bumping table's wired
// VersionedTx on change — see NewTable) and, if tx is non-nil, answers
// ARP requests for ourIP/ourMAC. tx's fixed destination is irrelevant
// here: Recv always overrides Dst per reply.
func NewRx(table *Table, ourIP net.IP, ourMAC net.HardwareAddr, tx *linkstack.EthernetTx) *Rx {
	return &Rx{
		table:  table,
		ourIP:  ourIP,
		ourMAC: ourMAC,
		tx:     tx,
		log:    logrus.WithField("component", "arp.rx"),
	}
}

// AttachRecorder wires an optional telemetry sink. Passing nil detaches it.
func (r *Rx) AttachRecorder(rec rxRecorder) { r.recorder = rec }

// EtherType reports the EtherType this listener wants demuxed to it.
func (r *Rx) EtherType() linkstack.EtherType { return linkstack.EtherTypeARP }

// Recv handles one ARP frame delivered by linkstack.EthernetRx.
func (r *Rx) Recv(t time.Time, f linkstack.Frame) linkstack.RxResult {
	af := Frame(f.Payload())
	if !af.Valid() {
		r.log.Debug("dropping malformed arp frame")
		return nil
	}

	senderMAC := af.SenderMAC()
	senderIP := af.SenderIP()
	if senderIP.IsUnspecified() || linkstack.IsZero(senderMAC) {
		// gratuitous probe / incomplete announcement; nothing to learn yet.
		return nil
	}

	changed := r.table.insert(senderIP, senderMAC)
	if r.recorder != nil && changed {
		r.recorder.IncResolve("learned")
	}

	if af.Operation() != OpRequest || r.tx == nil {
		return nil
	}
	if !af.TargetIP().Equal(r.ourIP) {
		return nil
	}
	if txErr := r.reply(senderMAC, senderIP); txErr != nil {
		return txErr
	}
	return nil
}

func (r *Rx) reply(requesterMAC net.HardwareAddr, requesterIP net.IP) *linkstack.TxError {
	return r.tx.Send(1, frameLen, func(ef linkstack.Frame) {
		ef.SetDst(requesterMAC)
		ef.SetEtherType(linkstack.EtherTypeARP)
		if _, err := BuildReply(ef.Payload(), r.ourMAC, r.ourIP, requesterMAC, requesterIP); err != nil {
			r.log.WithError(err).Error("failed to build arp reply")
		}
	})
}
