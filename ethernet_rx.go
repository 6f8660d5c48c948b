package linkstack

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// RxResult is the outcome of delivering one frame to one listener.
type RxResult error

// EthernetListener is implemented by anything that wants frames of a given
// EtherType delivered to it by EthernetRx. Mirrors
// original_source/src/ethernet/ethernet_rx.rs's EthernetListener trait.
type EthernetListener interface {
	// Recv is called once per received frame whose EtherType matches
	// EtherType(). Returning a non-nil error only causes it to be logged;
	// delivery to other listeners/frames is unaffected.
	Recv(t time.Time, f Frame) RxResult

	// EtherType returns the EtherType this listener wants to receive.
	EtherType() EtherType
}

// rxRecorder is the minimal telemetry surface EthernetRx needs.
type rxRecorder interface {
	IncRxDropped(reason string)
}

// EthernetRx demultiplexes received Ethernet frames to registered listeners
// by EtherType. The listener map is built once at construction and never
// mutated afterward.
type EthernetRx struct {
	listeners map[EtherType][]EthernetListener
	log       *logrus.Entry
	recorder  rxRecorder
}

// NewEthernetRx groups listeners by their declared EtherType. Listeners
// registered for the same EtherType are invoked in the order given here on
// every matching frame.
func NewEthernetRx(listeners []EthernetListener) *EthernetRx {
	m := make(map[EtherType][]EthernetListener)
	for _, l := range listeners {
		et := l.EtherType()
		m[et] = append(m[et], l)
	}
	return &EthernetRx{
		listeners: m,
		log:       logrus.WithField("component", "ethernet_rx"),
	}
}

// AttachRecorder wires an optional telemetry sink. Passing nil detaches it.
func (rx *EthernetRx) AttachRecorder(rec rxRecorder) { rx.recorder = rec }

// Run drives the ingress loop: it reads frames from link until ctx is
// cancelled or link.Recv returns a persistent error, dispatching each one
// to Dispatch. Frames are processed strictly in arrival order on this one
// goroutine.
func (rx *EthernetRx) Run(ctx context.Context, link LinkChannel) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		recvd, err := link.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		rx.Dispatch(recvd.Time, recvd.Data)
	}
}

// Dispatch parses b as an Ethernet frame and delivers it to every listener
// registered for its EtherType, in registration order. Parse failures and
// "no listener for this EtherType" are absorbed here: logged, not
// propagated.
func (rx *EthernetRx) Dispatch(t time.Time, b []byte) {
	f := Frame(b)
	if !f.Valid() {
		rx.log.Warn("dropping frame: too short to be ethernet")
		rx.drop("parse")
		return
	}
	et := f.EtherType()
	listeners, ok := rx.listeners[et]
	if !ok {
		rx.log.WithField("ethertype", et).Debug("no listener registered")
		rx.drop("no_listener")
		return
	}
	for _, l := range listeners {
		if err := l.Recv(t, f); err != nil {
			rx.log.WithError(err).WithField("ethertype", et).Warn("listener returned error")
		}
	}
}

func (rx *EthernetRx) drop(reason string) {
	if rx.recorder != nil {
		rx.recorder.IncRxDropped(reason)
	}
}
