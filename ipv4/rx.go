package ipv4

import (
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/copperlink/linkstack"
)

// Listener is implemented by anything that wants IPv4 packets for a given
// (destination IP, next-header protocol) pair delivered to it. Mirrors
// original_source/src/ipv4.rs's Ipv4Listener trait.
type Listener interface {
	Recv(t time.Time, h Header)
}

// rxRecorder is the minimal telemetry surface Rx needs.
type rxRecorder interface {
	IncRxDropped(reason string)
}

// Rx implements linkstack.EthernetListener for EtherTypeIPv4, demuxing
// incoming packets by (destination IP, next-header protocol) the way
// original_source/src/ipv4.rs's Ipv4EthernetListener does via its
// IpListenerLookup map, translated from Arc<Mutex<HashMap<...>>> to a Go
// map behind a sync.RWMutex (reads dominate; registration is rare and
// happens mostly at startup).
type Rx struct {
	mu        sync.RWMutex
	listeners map[string]map[uint8]Listener // key: dstIP.String()
	log       *logrus.Entry
	recorder  rxRecorder
}

// NewRx returns an empty Rx. Listeners are added with Register.
func NewRx() *Rx {
	return &Rx{
		listeners: make(map[string]map[uint8]Listener),
		log:       logrus.WithField("component", "ipv4.rx"),
	}
}

// AttachRecorder wires an optional telemetry sink. Passing nil detaches it.
func (r *Rx) AttachRecorder(rec rxRecorder) { r.recorder = rec }

// Register binds listener to receive packets addressed to dstIP carrying
// next-header protocol proto.
//
// Unlike linkstack.EthernetRx's listener set (frozen at construction), the Rust
// source's IpListenerLookup is itself a live HashMap re-registrable at
// any time. Re-registering the same (dstIP, proto) pair here overwrites
// the previous listener rather than erroring or stacking both — the
// simplest interpretation of "insert" semantics a Go map naturally gives,
// and the one original_source/src/ipv4.rs's HashMap::insert-based
// lookup.insert(...) call already has.
func (r *Rx) Register(dstIP net.IP, proto uint8, listener Listener) {
	key := dstIP.String()
	r.mu.Lock()
	defer r.mu.Unlock()
	protos, ok := r.listeners[key]
	if !ok {
		protos = make(map[uint8]Listener)
		r.listeners[key] = protos
	}
	protos[proto] = listener
}

// Deregister removes any listener bound to (dstIP, proto).
func (r *Rx) Deregister(dstIP net.IP, proto uint8) {
	key := dstIP.String()
	r.mu.Lock()
	defer r.mu.Unlock()
	if protos, ok := r.listeners[key]; ok {
		delete(protos, proto)
		if len(protos) == 0 {
			delete(r.listeners, key)
		}
	}
}

// EtherType reports the EtherType this listener wants demuxed to it.
func (r *Rx) EtherType() linkstack.EtherType { return linkstack.EtherTypeIPv4 }

// Recv handles one IPv4 packet delivered by linkstack.EthernetRx.
func (r *Rx) Recv(t time.Time, f linkstack.Frame) linkstack.RxResult {
	h := Header(f.Payload())
	if !h.Valid() {
		r.log.Debug("dropping malformed ipv4 packet")
		r.drop("parse")
		return nil
	}

	dst := h.Destination()
	proto := h.Protocol()

	r.mu.RLock()
	listener, ok := r.lookup(dst, proto)
	r.mu.RUnlock()

	if !ok {
		r.log.WithField("dst", dst).WithField("proto", proto).Debug("no listener registered")
		r.drop("no_listener")
		return nil
	}
	listener.Recv(t, h)
	return nil
}

func (r *Rx) lookup(dst net.IP, proto uint8) (Listener, bool) {
	protos, ok := r.listeners[dst.String()]
	if !ok {
		return nil, false
	}
	l, ok := protos[proto]
	return l, ok
}

func (r *Rx) drop(reason string) {
	if r.recorder != nil {
		r.recorder.IncRxDropped(reason)
	}
}
