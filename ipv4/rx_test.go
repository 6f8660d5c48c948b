package ipv4

import (
	"net"
	"testing"
	"time"

	"github.com/copperlink/linkstack"
)

type fakeIPListener struct {
	got []Header
}

func (l *fakeIPListener) Recv(t time.Time, h Header) {
	l.got = append(l.got, h)
}

func buildTestIPFrame(t *testing.T, dst net.IP, proto uint8) linkstack.Frame {
	t.Helper()
	h, err := Build(nil, 0, net.ParseIP("192.168.1.1"), dst, func(h Header) {
		h.SetProtocol(proto)
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	f := linkstack.BuildEthernet(nil, len(h), net.HardwareAddr{1, 2, 3, 4, 5, 6}, net.HardwareAddr{6, 5, 4, 3, 2, 1}, linkstack.EtherTypeIPv4)
	copy(f.Payload(), h)
	return f
}

func TestRxDeliversToRegisteredListener(t *testing.T) {
	rx := NewRx()
	l := &fakeIPListener{}
	dst := net.ParseIP("192.168.1.10")
	rx.Register(dst, 17, l)

	rx.Recv(time.Now(), buildTestIPFrame(t, dst, 17))

	if len(l.got) != 1 {
		t.Fatalf("listener received %d packets, want 1", len(l.got))
	}
}

func TestRxSkipsUnregisteredProtocol(t *testing.T) {
	rx := NewRx()
	l := &fakeIPListener{}
	dst := net.ParseIP("192.168.1.10")
	rx.Register(dst, 17, l)

	rx.Recv(time.Now(), buildTestIPFrame(t, dst, 6))

	if len(l.got) != 0 {
		t.Fatalf("listener received %d packets for an unregistered protocol, want 0", len(l.got))
	}
}

func TestRxRegisterOverwritesPreviousListener(t *testing.T) {
	rx := NewRx()
	first := &fakeIPListener{}
	second := &fakeIPListener{}
	dst := net.ParseIP("192.168.1.10")
	rx.Register(dst, 17, first)
	rx.Register(dst, 17, second)

	rx.Recv(time.Now(), buildTestIPFrame(t, dst, 17))

	if len(first.got) != 0 {
		t.Error("first listener should have been overwritten")
	}
	if len(second.got) != 1 {
		t.Error("second listener should have received the packet")
	}
}

func TestRxDeregisterRemovesListener(t *testing.T) {
	rx := NewRx()
	l := &fakeIPListener{}
	dst := net.ParseIP("192.168.1.10")
	rx.Register(dst, 17, l)
	rx.Deregister(dst, 17)

	rx.Recv(time.Now(), buildTestIPFrame(t, dst, 17))

	if len(l.got) != 0 {
		t.Error("deregistered listener should not receive packets")
	}
}

func TestRxDropsMalformedPacket(t *testing.T) {
	rx := NewRx()
	f := linkstack.BuildEthernet(nil, 2, net.HardwareAddr{1, 2, 3, 4, 5, 6}, net.HardwareAddr{6, 5, 4, 3, 2, 1}, linkstack.EtherTypeIPv4)

	if res := rx.Recv(time.Now(), f); res != nil {
		t.Errorf("Recv() on malformed packet returned %v, want nil", res)
	}
}
