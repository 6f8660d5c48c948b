package ipv4

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/copperlink/linkstack"
	"github.com/copperlink/linkstack/link"
)

type fakeResolver struct {
	mac        net.HardwareAddr
	err        error
	lastTarget net.IP
}

func (f *fakeResolver) Resolve(ctx context.Context, senderIP, targetIP net.IP) (net.HardwareAddr, error) {
	f.lastTarget = targetIP
	return f.mac, f.err
}

func newTestTx(t *testing.T, resolver Resolver) (*Tx, *link.Buffered) {
	t.Helper()
	cfg, err := NewConfig(net.ParseIP("192.168.1.10"), 24, net.ParseIP("192.168.1.1"))
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	a, b := link.NewBufferedPair()
	t.Cleanup(func() { a.Close(); b.Close() })
	ethTx, err := linkstack.NewEthernetTx(net.HardwareAddr{0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa}, net.HardwareAddr{0xbb, 0xbb, 0xbb, 0xbb, 0xbb, 0xbb}, a, false)
	if err != nil {
		t.Fatalf("NewEthernetTx() error = %v", err)
	}
	return NewTx(cfg, ethTx, resolver), b
}

func TestTxSendResolvesDirectNextHop(t *testing.T) {
	resolver := &fakeResolver{mac: net.HardwareAddr{1, 2, 3, 4, 5, 6}}
	tx, b := newTestTx(t, resolver)

	dst := net.ParseIP("192.168.1.200")
	err := tx.Send(context.Background(), dst, 4, func(h Header) {
		h.SetProtocol(17)
		copy(h.Payload(), []byte("ping"))
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !resolver.lastTarget.Equal(dst) {
		t.Errorf("resolver was asked for %v, want %v (direct next hop)", resolver.lastTarget, dst)
	}

	recvd, err := b.Recv()
	if err != nil {
		t.Fatalf("frame was not sent: %v", err)
	}
	f := linkstack.Frame(recvd.Data)
	if f.Dst().String() != resolver.mac.String() {
		t.Errorf("frame dst MAC = %v, want %v", f.Dst(), resolver.mac)
	}
	if f.EtherType() != linkstack.EtherTypeIPv4 {
		t.Errorf("frame ethertype = %v, want IPv4", f.EtherType())
	}
	h := Header(f.Payload())
	if !h.Destination().Equal(dst) {
		t.Errorf("ipv4 destination = %v, want %v", h.Destination(), dst)
	}
	if h.Protocol() != 17 {
		t.Errorf("ipv4 protocol = %d, want 17", h.Protocol())
	}
}

func TestTxSendResolvesGatewayForRemoteDestination(t *testing.T) {
	resolver := &fakeResolver{mac: net.HardwareAddr{1, 2, 3, 4, 5, 6}}
	tx, b := newTestTx(t, resolver)

	dst := net.ParseIP("8.8.8.8")
	if err := tx.Send(context.Background(), dst, 0, nil); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !resolver.lastTarget.Equal(net.ParseIP("192.168.1.1")) {
		t.Errorf("resolver was asked for %v, want the gateway 192.168.1.1", resolver.lastTarget)
	}
	if _, err := b.Recv(); err != nil {
		t.Fatalf("frame was not sent: %v", err)
	}
}

func TestTxSendPropagatesResolveError(t *testing.T) {
	wantErr := errors.New("resolve failed")
	resolver := &fakeResolver{err: wantErr}
	tx, _ := newTestTx(t, resolver)

	err := tx.Send(context.Background(), net.ParseIP("192.168.1.200"), 0, nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("Send() error = %v, want %v", err, wantErr)
	}
}
