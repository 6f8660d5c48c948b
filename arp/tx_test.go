package arp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/copperlink/linkstack"
	"github.com/copperlink/linkstack/link"
)

func TestTxResolveReturnsCachedEntryWithoutSending(t *testing.T) {
	tb := NewTable(nil)
	want := net.HardwareAddr{1, 1, 1, 1, 1, 1}
	targetIP := mustIP("192.168.1.50")
	tb.Insert(targetIP, want)

	a, b := link.NewBufferedPair()
	defer a.Close()
	defer b.Close()
	ethTx, err := linkstack.NewEthernetTx(net.HardwareAddr{0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa}, linkstack.Broadcast, a, true)
	if err != nil {
		t.Fatalf("NewEthernetTx() error = %v", err)
	}
	tx := NewTx(tb, ethTx, net.HardwareAddr{0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa})

	got, err := tx.Resolve(context.Background(), mustIP("192.168.1.1"), targetIP)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.String() != want.String() {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}

	drainErr := make(chan error, 1)
	go func() {
		_, err := b.Recv()
		drainErr <- err
	}()
	select {
	case <-drainErr:
		t.Fatal("Resolve() on a cached entry sent a broadcast request")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTxResolveSendsRequestAndBlocksForReply(t *testing.T) {
	tb := NewTable(nil)
	a, b := link.NewBufferedPair()
	defer a.Close()
	defer b.Close()
	ourMAC := net.HardwareAddr{0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa}
	ethTx, err := linkstack.NewEthernetTx(ourMAC, linkstack.Broadcast, a, true)
	if err != nil {
		t.Fatalf("NewEthernetTx() error = %v", err)
	}
	tx := NewTx(tb, ethTx, ourMAC)

	targetIP := mustIP("192.168.1.50")
	senderIP := mustIP("192.168.1.1")
	targetMAC := net.HardwareAddr{2, 2, 2, 2, 2, 2}

	resultCh := make(chan net.HardwareAddr, 1)
	errCh := make(chan error, 1)
	go func() {
		mac, err := tx.Resolve(context.Background(), senderIP, targetIP)
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- mac
	}()

	recvd, err := b.Recv()
	if err != nil {
		t.Fatalf("request was not sent on the link: %v", err)
	}
	reqEth := linkstack.Frame(recvd.Data)
	if reqEth.EtherType() != linkstack.EtherTypeARP {
		t.Fatalf("request ethertype = %v, want ARP", reqEth.EtherType())
	}
	reqARP := Frame(reqEth.Payload())
	if reqARP.Operation() != OpRequest {
		t.Fatalf("request operation = %d, want OpRequest", reqARP.Operation())
	}
	if !reqARP.TargetIP().Equal(targetIP) {
		t.Fatalf("request target IP = %v, want %v", reqARP.TargetIP(), targetIP)
	}

	// Simulate the reply arriving via arp.Rx on the table Tx shares.
	tb.Insert(targetIP, targetMAC)

	select {
	case mac := <-resultCh:
		if mac.String() != targetMAC.String() {
			t.Errorf("Resolve() = %v, want %v", mac, targetMAC)
		}
	case err := <-errCh:
		t.Fatalf("Resolve() error = %v", err)
	case <-time.After(time.Second):
		t.Fatal("Resolve() never returned after the reply was inserted")
	}
}

func TestTxResolveHonorsContextCancellation(t *testing.T) {
	tb := NewTable(nil)
	a, b := link.NewBufferedPair()
	defer a.Close()
	go link.Discard(b)
	ourMAC := net.HardwareAddr{0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa}
	ethTx, err := linkstack.NewEthernetTx(ourMAC, linkstack.Broadcast, a, true)
	if err != nil {
		t.Fatalf("NewEthernetTx() error = %v", err)
	}
	tx := NewTx(tb, ethTx, ourMAC)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = tx.Resolve(ctx, mustIP("192.168.1.1"), mustIP("192.168.1.99"))
	if err != context.DeadlineExceeded {
		t.Fatalf("Resolve() error = %v, want context.DeadlineExceeded", err)
	}
}
