package arp

import (
	"net"
	"testing"
	"time"

	"github.com/copperlink/linkstack"
	"github.com/copperlink/linkstack/link"
)

func TestRxLearnsSenderIntoTable(t *testing.T) {
	vtx := linkstack.NewVersionedTx()
	tb := NewTable(vtx)
	ourIP := mustIP("192.168.1.1")
	ourMAC := net.HardwareAddr{0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa}

	rx := NewRx(tb, ourIP, ourMAC, nil)

	senderMAC := net.HardwareAddr{1, 2, 3, 4, 5, 6}
	senderIP := mustIP("192.168.1.50")
	buf := make([]byte, frameLen)
	frame, err := BuildRequest(buf, senderMAC, senderIP, ourIP)
	if err != nil {
		t.Fatalf("BuildRequest() error = %v", err)
	}

	ef := linkstack.BuildEthernet(nil, len(frame), senderMAC, linkstack.Broadcast, linkstack.EtherTypeARP)
	copy(ef.Payload(), frame)

	if res := rx.Recv(time.Now(), ef); res != nil {
		t.Fatalf("Recv() returned %v for a request with no reply transmitter", res)
	}

	got, _, ok := tb.Get(senderIP)
	if !ok {
		t.Fatal("sender was not learned into the table")
	}
	if got.String() != senderMAC.String() {
		t.Errorf("learned MAC = %v, want %v", got, senderMAC)
	}
	if vtx.Current() != 1 {
		t.Errorf("VersionedTx.Current() = %d, want 1", vtx.Current())
	}
}

func TestRxIgnoresGratuitousProbe(t *testing.T) {
	tb := NewTable(nil)
	rx := NewRx(tb, mustIP("192.168.1.1"), net.HardwareAddr{0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa}, nil)

	buf := make([]byte, frameLen)
	frame, _ := BuildRequest(buf, net.HardwareAddr{1, 2, 3, 4, 5, 6}, net.IPv4zero, mustIP("192.168.1.1"))
	ef := linkstack.BuildEthernet(nil, len(frame), net.HardwareAddr{1, 2, 3, 4, 5, 6}, linkstack.Broadcast, linkstack.EtherTypeARP)
	copy(ef.Payload(), frame)

	rx.Recv(time.Now(), ef)

	if _, _, ok := tb.Get(net.IPv4zero); ok {
		t.Fatal("probe with unspecified sender IP should not be learned")
	}
}

func TestRxDropsMalformedFrame(t *testing.T) {
	tb := NewTable(nil)
	rx := NewRx(tb, mustIP("192.168.1.1"), net.HardwareAddr{0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa}, nil)

	ef := linkstack.BuildEthernet(nil, 4, net.HardwareAddr{1, 2, 3, 4, 5, 6}, linkstack.Broadcast, linkstack.EtherTypeARP)

	if res := rx.Recv(time.Now(), ef); res != nil {
		t.Errorf("Recv() on malformed frame returned %v, want nil", res)
	}
}

func TestRxRepliesToRequestForOurIP(t *testing.T) {
	tb := NewTable(nil)
	ourIP := mustIP("192.168.1.1")
	ourMAC := net.HardwareAddr{0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa}

	a, b := link.NewBufferedPair()
	defer a.Close()
	defer b.Close()
	ethTx, err := linkstack.NewEthernetTx(ourMAC, linkstack.Broadcast, a, true)
	if err != nil {
		t.Fatalf("NewEthernetTx() error = %v", err)
	}

	rx := NewRx(tb, ourIP, ourMAC, ethTx)

	requesterMAC := net.HardwareAddr{1, 2, 3, 4, 5, 6}
	requesterIP := mustIP("192.168.1.50")
	buf := make([]byte, frameLen)
	reqFrame, _ := BuildRequest(buf, requesterMAC, requesterIP, ourIP)
	ef := linkstack.BuildEthernet(nil, len(reqFrame), requesterMAC, linkstack.Broadcast, linkstack.EtherTypeARP)
	copy(ef.Payload(), reqFrame)

	if res := rx.Recv(time.Now(), ef); res != nil {
		t.Fatalf("Recv() returned %v", res)
	}

	recvd, err := b.Recv()
	if err != nil {
		t.Fatalf("reply was not sent on the link: %v", err)
	}
	replyEth := linkstack.Frame(recvd.Data)
	if replyEth.EtherType() != linkstack.EtherTypeARP {
		t.Fatalf("reply ethertype = %v, want ARP", replyEth.EtherType())
	}
	if replyEth.Dst().String() != requesterMAC.String() {
		t.Errorf("reply dst = %v, want %v", replyEth.Dst(), requesterMAC)
	}
	replyARP := Frame(replyEth.Payload())
	if replyARP.Operation() != OpReply {
		t.Errorf("reply operation = %d, want OpReply", replyARP.Operation())
	}
	if !replyARP.SenderIP().Equal(ourIP) {
		t.Errorf("reply sender IP = %v, want %v", replyARP.SenderIP(), ourIP)
	}
}
