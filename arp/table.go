package arp

import (
	"net"
	"sync"
)

// Table is the shared {table, waiters} record: one mutex guards both the
// IP->MAC map and the map of pending waiter channels. Direct translation
// of original_source/src/arp/mod.rs's
// TableData behind an Arc<Mutex<_>> into a single Go struct behind a
// sync.Mutex — arp.Handler (the spoof/scan engine this package replaces)
// has no blocking resolver to ground this on, so it's grounded on the
// Rust source instead.
type Table struct {
	mu      sync.Mutex
	entries map[string]net.HardwareAddr // key: ip.String()
	waiters map[string][]chan net.HardwareAddr
	vtx     VersionedBump
}

// VersionedBump is the minimal surface Table needs to bump a
// linkstack.VersionedTx, kept as a local interface so Table accepts any
// type with an Inc method (*linkstack.VersionedTx or a test counter).
type VersionedBump interface {
	Inc()
}

// NewTable returns an empty Table that bumps vtx whenever Insert (or an
// ARP reply, via Rx) learns a new or changed mapping. vtx may be nil, in
// which case no bump is ever attempted (useful for tests that only care
// about the table itself).
func NewTable(vtx VersionedBump) *Table {
	return &Table{
		entries: make(map[string]net.HardwareAddr),
		waiters: make(map[string][]chan net.HardwareAddr),
		vtx:     vtx,
	}
}

// Get is the non-blocking lookup: if ip is already resolved it returns
// the MAC immediately with ok=true. Otherwise it registers a
// fresh one-shot waiter for ip and returns it (ok=false) — the caller is
// expected to emit a request and then wait on the returned channel, as Tx
// does. Registration happens under the same lock as the read so a reply
// racing the request can never arrive between the check and the register.
func (t *Table) Get(ip net.IP) (mac net.HardwareAddr, waiter <-chan net.HardwareAddr, ok bool) {
	key := ip.String()
	t.mu.Lock()
	defer t.mu.Unlock()
	if mac, ok := t.entries[key]; ok {
		return mac, nil, true
	}
	ch := make(chan net.HardwareAddr, 1)
	t.waiters[key] = append(t.waiters[key], ch)
	return nil, ch, false
}

// Insert is the manual-binding operation: it acquires the lock, inserts,
// and drains waiters exactly as an ARP reply would. Rx calls the
// unexported form from its own lock-free path; Insert is the public
// entry point for operator-supplied static bindings.
//
// The Rust source does not bump VersionedTx on a manual insert, marking
// it a TODO. This implementation chooses to bump it when the entry is
// new or changed — see DESIGN.md "Open Question decisions" for the
// rationale.
func (t *Table) Insert(ip net.IP, mac net.HardwareAddr) {
	t.insert(ip, mac)
}

func (t *Table) insert(ip net.IP, mac net.HardwareAddr) bool {
	key := ip.String()
	newMAC := dupMAC(mac)

	t.mu.Lock()
	old, existed := t.entries[key]
	changed := !existed || old.String() != newMAC.String()
	t.entries[key] = newMAC
	waiters := t.waiters[key]
	delete(t.waiters, key)
	vtx := t.vtx
	t.mu.Unlock()

	if changed && vtx != nil {
		vtx.Inc()
	}
	for _, w := range waiters {
		w <- newMAC
	}
	return changed
}

func dupMAC(mac net.HardwareAddr) net.HardwareAddr {
	out := make(net.HardwareAddr, len(mac))
	copy(out, mac)
	return out
}
