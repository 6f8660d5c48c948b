package linkstack

import "sync"

// VersionedTx is a monotonically non-decreasing revision counter. Higher
// layers that cache a (dst IP -> dst MAC, frame template) tuple to avoid a
// hash lookup per packet read Current() before reusing the cache and
// rebuild it when the value no longer matches what they last observed.
// Inc() is called on any event that can invalidate such a cache — in this
// module that is exactly "the ARP table learned a new or changed mapping"
// (arp.Rx) plus, by the Open Question decision recorded in DESIGN.md, a
// manual arp.Table.Insert.
//
// Translated from the Rust source's Arc<Mutex<VersionedTx>> (referenced
// throughout original_source/src/arp.rs) into the plain
// sync.Mutex-guarded-struct idiom session.go's Session.mutex uses.
type VersionedTx struct {
	mu       sync.Mutex
	revision uint64

	recorder revisionRecorder
}

// revisionRecorder is the minimal surface VersionedTx needs from
// telemetry.Recorder, kept as an unexported interface here so this package
// does not import the telemetry package (and its prometheus dependency)
// directly; telemetry.Recorder satisfies it structurally.
type revisionRecorder interface {
	SetRevision(uint64)
}

// NewVersionedTx returns a VersionedTx starting at revision 0.
func NewVersionedTx() *VersionedTx {
	return &VersionedTx{}
}

// Current returns the current revision.
func (v *VersionedTx) Current() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.revision
}

// Inc atomically increments the revision.
func (v *VersionedTx) Inc() {
	v.mu.Lock()
	v.revision++
	rev := v.revision
	rec := v.recorder
	v.mu.Unlock()
	if rec != nil {
		rec.SetRevision(rev)
	}
}

// AttachRecorder wires an optional telemetry sink that mirrors Current()
// into a gauge on every Inc. Passing nil detaches it. Attaching is not
// required for correctness — it exists purely for observability.
func (v *VersionedTx) AttachRecorder(rec revisionRecorder) {
	v.mu.Lock()
	v.recorder = rec
	v.mu.Unlock()
}
