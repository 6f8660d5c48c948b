// Package telemetry wires linkstack's optional counters/gauges/histograms
// into a prometheus.Registerer, in the constructible-Recorder shape of
// ap.watchd/metrics.go's prometheus.NewCounter/NewGaugeVec +
// prometheus.MustRegister (rather than athena-dhcpd's package-level
// promauto globals) since linkstack is a library embedded by a caller that
// owns its own registry, not a single daemon with one global one.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "linkstack"

// Recorder holds every metric linkstack's components can optionally report
// to. A nil *Recorder is never passed around; instead callers attach it
// selectively via each component's AttachRecorder(nil) default — see
// Recorder's small per-component adapter methods below, each implementing
// the unexported recorder interface its package expects.
type Recorder struct {
	arpResolveTotal    *prometheus.CounterVec
	arpResolveDuration *prometheus.HistogramVec
	txFramesTotal      *prometheus.CounterVec
	rxDroppedTotal     *prometheus.CounterVec
	arpTableRevision   prometheus.Gauge
}

// NewRecorder builds a Recorder and registers all of its metrics against
// reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		arpResolveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arp_resolve_total",
			Help:      "Total ARP resolutions, by result (cached, resolved, timeout, failed, send_error, learned).",
		}, []string{"result"}),
		arpResolveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "arp_resolve_duration_seconds",
			Help:      "Time spent in arp.Tx.Resolve, in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{}),
		txFramesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_frames_total",
			Help:      "Total Ethernet frames transmitted, by EtherType.",
		}, []string{"ethertype"}),
		rxDroppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rx_dropped_total",
			Help:      "Total received frames/packets dropped, by reason.",
		}, []string{"reason"}),
		arpTableRevision: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "arp_table_revision",
			Help:      "Current VersionedTx revision counter for the ARP table.",
		}),
	}
	reg.MustRegister(
		r.arpResolveTotal,
		r.arpResolveDuration,
		r.txFramesTotal,
		r.rxDroppedTotal,
		r.arpTableRevision,
	)
	return r
}

// IncResolve satisfies arp.Tx/arp.Rx's recorder interfaces.
func (r *Recorder) IncResolve(result string) {
	r.arpResolveTotal.WithLabelValues(result).Inc()
}

// ObserveResolveDuration satisfies arp.Tx's recorder interface.
func (r *Recorder) ObserveResolveDuration(seconds float64) {
	r.arpResolveDuration.WithLabelValues().Observe(seconds)
}

// IncTxFrames satisfies ipv4.Tx's recorder interface.
func (r *Recorder) IncTxFrames(ethertype string) {
	r.txFramesTotal.WithLabelValues(ethertype).Inc()
}

// IncRxDropped satisfies linkstack.EthernetRx's and ipv4.Rx's recorder
// interfaces.
func (r *Recorder) IncRxDropped(reason string) {
	r.rxDroppedTotal.WithLabelValues(reason).Inc()
}

// SetRevision satisfies linkstack.VersionedTx's recorder interface.
func (r *Recorder) SetRevision(rev uint64) {
	r.arpTableRevision.Set(float64(rev))
}
