package region

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	writeInPlace = "in_place"
	writeAppend  = "append"
	writeDelete  = "delete"
	writeMemory  = "memory"
)

// Metrics counts region operations. A single Metrics may be shared by any
// number of regions. A nil *Metrics records nothing.
type Metrics struct {
	chunkReads    *prometheus.CounterVec
	chunkWrites   *prometheus.CounterVec
	bytesAppended prometheus.Counter
	saves         prometheus.Counter
}

// NewMetrics creates region metrics and registers them with r.
func NewMetrics(r prometheus.Registerer) *Metrics {
	return &Metrics{
		chunkReads: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Name: "region_chunk_reads_total",
			Help: "Total number of chunk reads by result.",
		}, []string{"result"}),
		chunkWrites: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Name: "region_chunk_writes_total",
			Help: "Total number of chunk writes by mode (in_place, append, delete, memory).",
		}, []string{"mode"}),
		bytesAppended: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "region_bytes_appended_total",
			Help: "Total number of bytes appended to region files, sector padding included.",
		}),
		saves: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "region_saves_total",
			Help: "Total number of full region rewrites.",
		}),
	}
}

func (m *Metrics) observeRead(found bool) {
	if m == nil {
		return
	}

	if found {
		m.chunkReads.WithLabelValues("hit").Inc()
	} else {
		m.chunkReads.WithLabelValues("absent").Inc()
	}
}

func (m *Metrics) observeWrite(mode string, appended int64) {
	if m == nil {
		return
	}

	m.chunkWrites.WithLabelValues(mode).Inc()
	if appended > 0 {
		m.bytesAppended.Add(float64(appended))
	}
}

func (m *Metrics) observeSave() {
	if m == nil {
		return
	}

	m.saves.Inc()
}
