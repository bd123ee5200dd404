package dispatch

import (
	"fmt"
	"io"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// Metrics counts pipeline activity. It is safe for concurrent use.
type Metrics struct {
	set       *metrics.Set
	documents *metrics.Counter
	faults    *metrics.Counter
	fixes     *metrics.Counter
	written   *metrics.Counter
}

// NewMetrics returns counters registered in a fresh set.
func NewMetrics() *Metrics {
	set := metrics.NewSet()
	return &Metrics{
		set:       set,
		documents: set.NewCounter("pactfix_documents_analyzed_total"),
		faults:    set.NewCounter("pactfix_analyzer_faults_total"),
		fixes:     set.NewCounter("pactfix_fixes_total"),
		written:   set.NewCounter("pactfix_files_written_total"),
	}
}

func (m *Metrics) observe(format string, start time.Time, fixes int, faulted bool) {
	if m == nil {
		return
	}
	m.documents.Inc()
	m.fixes.Add(fixes)
	if faulted {
		m.faults.Inc()
	}
	m.set.GetOrCreateHistogram(fmt.Sprintf(`pactfix_analysis_duration_seconds{format=%q}`, format)).UpdateDuration(start)
}

// FileWritten counts a fixed file written back to disk.
func (m *Metrics) FileWritten() {
	if m == nil {
		return
	}
	m.written.Inc()
}

// Documents returns the number of documents analyzed, nested ones included.
func (m *Metrics) Documents() uint64 { return m.documents.Get() }

// Faults returns the number of analyzer faults.
func (m *Metrics) Faults() uint64 { return m.faults.Get() }

// Fixes returns the number of fixes produced.
func (m *Metrics) Fixes() uint64 { return m.fixes.Get() }

// WritePrometheus writes every metric in Prometheus text format.
func (m *Metrics) WritePrometheus(w io.Writer) {
	m.set.WritePrometheus(w)
}
