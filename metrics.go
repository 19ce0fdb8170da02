package pedis

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ehrlich-b/pedis/internal/interfaces"
)

// Metrics tracks point-in-time operational statistics for a running
// Server: command throughput, byte counters, connection gauge, and
// snapshot outcomes. All fields are atomics since the reactor goroutine
// is the only writer but Values/Snapshot may be read from a signal
// handler or an admin goroutine concurrently.
type Metrics struct {
	CommandCount  atomic.Uint64
	CommandErrors atomic.Uint64

	BytesIn  atomic.Uint64
	BytesOut atomic.Uint64

	ConnectionsActive atomic.Int64
	ConnectionsTotal  atomic.Uint64

	SnapshotCount  atomic.Uint64
	SnapshotErrors atomic.Uint64

	TotalLatencyNs atomic.Uint64
	LatencyOpCount atomic.Uint64

	StartTime atomic.Int64
}

// NewMetrics creates a new, zeroed metrics instance with StartTime set to
// the current time.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// ObserveCommand records one dispatched command, per
// internal/interfaces.Observer.
func (m *Metrics) ObserveCommand(name string, latencyNs uint64, err error) {
	m.CommandCount.Add(1)
	if err != nil {
		m.CommandErrors.Add(1)
	}
	m.TotalLatencyNs.Add(latencyNs)
	m.LatencyOpCount.Add(1)
}

// ObserveConnection adjusts the active-connection gauge by delta (+1 on
// accept, -1 on close), also bumping the lifetime total on increments.
func (m *Metrics) ObserveConnection(delta int) {
	m.ConnectionsActive.Add(int64(delta))
	if delta > 0 {
		m.ConnectionsTotal.Add(uint64(delta))
	}
}

// ObserveBytes records bytes read from and written to client sockets.
func (m *Metrics) ObserveBytes(in, out uint64) {
	m.BytesIn.Add(in)
	m.BytesOut.Add(out)
}

// ObserveSnapshot records the outcome of a save or bgsave.
func (m *Metrics) ObserveSnapshot(kind string, latencyNs uint64, success bool) {
	m.SnapshotCount.Add(1)
	if !success {
		m.SnapshotErrors.Add(1)
	}
}

// MetricsSnapshot is a point-in-time copy of the counters above, safe to read
// without further synchronization.
type MetricsSnapshot struct {
	CommandCount      uint64
	CommandErrors     uint64
	BytesIn           uint64
	BytesOut          uint64
	ConnectionsActive int64
	ConnectionsTotal  uint64
	SnapshotCount     uint64
	SnapshotErrors    uint64
	AvgLatencyNs      uint64
	UptimeNs          uint64
}

// Values takes a point-in-time MetricsSnapshot.
func (m *Metrics) Values() MetricsSnapshot {
	snap := MetricsSnapshot{
		CommandCount:      m.CommandCount.Load(),
		CommandErrors:     m.CommandErrors.Load(),
		BytesIn:           m.BytesIn.Load(),
		BytesOut:          m.BytesOut.Load(),
		ConnectionsActive: m.ConnectionsActive.Load(),
		ConnectionsTotal:  m.ConnectionsTotal.Load(),
		SnapshotCount:     m.SnapshotCount.Load(),
		SnapshotErrors:    m.SnapshotErrors.Load(),
		UptimeNs:          uint64(time.Now().UnixNano() - m.StartTime.Load()),
	}
	if opCount := m.LatencyOpCount.Load(); opCount > 0 {
		snap.AvgLatencyNs = m.TotalLatencyNs.Load() / opCount
	}
	return snap
}

// Snapshot renders a one-line human-readable summary, used by
// internal/cron's tick log (it satisfies cron.MetricsSnapshotter).
func (m *Metrics) Snapshot() string {
	s := m.Values()
	return fmt.Sprintf(
		"commands=%d (errors=%d) conns=%d (total=%d) bytes_in=%d bytes_out=%d avg_latency_ns=%d uptime=%s",
		s.CommandCount, s.CommandErrors, s.ConnectionsActive, s.ConnectionsTotal,
		s.BytesIn, s.BytesOut, s.AvgLatencyNs, time.Duration(s.UptimeNs).Round(time.Second),
	)
}

// Reset zeroes every counter, restarting StartTime. Useful for tests.
func (m *Metrics) Reset() {
	m.CommandCount.Store(0)
	m.CommandErrors.Store(0)
	m.BytesIn.Store(0)
	m.BytesOut.Store(0)
	m.ConnectionsActive.Store(0)
	m.ConnectionsTotal.Store(0)
	m.SnapshotCount.Store(0)
	m.SnapshotErrors.Store(0)
	m.TotalLatencyNs.Store(0)
	m.LatencyOpCount.Store(0)
	m.StartTime.Store(time.Now().UnixNano())
}

// NoOpObserver discards every observation, used where the Server is
// constructed without metrics wired in.
type NoOpObserver struct{}

func (NoOpObserver) ObserveCommand(string, uint64, error) {}
func (NoOpObserver) ObserveConnection(int)                {}
func (NoOpObserver) ObserveBytes(uint64, uint64)          {}
func (NoOpObserver) ObserveSnapshot(string, uint64, bool) {}

var (
	_ interfaces.Observer = (*Metrics)(nil)
	_ interfaces.Observer = NoOpObserver{}
)
