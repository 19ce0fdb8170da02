// Package cron implements pedis's single recurring time-event, ported
// from original_source/pedis/server.py's serverCron: a periodic tick that
// logs connection counts, defensively reaps missed background-save
// completions, and publishes a metrics snapshot.
package cron

import (
	"github.com/ehrlich-b/pedis/internal/constants"
	"github.com/ehrlich-b/pedis/internal/interfaces"
	"github.com/ehrlich-b/pedis/internal/reactor"
)

// ConnectionCounter reports the number of currently live sessions.
// internal/session.Manager satisfies this.
type ConnectionCounter interface {
	Len() int
}

// Reaper defensively polls for a background-save completion signal that
// may have been missed by its primary event-driven path.
// internal/snapshot.Snapshotter satisfies this.
type Reaper interface {
	Reap()
}

// MetricsSnapshotter renders the current metrics as a one-line summary
// for the cron tick log. The top-level pedis.Metrics type satisfies this.
type MetricsSnapshotter interface {
	Snapshot() string
}

// Cron owns the single reactor.ScheduleTimer registration driving all of
// the above, matching spec.md's "one timer, several responsibilities"
// shape rather than one timer per concern.
type Cron struct {
	conns    ConnectionCounter
	reaper   Reaper
	metrics  MetricsSnapshotter
	logger   interfaces.Logger
	loops    int64
	timerID  int64
	reactorR *reactor.Reactor
}

// New builds a Cron. None of conns/reaper/metrics/logger are required to
// be non-nil; a nil dependency's responsibility is simply skipped.
func New(conns ConnectionCounter, reaper Reaper, metrics MetricsSnapshotter, logger interfaces.Logger) *Cron {
	return &Cron{conns: conns, reaper: reaper, metrics: metrics, logger: logger}
}

// Start registers the recurring tick with r, firing every
// constants.CronIntervalMillis and re-arming itself until Stop.
func (c *Cron) Start(r *reactor.Reactor) {
	c.reactorR = r
	c.timerID = r.ScheduleTimer(constants.CronIntervalMillis, c.tick, nil)
}

// Stop cancels the recurring tick.
func (c *Cron) Stop() {
	if c.reactorR != nil {
		c.reactorR.CancelTimer(c.timerID)
	}
}

// tick is the reactor.TimerCallback; returning CronIntervalMillis re-arms
// it for another interval, matching spec.md §4.5.
func (c *Cron) tick(_ any) int64 {
	c.loops++

	if c.loops%constants.CronLogEveryNTicks == 0 && c.logger != nil && c.conns != nil {
		c.logger.Infof("cron: %d client(s) connected", c.conns.Len())
	}

	if c.reaper != nil {
		c.reaper.Reap()
	}

	if c.metrics != nil && c.logger != nil {
		c.logger.Debugf("cron: %s", c.metrics.Snapshot())
	}

	return constants.CronIntervalMillis
}
