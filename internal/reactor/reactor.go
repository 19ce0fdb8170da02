// Package reactor implements the single-threaded, cooperative event loop
// that drives everything else in pedis: socket readiness and due timers are
// multiplexed over one goroutine so that session I/O, command dispatch, and
// keyspace mutation never need locks (see internal/keyspace and
// internal/session).
//
// The readiness primitive is golang.org/x/sys/unix.Select over raw,
// non-blocking file descriptors — there is deliberately no net.Conn and no
// goroutine-per-connection here; Register/Unregister operate on bare fds so
// a single select() call covers every listener and every client socket.
package reactor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/ehrlich-b/pedis/internal/interfaces"
)

// Mask is a bitset of readiness conditions, mirroring spec.md's FileEvent.
type Mask uint8

const (
	Readable Mask = 1 << iota
	Writable
	Exception
)

// allBits lists every bit in canonical iteration order.
var allBits = [...]Mask{Readable, Writable, Exception}

// FileCallback handles a ready fd. ctx carries whatever the registrant
// attached at RegisterFile time.
type FileCallback func(fd int, ctx any)

// TimerCallback runs when a timer comes due. Returning NoMore cancels the
// timer; any other value is the delay in milliseconds until the next fire.
type TimerCallback func(ctx any) int64

// NoMore tells the reactor not to reschedule a fired timer.
const NoMore int64 = -1

type fileKey struct {
	fd  int
	bit Mask
}

type fileEvent struct {
	fd       int
	bit      Mask
	callback FileCallback
	ctx      any
}

type timeEvent struct {
	id       int64
	due      time.Time
	callback TimerCallback
	ctx      any
	canceled bool
}

// Reactor owns the registered file and time events and runs the select loop.
// Every exported method except Stop must only be called from the goroutine
// running Run — that goroutine is the sole owner of the event tables, the
// Keyspace, and every Session (spec.md §5).
type Reactor struct {
	logger interfaces.Logger

	events      map[fileKey]*fileEvent
	order       []fileKey // registration order, for deterministic snapshots
	timers      []*timeEvent
	nextTimerID int64

	stopFlag atomic.Bool
}

// New creates an empty Reactor. A nil logger disables logging.
func New(logger interfaces.Logger) *Reactor {
	return &Reactor{
		logger: logger,
		events: make(map[fileKey]*fileEvent),
	}
}

// RegisterFile adds or replaces the callback for every bit set in mask on
// fd. Re-registering the same (fd, bit) replaces the callback.
func (r *Reactor) RegisterFile(fd int, mask Mask, cb FileCallback, ctx any) error {
	if fd < 0 {
		return fmt.Errorf("reactor: invalid fd %d", fd)
	}
	for _, bit := range allBits {
		if mask&bit == 0 {
			continue
		}
		key := fileKey{fd, bit}
		if _, exists := r.events[key]; !exists {
			r.order = append(r.order, key)
		}
		r.events[key] = &fileEvent{fd: fd, bit: bit, callback: cb, ctx: ctx}
	}
	return nil
}

// UnregisterFile removes the registrations for the given bits on fd. It is
// a no-op for bits that were never registered.
func (r *Reactor) UnregisterFile(fd int, mask Mask) {
	for _, bit := range allBits {
		if mask&bit == 0 {
			continue
		}
		key := fileKey{fd, bit}
		if _, exists := r.events[key]; !exists {
			continue
		}
		delete(r.events, key)
		for i, k := range r.order {
			if k == key {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
}

// ScheduleTimer arms a timer to fire after delayMs and returns its strictly
// monotonic id.
func (r *Reactor) ScheduleTimer(delayMs int64, cb TimerCallback, ctx any) int64 {
	id := r.nextTimerID
	r.nextTimerID++
	r.timers = append(r.timers, &timeEvent{
		id:       id,
		due:      time.Now().Add(time.Duration(delayMs) * time.Millisecond),
		callback: cb,
		ctx:      ctx,
	})
	return id
}

// CancelTimer removes a timer; a no-op if absent or already fired.
func (r *Reactor) CancelTimer(id int64) {
	for i, te := range r.timers {
		if te.id == id {
			te.canceled = true
			r.timers = append(r.timers[:i], r.timers[i+1:]...)
			return
		}
	}
}

// Stop requests the loop exit at the top of its next iteration. Safe to
// call from any goroutine (e.g. a signal handler).
func (r *Reactor) Stop() {
	r.stopFlag.Store(true)
}

// Run enters the loop and blocks until Stop is called or ctx is canceled.
func (r *Reactor) Run(ctx context.Context) error {
	for !r.stopFlag.Load() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := r.runOnce(); err != nil {
			return err
		}
	}
	return nil
}

// runOnce executes one iteration of the algorithm in spec.md §4.1: compute
// the deadline, call the readiness primitive, invoke ready callbacks over a
// stable snapshot, then sweep due timers.
func (r *Reactor) runOnce() error {
	snapshot := make([]*fileEvent, len(r.order))
	for i, key := range r.order {
		snapshot[i] = r.events[key]
	}

	if len(snapshot) == 0 && len(r.timers) == 0 {
		// Nothing registered at all: blocking would wait forever for
		// nothing. Per spec.md §4.1 this iteration is a no-op.
		return nil
	}

	var rfds, wfds, efds unix.FdSet
	maxFd := -1
	for _, fe := range snapshot {
		switch fe.bit {
		case Readable:
			fdSet(&rfds, fe.fd)
		case Writable:
			fdSet(&wfds, fe.fd)
		case Exception:
			fdSet(&efds, fe.fd)
		}
		if fe.fd > maxFd {
			maxFd = fe.fd
		}
	}

	timeout := r.nextTimeout()

	for {
		n, err := unix.Select(maxFd+1, &rfds, &wfds, &efds, timeout)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("reactor: select: %w", err)
		}
		_ = n
		break
	}

	for _, fe := range snapshot {
		var ready bool
		switch fe.bit {
		case Readable:
			ready = fdIsSet(&rfds, fe.fd)
		case Writable:
			ready = fdIsSet(&wfds, fe.fd)
		case Exception:
			ready = fdIsSet(&efds, fe.fd)
		}
		if ready {
			r.invokeFile(fe)
		}
	}

	r.sweepTimers()
	return nil
}

func (r *Reactor) invokeFile(fe *fileEvent) {
	defer func() {
		if rec := recover(); rec != nil && r.logger != nil {
			r.logger.Errorf("reactor: file callback panic on fd %d: %v", fe.fd, rec)
		}
	}()
	fe.callback(fe.fd, fe.ctx)
}

// nextTimeout returns the select() timeout for the nearest due timer, or
// nil to block indefinitely when there are file events but no timers.
func (r *Reactor) nextTimeout() *unix.Timeval {
	if len(r.timers) == 0 {
		return nil
	}
	nearest := r.timers[0]
	for _, te := range r.timers[1:] {
		if te.due.Before(nearest.due) {
			nearest = te
		}
	}
	delay := time.Until(nearest.due)
	if delay < 0 {
		delay = 0
	}
	tv := unix.NsecToTimeval(delay.Nanoseconds())
	return &tv
}

// sweepTimers fires every timer whose due instant has passed, rescheduling
// or removing each according to its callback's return value. Timers
// scheduled by a firing callback are not considered in this sweep.
func (r *Reactor) sweepTimers() {
	now := time.Now()
	due := r.timers[:0:0]
	for _, te := range r.timers {
		if !te.due.After(now) {
			due = append(due, te)
		}
	}
	for _, te := range due {
		if te.canceled {
			continue
		}
		rearm := r.invokeTimer(te)
		if te.canceled {
			continue
		}
		if rearm == NoMore {
			r.removeTimer(te.id)
			continue
		}
		te.due = now.Add(time.Duration(rearm) * time.Millisecond)
	}
}

func (r *Reactor) invokeTimer(te *timeEvent) (rearm int64) {
	defer func() {
		if rec := recover(); rec != nil {
			if r.logger != nil {
				r.logger.Errorf("reactor: timer %d callback panic: %v", te.id, rec)
			}
			rearm = NoMore
		}
	}()
	return te.callback(te.ctx)
}

func (r *Reactor) removeTimer(id int64) {
	for i, te := range r.timers {
		if te.id == id {
			r.timers = append(r.timers[:i], r.timers[i+1:]...)
			return
		}
	}
}

func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/64] |= 1 << (uint(fd) % 64)
}

func fdIsSet(set *unix.FdSet, fd int) bool {
	return set.Bits[fd/64]&(1<<(uint(fd)%64)) != 0
}
