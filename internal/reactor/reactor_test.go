package reactor

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestRegisterFile_FiresOnReadable(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	fired := make(chan struct{}, 1)
	rc := New(nil)
	if err := rc.RegisterFile(int(r.Fd()), Readable, func(fd int, ctx any) {
		buf := make([]byte, 1)
		os.NewFile(uintptr(fd), "r").Read(buf)
		fired <- struct{}{}
	}, nil); err != nil {
		t.Fatalf("RegisterFile: %v", err)
	}

	if _, err := w.Write([]byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := rc.runOnce(); err != nil {
		t.Fatalf("runOnce: %v", err)
	}

	select {
	case <-fired:
	default:
		t.Error("expected readable callback to fire")
	}
}

func TestUnregisterFile_StopsFiring(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	calls := 0
	rc := New(nil)
	rc.RegisterFile(int(r.Fd()), Readable, func(fd int, ctx any) { calls++ }, nil)
	rc.UnregisterFile(int(r.Fd()), Readable)

	w.Write([]byte("x"))
	// With no registrations and no timers, runOnce is a documented no-op.
	if err := rc.runOnce(); err != nil {
		t.Fatalf("runOnce: %v", err)
	}
	if calls != 0 {
		t.Errorf("expected 0 calls after unregister, got %d", calls)
	}
}

func TestScheduleTimer_FiresAndRearms(t *testing.T) {
	rc := New(nil)
	var fires int
	rc.ScheduleTimer(1, func(ctx any) int64 {
		fires++
		if fires >= 3 {
			return NoMore
		}
		return 1
	}, nil)

	deadline := time.Now().Add(2 * time.Second)
	for fires < 3 && time.Now().Before(deadline) {
		if err := rc.runOnce(); err != nil {
			t.Fatalf("runOnce: %v", err)
		}
	}
	if fires != 3 {
		t.Fatalf("expected timer to fire exactly 3 times, got %d", fires)
	}
	if len(rc.timers) != 0 {
		t.Errorf("expected timer removed after NoMore, got %d timers", len(rc.timers))
	}
}

func TestCancelTimer_PreventsFiring(t *testing.T) {
	rc := New(nil)
	fired := false
	id := rc.ScheduleTimer(1, func(ctx any) int64 {
		fired = true
		return NoMore
	}, nil)
	rc.CancelTimer(id)

	time.Sleep(5 * time.Millisecond)
	// Register a dummy file event so runOnce doesn't treat this as fully
	// idle; CancelTimer must have already removed the timer regardless.
	r, w, _ := os.Pipe()
	defer r.Close()
	defer w.Close()
	rc.RegisterFile(int(r.Fd()), Readable, func(fd int, ctx any) {}, nil)

	if err := rc.runOnce(); err != nil {
		t.Fatalf("runOnce: %v", err)
	}
	if fired {
		t.Error("canceled timer must not fire")
	}
}

func TestRunOnce_NoopWhenNothingRegistered(t *testing.T) {
	rc := New(nil)
	if err := rc.runOnce(); err != nil {
		t.Fatalf("expected no-op iteration to return nil, got %v", err)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	rc := New(nil)
	rc.ScheduleTimer(10, func(ctx any) int64 { return 10 }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rc.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancel")
	}
}

func TestRun_StopsOnStop(t *testing.T) {
	rc := New(nil)
	rc.ScheduleTimer(5, func(ctx any) int64 { return 5 }, nil)

	done := make(chan error, 1)
	go func() { done <- rc.Run(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	rc.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil error after Stop, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}
