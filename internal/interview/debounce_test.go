package interview

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerLastScheduleWins(t *testing.T) {
	var d Debouncer
	var first, second atomic.Int32
	done := make(chan struct{})

	d.Schedule(time.Hour, func() { first.Add(1) })
	d.Schedule(10*time.Millisecond, func() {
		second.Add(1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled effect never fired")
	}
	if first.Load() != 0 {
		t.Error("replaced effect should not run")
	}
	if second.Load() != 1 {
		t.Errorf("effect ran %d times, want 1", second.Load())
	}
	if d.Pending() {
		t.Error("nothing should be pending after the effect fired")
	}
}

func TestDebouncerCancel(t *testing.T) {
	var d Debouncer
	if d.Cancel() {
		t.Error("Cancel with nothing pending should report false")
	}

	var ran atomic.Bool
	d.Schedule(20*time.Millisecond, func() { ran.Store(true) })
	if !d.Pending() {
		t.Fatal("effect should be pending")
	}
	if !d.Cancel() {
		t.Error("Cancel should report the pending effect")
	}
	time.Sleep(60 * time.Millisecond)
	if ran.Load() {
		t.Error("cancelled effect ran")
	}
}

func TestDebouncerRunNow(t *testing.T) {
	var d Debouncer
	var deferred atomic.Bool
	d.Schedule(20*time.Millisecond, func() { deferred.Store(true) })

	ran := false
	d.RunNow(func() { ran = true })
	if !ran {
		t.Error("RunNow should run the effect synchronously")
	}
	time.Sleep(60 * time.Millisecond)
	if deferred.Load() {
		t.Error("RunNow should cancel the pending effect")
	}
}

func TestDebouncerStop(t *testing.T) {
	var d Debouncer
	var ran atomic.Bool
	d.Schedule(10*time.Millisecond, func() { ran.Store(true) })
	d.Stop()
	d.Schedule(10*time.Millisecond, func() { ran.Store(true) })
	if d.Pending() {
		t.Error("Schedule after Stop should be ignored")
	}
	time.Sleep(50 * time.Millisecond)
	if ran.Load() {
		t.Error("no effect should run after Stop")
	}
}
