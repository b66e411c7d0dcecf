package scheduler

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimer_RescheduleKeepsOne(t *testing.T) {
	var tm Timer
	var fired atomic.Int32

	for i := 0; i < 10; i++ {
		tm.Schedule(30*time.Millisecond, func() { fired.Add(1) })
	}

	if !tm.Pending() {
		t.Fatal("Pending() = false after Schedule")
	}

	time.Sleep(150 * time.Millisecond)

	if got := fired.Load(); got != 1 {
		t.Errorf("fired = %d, want 1", got)
	}
	if tm.Pending() {
		t.Error("Pending() = true after firing")
	}
}

func TestTimer_Stop(t *testing.T) {
	var tm Timer
	var fired atomic.Int32

	tm.Schedule(20*time.Millisecond, func() { fired.Add(1) })
	tm.Stop()

	time.Sleep(80 * time.Millisecond)

	if got := fired.Load(); got != 0 {
		t.Errorf("fired = %d after Stop, want 0", got)
	}
	if tm.Pending() {
		t.Error("Pending() = true after Stop")
	}
}

func TestTimer_RescheduleFromCallback(t *testing.T) {
	var tm Timer
	var fired atomic.Int32

	var fn func()
	fn = func() {
		if fired.Add(1) < 3 {
			tm.Schedule(5*time.Millisecond, fn)
		}
	}
	tm.Schedule(5*time.Millisecond, fn)

	time.Sleep(150 * time.Millisecond)

	if got := fired.Load(); got != 3 {
		t.Errorf("fired = %d, want 3", got)
	}
}
