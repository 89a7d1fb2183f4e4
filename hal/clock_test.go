package hal

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestMonotonicClockWaitUntil(t *testing.T) {
	c := newMonotonicClock()
	start := c.Micros()
	c.WaitUntil(start + 1500)
	if got := c.Micros(); got < start+1500 {
		t.Fatalf("WaitUntil returned early: %d < %d", got, start+1500)
	}
}

func TestMonotonicClockSleepUntil(t *testing.T) {
	c := newMonotonicClock()
	start := c.Micros()
	c.SleepUntil(start + 3000)
	if got := c.Micros(); got < start+3000 {
		t.Fatalf("SleepUntil returned early: %d < %d", got, start+3000)
	}
}

// A held sync low (several milliseconds) must not let another goroutine run
// on a single P. Async preemption only kicks in after 10ms.
func TestMonotonicClockWaitUntilHoldsCPU(t *testing.T) {
	prev := runtime.GOMAXPROCS(1)
	defer runtime.GOMAXPROCS(prev)

	var stop atomic.Bool
	var spins atomic.Uint64
	done := make(chan struct{})
	go func() {
		defer close(done)
		for !stop.Load() {
			spins.Add(1)
		}
	}()
	// Let the spinner start and be preempted back to us, so our own time
	// slice is fresh.
	for spins.Load() == 0 {
		runtime.Gosched()
	}

	c := newMonotonicClock()
	before := spins.Load()
	c.WaitUntil(c.Micros() + 5000)
	after := spins.Load()

	stop.Store(true)
	<-done

	if after != before {
		t.Fatalf("other goroutine ran %d iterations during a 5ms wait", after-before)
	}
}
