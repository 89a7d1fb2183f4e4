package hal

import "time"

// Clock is a monotonic microsecond time source for pulse timing.
type Clock interface {
	// Micros returns microseconds since the clock was created.
	Micros() uint64
	// WaitUntil spins until Micros() >= us. It never sleeps or yields, so
	// other goroutines do not run while a pulse is held.
	WaitUntil(us uint64)
	// SleepUntil returns once Micros() >= us. It may yield to other tasks
	// until shortly before the deadline. Only use it between pulse trains.
	SleepUntil(us uint64)
}

// sleepSlack is how far before a deadline SleepUntil stops sleeping and spins.
const sleepSlack = 2 * time.Millisecond

type monotonicClock struct {
	t0 time.Time
}

func newMonotonicClock() *monotonicClock {
	return &monotonicClock{t0: time.Now()}
}

func (c *monotonicClock) Micros() uint64 {
	return uint64(time.Since(c.t0) / time.Microsecond)
}

func (c *monotonicClock) WaitUntil(us uint64) {
	for c.Micros() < us {
	}
}

func (c *monotonicClock) SleepUntil(us uint64) {
	if now := c.Micros(); now < us {
		if remaining := time.Duration(us-now) * time.Microsecond; remaining > sleepSlack {
			time.Sleep(remaining - sleepSlack)
		}
	}
	c.WaitUntil(us)
}
