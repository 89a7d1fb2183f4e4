//go:build !tinygo

package hal

// hostTime publishes 1ms ticks derived from the shared microsecond clock.
// Ticks are produced when the runner calls step, so a stalled window also
// stalls kernel time.
type hostTime struct {
	ch    chan uint64
	seq   uint64
	clock Clock
}

func newHostTime(clock Clock) *hostTime {
	return &hostTime{ch: make(chan uint64, 1024), clock: clock}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

// step catches the tick sequence up with the clock. It always advances by at
// least one tick so headless runs with a fast ticker still make progress.
func (t *hostTime) step() {
	target := t.clock.Micros() / 1000
	if target <= t.seq {
		target = t.seq + 1
	}
	for t.seq < target {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
		}
	}
}
