// Package transmit drives the RF data pin from pulse trains and runs the
// carrier jammer.
package transmit

import (
	"fmt"

	"multitool/hal"
	"multitool/sparkos/rf/pulse"
)

// Pin is the output side of a GPIO pin.
type Pin interface {
	Write(level bool) error
}

// Transmitter replays pulse trains on an output pin. The caller configures
// the pin as an output and owns it for the duration of Transmit.
type Transmitter struct {
	pin   Pin
	clock hal.Clock
}

func New(pin Pin, clock hal.Clock) *Transmitter {
	return &Transmitter{pin: pin, clock: clock}
}

// Transmit sends train repeats times. Each sample sets the pin from its sign
// and holds it until an absolute deadline, so per-sample overhead does not
// accumulate. After every repetition the pin is forced LOW; gapUs separates
// repetitions.
//
// Transmit blocks for the whole train. Inside a repetition it spins on the
// clock and never allocates or yields; only the inter-repeat gap may sleep.
func (t *Transmitter) Transmit(train []pulse.Sample, repeats int, gapUs uint32) error {
	if t == nil || t.pin == nil || t.clock == nil {
		return fmt.Errorf("transmit: not initialised")
	}
	if len(train) == 0 || repeats <= 0 {
		return nil
	}

	for r := 0; r < repeats; r++ {
		deadline := t.clock.Micros()
		for _, s := range train {
			if err := t.pin.Write(s.High()); err != nil {
				_ = t.pin.Write(false)
				return fmt.Errorf("transmit: %w", err)
			}
			deadline += uint64(s.Micros())
			t.clock.WaitUntil(deadline)
		}
		if err := t.pin.Write(false); err != nil {
			return fmt.Errorf("transmit: %w", err)
		}
		if r+1 < repeats && gapUs > 0 {
			t.clock.SleepUntil(deadline + uint64(gapUs))
		}
	}
	return nil
}

// Duration returns the time Transmit will take for the same arguments.
func Duration(train []pulse.Sample, repeats int, gapUs uint32) uint64 {
	if len(train) == 0 || repeats <= 0 {
		return 0
	}
	return pulse.TotalMicros(train)*uint64(repeats) + uint64(gapUs)*uint64(repeats-1)
}
