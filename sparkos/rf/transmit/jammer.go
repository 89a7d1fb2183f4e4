package transmit

import (
	"errors"
	"fmt"

	"multitool/hal"
)

// DefaultJamFrequency is the carrier-band square wave used when no
// frequency is configured.
const DefaultJamFrequency = 433_920

var ErrJammerActive = errors.New("jammer already active")

// Jammer outputs a continuous ~50% duty square wave on a PWM pin.
type Jammer struct {
	pwm hal.PWM

	ch     hal.PWMChannel
	pin    int
	freqHz uint32
}

func NewJammer(pwm hal.PWM) *Jammer {
	return &Jammer{pwm: pwm, pin: -1}
}

// Start claims the PWM channel of pin and starts the square wave. On any
// failure nothing stays claimed.
func (j *Jammer) Start(pin int, freqHz uint32) error {
	if j.ch != nil {
		return ErrJammerActive
	}
	if j.pwm == nil {
		return fmt.Errorf("jammer: %w", hal.ErrNotImplemented)
	}

	ch, err := j.pwm.Channel(pin)
	if err != nil {
		return fmt.Errorf("jammer: %w", err)
	}
	if err := ch.Configure(freqHz); err != nil {
		_ = ch.Release()
		return fmt.Errorf("jammer: %w", err)
	}
	ch.Set(ch.Top() / 2)

	j.ch = ch
	j.pin = pin
	j.freqHz = freqHz
	return nil
}

// Stop drops the duty to zero and releases the channel. Stopping an idle
// jammer is a no-op.
func (j *Jammer) Stop() error {
	if j.ch == nil {
		return nil
	}
	j.ch.Set(0)
	err := j.ch.Release()
	j.ch = nil
	j.pin = -1
	j.freqHz = 0
	if err != nil {
		return fmt.Errorf("jammer: %w", err)
	}
	return nil
}

// Active reports whether the jammer is running.
func (j *Jammer) Active() bool { return j.ch != nil }

// Pin returns the jammed pin, or -1 when idle.
func (j *Jammer) Pin() int { return j.pin }

// Frequency returns the running frequency, or 0 when idle.
func (j *Jammer) Frequency() uint32 { return j.freqHz }
