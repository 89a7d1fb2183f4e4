//go:build tinygo && baremetal

package hal

import (
	"fmt"
	"machine"

	"github.com/sparques/pwm"
)

// boardPWM hands out PWM channels for the board pins listed in pins.
type boardPWM struct {
	pins    []machine.Pin
	claimed []bool
}

func newBoardPWM(pins []machine.Pin) *boardPWM {
	return &boardPWM{pins: pins, claimed: make([]bool, len(pins))}
}

func (b *boardPWM) Channel(id int) (PWMChannel, error) {
	if id < 0 || id >= len(b.pins) {
		return nil, fmt.Errorf("pwm: pin %d: %w", id, ErrNotImplemented)
	}
	if b.claimed[id] {
		return nil, fmt.Errorf("pwm: pin %d: %w", id, ErrBusy)
	}

	pin := b.pins[id]
	group := pwm.Get(pin)
	if group == nil {
		return nil, fmt.Errorf("pwm: pin %d: no pwm slice", id)
	}
	pin.Configure(machine.PinConfig{Mode: machine.PinPWM})
	ch, err := group.Channel(pin)
	if err != nil {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pin.Low()
		return nil, fmt.Errorf("pwm: pin %d: %w", id, err)
	}
	b.claimed[id] = true
	return &boardPWMChannel{owner: b, id: id, pin: pin, group: group, ch: ch}, nil
}

type boardPWMChannel struct {
	owner *boardPWM
	id    int
	pin   machine.Pin
	group pwm.Group
	ch    uint8
}

func (c *boardPWMChannel) Configure(freqHz uint32) error {
	if freqHz == 0 || freqHz > MaxPWMFrequency {
		return fmt.Errorf("pwm: pin %d: frequency %d out of range", c.id, freqHz)
	}
	c.group.Set(c.ch, 0)
	return c.group.Configure(machine.PWMConfig{Period: uint64(1e9) / uint64(freqHz)})
}

func (c *boardPWMChannel) Top() uint32     { return c.group.Top() }
func (c *boardPWMChannel) Set(duty uint32) { c.group.Set(c.ch, duty) }

func (c *boardPWMChannel) Release() error {
	c.group.Set(c.ch, 0)
	c.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	c.pin.Low()
	c.owner.claimed[c.id] = false
	return nil
}
