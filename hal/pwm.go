package hal

import (
	"fmt"
	"sync"
)

// PWM provides pulse-width modulated outputs keyed by pin number.
type PWM interface {
	// Channel claims the PWM channel driving pin. A claimed channel must be
	// released before it can be claimed again (ErrBusy).
	Channel(pin int) (PWMChannel, error)
}

// PWMChannel is one claimed PWM output.
type PWMChannel interface {
	Configure(freqHz uint32) error
	// Top is the counter value that corresponds to 100% duty.
	Top() uint32
	Set(duty uint32)
	Release() error
}

// MaxPWMFrequency bounds Configure on every platform.
const MaxPWMFrequency = 62_500_000

// VirtualPWM is an in-memory PWM used on host builds and in tests.
type VirtualPWM struct {
	mu    sync.Mutex
	pins  int
	chans map[int]*virtualPWMChannel
}

// NewVirtualPWM returns an in-memory PWM with pins 0..pins-1.
func NewVirtualPWM(pins int) *VirtualPWM {
	return &VirtualPWM{pins: pins, chans: make(map[int]*virtualPWMChannel)}
}

func (p *VirtualPWM) Channel(pin int) (PWMChannel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pin < 0 || pin >= p.pins {
		return nil, fmt.Errorf("pwm: pin %d: %w", pin, ErrNotImplemented)
	}
	if ch, ok := p.chans[pin]; ok && ch.claimed {
		return nil, fmt.Errorf("pwm: pin %d: %w", pin, ErrBusy)
	}
	ch := &virtualPWMChannel{owner: p, pin: pin, claimed: true}
	p.chans[pin] = ch
	return ch, nil
}

// Snapshot reports the configured frequency and duty of a pin, for tests and
// the host status line.
func (p *VirtualPWM) Snapshot(pin int) (freqHz uint32, duty uint32, claimed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.chans[pin]
	if !ok {
		return 0, 0, false
	}
	return ch.freq, ch.duty, ch.claimed
}

type virtualPWMChannel struct {
	owner   *VirtualPWM
	pin     int
	freq    uint32
	duty    uint32
	claimed bool
}

func (c *virtualPWMChannel) Configure(freqHz uint32) error {
	if freqHz == 0 || freqHz > MaxPWMFrequency {
		return fmt.Errorf("pwm: pin %d: frequency %d out of range", c.pin, freqHz)
	}
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()
	if !c.claimed {
		return fmt.Errorf("pwm: pin %d: released", c.pin)
	}
	c.freq = freqHz
	return nil
}

func (c *virtualPWMChannel) Top() uint32 { return 0xffff }

func (c *virtualPWMChannel) Set(duty uint32) {
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()
	if !c.claimed {
		return
	}
	c.duty = duty
}

func (c *virtualPWMChannel) Release() error {
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()
	c.claimed = false
	c.duty = 0
	return nil
}
