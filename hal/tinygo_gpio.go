//go:build tinygo && baremetal

package hal

import (
	"fmt"
	"machine"
)

// machinePin exposes a board pin through GPIOInterruptPin.
type machinePin struct {
	pin  machine.Pin
	name string
	caps GPIOCaps
	mode GPIOMode
}

func newMachinePin(name string, pin machine.Pin, caps GPIOCaps) *machinePin {
	return &machinePin{pin: pin, name: name, caps: caps, mode: GPIOModeInput}
}

func (p *machinePin) Name() string   { return p.name }
func (p *machinePin) Caps() GPIOCaps { return p.caps }

func (p *machinePin) Configure(mode GPIOMode, pull GPIOPull) error {
	var cfg machine.PinConfig
	switch mode {
	case GPIOModeOutput:
		if p.caps&GPIOCapOutput == 0 {
			return fmt.Errorf("gpio: pin %s: output unsupported", p.name)
		}
		cfg.Mode = machine.PinOutput
	case GPIOModeInput:
		if p.caps&GPIOCapInput == 0 {
			return fmt.Errorf("gpio: pin %s: input unsupported", p.name)
		}
		switch pull {
		case GPIOPullUp:
			cfg.Mode = machine.PinInputPullup
		case GPIOPullDown:
			cfg.Mode = machine.PinInputPulldown
		default:
			cfg.Mode = machine.PinInput
		}
	default:
		return fmt.Errorf("gpio: pin %s: invalid mode", p.name)
	}
	p.pin.Configure(cfg)
	p.mode = mode
	return nil
}

func (p *machinePin) Read() (bool, error) {
	return p.pin.Get(), nil
}

func (p *machinePin) Write(level bool) error {
	if p.mode != GPIOModeOutput {
		return fmt.Errorf("gpio: pin %s: not in output mode", p.name)
	}
	p.pin.Set(level)
	return nil
}

func (p *machinePin) SetInterrupt(edge GPIOEdge, fn func(level bool)) error {
	if fn == nil {
		return p.pin.SetInterrupt(0, nil)
	}
	if p.caps&GPIOCapInterrupt == 0 {
		return fmt.Errorf("gpio: pin %s: interrupts unsupported", p.name)
	}

	var change machine.PinChange
	if edge&GPIOEdgeRising != 0 {
		change |= machine.PinRising
	}
	if edge&GPIOEdgeFalling != 0 {
		change |= machine.PinFalling
	}
	if change == 0 {
		return fmt.Errorf("gpio: pin %s: invalid edge", p.name)
	}
	return p.pin.SetInterrupt(change, func(pin machine.Pin) {
		fn(pin.Get())
	})
}
