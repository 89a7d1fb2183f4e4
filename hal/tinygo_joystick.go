//go:build tinygo && baremetal

package hal

import (
	"machine"
	"time"
)

const joystickPollInterval = 10 * time.Millisecond

type joystickButton struct {
	pin  machine.Pin
	code KeyCode
	down bool
}

// joystick polls active-low buttons and turns level changes into key events.
type joystick struct {
	ch      chan KeyEvent
	buttons []joystickButton
}

func newJoystick(buttons []joystickButton) *joystick {
	for i := range buttons {
		buttons[i].pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}
	j := &joystick{ch: make(chan KeyEvent, 16), buttons: buttons}
	go j.run()
	return j
}

func (j *joystick) Events() <-chan KeyEvent { return j.ch }

func (j *joystick) run() {
	ticker := time.NewTicker(joystickPollInterval)
	defer ticker.Stop()
	for range ticker.C {
		for i := range j.buttons {
			b := &j.buttons[i]
			down := !b.pin.Get()
			if down == b.down {
				continue
			}
			b.down = down
			select {
			case j.ch <- KeyEvent{Code: b.code, Press: down}:
			default:
			}
		}
	}
}
