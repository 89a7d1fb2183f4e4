//go:build tinygo && baremetal

package hal

import (
	"machine"
)

// Board pin numbering used by GPIO() and PWM().
const (
	BoardPinLED = iota
	BoardPinRFTX
	BoardPinRFRX
)

type tinyGoHAL struct {
	logger *uartLogger
	led    *pinLED
	gpio   GPIO
	pwm    PWM
	clock  Clock
	fb     Framebuffer
	kbd    Keyboard
	t      *tinyGoTime
}

// New returns the RP2040 handheld HAL.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
// OLED: SSD1306 128x64 on I2C0, GP4 (SDA) / GP5 (SCL).
// RF: OOK transmitter data on GP16, receiver data on GP17.
// Joystick: GP18..GP22 (up, down, left, right, press), back on GP26, active low.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led := &pinLED{pin: ledPin}

	machine.I2C0.Configure(machine.I2CConfig{
		SDA:       machine.GP4,
		SCL:       machine.GP5,
		Frequency: 400 * machine.KHz,
	})

	pins := []GPIOPin{
		newLEDPin("LED", led),
		newMachinePin("RFTX", machine.GP16, GPIOCapOutput),
		newMachinePin("RFRX", machine.GP17, GPIOCapInput|GPIOCapInterrupt),
	}

	return &tinyGoHAL{
		logger: &uartLogger{uart: uart},
		led:    led,
		gpio:   newVirtualGPIO(pins),
		pwm:    newBoardPWM([]machine.Pin{machine.LED, machine.GP16, machine.GP17}),
		clock:  newMonotonicClock(),
		fb:     newOLEDFramebuffer(machine.I2C0),
		kbd: newJoystick([]joystickButton{
			{pin: machine.GP18, code: KeyUp},
			{pin: machine.GP19, code: KeyDown},
			{pin: machine.GP20, code: KeyLeft},
			{pin: machine.GP21, code: KeyRight},
			{pin: machine.GP22, code: KeyEnter},
			{pin: machine.GP26, code: KeyEscape},
		}),
		t: newTinyGoTime(),
	}
}

func (h *tinyGoHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHAL) LED() LED         { return h.led }
func (h *tinyGoHAL) GPIO() GPIO       { return h.gpio }
func (h *tinyGoHAL) PWM() PWM         { return h.pwm }
func (h *tinyGoHAL) Clock() Clock     { return h.clock }
func (h *tinyGoHAL) Display() Display { return tinyGoDisplay{fb: h.fb} }
func (h *tinyGoHAL) Input() Input     { return tinyGoInput{kbd: h.kbd} }
func (h *tinyGoHAL) Time() Time       { return h.t }
