//go:build !tinygo

package hal

import (
	"fmt"
	"sync"
)

// Host pin numbering. The RF pair is a loopback so that anything transmitted
// on RFTX is captured on RFRX.
const (
	HostPinLED = iota
	HostPinRFTX
	HostPinRFRX
	hostPinGPIOBase
)

const (
	hostGPIOCount = 4
	hostPWMPins   = hostPinGPIOBase + hostGPIOCount

	// OLED geometry of the handheld.
	screenWidth  = 128
	screenHeight = 64
)

// HostConfig tunes the host HAL.
type HostConfig struct {
	// LogFile, when set, receives log lines through a rotating file writer.
	LogFile  string
	LogLevel string
	// LogJSON selects the logrus JSON formatter.
	LogJSON bool
}

type hostHAL struct {
	logger *hostLogger
	led    *hostLED
	gpio   GPIO
	pwm    *VirtualPWM
	clock  *monotonicClock
	fb     *hostFramebuffer
	kbd    *hostKeyboard
	t      *hostTime
}

// New returns a host HAL implementation with default logging.
func New() HAL {
	return newHost(HostConfig{})
}

// NewHost returns a host HAL implementation.
func NewHost(cfg HostConfig) HAL {
	return newHost(cfg)
}

func newHost(cfg HostConfig) *hostHAL {
	logger := newHostLogger(cfg)
	led := &hostLED{logger: logger}

	clock := newMonotonicClock()

	tx, rx := newLoopbackPair("RFTX", "RFRX")
	pins := []GPIOPin{newLEDPin("LED", led), tx, rx}
	for i := 0; i < hostGPIOCount; i++ {
		pins = append(pins, newVirtualPin(
			fmt.Sprintf("GPIO%d", i+1),
			GPIOCapInput|GPIOCapOutput|GPIOCapPullUp|GPIOCapPullDown|GPIOCapInterrupt,
		))
	}

	return &hostHAL{
		logger: logger,
		led:    led,
		gpio:   newVirtualGPIO(pins),
		pwm:    NewVirtualPWM(hostPWMPins),
		clock:  clock,
		fb:     newHostFramebuffer(screenWidth, screenHeight),
		kbd:    newHostKeyboard(),
		t:      newHostTime(clock),
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) LED() LED         { return h.led }
func (h *hostHAL) GPIO() GPIO       { return h.gpio }
func (h *hostHAL) PWM() PWM         { return h.pwm }
func (h *hostHAL) Clock() Clock     { return h.clock }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Input() Input     { return hostInput{kbd: h.kbd} }
func (h *hostHAL) Time() Time       { return h.t }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }

type hostLED struct {
	mu     sync.Mutex
	on     bool
	logger *hostLogger
}

func (l *hostLED) High() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = true
	l.logger.WriteLineString("led: HIGH")
}

func (l *hostLED) Low() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = false
	l.logger.WriteLineString("led: LOW")
}
