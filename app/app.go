package app

import (
	"github.com/spf13/afero"

	"multitool/hal"
	"multitool/internal/buildinfo"
	"multitool/sparkos/kernel"
	"multitool/sparkos/services/logger"
	rfsvc "multitool/sparkos/services/rf"
	timesvc "multitool/sparkos/services/time"
	"multitool/sparkos/services/vfs"
	"multitool/sparkos/tasks/rftools"
)

// Boards and the host number the RF pins right after the status LED.
const (
	defaultTXPin = 1
	defaultRXPin = 2
)

type system struct {
	k *kernel.Kernel
}

// Config selects storage and RF parameters. Zero values fall back to the
// service defaults.
type Config struct {
	// FS backs the .sub capture directory. Nil means an in-memory filesystem.
	FS afero.Fs

	RF    rfsvc.Config
	Tools rftools.Config
}

// New initializes and starts the OS with default config.
func New(h hal.HAL) func() error {
	return NewWithConfig(h, Config{})
}

// Run starts the OS and blocks forever (TinyGo/native entrypoint).
func Run(h hal.HAL) {
	RunWithConfig(h, Config{})
}

func NewWithConfig(h hal.HAL, cfg Config) func() error {
	_ = newSystem(h, cfg)
	return func() error { return nil }
}

func RunWithConfig(h hal.HAL, cfg Config) {
	_ = NewWithConfig(h, cfg)
	select {}
}

func newSystem(h hal.HAL, cfg Config) *system {
	installPanicHandler(h)

	if cfg.FS == nil {
		cfg.FS = afero.NewMemMapFs()
	}
	if cfg.Tools.Version == "" {
		cfg.Tools.Version = buildinfo.Short()
	}
	if cfg.RF.TXPin == 0 && cfg.RF.RXPin == 0 {
		cfg.RF.TXPin, cfg.RF.RXPin = defaultTXPin, defaultRXPin
	}
	if cfg.Tools.JamPin == 0 {
		cfg.Tools.JamPin = cfg.RF.TXPin
	}

	k := kernel.New()

	logEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	timeEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	vfsEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	rfEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)

	logSend := logEP.Restrict(kernel.RightSend)

	// The kernel and the time service both consume ticks.
	ticks := make(chan uint64, 8)

	k.AddTask(logger.New(h.Logger(), logEP.Restrict(kernel.RightRecv)))
	k.AddTask(timesvc.New(ticks, timeEP.Restrict(kernel.RightRecv)))
	k.AddTask(vfs.New(cfg.FS, vfsEP.Restrict(kernel.RightRecv)))
	k.AddTask(rfsvc.New(h.GPIO(), h.PWM(), h.Clock(), rfEP.Restrict(kernel.RightRecv), logSend, cfg.RF))
	k.AddTask(rftools.New(
		h.Display(),
		h.Input(),
		rfEP.Restrict(kernel.RightSend),
		vfsEP.Restrict(kernel.RightSend),
		timeEP.Restrict(kernel.RightSend),
		logSend,
		cfg.Tools,
	))

	if ht := h.Time(); ht != nil {
		if ch := ht.Ticks(); ch != nil {
			go func() {
				for seq := range ch {
					k.TickTo(seq)
					select {
					case ticks <- seq:
					default:
					}
				}
				close(ticks)
			}()
		}
	}

	return &system{k: k}
}
