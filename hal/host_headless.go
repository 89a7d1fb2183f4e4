//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Host HostConfig

	// Hz is the step rate of the runner loop.
	Hz int
	// Ticks stops the runner after that many steps (0 runs until ctx ends).
	Ticks uint64

	// Keys is a scripted joystick sequence, one press every KeyEvery steps.
	Keys     []KeyCode
	KeyEvery int
}

// RunHeadless runs the OS without opening a window.
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	if cfg.KeyEvery <= 0 {
		cfg.KeyEvery = cfg.Hz / 2
		if cfg.KeyEvery == 0 {
			cfg.KeyEvery = 1
		}
	}
	keys := cfg.Keys

	h := newHost(cfg.Host)
	step := newApp(h)

	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	var n uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			h.t.step()
			if len(keys) > 0 && n%uint64(cfg.KeyEvery) == 0 {
				h.kbd.press(keys[0])
				keys = keys[1:]
			}
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			n++
			if cfg.Ticks > 0 && n >= cfg.Ticks {
				return nil
			}
		}
	}
}
