//go:build !tinygo

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"multitool/app"
	"multitool/hal"
	"multitool/internal/buildinfo"
	"multitool/internal/config"
	rfsvc "multitool/sparkos/services/rf"
	"multitool/sparkos/tasks/rftools"
)

func main() {
	if err := newRootCmd(run).Execute(); err != nil {
		os.Exit(1)
	}
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"headless":      "headless.enabled",
	"hz":            "headless.hz",
	"ticks":         "headless.ticks",
	"keys":          "headless.keys",
	"data-dir":      "data_dir",
	"log-level":     "log.level",
	"log-file":      "log.file",
	"log-json":      "log.json",
	"jam-frequency": "rf.jam_frequency",
}

func newRootCmd(runFn func(cmd *cobra.Command, cfg *config.Config) error) *cobra.Command {
	v := config.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "multitool",
		Short:         "Sub-GHz pulse tools on the host simulator",
		Version:       buildinfo.Long(),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			return runFn(cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default ./multitool.yaml)")
	flags.Bool("headless", false, "run without a window")
	flags.Int("hz", 60, "tick rate in headless mode")
	flags.Uint64("ticks", 0, "stop after N ticks in headless mode (0 = run forever)")
	flags.String("keys", "", "scripted joystick keys for headless mode, e.g. down,enter")
	flags.String("data-dir", "./data", "directory holding the /subghz captures")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "also write logs to this file")
	flags.Bool("log-json", false, "log as JSON")
	flags.Uint32("jam-frequency", 433_920, "default jammer carrier in Hz")

	for name, key := range flagKeys {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	appCfg := appConfig(cfg, afero.NewBasePathFs(afero.NewOsFs(), cfg.DataDir))
	newApp := func(h hal.HAL) func() error { return app.NewWithConfig(h, appCfg) }

	host := hal.HostConfig{LogFile: cfg.Log.File, LogLevel: cfg.Log.Level, LogJSON: cfg.Log.JSON}
	if !cfg.Headless.Enabled {
		return hal.RunWindow(newApp, host)
	}

	keys, err := config.ParseKeys(cfg.Headless.Keys)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	err = hal.RunHeadless(ctx, newApp, hal.HeadlessConfig{
		Host:     host,
		Hz:       cfg.Headless.Hz,
		Ticks:    cfg.Headless.Ticks,
		Keys:     keys,
		KeyEvery: cfg.Headless.Hz / 2,
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func appConfig(cfg *config.Config, fs afero.Fs) app.Config {
	return app.Config{
		FS: fs,
		RF: rfsvc.Config{
			TXPin:           cfg.RF.TXPin,
			RXPin:           cfg.RF.RXPin,
			CaptureCapacity: cfg.RF.CaptureCapacity,
			MaxTxSamples:    cfg.RF.MaxTxSamples,
		},
		Tools: rftools.Config{
			JamPin:       cfg.RF.JamPin,
			JamFrequency: cfg.RF.JamFrequency,
			Frequency:    cfg.RF.Frequency,
			Preset:       cfg.RF.Preset,
			Dir:          cfg.RF.Dir,
			RefreshTicks: cfg.UI.RefreshTicks,
			MaxSamples:   cfg.UI.MaxSamples,
			Version:      buildinfo.Short(),
		},
	}
}
