// Package config loads the host configuration with viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"multitool/hal"
)

// EnvPrefix prefixes environment overrides: rf.jam_frequency is read from
// MULTITOOL_RF_JAM_FREQUENCY.
const EnvPrefix = "MULTITOOL"

// Config is the host configuration.
type Config struct {
	DataDir  string         `mapstructure:"data_dir"`
	Log      LogConfig      `mapstructure:"log"`
	RF       RFConfig       `mapstructure:"rf"`
	UI       UIConfig       `mapstructure:"ui"`
	Headless HeadlessConfig `mapstructure:"headless"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"` // empty = stdout only
	JSON  bool   `mapstructure:"json"`
}

// RFConfig selects pins and limits for the RF service.
type RFConfig struct {
	TXPin           int    `mapstructure:"tx_pin"`
	RXPin           int    `mapstructure:"rx_pin"`
	JamPin          int    `mapstructure:"jam_pin"`
	JamFrequency    uint32 `mapstructure:"jam_frequency"`
	CaptureCapacity int    `mapstructure:"capture_capacity"`
	MaxTxSamples    int    `mapstructure:"max_tx_samples"`
	// Frequency and Preset are written into saved .sub headers.
	Frequency uint32 `mapstructure:"frequency"`
	Preset    string `mapstructure:"preset"`
	Dir       string `mapstructure:"dir"`
}

type UIConfig struct {
	RefreshTicks uint32 `mapstructure:"refresh_ticks"`
	MaxSamples   int    `mapstructure:"max_samples"`
}

type HeadlessConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Hz      int    `mapstructure:"hz"`
	Ticks   uint64 `mapstructure:"ticks"`
	// Keys is a scripted joystick sequence, e.g. "down,enter,esc".
	Keys string `mapstructure:"keys"`
}

// New returns a viper instance with defaults and environment overrides set.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "./data")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.json", false)

	v.SetDefault("rf.tx_pin", hal.HostPinRFTX)
	v.SetDefault("rf.rx_pin", hal.HostPinRFRX)
	v.SetDefault("rf.jam_pin", hal.HostPinRFTX)
	v.SetDefault("rf.jam_frequency", 433_920)
	v.SetDefault("rf.capture_capacity", 512)
	v.SetDefault("rf.max_tx_samples", 4096)
	v.SetDefault("rf.frequency", 433_920_000)
	v.SetDefault("rf.preset", "FuriHalSubGhzPresetOok650Async")
	v.SetDefault("rf.dir", "/subghz")

	v.SetDefault("ui.refresh_ticks", 100)
	v.SetDefault("ui.max_samples", 4096)

	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.hz", 60)
	v.SetDefault("headless.ticks", 0)
	v.SetDefault("headless.keys", "")
}

// Load reads path into v (when set), or multitool.yaml from the working
// directory if present, then unmarshals and validates the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("multitool")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks ranges and pin assignments.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	if c.RF.TXPin < 0 || c.RF.RXPin < 0 || c.RF.JamPin < 0 {
		return errors.New("rf pins must not be negative")
	}
	if c.RF.TXPin == c.RF.RXPin {
		return fmt.Errorf("rf.tx_pin and rf.rx_pin are both %d", c.RF.TXPin)
	}
	if c.RF.JamFrequency == 0 || c.RF.JamFrequency > hal.MaxPWMFrequency {
		return fmt.Errorf("rf.jam_frequency %d out of range (1..%d)", c.RF.JamFrequency, hal.MaxPWMFrequency)
	}
	if c.RF.CaptureCapacity <= 0 {
		return fmt.Errorf("rf.capture_capacity must be positive, got %d", c.RF.CaptureCapacity)
	}
	if c.RF.MaxTxSamples <= 0 || c.RF.MaxTxSamples > 0xffff {
		return fmt.Errorf("rf.max_tx_samples %d out of range (1..65535)", c.RF.MaxTxSamples)
	}
	if !strings.HasPrefix(c.RF.Dir, "/") {
		return fmt.Errorf("rf.dir must be absolute, got %q", c.RF.Dir)
	}
	if c.UI.RefreshTicks == 0 {
		return errors.New("ui.refresh_ticks must be positive")
	}
	if c.Headless.Hz <= 0 {
		return fmt.Errorf("headless.hz must be positive, got %d", c.Headless.Hz)
	}
	if _, err := ParseKeys(c.Headless.Keys); err != nil {
		return fmt.Errorf("headless.keys: %w", err)
	}
	return nil
}

var keyNames = map[string]hal.KeyCode{
	"up":     hal.KeyUp,
	"down":   hal.KeyDown,
	"left":   hal.KeyLeft,
	"right":  hal.KeyRight,
	"enter":  hal.KeyEnter,
	"ok":     hal.KeyEnter,
	"esc":    hal.KeyEscape,
	"escape": hal.KeyEscape,
	"back":   hal.KeyEscape,
}

// ParseKeys turns a comma separated key list into joystick codes.
func ParseKeys(s string) ([]hal.KeyCode, error) {
	var out []hal.KeyCode
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		k, ok := keyNames[f]
		if !ok {
			return nil, fmt.Errorf("unknown key %q", f)
		}
		out = append(out, k)
	}
	return out, nil
}
