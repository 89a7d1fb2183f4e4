//go:build !tinygo

package main

import (
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multitool/internal/config"
)

func execRoot(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	testChdir(t, t.TempDir())

	var got *config.Config
	cmd := newRootCmd(func(_ *cobra.Command, cfg *config.Config) error {
		got = cfg
		return nil
	})
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return got, cmd.Execute()
}

func TestRootFlagsOverrideDefaults(t *testing.T) {
	cfg, err := execRoot(t, "--headless", "--hz", "30", "--keys", "down,enter", "--jam-frequency", "315000", "--data-dir", "/tmp/mt")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.True(t, cfg.Headless.Enabled)
	assert.Equal(t, 30, cfg.Headless.Hz)
	assert.Equal(t, "down,enter", cfg.Headless.Keys)
	assert.Equal(t, uint32(315_000), cfg.RF.JamFrequency)
	assert.Equal(t, "/tmp/mt", cfg.DataDir)
}

func TestRootDefaults(t *testing.T) {
	cfg, err := execRoot(t)
	require.NoError(t, err)
	assert.False(t, cfg.Headless.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, uint32(433_920), cfg.RF.JamFrequency)
}

func TestRootRejectsInvalidConfig(t *testing.T) {
	cfg, err := execRoot(t, "--keys", "sideways")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestAppConfig(t *testing.T) {
	cfg, err := execRoot(t, "--jam-frequency", "868350")
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	ac := appConfig(cfg, fs)
	assert.Same(t, fs, ac.FS)
	assert.Equal(t, cfg.RF.TXPin, ac.RF.TXPin)
	assert.Equal(t, cfg.RF.RXPin, ac.RF.RXPin)
	assert.Equal(t, cfg.RF.CaptureCapacity, ac.RF.CaptureCapacity)
	assert.Equal(t, uint32(868_350), ac.Tools.JamFrequency)
	assert.Equal(t, "/subghz", ac.Tools.Dir)
	assert.Equal(t, cfg.UI.RefreshTicks, ac.Tools.RefreshTicks)
}
