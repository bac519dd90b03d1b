package config

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulvha/wheel-of-fortune/internal/game"
)

func TestLoadDefaults(t *testing.T) {
	cfg, diags, err := Load(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFlags(t *testing.T) {
	args := []string{"-d", "-g", "3", "-i", "-l", "-r", "-s", "-L", "/tmp/wof.log", "-D",
		"-http", ":8080", "-broker", "tcp://broker:1883", "-topic", "arcade"}
	cfg, diags, err := Load(args, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Empty(t, diags)

	assert.True(t, cfg.NoShutdown)
	assert.Equal(t, 3, cfg.GlowTicks)
	assert.True(t, cfg.Invert)
	assert.True(t, cfg.NoIndicators)
	assert.True(t, cfg.Sequential)
	assert.True(t, cfg.NoSound)
	assert.Equal(t, "/tmp/wof.log", cfg.LogFile)
	assert.True(t, cfg.Debug)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "tcp://broker:1883", cfg.Broker)
	assert.Equal(t, "arcade", cfg.Topic)
	assert.Equal(t, -1, cfg.TonePin())
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("WOF_GLOW", "4")
	t.Setenv("WOF_LIGHT_PINS", "5,6,7")
	t.Setenv("WOF_SEQUENTIAL", "true")
	t.Setenv("WOF_POWEROFF_CMD", "true")

	cfg, _, err := Load(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.GlowTicks)
	assert.Equal(t, []int{5, 6, 7}, cfg.LightPins)
	assert.True(t, cfg.Sequential)
	assert.Equal(t, "true", cfg.PowerOffCommand)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("WOF_GLOW", "4")
	cfg, _, err := Load([]string{"-g", "2"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.GlowTicks)
}

func TestMalformedEnvironmentFallsBack(t *testing.T) {
	t.Setenv("WOF_GLOW", "many")
	cfg, diags, err := Load(nil, &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0], "environment ignored")
	assert.Equal(t, game.DefaultGlow, cfg.GlowTicks)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		check func(*testing.T, Config)
	}{
		{
			name: "glow below one",
			edit: func(c *Config) { c.GlowTicks = 0 },
			check: func(t *testing.T, c Config) {
				assert.Equal(t, 1, c.GlowTicks)
			},
		},
		{
			name: "single light",
			edit: func(c *Config) { c.LightPins = []int{4} },
			check: func(t *testing.T, c Config) {
				assert.Equal(t, []int{24, 23, 22, 21}, c.LightPins)
			},
		},
		{
			name: "negative pin",
			edit: func(c *Config) { c.LightPins = []int{4, -2} },
			check: func(t *testing.T, c Config) {
				assert.Equal(t, []int{24, 23, 22, 21}, c.LightPins)
			},
		},
		{
			name: "empty buffer",
			edit: func(c *Config) { c.BufferLen = 0 },
			check: func(t *testing.T, c Config) {
				assert.Equal(t, 100, c.BufferLen)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.edit(&c)
			diags := c.Normalize()
			assert.Len(t, diags, 1)
			tt.check(t, c)
		})
	}
}

func TestLoadGlowFlagCorrected(t *testing.T) {
	cfg, diags, err := Load([]string{"-g", "0"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Len(t, diags, 1)
	assert.Equal(t, 1, cfg.GlowTicks)
}

func TestLoadUsageErrors(t *testing.T) {
	var stderr bytes.Buffer
	_, _, err := Load([]string{"-x"}, &stderr)
	require.Error(t, err)
	assert.False(t, IsHelp(err))
	assert.Contains(t, stderr.String(), "Usage: wof")

	_, _, err = Load([]string{"extra"}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestLoadHelp(t *testing.T) {
	var stderr bytes.Buffer
	_, _, err := Load([]string{"-h"}, &stderr)
	require.Error(t, err)
	assert.True(t, IsHelp(err))
	assert.Contains(t, stderr.String(), "-poweroff")
}

func TestSettings(t *testing.T) {
	c := Default()
	c.Invert = true
	c.NoShutdown = true
	c.GlowTicks = 2

	s := c.Settings()
	assert.Equal(t, []int{24, 23, 22, 21}, s.Pins.Lights)
	assert.Equal(t, 25, s.Pins.Start)
	assert.Equal(t, 12, s.Pins.Sound)
	assert.True(t, s.Hardware.Invert)
	assert.True(t, s.NoShutdown)
	assert.Equal(t, 2, s.GlowTicks)
	assert.Equal(t, 12, c.TonePin())

	// The settings own their pin slice.
	s.Pins.Lights[0] = 99
	assert.Equal(t, 24, c.LightPins[0])
}
