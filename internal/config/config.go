// Package config builds the immutable run configuration from the
// environment and the command line.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"

	"github.com/caarlos0/env"

	"github.com/paulvha/wheel-of-fortune/internal/game"
	"github.com/paulvha/wheel-of-fortune/internal/gpio"
	"github.com/paulvha/wheel-of-fortune/internal/host"
)

// Config holds every setting of a run. Environment variables are read
// first; command-line flags override them.
type Config struct {
	Sequential   bool   `env:"WOF_SEQUENTIAL"`
	GlowTicks    int    `env:"WOF_GLOW" envDefault:"1"`
	Invert       bool   `env:"WOF_INVERT"`
	NoShutdown   bool   `env:"WOF_NO_SHUTDOWN"`
	NoIndicators bool   `env:"WOF_NO_LEDS"`
	NoSound      bool   `env:"WOF_NO_SOUND"`
	LogFile      string `env:"WOF_LOG_FILE"`
	Debug        bool   `env:"WOF_DEBUG"`

	Chip      string `env:"WOF_CHIP" envDefault:"gpiochip0"`
	LightPins []int  `env:"WOF_LIGHT_PINS" envDefault:"24,23,22,21" envSeparator:","`
	StartPin  int    `env:"WOF_START_PIN" envDefault:"25"`
	StopPin   int    `env:"WOF_STOP_PIN" envDefault:"19"`
	StartLED  int    `env:"WOF_START_LED" envDefault:"17"`
	StopLED   int    `env:"WOF_STOP_LED" envDefault:"16"`
	SoundPin  int    `env:"WOF_SOUND_PIN" envDefault:"12"`

	PowerOffCommand string `env:"WOF_POWEROFF_CMD" envDefault:"shutdown -P now"`

	HTTPAddr  string `env:"WOF_HTTP"`
	Broker    string `env:"WOF_MQTT_BROKER"`
	Topic     string `env:"WOF_MQTT_TOPIC" envDefault:"wof"`
	ClientID  string `env:"WOF_MQTT_CLIENT_ID" envDefault:"wheel-of-fortune"`
	BufferLen int    `env:"WOF_MQTT_BUFFER" envDefault:"100"`

	ShowVersion bool
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		GlowTicks:       game.DefaultGlow,
		Chip:            "gpiochip0",
		LightPins:       slices.Clone(gpio.DefaultLightPins),
		StartPin:        gpio.DefaultPinStart,
		StopPin:         gpio.DefaultPinStop,
		StartLED:        gpio.DefaultPinStartLED,
		StopLED:         gpio.DefaultPinStopLED,
		SoundPin:        gpio.DefaultPinSound,
		PowerOffCommand: host.DefaultPowerOffCommand,
		Topic:           "wof",
		ClientID:        "wheel-of-fortune",
		BufferLen:       100,
	}
}

// Load reads the environment, then parses args (without the program name).
// Usage and parse errors are written to stderr. The returned diagnostics
// describe values that were corrected. flag.ErrHelp is returned for -h.
func Load(args []string, stderr io.Writer) (Config, []string, error) {
	var diags []string

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		diags = append(diags, fmt.Sprintf("environment ignored: %v", err))
		cfg = Default()
	}

	fs := flag.NewFlagSet("wof", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(fs, stderr) }

	fs.BoolVar(&cfg.NoShutdown, "d", cfg.NoShutdown, "disable shutdown by pressing start and stop 5 times")
	fs.IntVar(&cfg.GlowTicks, "g", cfg.GlowTicks, "glow time of a light in 125ms ticks")
	fs.BoolVar(&cfg.Invert, "i", cfg.Invert, "invert the lights during play")
	fs.BoolVar(&cfg.NoIndicators, "l", cfg.NoIndicators, "disable the button LEDs")
	fs.BoolVar(&cfg.Sequential, "r", cfg.Sequential, "select lights in ring order instead of at random")
	fs.BoolVar(&cfg.NoSound, "s", cfg.NoSound, "disable sound")
	fs.StringVar(&cfg.LogFile, "L", cfg.LogFile, "append log messages to `file`")
	fs.BoolVar(&cfg.Debug, "D", cfg.Debug, "enable debug messages")

	fs.StringVar(&cfg.Chip, "chip", cfg.Chip, "GPIO character device")
	fs.StringVar(&cfg.PowerOffCommand, "poweroff", cfg.PowerOffCommand, "command that powers the host off")
	fs.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "status page listen `address` (empty disables)")
	fs.StringVar(&cfg.Broker, "broker", cfg.Broker, "MQTT broker `url` (empty disables)")
	fs.StringVar(&cfg.Topic, "topic", cfg.Topic, "MQTT topic prefix")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		return cfg, diags, err
	}
	if fs.NArg() > 0 {
		err := fmt.Errorf("unexpected argument %q", fs.Arg(0))
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return cfg, diags, err
	}

	diags = append(diags, cfg.Normalize()...)
	return cfg, diags, nil
}

// IsHelp reports whether err came from -h.
func IsHelp(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// Normalize corrects out-of-range values and describes each correction.
func (c *Config) Normalize() []string {
	var diags []string

	if c.GlowTicks < 1 {
		diags = append(diags, fmt.Sprintf("glow time %d below 1, using %d", c.GlowTicks, game.DefaultGlow))
		c.GlowTicks = game.DefaultGlow
	}
	if len(c.LightPins) < 2 {
		diags = append(diags, fmt.Sprintf("%d light pins configured, need at least 2, using %v", len(c.LightPins), gpio.DefaultLightPins))
		c.LightPins = slices.Clone(gpio.DefaultLightPins)
	}
	for _, p := range c.LightPins {
		if p < 0 {
			diags = append(diags, fmt.Sprintf("invalid light pin %d, using %v", p, gpio.DefaultLightPins))
			c.LightPins = slices.Clone(gpio.DefaultLightPins)
			break
		}
	}
	if c.BufferLen < 1 {
		diags = append(diags, fmt.Sprintf("MQTT buffer %d below 1, using 100", c.BufferLen))
		c.BufferLen = 100
	}
	return diags
}

// Pins returns the pin assignment for the game core.
func (c Config) Pins() game.Pins {
	return game.Pins{
		Lights:   slices.Clone(c.LightPins),
		Start:    c.StartPin,
		Stop:     c.StopPin,
		StartLED: c.StartLED,
		StopLED:  c.StopLED,
		Sound:    c.SoundPin,
	}
}

// Settings returns the game core settings.
func (c Config) Settings() game.Settings {
	return game.Settings{
		Pins: c.Pins(),
		Hardware: game.HardwareOptions{
			Invert:       c.Invert,
			NoIndicators: c.NoIndicators,
			NoSound:      c.NoSound,
		},
		Sequential: c.Sequential,
		GlowTicks:  c.GlowTicks,
		NoShutdown: c.NoShutdown,
	}
}

// TonePin returns the PWM pin, or -1 when sound is disabled.
func (c Config) TonePin() int {
	if c.NoSound {
		return -1
	}
	return c.SoundPin
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, "Usage: wof [options]\n\n")
	fmt.Fprintf(w, "Wheel of fortune controller. Must run as root.\n")
	fmt.Fprintf(w, "Environment variables WOF_* set the defaults; flags override them.\n\n")
	fs.PrintDefaults()
}
