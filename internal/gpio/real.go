//go:build linux

package gpio

import (
	"fmt"
	"sort"

	"github.com/stianeikeland/go-rpio/v4"
	"github.com/warthog618/go-gpiocdev"
)

// pwmOscillator is the PWM clock source frequency the dividers refer to.
const pwmOscillator = 19200000

// toneDuty is the PWM data value (mark length) used for every tone.
const toneDuty = 512

// RealBoard drives actual hardware: GPIO lines through the character device,
// the tone pin through memory-mapped PWM registers.
type RealBoard struct {
	chip    *gpiocdev.Chip
	lines   map[int]*gpiocdev.Line
	tonePin int
	tone    rpio.Pin
	pwmOpen bool
	closed  bool
}

// NewRealBoard opens the named GPIO chip. If tonePin is negative the PWM
// registers are never mapped and Tone/Silence become no-ops.
func NewRealBoard(chipName string, tonePin int) (*RealBoard, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	b := &RealBoard{
		chip:    chip,
		lines:   make(map[int]*gpiocdev.Line),
		tonePin: tonePin,
	}

	if tonePin >= 0 {
		// PWM and clock registers are only reachable through /dev/mem.
		if err := rpio.Open(); err != nil {
			chip.Close()
			return nil, fmt.Errorf("open pwm registers: %w", err)
		}
		b.pwmOpen = true
		b.tone = rpio.Pin(tonePin)
	}

	return b, nil
}

func lineOptions(mode Mode) ([]gpiocdev.LineReqOption, error) {
	switch mode {
	case ModeInput:
		return []gpiocdev.LineReqOption{gpiocdev.AsInput, gpiocdev.WithBiasDisabled}, nil
	case ModeInputPullUp:
		return []gpiocdev.LineReqOption{gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.AsActiveLow}, nil
	case ModeOutput:
		return []gpiocdev.LineReqOption{gpiocdev.AsOutput(0)}, nil
	case ModeOutputActiveLow:
		// Logical 0 on an active-low line drives the pin high, so the
		// light is off from the moment the line is requested.
		return []gpiocdev.LineReqOption{gpiocdev.AsOutput(0), gpiocdev.AsActiveLow}, nil
	default:
		return nil, fmt.Errorf("unsupported line mode %s", mode)
	}
}

// Configure requests (or reconfigures) the line for pin.
func (b *RealBoard) Configure(pin int, mode Mode) error {
	if mode == ModeTone {
		if !b.pwmOpen || pin != b.tonePin {
			return fmt.Errorf("configure pin %d: not the tone pin", pin)
		}
		b.tone.Input()
		return nil
	}

	opts, err := lineOptions(mode)
	if err != nil {
		return fmt.Errorf("configure pin %d: %w", pin, err)
	}

	// gpiocdev options are both request and reconfigure options, but the
	// Go types differ, so convert for the reconfigure path.
	if line, ok := b.lines[pin]; ok {
		reopts := make([]gpiocdev.LineConfigOption, 0, len(opts))
		for _, o := range opts {
			if co, ok := o.(gpiocdev.LineConfigOption); ok {
				reopts = append(reopts, co)
			}
		}
		if err := line.Reconfigure(reopts...); err != nil {
			return fmt.Errorf("reconfigure pin %d: %w", pin, err)
		}
		return nil
	}

	line, err := b.chip.RequestLine(pin, opts...)
	if err != nil {
		return fmt.Errorf("request pin %d: %w", pin, err)
	}
	b.lines[pin] = line
	return nil
}

// Read returns the logical level of pin.
func (b *RealBoard) Read(pin int) (bool, error) {
	line, ok := b.lines[pin]
	if !ok {
		return false, fmt.Errorf("read pin %d: not configured", pin)
	}
	v, err := line.Value()
	if err != nil {
		return false, fmt.Errorf("read pin %d: %w", pin, err)
	}
	return v == 1, nil
}

// Write sets the logical level of pin.
func (b *RealBoard) Write(pin int, on bool) error {
	line, ok := b.lines[pin]
	if !ok {
		return fmt.Errorf("write pin %d: not configured", pin)
	}
	v := 0
	if on {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return fmt.Errorf("write pin %d: %w", pin, err)
	}
	return nil
}

// Tone sets the PWM clock and range, then routes the tone pin to PWM0.
func (b *RealBoard) Tone(divider, cycle uint32) error {
	if !b.pwmOpen {
		return nil
	}
	if divider == 0 || cycle == 0 {
		return fmt.Errorf("tone: invalid divider %d / cycle %d", divider, cycle)
	}
	b.tone.Mode(rpio.Pwm)
	b.tone.Freq(pwmOscillator / int(divider))
	b.tone.DutyCycle(toneDuty, cycle)
	return nil
}

// Silence detaches the tone pin from PWM0.
func (b *RealBoard) Silence() error {
	if !b.pwmOpen {
		return nil
	}
	b.tone.Input()
	return nil
}

// Close releases GPIO resources.
// Every line is returned to a bias-free input before it is released so the
// relay board and the button lamps are left undriven, matching the Pi boot
// state.
func (b *RealBoard) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error

	pins := make([]int, 0, len(b.lines))
	for pin := range b.lines {
		pins = append(pins, pin)
	}
	sort.Ints(pins)

	for _, pin := range pins {
		line := b.lines[pin]
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithBiasDisabled); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", pin, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
	}
	b.lines = map[int]*gpiocdev.Line{}

	if b.pwmOpen {
		b.tone.Input()
		if err := rpio.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pwm registers: %w", err))
		}
		b.pwmOpen = false
	}

	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
