package game

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/paulvha/wheel-of-fortune/internal/gpio"
)

// Pins assigns board pins to the device's parts.
type Pins struct {
	Lights   []int // ring order
	Start    int
	Stop     int
	StartLED int
	StopLED  int
	Sound    int
}

// Button identifies a push-button.
type Button int

const (
	ButtonStart Button = iota
	ButtonStop
)

// HardwareOptions are the output switches taken from the configuration.
type HardwareOptions struct {
	Invert       bool // swap light on/off during play
	NoIndicators bool // leave the button lamps alone
	NoSound      bool // leave the tone pin alone
}

// Hardware maps game-level operations (light i on, start lamp off, is stop
// pressed) onto a gpio.Board. After Teardown every operation is a no-op.
type Hardware struct {
	board gpio.Board
	pins  Pins
	opts  HardwareOptions
	log   *zap.SugaredLogger

	ioErrors rate.Sometimes

	teardown    sync.Once
	teardownErr error
	down        atomic.Bool
}

// NewHardware creates a Hardware. Call Init before use.
func NewHardware(board gpio.Board, pins Pins, opts HardwareOptions, log *zap.SugaredLogger) *Hardware {
	return &Hardware{
		board:    board,
		pins:     pins,
		opts:     opts,
		log:      log,
		ioErrors: rate.Sometimes{First: 3, Interval: 10 * time.Second},
	}
}

// Board returns the underlying board (tone output shares it).
func (h *Hardware) Board() gpio.Board {
	return h.board
}

// Lights returns the number of lights.
func (h *Hardware) Lights() int {
	return len(h.pins.Lights)
}

// Init configures every pin the game uses. Lights start off, button lamps
// start off, the tone pin starts silent.
func (h *Hardware) Init() error {
	for _, b := range []struct {
		name string
		pin  int
	}{{"start", h.pins.Start}, {"stop", h.pins.Stop}} {
		if err := h.board.Configure(b.pin, gpio.ModeInputPullUp); err != nil {
			return fmt.Errorf("configure %s switch: %w", b.name, err)
		}
	}

	for i, pin := range h.pins.Lights {
		if err := h.board.Configure(pin, gpio.ModeOutputActiveLow); err != nil {
			return fmt.Errorf("configure light %d: %w", i, err)
		}
	}

	if !h.opts.NoIndicators {
		for _, pin := range []int{h.pins.StartLED, h.pins.StopLED} {
			if err := h.board.Configure(pin, gpio.ModeOutput); err != nil {
				return fmt.Errorf("configure button led %d: %w", pin, err)
			}
			if err := h.board.Write(pin, false); err != nil {
				return fmt.Errorf("reset button led %d: %w", pin, err)
			}
		}
	}

	if !h.opts.NoSound {
		if err := h.board.Configure(h.pins.Sound, gpio.ModeTone); err != nil {
			return fmt.Errorf("configure sound pin: %w", err)
		}
	}
	return nil
}

// SetLight switches light i during play; the invert option applies.
func (h *Hardware) SetLight(i int, on bool) {
	h.setLight(i, on != h.opts.Invert)
}

// SetLightFixed switches light i ignoring the invert option. Used for the
// waiting blink, the acknowledge sequence and the shutdown countdown.
func (h *Hardware) SetLightFixed(i int, on bool) {
	h.setLight(i, on)
}

func (h *Hardware) setLight(i int, on bool) {
	if i < 0 || i >= len(h.pins.Lights) {
		return
	}
	h.write(h.pins.Lights[i], on)
}

// SetIndicator switches a button lamp. It does nothing when lamps are
// disabled. Lamps never follow the invert option.
func (h *Hardware) SetIndicator(b Button, on bool) {
	if h.opts.NoIndicators {
		return
	}
	switch b {
	case ButtonStart:
		h.write(h.pins.StartLED, on)
	case ButtonStop:
		h.write(h.pins.StopLED, on)
	}
}

// Pressed samples a button. A failed read counts as not pressed.
func (h *Hardware) Pressed(b Button) bool {
	if h.down.Load() {
		return false
	}
	pin := h.pins.Start
	if b == ButtonStop {
		pin = h.pins.Stop
	}
	on, err := h.board.Read(pin)
	if err != nil {
		h.ioErrors.Do(func() {
			h.log.Warnw("switch read failed", "pin", pin, "error", err)
		})
		return false
	}
	return on
}

func (h *Hardware) write(pin int, on bool) {
	if h.down.Load() {
		return
	}
	if err := h.board.Write(pin, on); err != nil {
		h.ioErrors.Do(func() {
			h.log.Warnw("output write failed", "pin", pin, "error", err)
		})
	}
}

// Teardown switches the lamps off, silences the tone pin and releases the
// board. It runs at most once; later calls return the first result.
func (h *Hardware) Teardown() error {
	h.teardown.Do(func() {
		if !h.opts.NoIndicators {
			h.write(h.pins.StartLED, false)
			h.write(h.pins.StopLED, false)
		}
		if !h.opts.NoSound {
			if err := h.board.Silence(); err != nil {
				h.log.Warnw("silence failed", "error", err)
			}
		}
		h.down.Store(true)
		if err := h.board.Close(); err != nil {
			h.teardownErr = fmt.Errorf("close board: %w", err)
		}
		h.log.Infow("hardware released")
	})
	return h.teardownErr
}

// Down reports whether Teardown has run.
func (h *Hardware) Down() bool {
	return h.down.Load()
}
