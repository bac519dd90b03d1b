// Package gpio provides digital I/O and tone output with hardware abstraction.
// The real implementation uses the Linux GPIO character device for lines and
// the BCM283x PWM block for the sound pin.
// The fake implementation allows testing without hardware.
package gpio

// Mode selects how a pin is configured by Board.Configure.
type Mode int

const (
	// ModeInput is a floating input.
	ModeInput Mode = iota
	// ModeInputPullUp is an input with pull-up; a low level reads as active.
	ModeInputPullUp
	// ModeOutput is an output; active drives the pin high.
	ModeOutput
	// ModeOutputActiveLow is an output; active drives the pin low.
	ModeOutputActiveLow
	// ModeTone routes the pin to the PWM block (alternate function).
	ModeTone
)

func (m Mode) String() string {
	switch m {
	case ModeInput:
		return "input"
	case ModeInputPullUp:
		return "input-pull-up"
	case ModeOutput:
		return "output"
	case ModeOutputActiveLow:
		return "output-active-low"
	case ModeTone:
		return "tone"
	default:
		return "unknown"
	}
}

// Board is the hardware the game core drives.
// All levels are logical: true = active (button pressed, light lit),
// whatever the electrical polarity configured for the pin.
type Board interface {
	// Configure sets up a pin. Configuring an already configured pin
	// reconfigures it.
	Configure(pin int, mode Mode) error

	// Read returns the logical level of an input pin.
	Read(pin int) (bool, error)

	// Write sets the logical level of an output pin.
	Write(pin int, on bool) error

	// Tone starts a square wave on the tone pin. divider is the PWM clock
	// divider, cycle the PWM range; the output pitch falls as either grows.
	Tone(divider, cycle uint32) error

	// Silence stops any tone.
	Silence() error

	// Close returns every configured pin to a safe input state and
	// releases hardware resources.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultPinStart    = 25 // START switch input
	DefaultPinStop     = 19 // STOP switch input
	DefaultPinStartLED = 17 // START switch lamp
	DefaultPinStopLED  = 16 // STOP switch lamp
	DefaultPinSound    = 12 // PWM0, header pin 32
)

// DefaultLightPins lists the light outputs in ring order.
var DefaultLightPins = []int{24, 23, 22, 21}
