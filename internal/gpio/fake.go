package gpio

import "fmt"

// FakeBoard is a test double that returns scripted input levels and records
// every output change.
type FakeBoard struct {
	// Modes holds the mode each pin was last configured with.
	Modes map[int]Mode

	// Levels holds the current logical level of every written output.
	Levels map[int]bool

	// Writes records every Write call in order.
	Writes []Write

	// Tones records every Tone and Silence call in order.
	// Silence is recorded as a zero ToneCall.
	Tones []ToneCall

	// Inputs holds scripted levels per input pin. Each Read consumes the
	// next level; an exhausted script reads inactive.
	Inputs map[int][]bool

	// Reads counts Read calls per pin.
	Reads map[int]int

	// ReadError, if set, will be returned by Read().
	ReadError error

	// WriteError, if set, will be returned by Write().
	WriteError error

	// Closed tracks if Close was called; CloseCount how often.
	Closed     bool
	CloseCount int
}

// Write is a single recorded output change.
type Write struct {
	Pin int
	On  bool
}

// ToneCall is a single recorded tone change.
type ToneCall struct {
	Divider uint32
	Cycle   uint32
}

// Silent reports whether the call was a Silence.
func (t ToneCall) Silent() bool {
	return t.Divider == 0 && t.Cycle == 0
}

// NewFakeBoard creates an empty FakeBoard.
func NewFakeBoard() *FakeBoard {
	return &FakeBoard{
		Modes:  make(map[int]Mode),
		Levels: make(map[int]bool),
		Inputs: make(map[int][]bool),
		Reads:  make(map[int]int),
	}
}

// Queue appends scripted levels for an input pin.
func (f *FakeBoard) Queue(pin int, levels ...bool) {
	f.Inputs[pin] = append(f.Inputs[pin], levels...)
}

// Pending returns the number of scripted levels not yet read on pin.
func (f *FakeBoard) Pending(pin int) int {
	return len(f.Inputs[pin])
}

// Configure records the mode for pin.
func (f *FakeBoard) Configure(pin int, mode Mode) error {
	f.Modes[pin] = mode
	return nil
}

// Read returns the next scripted level for pin.
func (f *FakeBoard) Read(pin int) (bool, error) {
	f.Reads[pin]++
	if f.ReadError != nil {
		return false, f.ReadError
	}
	if _, ok := f.Modes[pin]; !ok {
		return false, fmt.Errorf("read pin %d: not configured", pin)
	}

	q := f.Inputs[pin]
	if len(q) == 0 {
		return false, nil
	}
	f.Inputs[pin] = q[1:]
	return q[0], nil
}

// Write records the level for pin.
func (f *FakeBoard) Write(pin int, on bool) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	if _, ok := f.Modes[pin]; !ok {
		return fmt.Errorf("write pin %d: not configured", pin)
	}
	f.Levels[pin] = on
	f.Writes = append(f.Writes, Write{Pin: pin, On: on})
	return nil
}

// Tone records a tone.
func (f *FakeBoard) Tone(divider, cycle uint32) error {
	f.Tones = append(f.Tones, ToneCall{Divider: divider, Cycle: cycle})
	return nil
}

// Silence records a silence.
func (f *FakeBoard) Silence() error {
	f.Tones = append(f.Tones, ToneCall{})
	return nil
}

// Close marks the board as closed.
func (f *FakeBoard) Close() error {
	f.Closed = true
	f.CloseCount++
	return nil
}

// WritesTo returns the recorded levels written to pin, in order.
func (f *FakeBoard) WritesTo(pin int) []bool {
	var out []bool
	for _, w := range f.Writes {
		if w.Pin == pin {
			out = append(out, w.On)
		}
	}
	return out
}

// Reset clears everything recorded and scripted.
func (f *FakeBoard) Reset() {
	*f = *NewFakeBoard()
}
