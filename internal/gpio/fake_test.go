package gpio

import (
	"errors"
	"testing"
)

func TestFakeBoardRead(t *testing.T) {
	f := NewFakeBoard()
	f.Configure(DefaultPinStart, ModeInputPullUp)
	f.Queue(DefaultPinStart, true, false, true)

	want := []bool{true, false, true}
	for i, w := range want {
		got, err := f.Read(DefaultPinStart)
		if err != nil {
			t.Fatalf("read %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("read %d: expected %v, got %v", i, w, got)
		}
	}

	// Exhausted script reads inactive
	got, err := f.Read(DefaultPinStart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("expected inactive after script exhausted")
	}
	if f.Reads[DefaultPinStart] != 4 {
		t.Errorf("expected 4 reads, got %d", f.Reads[DefaultPinStart])
	}
}

func TestFakeBoardUnconfigured(t *testing.T) {
	f := NewFakeBoard()

	if _, err := f.Read(DefaultPinStop); err == nil {
		t.Error("expected error reading unconfigured pin")
	}
	if err := f.Write(DefaultPinStopLED, true); err == nil {
		t.Error("expected error writing unconfigured pin")
	}
	if len(f.Writes) != 0 {
		t.Errorf("expected no recorded writes, got %d", len(f.Writes))
	}
}

func TestFakeBoardReadError(t *testing.T) {
	f := NewFakeBoard()
	f.Configure(DefaultPinStop, ModeInputPullUp)
	f.ReadError = errors.New("simulated error")

	_, err := f.Read(DefaultPinStop)
	if err == nil {
		t.Fatal("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeBoardWrites(t *testing.T) {
	f := NewFakeBoard()
	for _, pin := range DefaultLightPins {
		f.Configure(pin, ModeOutputActiveLow)
	}

	f.Write(DefaultLightPins[0], true)
	f.Write(DefaultLightPins[1], true)
	f.Write(DefaultLightPins[0], false)

	if f.Levels[DefaultLightPins[0]] {
		t.Error("light 0 should be off")
	}
	if !f.Levels[DefaultLightPins[1]] {
		t.Error("light 1 should be on")
	}

	got := f.WritesTo(DefaultLightPins[0])
	if len(got) != 2 || got[0] != true || got[1] != false {
		t.Errorf("unexpected writes to light 0: %v", got)
	}
}

func TestFakeBoardTones(t *testing.T) {
	f := NewFakeBoard()
	f.Tone(16, 5000)
	f.Silence()

	if len(f.Tones) != 2 {
		t.Fatalf("expected 2 tone calls, got %d", len(f.Tones))
	}
	if f.Tones[0].Silent() {
		t.Error("first call should be a tone")
	}
	if f.Tones[0].Divider != 16 || f.Tones[0].Cycle != 5000 {
		t.Errorf("unexpected tone: %+v", f.Tones[0])
	}
	if !f.Tones[1].Silent() {
		t.Error("second call should be silence")
	}
}

func TestFakeBoardCloseAndReset(t *testing.T) {
	f := NewFakeBoard()
	f.Configure(DefaultPinStart, ModeInputPullUp)
	f.Queue(DefaultPinStart, true)

	if f.Closed {
		t.Error("should not be closed initially")
	}
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed || f.CloseCount != 1 {
		t.Errorf("expected closed once, got closed=%v count=%d", f.Closed, f.CloseCount)
	}

	f.Reset()
	if f.Closed || f.Pending(DefaultPinStart) != 0 || len(f.Modes) != 0 {
		t.Error("reset should clear all state")
	}
}

func TestModeString(t *testing.T) {
	if ModeTone.String() != "tone" {
		t.Errorf("expected tone, got %s", ModeTone)
	}
	if Mode(99).String() != "unknown" {
		t.Errorf("expected unknown, got %s", Mode(99))
	}
}
