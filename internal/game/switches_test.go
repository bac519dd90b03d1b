package game

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPollClassifies(t *testing.T) {
	tests := []struct {
		name      string
		press     Event
		guard     bool
		want      Event
		debounces int
	}{
		{"nothing", EventNone, true, EventNone, 0},
		{"stop", EventStop, true, EventStop, 1},
		{"start", EventStart, true, EventStart, 1},
		{"both", EventBoth, true, EventBoth, 2},
		{"both without shutdown", EventBoth, false, EventStart, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, HardwareOptions{})
			var guard Trigger
			if tt.guard {
				guard = &fakeTrigger{}
			}
			m := NewSwitchMonitor(f.hw, f.clock, guard, nil, f.log)
			script(f.board, tt.press)

			got, err := m.Poll(context.Background())
			if err != nil {
				t.Fatalf("Poll: %v", err)
			}
			if got != tt.want {
				t.Errorf("Poll = %s, want %s", got, tt.want)
			}
			if n := f.clock.Count(Debounce); n != tt.debounces {
				t.Errorf("debounce pauses = %d, want %d", n, tt.debounces)
			}
		})
	}
}

func TestPollReadsStopThenStart(t *testing.T) {
	f := newFixture(t, HardwareOptions{})
	m := NewSwitchMonitor(f.hw, f.clock, nil, nil, f.log)

	if _, err := m.Poll(context.Background()); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if f.board.Reads[testPins.Stop] != 1 || f.board.Reads[testPins.Start] != 1 {
		t.Errorf("reads: stop=%d start=%d, want one each",
			f.board.Reads[testPins.Stop], f.board.Reads[testPins.Start])
	}
}

func TestComboEscalation(t *testing.T) {
	f := newFixture(t, HardwareOptions{})
	guard := &fakeTrigger{}
	rec := &recorder{}
	m := NewSwitchMonitor(f.hw, f.clock, guard, rec, f.log)
	ctx := context.Background()

	script(f.board, EventBoth, EventBoth, EventBoth, EventBoth)
	for i := 0; i < ComboThreshold-1; i++ {
		ev, err := m.Poll(ctx)
		if err != nil {
			t.Fatalf("combo %d: unexpected error %v", i+1, err)
		}
		if ev != EventBoth {
			t.Errorf("combo %d: got %s, want BOTH", i+1, ev)
		}
	}
	if guard.calls != 0 {
		t.Fatalf("guard fired after %d combos", ComboThreshold-1)
	}

	script(f.board, EventBoth)
	ev, err := m.Poll(ctx)
	if !errors.Is(err, ErrShutdown) {
		t.Fatalf("expected ErrShutdown on combo %d, got %v", ComboThreshold, err)
	}
	if ev != EventBoth {
		t.Errorf("got %s, want BOTH", ev)
	}
	if guard.calls != 1 {
		t.Errorf("guard calls = %d, want 1", guard.calls)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5}, rec.combos); diff != "" {
		t.Errorf("combo reports (-want +got):\n%s", diff)
	}
}

func TestComboResetClearsCount(t *testing.T) {
	f := newFixture(t, HardwareOptions{})
	guard := &fakeTrigger{}
	m := NewSwitchMonitor(f.hw, f.clock, guard, nil, f.log)
	ctx := context.Background()

	script(f.board, EventBoth, EventBoth, EventBoth, EventBoth)
	for i := 0; i < 4; i++ {
		if _, err := m.Poll(ctx); err != nil {
			t.Fatalf("Poll: %v", err)
		}
	}
	m.Reset()
	if m.Combos() != 0 {
		t.Fatalf("Combos after Reset = %d", m.Combos())
	}

	script(f.board, EventBoth, EventBoth, EventBoth, EventBoth)
	for i := 0; i < 4; i++ {
		if _, err := m.Poll(ctx); err != nil {
			t.Fatalf("Poll after reset: %v", err)
		}
	}
	if guard.calls != 0 {
		t.Errorf("guard fired although the count was reset")
	}
}

func TestComboNotCountedForSeparatePresses(t *testing.T) {
	f := newFixture(t, HardwareOptions{})
	guard := &fakeTrigger{}
	m := NewSwitchMonitor(f.hw, f.clock, guard, nil, f.log)

	script(f.board, EventStop, EventStart, EventStop, EventStart, EventStop, EventStart)
	for i := 0; i < 6; i++ {
		if _, err := m.Poll(context.Background()); err != nil {
			t.Fatalf("Poll: %v", err)
		}
	}
	if m.Combos() != 0 {
		t.Errorf("Combos = %d, want 0", m.Combos())
	}
}

func TestPollCancelled(t *testing.T) {
	f := newFixture(t, HardwareOptions{})
	m := NewSwitchMonitor(f.hw, f.clock, nil, nil, f.log)
	script(f.board, EventStop)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Poll(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPollReadErrorCountsAsReleased(t *testing.T) {
	f := newFixture(t, HardwareOptions{})
	m := NewSwitchMonitor(f.hw, f.clock, nil, nil, f.log)
	f.board.ReadError = errors.New("line gone")

	ev, err := m.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if ev != EventNone {
		t.Errorf("got %s, want NONE", ev)
	}
}
