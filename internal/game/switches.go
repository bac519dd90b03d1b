package game

import (
	"context"

	"go.uber.org/zap"

	"github.com/paulvha/wheel-of-fortune/internal/clock"
)

// Trigger runs the terminal shutdown sequence. ShutdownGuard implements it.
type Trigger interface {
	Trigger(ctx context.Context) error
}

// SwitchMonitor classifies the two push-buttons into one Event per poll
// and counts combo presses (both buttons in the same poll).
type SwitchMonitor struct {
	hw       *Hardware
	clock    clock.Clock
	guard    Trigger // nil disables combo shutdown
	reporter Reporter
	log      *zap.SugaredLogger

	combos int
}

// NewSwitchMonitor creates a SwitchMonitor. A nil guard disables combo
// detection: both buttons together then classify as Start.
func NewSwitchMonitor(hw *Hardware, clk clock.Clock, guard Trigger, reporter Reporter, log *zap.SugaredLogger) *SwitchMonitor {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &SwitchMonitor{
		hw:       hw,
		clock:    clk,
		guard:    guard,
		reporter: reporter,
		log:      log,
	}
}

// Reset discards the combo count. It does not sample the inputs.
func (m *SwitchMonitor) Reset() {
	m.combos = 0
}

// Combos returns the combo presses counted since the last Reset.
func (m *SwitchMonitor) Combos() int {
	return m.combos
}

// Poll samples stop, then start, and classifies the result. Every detected
// press is followed by a debounce pause. Once the ComboThreshold-th combo
// is counted the shutdown guard runs and its error is returned.
func (m *SwitchMonitor) Poll(ctx context.Context) (Event, error) {
	ev := EventNone

	if m.hw.Pressed(ButtonStop) {
		m.log.Debugw("stop switch detected")
		if err := m.clock.Sleep(ctx, Debounce); err != nil {
			return EventNone, err
		}
		ev = EventStop
	}

	if !m.hw.Pressed(ButtonStart) {
		return ev, nil
	}

	m.log.Debugw("start switch detected")
	if err := m.clock.Sleep(ctx, Debounce); err != nil {
		return EventNone, err
	}

	if ev != EventStop || m.guard == nil {
		return EventStart, nil
	}

	m.combos++
	m.log.Infow("combo press counted", "count", m.combos, "threshold", ComboThreshold)
	m.reporter.ComboPressed(m.combos)

	if m.combos >= ComboThreshold {
		m.log.Warnw("combo threshold reached, shutting down")
		return EventBoth, m.guard.Trigger(ctx)
	}
	return EventBoth, nil
}
