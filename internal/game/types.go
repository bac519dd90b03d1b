// Package game contains the wheel of fortune control core: button
// classification, light selection, timed glows, the combo shutdown guard
// and the round state machine.
//
// The core runs on a single goroutine. Every pause goes through a
// clock.Clock, so a cancelled context unwinds the game at the next pause.
package game

import (
	"errors"
	"time"
)

// Event is the classification of one switch poll.
type Event int

const (
	EventNone Event = iota
	EventStop
	EventStart
	EventBoth
)

func (e Event) String() string {
	switch e {
	case EventNone:
		return "NONE"
	case EventStop:
		return "STOP"
	case EventStart:
		return "START"
	case EventBoth:
		return "BOTH"
	default:
		return "UNKNOWN"
	}
}

// State is the phase of the round state machine.
type State int

const (
	StateAwaitingStart State = iota
	StateSpinning
	StateStopping
	StateOutro
)

func (s State) String() string {
	switch s {
	case StateAwaitingStart:
		return "AWAITING_START"
	case StateSpinning:
		return "SPINNING"
	case StateStopping:
		return "STOPPING"
	case StateOutro:
		return "OUTRO"
	default:
		return "UNKNOWN"
	}
}

// Timing of the game. Everything is a multiple of the poll tick except the
// debounce and the sequence steps.
const (
	Tick            = 125 * time.Millisecond
	Debounce        = 250 * time.Millisecond
	SequenceStep    = 250 * time.Millisecond // acknowledge, dim and outro pause unit
	CountdownStep   = time.Second            // shutdown countdown per light
	BlinkHalfCycle  = 16                     // ticks per blink half-cycle while waiting
	ComboThreshold  = 5                      // combo presses that power the device off
	SpeedResetTicks = 3                      // glow ticks after speeding up past 1
	DefaultGlow     = 1
	MinOutroRounds  = 2
	MaxOutroRounds  = 4
)

// ErrShutdown is returned once the combo shutdown sequence has run. The
// hardware is torn down and the host has been asked to power off; callers
// must not touch the hardware again.
var ErrShutdown = errors.New("game: shutdown sequence completed")

// RoundResult summarises one finished round.
type RoundResult struct {
	ID        string
	Winner    int // last light lit in the outro
	Glow      int // glow ticks when stop was pressed
	Spins     int // lights shown while spinning
	SpeedUps  int
	Outro     int // outro rounds played
	Usage     []int
	StartedAt time.Time
	EndedAt   time.Time
}

// Reporter observes the game. Calls happen on the game goroutine and must
// not block.
type Reporter interface {
	StateChanged(from, to State)
	LightSelected(light int)
	ComboPressed(count int)
	RoundFinished(r RoundResult)
}

// NopReporter ignores everything.
type NopReporter struct{}

func (NopReporter) StateChanged(from, to State) {}
func (NopReporter) LightSelected(light int)     {}
func (NopReporter) ComboPressed(count int)      {}
func (NopReporter) RoundFinished(r RoundResult) {}

// Reporters fans out to several reporters in order.
type Reporters []Reporter

func (rs Reporters) StateChanged(from, to State) {
	for _, r := range rs {
		r.StateChanged(from, to)
	}
}

func (rs Reporters) LightSelected(light int) {
	for _, r := range rs {
		r.LightSelected(light)
	}
}

func (rs Reporters) ComboPressed(count int) {
	for _, r := range rs {
		r.ComboPressed(count)
	}
}

func (rs Reporters) RoundFinished(res RoundResult) {
	for _, r := range rs {
		r.RoundFinished(res)
	}
}
