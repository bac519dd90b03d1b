// Package status provides a thread-safe view of the running game.
// The game goroutine writes it through the game.Reporter methods; the web
// server and the MQTT system events read snapshots.
package status

import (
	"slices"
	"sync"
	"time"

	"github.com/paulvha/wheel-of-fortune/internal/game"
)

// Config contains the run configuration for display.
type Config struct {
	Lights     int
	Sequential bool
	GlowTicks  int
	Invert     bool
	Shutdown   bool
	Sound      bool
	Indicators bool
	Broker     string
	HTTPAddr   string
}

// Snapshot is a point-in-time view of the game.
// It is a value type and stays valid after the lock is released.
type Snapshot struct {
	State         game.State
	Light         int   // last selected light, -1 before the first
	Usage         []int // selections per light in the current round
	Wins          []int // rounds won per light
	Combos        int
	Rounds        int
	LastRound     *game.RoundResult
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the controller started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable game state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

var _ game.Reporter = (*Tracker)(nil)

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Light:     -1,
			Usage:     make([]int, cfg.Lights),
			Wins:      make([]int, cfg.Lights),
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// StateChanged records the new phase. A new spin starts a fresh usage count.
func (t *Tracker) StateChanged(from, to game.State) {
	t.mu.Lock()
	t.snap.State = to
	switch to {
	case game.StateAwaitingStart:
		t.snap.Combos = 0
	case game.StateSpinning:
		t.snap.Combos = 0
		clear(t.snap.Usage)
	}
	t.mu.Unlock()
}

// LightSelected records the selected light.
func (t *Tracker) LightSelected(light int) {
	t.mu.Lock()
	t.snap.Light = light
	if light >= 0 && light < len(t.snap.Usage) {
		t.snap.Usage[light]++
	}
	t.mu.Unlock()
}

// ComboPressed records the combo count.
func (t *Tracker) ComboPressed(count int) {
	t.mu.Lock()
	t.snap.Combos = count
	t.mu.Unlock()
}

// RoundFinished records a finished round.
func (t *Tracker) RoundFinished(r game.RoundResult) {
	r.Usage = slices.Clone(r.Usage)
	t.mu.Lock()
	t.snap.Rounds++
	if r.Winner >= 0 && r.Winner < len(t.snap.Wins) {
		t.snap.Wins[r.Winner]++
	}
	t.snap.LastRound = &r
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the game state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Usage = slices.Clone(t.snap.Usage)
	s.Wins = slices.Clone(t.snap.Wins)
	if t.snap.LastRound != nil {
		r := *t.snap.LastRound
		r.Usage = slices.Clone(r.Usage)
		s.LastRound = &r
	}
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
