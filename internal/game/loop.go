package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paulvha/wheel-of-fortune/internal/clock"
	"github.com/paulvha/wheel-of-fortune/internal/gpio"
	"github.com/paulvha/wheel-of-fortune/internal/sound"
)

// Settings is the part of the configuration the core needs.
type Settings struct {
	Pins       Pins
	Hardware   HardwareOptions
	Sequential bool
	GlowTicks  int
	NoShutdown bool
}

// Deps are the collaborators the core is built on.
type Deps struct {
	Board    gpio.Board
	Clock    clock.Clock
	Rand     Source
	Host     PowerOffer
	Reporter Reporter         // optional
	Now      func() time.Time // optional, defaults to time.Now
	NewID    func() string    // optional, defaults to uuid.NewString
	Log      *zap.SugaredLogger
}

// Loop is the round state machine. It owns every other component.
type Loop struct {
	hw       *Hardware
	switches *SwitchMonitor
	selector *LightSelector
	glow     *GlowController
	guard    *ShutdownGuard
	sound    *sound.Player
	clock    clock.Clock
	rand     Source
	reporter Reporter
	now      func() time.Time
	newID    func() string
	log      *zap.SugaredLogger

	defaultGlow int

	state     State
	duration  int // glow ticks of the current round
	highlight int // light blinking while waiting
	round     RoundResult
}

// New assembles the core. Call Hardware().Init before Run.
func New(s Settings, d Deps) *Loop {
	if d.Reporter == nil {
		d.Reporter = NopReporter{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	if d.Log == nil {
		d.Log = zap.NewNop().Sugar()
	}
	if s.GlowTicks < 1 {
		s.GlowTicks = DefaultGlow
	}

	hw := NewHardware(d.Board, s.Pins, s.Hardware, d.Log.Named("hardware"))
	player := sound.NewPlayer(d.Board, d.Clock, !s.Hardware.NoSound, d.Log.Named("sound"))
	guard := NewShutdownGuard(hw, player, d.Clock, d.Host, d.Log.Named("guard"))

	// A nil *ShutdownGuard inside the interface would still be non-nil.
	var trigger Trigger
	if !s.NoShutdown {
		trigger = guard
	}
	switches := NewSwitchMonitor(hw, d.Clock, trigger, d.Reporter, d.Log.Named("switches"))

	return &Loop{
		hw:          hw,
		switches:    switches,
		selector:    NewLightSelector(len(s.Pins.Lights), !s.Sequential, d.Rand),
		glow:        NewGlowController(hw, switches, player, d.Clock),
		guard:       guard,
		sound:       player,
		clock:       d.Clock,
		rand:        d.Rand,
		reporter:    d.Reporter,
		now:         d.Now,
		newID:       d.NewID,
		log:         d.Log.Named("game"),
		defaultGlow: s.GlowTicks,
		duration:    s.GlowTicks,
	}
}

// Hardware returns the hardware layer.
func (l *Loop) Hardware() *Hardware { return l.hw }

// Switches returns the switch monitor.
func (l *Loop) Switches() *SwitchMonitor { return l.switches }

// Selector returns the light selector.
func (l *Loop) Selector() *LightSelector { return l.selector }

// Glow returns the glow controller.
func (l *Loop) Glow() *GlowController { return l.glow }

// Guard returns the shutdown guard.
func (l *Loop) Guard() *ShutdownGuard { return l.guard }

// State returns the current phase.
func (l *Loop) State() State { return l.state }

// Duration returns the glow ticks of the current round.
func (l *Loop) Duration() int { return l.duration }

// Highlight returns the light blinking while waiting for start.
func (l *Loop) Highlight() int { return l.highlight }

// Run plays rounds until ctx is cancelled or the shutdown guard fires.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Infow("game started", "lights", l.hw.Lights(), "glow", l.defaultGlow)
	for {
		if err := l.Round(ctx); err != nil {
			return err
		}
	}
}

// Round plays one round: wait for start, spin until stop, play the outro.
func (l *Loop) Round(ctx context.Context) error {
	l.beginRound()
	if err := l.awaitStart(ctx); err != nil {
		return err
	}
	if err := l.spin(ctx); err != nil {
		return err
	}
	return l.stop(ctx)
}

func (l *Loop) enter(s State) {
	if s == l.state {
		return
	}
	from := l.state
	l.state = s
	l.log.Debugw("state changed", "from", from, "to", s)
	l.reporter.StateChanged(from, s)
}

func (l *Loop) beginRound() {
	l.enter(StateAwaitingStart)
	l.selector.Reset()
	l.duration = l.defaultGlow
	l.highlight = l.selector.Previous()
	l.round = RoundResult{ID: l.newID()}
}

// waitEvent polls once per tick for up to one blink half-cycle and returns
// the first event seen, or EventNone.
func (l *Loop) waitEvent(ctx context.Context) (Event, error) {
	for i := 0; i < BlinkHalfCycle; i++ {
		if err := l.clock.Sleep(ctx, Tick); err != nil {
			return EventNone, err
		}
		ev, err := l.switches.Poll(ctx)
		if err != nil {
			return ev, err
		}
		if ev != EventNone {
			return ev, nil
		}
	}
	return EventNone, nil
}

// sequence switches every light to on, one SequenceStep apart.
func (l *Loop) sequence(ctx context.Context, on bool) error {
	for i := 0; i < l.hw.Lights(); i++ {
		l.hw.SetLightFixed(i, on)
		if err := l.clock.Sleep(ctx, SequenceStep); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loop) awaitStart(ctx context.Context) error {
	l.switches.Reset()

	lit := true
	for {
		l.hw.SetLightFixed(l.highlight, lit)
		l.hw.SetIndicator(ButtonStart, !lit)

		ev, err := l.waitEvent(ctx)
		if err != nil {
			return err
		}
		if ev == EventStart {
			break
		}
		if ev == EventBoth {
			l.hw.SetLightFixed(l.highlight, false)
			l.highlight = (l.highlight + 1) % l.hw.Lights()
		}
		lit = !lit
	}

	l.log.Infow("start pressed", "round", l.round.ID)
	if err := l.sequence(ctx, true); err != nil {
		return err
	}

	l.switches.Reset()
	l.hw.SetIndicator(ButtonStart, true)
	l.hw.SetIndicator(ButtonStop, true)

	for {
		ev, err := l.waitEvent(ctx)
		if err != nil {
			return err
		}
		if ev != EventNone {
			break
		}
	}

	if err := l.sound.Horn(ctx, sound.HornHigh); err != nil {
		return err
	}
	return l.sequence(ctx, false)
}

func (l *Loop) spin(ctx context.Context) error {
	l.enter(StateSpinning)
	l.round.StartedAt = l.now()
	l.sound.Click(sound.ClickNormal)
	l.switches.Reset()

	for {
		light := l.selector.Next()
		l.reporter.LightSelected(light)
		l.round.Spins++

		ev, err := l.glow.Glow(ctx, light, l.duration)
		if err != nil {
			return err
		}
		switch ev {
		case EventStart:
			l.speedUp()
		case EventStop:
			return nil
		}
	}
}

// speedUp shortens the glow by one tick. At one tick the glow jumps back to
// SpeedResetTicks and the round accelerates again from there.
func (l *Loop) speedUp() {
	if l.duration > 1 {
		l.duration--
	} else {
		l.duration = SpeedResetTicks
	}
	l.round.SpeedUps++
	l.log.Debugw("speed changed", "glow", l.duration)
}

func (l *Loop) stop(ctx context.Context) error {
	l.enter(StateStopping)
	l.round.Glow = l.duration
	l.hw.SetIndicator(ButtonStop, false)
	l.hw.SetIndicator(ButtonStart, false)

	outro := MinOutroRounds + l.rand.IntN(MaxOutroRounds-MinOutroRounds+1)
	// Spread the slow-down dividers across the outro.
	step := 10 * len(sound.SlowClicks) / outro

	l.enter(StateOutro)
	for i := 0; i < outro; i++ {
		light := l.selector.Next()
		l.reporter.LightSelected(light)
		l.round.Winner = light

		if _, err := l.glow.Glow(ctx, light, l.duration); err != nil {
			return err
		}
		l.sound.Click(sound.SlowClicks[i*step/10])

		if i > 0 {
			if err := l.clock.Sleep(ctx, time.Duration(i)*SequenceStep); err != nil {
				return err
			}
		}
	}

	if err := l.sound.Horn(ctx, sound.HornOut); err != nil {
		return err
	}

	l.round.Outro = outro
	l.round.Usage = l.selector.Usage()
	l.round.EndedAt = l.now()
	l.log.Infow("round finished",
		"round", l.round.ID,
		"winner", l.round.Winner,
		"spins", l.round.Spins,
		"speedups", l.round.SpeedUps,
		"outro", outro)
	l.reporter.RoundFinished(l.round)
	return nil
}
