package game

import (
	"context"

	"github.com/paulvha/wheel-of-fortune/internal/clock"
	"github.com/paulvha/wheel-of-fortune/internal/sound"
)

// GlowController lights one light at a time for a number of ticks while
// watching the buttons.
type GlowController struct {
	hw       *Hardware
	switches *SwitchMonitor
	sound    *sound.Player
	clock    clock.Clock
}

// NewGlowController creates a GlowController.
func NewGlowController(hw *Hardware, switches *SwitchMonitor, player *sound.Player, clk clock.Clock) *GlowController {
	return &GlowController{hw: hw, switches: switches, sound: player, clock: clk}
}

// Render switches light on and every other light off.
func (g *GlowController) Render(light int) {
	for i := 0; i < g.hw.Lights(); i++ {
		g.hw.SetLight(i, i == light)
	}
}

// Glow renders light and keeps it lit for ticks ticks. The first event seen
// is latched and returned; after that the buttons are no longer polled but
// the remaining ticks are still slept, so the glow always lasts the same.
// A Stop sounds the low horn as soon as it is seen.
func (g *GlowController) Glow(ctx context.Context, light, ticks int) (Event, error) {
	g.Render(light)

	latched := EventNone
	for ; ticks > 0; ticks-- {
		if latched == EventNone {
			ev, err := g.switches.Poll(ctx)
			if err != nil {
				return ev, err
			}
			latched = ev
			if latched == EventStop {
				if err := g.sound.Horn(ctx, sound.HornLow); err != nil {
					return latched, err
				}
			}
		}

		if err := g.clock.Sleep(ctx, Tick); err != nil {
			return latched, err
		}
	}
	return latched, nil
}
