// Package sound plays the clicking and horn effects on the PWM tone pin.
package sound

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/paulvha/wheel-of-fortune/internal/clock"
	"github.com/paulvha/wheel-of-fortune/internal/gpio"
)

// Clock dividers for the clicking sound. Larger is slower.
const (
	ClickNormal uint32 = 1536
	ClickSlow1  uint32 = 2048
	ClickSlow2  uint32 = 2560
	ClickSlow3  uint32 = 3072
	ClickSlow4  uint32 = 3584
)

// SlowClicks are the outro dividers, fastest first.
var SlowClicks = [4]uint32{ClickSlow1, ClickSlow2, ClickSlow3, ClickSlow4}

// Horn ranges. Larger is lower.
const (
	HornHigh uint32 = 3064 // ready
	HornLow  uint32 = 4096 // stop pressed
	HornOut  uint32 = 5000 // leaving / all done
)

const (
	// HornTime is how long a horn sounds.
	HornTime = time.Second

	clickCycle  uint32 = 2048
	hornDivider uint32 = 16
)

// Player drives the tone pin. A disabled Player never touches the board
// and never sleeps.
type Player struct {
	board   gpio.Board
	clock   clock.Clock
	enabled bool
	log     *zap.SugaredLogger
}

// NewPlayer creates a Player.
func NewPlayer(board gpio.Board, clk clock.Clock, enabled bool, log *zap.SugaredLogger) *Player {
	return &Player{board: board, clock: clk, enabled: enabled, log: log}
}

// Enabled reports whether sound output is on.
func (p *Player) Enabled() bool {
	return p.enabled
}

// Click starts the clicking sound at the given divider. It keeps running
// until the next Click, Horn or Off.
func (p *Player) Click(divider uint32) {
	if !p.enabled {
		return
	}
	if err := p.board.Tone(divider, clickCycle); err != nil {
		p.log.Warnw("click failed", "divider", divider, "error", err)
	}
}

// Horn sounds a horn tone for HornTime, then silences the pin.
func (p *Player) Horn(ctx context.Context, value uint32) error {
	if !p.enabled {
		return nil
	}
	if err := p.board.Tone(hornDivider, value); err != nil {
		p.log.Warnw("horn failed", "value", value, "error", err)
	}
	err := p.clock.Sleep(ctx, HornTime)
	p.Off()
	return err
}

// Off silences the pin.
func (p *Player) Off() {
	if !p.enabled {
		return
	}
	if err := p.board.Silence(); err != nil {
		p.log.Warnw("silence failed", "error", err)
	}
}
