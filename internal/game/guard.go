package game

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/paulvha/wheel-of-fortune/internal/clock"
	"github.com/paulvha/wheel-of-fortune/internal/sound"
)

// PowerOffer asks the host to power off. host.Command implements it.
type PowerOffer interface {
	PowerOff(ctx context.Context) error
}

// ShutdownGuard plays the leaving sequence, releases the hardware and asks
// the host to power off. It fires at most once per process.
type ShutdownGuard struct {
	hw    *Hardware
	sound *sound.Player
	clock clock.Clock
	host  PowerOffer
	log   *zap.SugaredLogger

	fired atomic.Bool
}

// NewShutdownGuard creates a ShutdownGuard.
func NewShutdownGuard(hw *Hardware, player *sound.Player, clk clock.Clock, host PowerOffer, log *zap.SugaredLogger) *ShutdownGuard {
	return &ShutdownGuard{hw: hw, sound: player, clock: clk, host: host, log: log}
}

// Fired reports whether Trigger has run.
func (g *ShutdownGuard) Fired() bool {
	return g.fired.Load()
}

// Trigger runs the shutdown sequence and returns ErrShutdown. The hardware
// is torn down even if the sequence is interrupted; an interrupted sequence
// returns the context error and does not power the host off.
func (g *ShutdownGuard) Trigger(ctx context.Context) error {
	if !g.fired.CompareAndSwap(false, true) {
		return ErrShutdown
	}

	g.log.Warnw("shutdown sequence started")
	seqErr := g.farewell(ctx)

	if err := g.hw.Teardown(); err != nil {
		g.log.Errorw("teardown failed", "error", err)
	}
	if seqErr != nil {
		g.log.Infow("shutdown sequence interrupted", "error", seqErr)
		return seqErr
	}

	g.log.Warnw("requesting host power off")
	if err := g.host.PowerOff(ctx); err != nil {
		g.log.Errorw("power off request failed", "error", err)
	}
	return ErrShutdown
}

// farewell sounds the leaving horn, counts the lights down and sounds the
// horn again.
func (g *ShutdownGuard) farewell(ctx context.Context) error {
	if err := g.sound.Horn(ctx, sound.HornOut); err != nil {
		return err
	}

	n := g.hw.Lights()
	for i := 0; i < n; i++ {
		g.hw.SetLightFixed(i, true)
	}
	for i := n - 1; i >= 0; i-- {
		g.hw.SetLightFixed(i, false)
		if err := g.clock.Sleep(ctx, CountdownStep); err != nil {
			return err
		}
	}

	return g.sound.Horn(ctx, sound.HornOut)
}
