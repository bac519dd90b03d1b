// Package clock provides the cancellable pauses the game core is built on.
package clock

import (
	"context"
	"errors"
	"time"
)

// Clock pauses the calling goroutine.
type Clock interface {
	// Sleep blocks for d or until ctx is done, whichever comes first.
	// It returns ctx.Err() when interrupted.
	Sleep(ctx context.Context, d time.Duration) error
}

// Real sleeps on the wall clock.
type Real struct{}

// Sleep implements Clock.
func (Real) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ErrBudgetExhausted is returned by Fake once its budget is used up.
var ErrBudgetExhausted = errors.New("clock: sleep budget exhausted")

// Fake records sleeps without blocking. Not safe for concurrent use.
type Fake struct {
	// Slept contains every requested duration, in order.
	Slept []time.Duration

	// Elapsed is the sum of Slept.
	Elapsed time.Duration

	// Budget, if > 0, limits the number of sleeps; the call after the last
	// allowed one returns ErrBudgetExhausted without recording.
	Budget int

	// OnSleep, if set, is called before each recorded sleep.
	OnSleep func(n int, d time.Duration)
}

// Sleep implements Clock.
func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.Budget > 0 && len(f.Slept) >= f.Budget {
		return ErrBudgetExhausted
	}
	if f.OnSleep != nil {
		f.OnSleep(len(f.Slept), d)
	}
	f.Slept = append(f.Slept, d)
	f.Elapsed += d
	return nil
}

// Count returns how many sleeps of exactly d were recorded.
func (f *Fake) Count(d time.Duration) int {
	n := 0
	for _, s := range f.Slept {
		if s == d {
			n++
		}
	}
	return n
}
