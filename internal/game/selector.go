package game

import (
	"math/rand/v2"
	"time"
)

// Source draws a uniform integer in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// NewSource returns a time-seeded PCG source.
func NewSource() Source {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// LightSelector picks the next light, either in ring order or at random
// while keeping per-light usage balanced.
type LightSelector struct {
	random bool
	src    Source
	usage  []int
	prev   int
	picked bool // prev is meaningful
}

// NewLightSelector creates a selector over n lights. src is only used in
// random mode and may be nil otherwise.
func NewLightSelector(n int, random bool, src Source) *LightSelector {
	return &LightSelector{
		random: random,
		src:    src,
		usage:  make([]int, n),
	}
}

// Next returns the next light and counts its use.
//
// In random mode a draw equal to the previous light is replaced by the
// least-used other light (lowest index on ties), so the same light is never
// returned twice in a row and usage drifts towards balance.
func (s *LightSelector) Next() int {
	var light int
	switch {
	case !s.random:
		if s.picked {
			light = (s.prev + 1) % len(s.usage)
		}
	default:
		light = s.src.IntN(len(s.usage))
		if s.picked && light == s.prev {
			light = s.leastUsedExcept(s.prev)
		}
	}

	s.usage[light]++
	s.prev = light
	s.picked = true
	return light
}

func (s *LightSelector) leastUsedExcept(skip int) int {
	best := -1
	for i, n := range s.usage {
		if i == skip {
			continue
		}
		if best < 0 || n < s.usage[best] {
			best = i
		}
	}
	if best < 0 {
		// Single light: nothing else to choose.
		return skip
	}
	return best
}

// Reset zeroes the usage counters. The previous light is kept, so the first
// pick of a new round still differs from the last pick of the old one.
func (s *LightSelector) Reset() {
	for i := range s.usage {
		s.usage[i] = 0
	}
}

// Usage returns a copy of the usage counters.
func (s *LightSelector) Usage() []int {
	out := make([]int, len(s.usage))
	copy(out, s.usage)
	return out
}

// Previous returns the last selected light, or 0 before the first pick.
func (s *LightSelector) Previous() int {
	return s.prev
}
