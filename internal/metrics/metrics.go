// Package metrics exposes the game as Prometheus collectors.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/paulvha/wheel-of-fortune/internal/game"
)

var states = []game.State{
	game.StateAwaitingStart,
	game.StateSpinning,
	game.StateStopping,
	game.StateOutro,
}

// Metrics implements game.Reporter on a registry of its own.
type Metrics struct {
	Registry *prometheus.Registry

	rounds     prometheus.Counter
	selections *prometheus.CounterVec
	wins       *prometheus.CounterVec
	combos     prometheus.Counter
	speedUps   prometheus.Counter
	state      *prometheus.GaugeVec
	duration   prometheus.Histogram
	spins      prometheus.Histogram
}

var _ game.Reporter = (*Metrics)(nil)

// New registers the collectors, plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	m := &Metrics{
		Registry: reg,
		rounds: f.NewCounter(prometheus.CounterOpts{
			Name: "wof_rounds_total",
			Help: "Rounds played to the end of the outro",
		}),
		selections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wof_light_selections_total",
			Help: "Times each light was selected",
		}, []string{"light"}),
		wins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wof_wins_total",
			Help: "Rounds won per light",
		}, []string{"light"}),
		combos: f.NewCounter(prometheus.CounterOpts{
			Name: "wof_combo_presses_total",
			Help: "Start and stop pressed together",
		}),
		speedUps: f.NewCounter(prometheus.CounterOpts{
			Name: "wof_speed_ups_total",
			Help: "Start presses during a spin",
		}),
		state: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wof_state",
			Help: "1 for the current game phase",
		}, []string{"state"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "wof_round_duration_seconds",
			Help:    "Time from the first spin to the end of the outro",
			Buckets: []float64{2, 5, 10, 20, 30, 60, 120, 300},
		}),
		spins: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "wof_round_spins",
			Help:    "Lights shown while spinning, per round",
			Buckets: prometheus.ExponentialBuckets(4, 2, 7),
		}),
	}
	m.StateChanged(game.StateAwaitingStart, game.StateAwaitingStart)
	return m
}

func (m *Metrics) StateChanged(from, to game.State) {
	for _, s := range states {
		v := 0.0
		if s == to {
			v = 1
		}
		m.state.WithLabelValues(s.String()).Set(v)
	}
}

func (m *Metrics) LightSelected(light int) {
	m.selections.WithLabelValues(strconv.Itoa(light)).Inc()
}

func (m *Metrics) ComboPressed(count int) {
	m.combos.Inc()
}

func (m *Metrics) RoundFinished(r game.RoundResult) {
	m.rounds.Inc()
	m.wins.WithLabelValues(strconv.Itoa(r.Winner)).Inc()
	m.speedUps.Add(float64(r.SpeedUps))
	m.spins.Observe(float64(r.Spins))
	if !r.StartedAt.IsZero() && r.EndedAt.After(r.StartedAt) {
		m.duration.Observe(r.EndedAt.Sub(r.StartedAt).Seconds())
	}
}
