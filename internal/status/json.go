package status

import (
	"encoding/json"
	"time"

	"github.com/paulvha/wheel-of-fortune/internal/game"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	State         string     `json:"state"`
	Light         *int       `json:"light,omitempty"`
	Usage         []int      `json:"usage"`
	Wins          []int      `json:"wins"`
	Combos        int        `json:"combos"`
	Rounds        int        `json:"rounds"`
	LastRound     *RoundJSON `json:"last_round,omitempty"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// RoundJSON is the JSON representation of a finished round.
type RoundJSON struct {
	ID         string `json:"id"`
	Winner     int    `json:"winner"`
	Glow       int    `json:"glow_ticks"`
	Spins      int    `json:"spins"`
	SpeedUps   int    `json:"speed_ups"`
	Outro      int    `json:"outro"`
	Usage      []int  `json:"usage"`
	StartedAt  string `json:"started_at"`
	EndedAt    string `json:"ended_at"`
	DurationMs int64  `json:"duration_ms"`
}

// RoundEnvelope wraps a round for MQTT publication.
type RoundEnvelope struct {
	Round RoundJSON `json:"round"`
}

// ConfigJSON is the JSON representation of the run configuration.
type ConfigJSON struct {
	Lights     int    `json:"lights"`
	Sequential bool   `json:"sequential"`
	GlowTicks  int    `json:"glow_ticks"`
	Invert     bool   `json:"invert"`
	Shutdown   bool   `json:"shutdown"`
	Sound      bool   `json:"sound"`
	Indicators bool   `json:"indicators"`
	Broker     string `json:"broker"`
	HTTPAddr   string `json:"http_addr"`
}

// NewRoundJSON converts a round result.
func NewRoundJSON(r game.RoundResult) RoundJSON {
	usage := r.Usage
	if usage == nil {
		usage = []int{}
	}
	return RoundJSON{
		ID:         r.ID,
		Winner:     r.Winner,
		Glow:       r.Glow,
		Spins:      r.Spins,
		SpeedUps:   r.SpeedUps,
		Outro:      r.Outro,
		Usage:      usage,
		StartedAt:  r.StartedAt.UTC().Format(time.RFC3339),
		EndedAt:    r.EndedAt.UTC().Format(time.RFC3339),
		DurationMs: r.EndedAt.Sub(r.StartedAt).Milliseconds(),
	}
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		State:         snap.State.String(),
		Usage:         nonNil(snap.Usage),
		Wins:          nonNil(snap.Wins),
		Combos:        snap.Combos,
		Rounds:        snap.Rounds,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			Lights:     snap.Config.Lights,
			Sequential: snap.Config.Sequential,
			GlowTicks:  snap.Config.GlowTicks,
			Invert:     snap.Config.Invert,
			Shutdown:   snap.Config.Shutdown,
			Sound:      snap.Config.Sound,
			Indicators: snap.Config.Indicators,
			Broker:     snap.Config.Broker,
			HTTPAddr:   snap.Config.HTTPAddr,
		},
	}
	if snap.Light >= 0 {
		light := snap.Light
		inner.Light = &light
	}
	if snap.LastRound != nil {
		r := NewRoundJSON(*snap.LastRound)
		inner.LastRound = &r
	}
	return inner
}

func nonNil(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

// FormatRound returns the JSON payload for a finished round.
func FormatRound(r game.RoundResult) []byte {
	data, _ := json.Marshal(RoundEnvelope{Round: NewRoundJSON(r)})
	return data
}
