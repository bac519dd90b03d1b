package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/paulvha/wheel-of-fortune/internal/clock"
	"github.com/paulvha/wheel-of-fortune/internal/config"
	"github.com/paulvha/wheel-of-fortune/internal/game"
	"github.com/paulvha/wheel-of-fortune/internal/gpio"
	"github.com/paulvha/wheel-of-fortune/internal/metrics"
	"github.com/paulvha/wheel-of-fortune/internal/mqtt"
	"github.com/paulvha/wheel-of-fortune/internal/status"
	"github.com/paulvha/wheel-of-fortune/internal/web"
)

// constSource always draws v.
type constSource int

func (c constSource) IntN(n int) int { return int(c) % n }

type hostCalls struct{ n int }

func (h *hostCalls) PowerOff(context.Context) error {
	h.n++
	return nil
}

// rig wires the game to every consumer the command wires it to, on fakes.
type rig struct {
	cfg       config.Config
	board     *gpio.FakeBoard
	clock     *clock.Fake
	host      *hostCalls
	tracker   *status.Tracker
	metrics   *metrics.Metrics
	publisher *mqtt.FakePublisher
	loop      *game.Loop
	web       *httptest.Server
}

func newRig(t *testing.T, cfg config.Config) *rig {
	t.Helper()
	r := &rig{
		cfg:       cfg,
		board:     gpio.NewFakeBoard(),
		clock:     &clock.Fake{Budget: 10000},
		host:      &hostCalls{},
		metrics:   metrics.New(),
		publisher: mqtt.NewFakePublisher(),
	}
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return start.Add(r.clock.Elapsed) }
	r.tracker = status.NewTracker(start, status.Config{Lights: len(cfg.LightPins), Shutdown: !cfg.NoShutdown})

	ids := 0
	r.loop = game.New(cfg.Settings(), game.Deps{
		Board: r.board,
		Clock: r.clock,
		Rand:  constSource(1),
		Host:  r.host,
		Reporter: game.Reporters{
			r.tracker,
			r.metrics,
			mqtt.NewReporter(r.publisher, nil),
		},
		Now: now,
		NewID: func() string {
			ids++
			return fmt.Sprintf("round-%d", ids)
		},
	})
	if err := r.loop.Hardware().Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	srv := web.New(":0", r.tracker, promhttp.HandlerFor(r.metrics.Registry, promhttp.HandlerOpts{}), zap.NewNop().Sugar())
	r.web = httptest.NewServer(srv.Handler())
	t.Cleanup(r.web.Close)
	return r
}

// poll queues the button levels read by one poll.
func (r *rig) poll(start, stop bool) {
	r.board.Queue(r.cfg.StopPin, stop)
	r.board.Queue(r.cfg.StartPin, start)
}

func (r *rig) get(t *testing.T, path string) string {
	t.Helper()
	resp, err := http.Get(r.web.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(body)
}

// TestIntegrationRoundReachesEveryConsumer plays one sequential round and
// checks the tracker, the metrics, the MQTT payload and the status page agree.
func TestIntegrationRoundReachesEveryConsumer(t *testing.T) {
	cfg := config.Default()
	cfg.Sequential = true
	cfg.GlowTicks = 2
	r := newRig(t, cfg)

	r.poll(true, false)  // leave the waiting blink
	r.poll(true, false)  // acknowledge
	r.poll(false, false) // light 0 glows two ticks
	r.poll(false, false)
	r.poll(false, true) // stop on light 1

	if err := r.loop.Round(context.Background()); err != nil {
		t.Fatalf("Round: %v", err)
	}

	snap := r.tracker.Snapshot()
	if snap.Rounds != 1 {
		t.Fatalf("tracker rounds: got %d, want 1", snap.Rounds)
	}
	if snap.LastRound == nil || snap.LastRound.Winner != 0 {
		t.Fatalf("tracker last round: %+v", snap.LastRound)
	}
	if got := fmt.Sprint(snap.Usage); got != "[2 1 1 1]" {
		t.Errorf("tracker usage: got %s", got)
	}
	if got := fmt.Sprint(snap.Wins); got != "[1 0 0 0]" {
		t.Errorf("tracker wins: got %s", got)
	}

	// MQTT: the published payload is the tracker's round.
	if len(r.publisher.Rounds) != 1 {
		t.Fatalf("published rounds: got %d, want 1", len(r.publisher.Rounds))
	}
	if want := string(status.FormatRound(*snap.LastRound)); string(r.publisher.Payloads[0]) != want {
		t.Errorf("payload mismatch:\ngot:  %s\nwant: %s", r.publisher.Payloads[0], want)
	}
	var env status.RoundEnvelope
	if err := json.Unmarshal(r.publisher.Payloads[0], &env); err != nil {
		t.Fatalf("invalid round payload: %v", err)
	}
	if env.Round.ID != "round-1" || env.Round.Outro != 3 || env.Round.DurationMs <= 0 {
		t.Errorf("unexpected round payload: %+v", env.Round)
	}

	// Metrics.
	body := r.get(t, "/metrics")
	for _, want := range []string{
		"wof_rounds_total 1",
		`wof_wins_total{light="0"} 1`,
		`wof_light_selections_total{light="0"} 2`,
		`wof_state{state="OUTRO"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}

	// Status page.
	var sj status.StatusJSON
	if err := json.Unmarshal([]byte(r.get(t, "/index.json")), &sj); err != nil {
		t.Fatalf("invalid status JSON: %v", err)
	}
	if sj.Status.State != "OUTRO" {
		t.Errorf("state: got %s", sj.Status.State)
	}
	if sj.Status.LastRound == nil || sj.Status.LastRound.ID != "round-1" {
		t.Errorf("last round: %+v", sj.Status.LastRound)
	}
	if html := r.get(t, "/"); !strings.Contains(html, `<td id="winner">0</td>`) {
		t.Error("status page should show the winner")
	}
	http.DefaultClient.CloseIdleConnections()
}

// TestIntegrationComboShutdown verifies the combo releases the hardware,
// powers the host off and is visible to the consumers.
func TestIntegrationComboShutdown(t *testing.T) {
	r := newRig(t, config.Default())
	r.poll(true, false)
	r.poll(true, false)
	for i := 0; i < 5; i++ {
		r.poll(true, true)
	}

	err := r.loop.Run(context.Background())
	if !errors.Is(err, game.ErrShutdown) {
		t.Fatalf("Run: expected ErrShutdown, got %v", err)
	}
	if r.host.n != 1 {
		t.Errorf("power off calls: got %d, want 1", r.host.n)
	}
	if !r.board.Closed {
		t.Error("board should be closed")
	}
	if got := r.tracker.Snapshot().Combos; got != 5 {
		t.Errorf("tracker combos: got %d, want 5", got)
	}
	if len(r.publisher.Rounds) != 0 {
		t.Errorf("no round should be published, got %d", len(r.publisher.Rounds))
	}

	body := r.get(t, "/metrics")
	if !strings.Contains(body, "wof_combo_presses_total 5") {
		t.Error("metrics should count five combo presses")
	}
	http.DefaultClient.CloseIdleConnections()
}

// TestIntegrationDisabledShutdown checks that combos speed the wheel up
// instead when the combo shutdown is off.
func TestIntegrationDisabledShutdown(t *testing.T) {
	cfg := config.Default()
	cfg.NoShutdown = true
	r := newRig(t, cfg)
	r.poll(true, false)
	r.poll(true, false)
	for i := 0; i < 5; i++ {
		r.poll(true, true)
	}
	r.poll(false, true)

	if err := r.loop.Round(context.Background()); err != nil {
		t.Fatalf("Round: %v", err)
	}
	if r.host.n != 0 || r.board.Closed {
		t.Error("shutdown must not fire when disabled")
	}
	if len(r.publisher.Rounds) != 1 || r.publisher.Rounds[0].SpeedUps != 5 {
		t.Errorf("unexpected published rounds: %+v", r.publisher.Rounds)
	}
}
