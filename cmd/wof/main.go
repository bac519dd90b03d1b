// Command wof drives the wheel of fortune: a ring of lights, a start and a
// stop button, and a buzzer on a Raspberry Pi.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/paulvha/wheel-of-fortune/internal/clock"
	"github.com/paulvha/wheel-of-fortune/internal/config"
	"github.com/paulvha/wheel-of-fortune/internal/game"
	"github.com/paulvha/wheel-of-fortune/internal/gpio"
	"github.com/paulvha/wheel-of-fortune/internal/host"
	"github.com/paulvha/wheel-of-fortune/internal/logging"
	"github.com/paulvha/wheel-of-fortune/internal/metrics"
	"github.com/paulvha/wheel-of-fortune/internal/mqtt"
	"github.com/paulvha/wheel-of-fortune/internal/status"
	"github.com/paulvha/wheel-of-fortune/internal/web"
)

const version = "1.2"

// Exit statuses.
const (
	exitOK       = 0
	exitHardware = 1
	exitUsage    = 2
)

var errInit = errors.New("hardware initialization failed")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.Geteuid))
}

// run parses the command line, builds the real collaborators and plays
// until a signal arrives. It returns the process exit status.
func run(args []string, stdout, stderr io.Writer, euid func() int) int {
	cfg, diags, err := config.Load(args, stderr)
	if err != nil {
		if config.IsHelp(err) {
			return exitOK
		}
		return exitUsage
	}
	if cfg.ShowVersion {
		fmt.Fprintf(stdout, "wof version %s\n", version)
		return exitOK
	}
	if euid() != 0 {
		fmt.Fprintln(stderr, "wof: must be run as root")
		return exitUsage
	}

	log := logging.New("wof", logging.Options{File: cfg.LogFile, Debug: cfg.Debug})
	defer log.Sync()
	for _, d := range diags {
		log.Warnw("configuration corrected", "detail", d)
	}

	board, err := gpio.NewRealBoard(cfg.Chip, cfg.TonePin())
	if err != nil {
		log.Errorw("gpio init failed", "chip", cfg.Chip, "error", err)
		return exitHardware
	}

	a := &app{
		cfg:   cfg,
		board: board,
		clock: clock.Real{},
		host:  host.NewCommand(cfg.PowerOffCommand),
		rand:  game.NewSource(),
		now:   time.Now,
		log:   log,
	}
	if cfg.Broker != "" {
		a.dial = func(onChange func(bool)) (mqtt.Publisher, error) {
			p, err := mqtt.NewRealPublisher(mqtt.Options{
				Broker:             cfg.Broker,
				ClientID:           cfg.ClientID,
				Topic:              cfg.Topic,
				BufferLen:          cfg.BufferLen,
				OnConnectionChange: onChange,
				Log:                log.Named("mqtt"),
			})
			if err != nil {
				// Avoid returning a typed nil inside the interface.
				return nil, err
			}
			return p, nil
		}
	}
	if cfg.HTTPAddr != "" {
		a.listen = func() (net.Listener, error) {
			return net.Listen("tcp", cfg.HTTPAddr)
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGABRT)
	defer signal.Stop(sig)

	if err := a.run(context.Background(), sig); err != nil {
		log.Errorw("fatal", "error", err)
		return exitHardware
	}
	return exitOK
}

// app holds the collaborators of one run. dial and listen are nil when
// MQTT or the status page are disabled.
type app struct {
	cfg    config.Config
	board  gpio.Board
	clock  clock.Clock
	host   game.PowerOffer
	rand   game.Source
	now    func() time.Time
	dial   func(onChange func(bool)) (mqtt.Publisher, error)
	listen func() (net.Listener, error)
	log    *zap.SugaredLogger
}

// stopSignal ends the run after a termination signal.
type stopSignal struct {
	sig os.Signal
}

func (s stopSignal) Error() string {
	return "received " + signalName(s.sig)
}

func (a *app) run(parent context.Context, sig <-chan os.Signal) error {
	tracker := status.NewTracker(a.now(), a.statusConfig())
	m := metrics.New()
	reporters := game.Reporters{tracker, m}

	var pub mqtt.Publisher
	if a.dial != nil {
		p, err := a.dial(tracker.SetMQTTConnected)
		if err != nil {
			a.log.Warnw("mqtt disabled", "broker", a.cfg.Broker, "error", err)
		} else {
			pub = p
			defer pub.Close()
			reporters = append(reporters, mqtt.NewReporter(pub, a.log.Named("mqtt")))
		}
	}

	loop := game.New(a.cfg.Settings(), game.Deps{
		Board:    a.board,
		Clock:    a.clock,
		Rand:     a.rand,
		Host:     a.host,
		Reporter: reporters,
		Now:      a.now,
		Log:      a.log,
	})
	hw := loop.Hardware()
	if err := hw.Init(); err != nil {
		hw.Teardown()
		return fmt.Errorf("%w: %w", errInit, err)
	}
	defer func() {
		if err := hw.Teardown(); err != nil {
			a.log.Errorw("teardown failed", "error", err)
		}
	}()

	a.publishSystem(pub, tracker, mqtt.EventStartup, "")

	g, ctx := errgroup.WithContext(parent)
	g.Go(func() error {
		return loop.Run(ctx)
	})
	g.Go(func() error {
		select {
		case s := <-sig:
			return stopSignal{sig: s}
		case <-ctx.Done():
			return nil
		}
	})
	if a.listen != nil {
		a.serveStatus(ctx, g, tracker, m)
	}

	a.log.Infow("started",
		"version", version,
		"lights", len(a.cfg.LightPins),
		"sequential", a.cfg.Sequential,
		"glow", a.cfg.GlowTicks,
		"shutdown", !a.cfg.NoShutdown,
	)

	err := g.Wait()

	var stop stopSignal
	switch {
	case errors.As(err, &stop):
		a.log.Infow("shutting down", "signal", signalName(stop.sig))
		a.publishSystem(pub, tracker, mqtt.EventShutdown, signalName(stop.sig))
		return nil

	case errors.Is(err, game.ErrShutdown):
		a.publishSystem(pub, tracker, mqtt.EventPowerOff, "COMBO")
		a.log.Warnw("waiting for the host to power off")
		select {
		case s := <-sig:
			a.log.Infow("terminated", "signal", signalName(s))
		case <-parent.Done():
		}
		return nil

	case errors.Is(err, context.Canceled) && parent.Err() != nil:
		a.publishSystem(pub, tracker, mqtt.EventShutdown, "CANCELLED")
		return nil

	default:
		return fmt.Errorf("game loop: %w", err)
	}
}

// serveStatus starts the status page in g. A failing listener is logged
// and leaves the game running.
func (a *app) serveStatus(ctx context.Context, g *errgroup.Group, tracker *status.Tracker, m *metrics.Metrics) {
	log := a.log.Named("web")
	ln, err := a.listen()
	if err != nil {
		log.Warnw("status page disabled", "addr", a.cfg.HTTPAddr, "error", err)
		return
	}

	srv := web.New(a.cfg.HTTPAddr, tracker, promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}), log)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("http server error", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	log.Infow("status page listening", "addr", ln.Addr().String())
}

func (a *app) publishSystem(pub mqtt.Publisher, tracker *status.Tracker, event, reason string) {
	if pub == nil {
		return
	}
	if cs, ok := pub.(mqtt.ConnectionStatus); ok {
		tracker.SetMQTTConnected(cs.IsConnected())
	}
	snap := tracker.Snapshot()
	err := pub.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	})
	if err != nil {
		a.log.Warnw("publish system event failed", "event", event, "error", err)
		return
	}
	a.log.Debugw("published system event", "event", event)
}

func (a *app) statusConfig() status.Config {
	return status.Config{
		Lights:     len(a.cfg.LightPins),
		Sequential: a.cfg.Sequential,
		GlowTicks:  a.cfg.GlowTicks,
		Invert:     a.cfg.Invert,
		Shutdown:   !a.cfg.NoShutdown,
		Sound:      !a.cfg.NoSound,
		Indicators: !a.cfg.NoIndicators,
		Broker:     a.cfg.Broker,
		HTTPAddr:   a.cfg.HTTPAddr,
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	case syscall.SIGABRT:
		return "SIGABRT"
	}
	return "UNKNOWN"
}
