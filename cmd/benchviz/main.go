// Command benchviz renders the hybrid test bench digital twin. It follows
// the bench state stream on RabbitMQ, keeps a 3D scene of the specimen,
// actuator arm and displacement indicator in sync with it, and periodically
// writes PNG snapshots and STL dumps of the deformed geometry. When an
// InfluxDB instance is configured it also records bus traffic, counts
// fatigue cycles and evaluates the displacement recovery requirement.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/au-dtlab/benchviz/actuator"
	"github.com/au-dtlab/benchviz/bus"
	"github.com/au-dtlab/benchviz/config"
	"github.com/au-dtlab/benchviz/fatigue"
	"github.com/au-dtlab/benchviz/monitor"
	"github.com/au-dtlab/benchviz/recorder"
	"github.com/au-dtlab/benchviz/scene"
)

func main() {
	configPath := flag.String("config", "", "path to the benchviz TOML configuration")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(*configPath, log); err != nil {
		log.Error("benchviz exited", "err", err)
		os.Exit(1)
	}
}

func run(configPath string, log *slog.Logger) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := bus.Dial(cfg.RabbitMQ, log)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := os.MkdirAll(cfg.Snapshot.Dir, 0o755); err != nil {
		return fmt.Errorf("snapshot dir: %w", err)
	}

	app := &app{
		cfg:     cfg,
		log:     log,
		scene:   scene.New(scene.Config{}),
		fatigue: fatigue.NewCounter(nil),
		twin: actuator.NewTwin(
			cfg.Actuator.HorizontalAmplitude, cfg.Actuator.VerticalAmplitude,
			cfg.Actuator.HorizontalPeriod, cfg.Actuator.VerticalPeriod,
			cfg.Actuator.Interval),
	}

	if cfg.InfluxDB.Token != "" {
		app.recorder = recorder.New(cfg.InfluxDB, log)
		defer app.recorder.Close()
		if err := client.Subscribe(bus.RoutingKeyRecorder, app.onRecordRequest(ctx)); err != nil {
			return err
		}
	}
	if err := client.Subscribe(bus.RoutingKeyState, app.onStateSample); err != nil {
		return err
	}
	// Control commands and parameter updates reconfigure the actuator twin.
	if err := client.Subscribe(bus.RoutingKeyForces, app.twin.ApplyCommand); err != nil {
		return err
	}
	if err := client.Subscribe(bus.RoutingKeyUpdateCtrlParams, app.twin.ApplyCommand); err != nil {
		return err
	}

	go app.snapshotLoop(ctx)
	go app.actuatorLoop(ctx, client)
	if app.recorder != nil {
		go app.monitorLoop(ctx)
	}

	log.Info("benchviz running",
		"rabbitmq", cfg.RabbitMQ.URL(),
		"snapshots", cfg.Snapshot.Dir)

	err = client.Consume(ctx)
	if cerr := app.writeFatigueReport(); cerr != nil {
		log.Warn("fatigue report", "err", cerr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

type app struct {
	cfg config.Config
	log *slog.Logger

	mu      sync.Mutex
	scene   *scene.Scene
	fatigue *fatigue.Counter

	twin     *actuator.Twin
	recorder *recorder.Recorder
}

// onStateSample applies one bench state sample to the scene and feeds the
// fatigue counter.
func (a *app) onStateSample(m bus.Message) {
	st, ok := scene.SampleFrom(m)
	if !ok {
		a.log.Debug("ignoring non-emulator sample", "measurement", m.Measurement)
		return
	}
	a.mu.Lock()
	a.scene.Update(st)
	a.fatigue.UpdateIfPeak(st.HorizontalForce)
	a.mu.Unlock()
	a.twin.CalibrateFrom(m)
	a.log.Debug("state sample",
		"force_on", st.ForceOn,
		"vertical_force", st.VerticalForce,
		"horizontal_force", st.HorizontalForce)
}

// onRecordRequest forwards every record message to the time-series store.
func (a *app) onRecordRequest(ctx context.Context) bus.Handler {
	return func(m bus.Message) {
		if err := a.recorder.Record(ctx, m); err != nil {
			a.log.Warn("record", "measurement", m.Measurement, "err", err)
		}
	}
}

// actuatorLoop steps the actuator twin every execution interval and
// publishes the feedforward target state for the recorder and any bench
// consumers.
func (a *app) actuatorLoop(ctx context.Context, client *bus.Client) {
	tick := time.NewTicker(time.Duration(a.cfg.Actuator.Interval * float64(time.Second)))
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			if err := client.Publish(ctx, bus.RoutingKeyController, a.twin.Step(now)); err != nil {
				a.log.Warn("controller state publish", "err", err)
			}
		}
	}
}

// snapshotLoop writes a PNG (and optionally an STL) of the scene at the
// configured cadence.
func (a *app) snapshotLoop(ctx context.Context) {
	tick := time.NewTicker(time.Duration(a.cfg.Snapshot.Interval * float64(time.Second)))
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-tick.C:
			if err := a.snapshot(t); err != nil {
				a.log.Warn("snapshot", "err", err)
			}
		}
	}
}

func (a *app) snapshot(t time.Time) error {
	stamp := t.UTC().Format("20060102T150405.000")

	png, err := os.Create(filepath.Join(a.cfg.Snapshot.Dir, "bench-"+stamp+".png"))
	if err != nil {
		return err
	}
	defer png.Close()

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.scene.SnapshotPNG(png, a.cfg.Snapshot.Width, a.cfg.Snapshot.Height); err != nil {
		return err
	}

	// Sidecar readout labels beside each frame.
	r := a.scene.Readouts()
	labels, err := os.Create(filepath.Join(a.cfg.Snapshot.Dir, "bench-"+stamp+".txt"))
	if err != nil {
		return err
	}
	defer labels.Close()
	if _, err := r.WriteTo(labels); err != nil {
		return err
	}
	a.log.Info("snapshot",
		"vertical_force", r.VerticalForce,
		"horizontal_force", r.HorizontalForce,
		"vertical_displacement", r.VerticalDisplacement,
		"horizontal_displacement", r.HorizontalDisplacement)

	if !a.cfg.Snapshot.WriteSTL {
		return nil
	}
	stl, err := os.Create(filepath.Join(a.cfg.Snapshot.Dir, "bench-"+stamp+".stl"))
	if err != nil {
		return err
	}
	defer stl.Close()
	return a.scene.WriteSTL(stl)
}

// monitorLoop periodically evaluates the displacement recovery requirement
// over the recorded history and stores the robustness series.
func (a *app) monitorLoop(ctx context.Context) {
	spec := monitor.Spec{
		Limit:  a.cfg.Monitor.MaxVerticalDisplacement,
		Window: a.cfg.Monitor.RecoveryWindow,
		Bound:  monitor.UpperBound,
	}
	lookback := time.Duration(a.cfg.Monitor.Lookback * float64(time.Second))

	tick := time.NewTicker(time.Duration(a.cfg.Monitor.RecoveryWindow) * time.Second / 4)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			sig, err := a.recorder.QueryField(ctx, bus.MeasurementEmulator,
				bus.FieldVerticalDisplacement, lookback, 3*time.Second)
			if err != nil {
				a.log.Warn("monitor query", "err", err)
				continue
			}
			series, err := spec.Evaluate(sig)
			if err != nil {
				a.log.Debug("monitor", "err", err)
				continue
			}
			a.log.Info("displacement requirement", "robustness", series[0].Value)
			if err := a.recorder.WriteRobustness(ctx, "stl_monitor", series); err != nil {
				a.log.Warn("monitor store", "err", err)
			}
		}
	}
}

// writeFatigueReport dumps the rainflow plots next to the snapshots on
// shutdown.
func (a *app) writeFatigueReport() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.fatigue.Peaks()) == 0 {
		return nil
	}
	flows, err := os.Create(filepath.Join(a.cfg.Snapshot.Dir, "fatigue-flows.png"))
	if err != nil {
		return err
	}
	defer flows.Close()
	if err := a.fatigue.PlotFlows(flows); err != nil {
		return err
	}
	cycles, err := os.Create(filepath.Join(a.cfg.Snapshot.Dir, "fatigue-cycles.png"))
	if err != nil {
		return err
	}
	defer cycles.Close()
	return a.fatigue.PlotCycles(cycles)
}
