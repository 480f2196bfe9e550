// Command barn-node samples the barn environment sensors, publishes hourly
// averaged reports to the logging webhook, and drives the relay actuators
// from remote commands and the periodic tank flush.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/amanpro/barn-node/internal/clock"
	"github.com/amanpro/barn-node/internal/cloud"
	"github.com/amanpro/barn-node/internal/config"
	"github.com/amanpro/barn-node/internal/core"
	"github.com/amanpro/barn-node/internal/relay"
	"github.com/amanpro/barn-node/internal/report"
	"github.com/amanpro/barn-node/internal/sensors"
	"github.com/amanpro/barn-node/internal/status"
	"github.com/amanpro/barn-node/internal/web"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config.toml (empty for defaults)")
	printState := flag.Bool("print-state", false, "Read sensors once, print, and exit")
	logLevel := flag.String("log-level", "", "Override log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "Override log format (console, json)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}

	logger, err := buildLogger(cfg.Log)
	if err != nil {
		log.Fatalf("fatal: init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger, *printState); err != nil {
		logger.Fatal("fatal", zap.Error(err))
	}
}

// buildLogger constructs the zap logger from config.
func buildLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info", "":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("unknown log level %q", cfg.Level)
	}

	var zcfg zap.Config
	if cfg.Format == "json" {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "timestamp"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func run(cfg config.Config, logger *zap.Logger, printState bool) error {
	// Initialize GPIO first so a wiring fault fails fast.
	bank, err := relay.NewRealBank(relay.Pins{
		Pump:   cfg.Pins.Pump,
		Siren:  cfg.Pins.Siren,
		Camera: cfg.Pins.Camera,
		Aux:    cfg.Pins.Aux,
	})
	if err != nil {
		return fmt.Errorf("init relays: %w", err)
	}
	defer bank.Close()

	reader, err := sensors.NewRealReader(cfg.Pins.Trig, cfg.Pins.Echo, sensors.Paths{
		Temperature: cfg.SensorPaths.Temperature,
		Humidity:    cfg.SensorPaths.Humidity,
		ADC:         cfg.SensorPaths.ADC,
	}, logger)
	if err != nil {
		return fmt.Errorf("init sensors: %w", err)
	}
	defer reader.Close()

	// Print state mode
	if printState {
		r := reader.Read()
		fmt.Printf("temperature: %s\nhumidity: %s\nammonia: %s\ntank: %s\n",
			formatReading(r.Temperature, "°C"),
			formatReading(r.Humidity, "%"),
			formatReading(r.Ammonia, "ppm"),
			formatReading(r.TankVolume, "L"))
		return nil
	}

	clk := clock.NewSystem()
	syncDelay := time.Duration(cfg.SyncRetryDelayMs) * time.Millisecond
	if err := clock.WaitSynced(context.Background(), clk, cfg.SyncMaxTries, syncDelay); err != nil {
		logger.Warn("wall clock not synced yet, edges suppressed until it is", zap.Error(err))
	}

	channel, err := cloud.NewRealChannel(cfg.Broker, cfg.DeviceID, logger)
	if err != nil {
		return fmt.Errorf("init command channel: %w", err)
	}
	defer channel.Close()

	var publisher report.Publisher
	if cfg.WebhookURL != "" {
		wp := report.NewWebhookPublisher(cfg.WebhookURL, logger)
		defer wp.Close()
		publisher = wp
	} else {
		logger.Warn("no webhook URL configured, hourly reports will be dropped")
	}

	flush := core.NewAutoFlush(
		time.Duration(cfg.FlushIntervalMinutes)*time.Minute,
		time.Duration(cfg.FlushOnSeconds)*time.Second,
		clk.Monotonic(),
	)
	ctrl := core.NewController(cfg.DeviceID, cfg.SamplePeriodMinutes, flush, bank)

	// Seed the retained flush-interval echo so dashboards show the
	// configured value before the first remote write.
	if err := channel.PublishInterval(cfg.FlushIntervalMinutes); err != nil {
		logger.Warn("publishing initial flush interval failed", zap.Error(err))
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		DeviceID:        cfg.DeviceID,
		PollMs:          int64(cfg.PollIntervalMs),
		SamplePeriodMin: cfg.SamplePeriodMinutes,
		Broker:          cfg.Broker,
		WebhookURL:      cfg.WebhookURL,
		HTTPAddr:        cfg.HTTPAddr,
	})

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("http server error", zap.Error(err))
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Info("http status server listening", zap.String("addr", cfg.HTTPAddr))
	}

	logger.Info("started",
		zap.String("device", cfg.DeviceID),
		zap.Int("poll_ms", cfg.PollIntervalMs),
		zap.Int("sample_period_min", cfg.SamplePeriodMinutes),
		zap.String("broker", cfg.Broker))

	ticker := time.NewTicker(time.Duration(cfg.PollIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	n := &node{
		ctrl:           ctrl,
		reader:         reader,
		channel:        channel,
		publisher:      publisher,
		clk:            clk,
		tracker:        tracker,
		log:            logger,
		resyncInterval: time.Duration(cfg.ResyncIntervalHours) * time.Hour,
		syncTries:      cfg.SyncMaxTries,
		syncDelay:      syncDelay,
	}
	return n.runLoop(ticker.C, sigCh)
}

// node bundles the loop's collaborators so the loop is testable with fakes.
type node struct {
	ctrl      *core.Controller
	reader    sensors.Reader
	channel   cloud.Channel
	publisher report.Publisher // nil when no webhook is configured
	clk       clock.Clock
	tracker   *status.Tracker
	log       *zap.Logger

	resyncInterval time.Duration
	syncTries      int
	syncDelay      time.Duration
	lastResync     time.Duration
}

// runLoop is the single cooperative control loop. Within one iteration the
// order is fixed: remote commands, clock resync, sensor refresh, controller
// tick, report delivery, status update.
func (n *node) runLoop(tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			n.log.Info("shutting down", zap.String("signal", s.String()))
			return nil

		case <-tick:
			n.drainCommands()
			n.maybeResync()

			readings := n.reader.Read()
			wall, wallValid := n.clk.Wall()
			res := n.ctrl.Tick(core.TickInput{
				Mono:      n.clk.Monotonic(),
				Wall:      wall,
				WallValid: wallValid,
				Values:    readings.Values(),
			})
			n.handleTick(res)

			if n.tracker != nil {
				n.tracker.Update(readings, n.ctrl.ActuatorStates(), n.ctrl.FilledSlots(),
					n.ctrl.Synced(), n.ctrl.FlushIntervalMinutes())
				n.tracker.SetMQTTConnected(n.channel.IsConnected())
			}
		}
	}
}

// drainCommands applies all queued remote commands. Each actuator write
// updates commanded state, the duty-cycle start reference, and the physical
// output in one step, then echoes the resulting state.
func (n *node) drainCommands() {
	for {
		select {
		case cmd := <-n.channel.Commands():
			now := n.clk.Monotonic()
			if cmd.SetInterval {
				n.ctrl.SetFlushInterval(cmd.IntervalMinutes, now)
				n.log.Info("flush interval set", zap.Int("minutes", cmd.IntervalMinutes))
				if err := n.channel.PublishInterval(cmd.IntervalMinutes); err != nil {
					n.log.Warn("interval echo failed", zap.Error(err))
				}
				continue
			}
			if err := n.ctrl.SetActuator(cmd.Actuator, cmd.On, now); err != nil {
				n.log.Error("actuator command failed",
					zap.String("actuator", string(cmd.Actuator)), zap.Bool("on", cmd.On), zap.Error(err))
			} else {
				n.log.Info("actuator command applied",
					zap.String("actuator", string(cmd.Actuator)), zap.Bool("on", cmd.On))
			}
			n.echoState(cmd.Actuator)
		default:
			return
		}
	}
}

// maybeResync re-checks wall-clock validity on the configured interval. The
// retry loop is ceiling-bounded; failure just waits for the next interval.
func (n *node) maybeResync() {
	now := n.clk.Monotonic()
	if n.lastResync != 0 && now-n.lastResync < n.resyncInterval {
		return
	}
	n.lastResync = now
	if _, ok := n.clk.Wall(); ok {
		return
	}
	if err := clock.WaitSynced(context.Background(), n.clk, n.syncTries, n.syncDelay); err != nil {
		n.log.Warn("clock resync failed, will retry next interval", zap.Error(err))
	} else {
		n.log.Info("wall clock synced")
	}
}

// handleTick logs and publishes the effects of one controller tick.
func (n *node) handleTick(res core.TickResult) {
	for _, err := range res.OutputErrs {
		n.log.Error("relay output error", zap.Error(err))
	}
	if res.SampleStored {
		n.log.Info("sample stored", zap.Int("filled_slots", n.ctrl.FilledSlots()))
	}
	if res.PumpAutoOn {
		n.log.Info("pump on (periodic flush)")
		n.echoState(core.ActuatorPump)
	}
	if res.PumpAutoOff {
		n.log.Info("pump off (fixed duration elapsed)")
		n.echoState(core.ActuatorPump)
	}
	if res.WindowCleared {
		n.log.Info("report hour had no samples, window cleared")
	}
	if res.Report == nil {
		return
	}

	info := status.ReportInfo{Timestamp: res.Report.Timestamp, Delivered: false}
	if n.publisher == nil {
		info.Error = "no webhook configured"
		n.log.Warn("report dropped, no webhook configured")
	} else if err := n.publisher.Publish(res.Report); err != nil {
		// Failed reports are dropped: period state is already reset so
		// telemetry never stalls on a dead endpoint.
		info.Error = err.Error()
		n.log.Error("report delivery failed, dropping report", zap.Error(err))
	} else {
		info.Delivered = true
	}
	if n.tracker != nil {
		n.tracker.SetLastReport(info)
	}
}

// echoState publishes the current commanded state of a, retained.
func (n *node) echoState(a core.Actuator) {
	if err := n.channel.PublishState(a, n.ctrl.ActuatorState(a)); err != nil {
		n.log.Warn("state echo failed", zap.String("actuator", string(a)), zap.Error(err))
	}
}

func formatReading(v float64, unit string) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f %s", v, unit)
}
