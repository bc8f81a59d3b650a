// Command bvp-replay feeds a BVP recording through the vitals pipeline and
// prints every reading as it becomes ready.
//
// Usage:
//
//	bvp-replay recording.wav
//	bvp-replay -age 34 -config vitals.yaml recording.wav
//	bvp-replay -realtime -http :9090 -mqtt tcp://localhost:1883 recording.wav
//
// The recording is a WAV file whose first channel holds the sensor values
// (see bvp-synth). With -http the latest readings are served on /readings and
// Prometheus metrics on /metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	vitals "github.com/tphakala/go-bvp-vitals"
	"github.com/tphakala/go-bvp-vitals/internal/config"
	"github.com/tphakala/go-bvp-vitals/internal/publish"
	"github.com/tphakala/go-bvp-vitals/internal/server"
	"github.com/tphakala/go-bvp-vitals/internal/telemetry"
	"github.com/tphakala/go-bvp-vitals/internal/wavio"
)

const (
	minRequiredArgs        = 1
	defaultShutdownTimeout = 5 * time.Second
	unsetAge               = -1
	sampleQueue            = 256
)

func main() {
	if err := run(); err != nil {
		slog.Error("replay failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "YAML configuration file")
	age := flag.Int("age", unsetAge, "User age in years (overrides the config file)")
	broker := flag.String("mqtt", "", "MQTT broker URL; readings are published when set")
	httpAddr := flag.String("http", "", "Serve /readings and /metrics on this address")
	realtime := flag.Bool("realtime", false, "Pace samples at the recording rate")
	fullScale := flag.Float64("full-scale", 0, "Sensor value of the largest PCM code")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] recording.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(logger)

	file := &config.File{}
	if *configPath != "" {
		var err error
		if file, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	applyFlags(file, flagOverrides{
		age:       *age,
		broker:    *broker,
		httpAddr:  *httpAddr,
		realtime:  *realtime,
		fullScale: *fullScale,
	})

	input, err := wavio.Open(args[0], file.Recording.FullScale)
	if err != nil {
		return err
	}
	defer func() { _ = input.Close() }()

	// The recording rate wins over the configured one.
	file.SampleRate = float64(input.SampleRate())
	logger.Info("recording opened",
		"path", args[0],
		"rate", input.SampleRate(),
		"channels", input.Channels(),
		"bits", input.BitDepth())

	cfg, err := file.Vitals()
	if err != nil {
		return err
	}
	metrics := telemetry.NewMetrics(nil)
	cfg.Logger = logger
	cfg.Observer = metrics

	pipeline, err := vitals.NewPipeline(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	latest := server.NewLatest()
	if file.HTTP.Addr != "" {
		srv := server.New(file.HTTP.Addr, latest, metrics.Handler(), logger)
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("http server failed", "err", err)
			}
		}()
		defer func() {
			timeout := file.HTTP.ShutdownTimeout
			if timeout <= 0 {
				timeout = defaultShutdownTimeout
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			_ = srv.Stop(shutdownCtx)
		}()
	}

	var publisher *publish.Publisher
	if file.MQTT.Broker != "" {
		clientID := file.MQTT.ClientID
		if clientID == "" {
			clientID = fmt.Sprintf("bvp-replay-%d", time.Now().Unix())
		}
		client, err := publish.Connect(file.MQTT.Broker, clientID, logger)
		if err != nil {
			return err
		}
		defer client.Disconnect(uint(defaultShutdownTimeout.Milliseconds()))
		publisher = publish.NewPublisher(client, file.MQTT.TopicPrefix)
		logger.Info("publishing readings", "session", publisher.Session().String())
	}

	handle := func(r vitals.Reading) {
		latest.Update(r)
		fmt.Println(formatReading(r))
		if publisher != nil {
			if err := publisher.Publish(r); err != nil {
				logger.Warn("publish failed", "metric", r.Metric.String(), "err", err)
			}
		}
	}

	samples := make(chan vitals.Sample, sampleQueue)
	streamErr := make(chan error, 1)
	go func() {
		streamErr <- streamSamples(ctx, input, float64(input.SampleRate()), file.Recording.Realtime, samples)
	}()

	start := time.Now()
	runErr := pipeline.Run(ctx, samples, handle)
	if err := pipeline.Close(); err != nil {
		return err
	}
	for _, r := range pipeline.Poll() {
		handle(r)
	}

	if err := <-streamErr; err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("replay finished", "elapsed", time.Since(start).Round(time.Millisecond))

	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}
