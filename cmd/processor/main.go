package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	osSignal "os/signal"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ivanzxc/go-pulse-stream/internal/analysis"
	"github.com/ivanzxc/go-pulse-stream/internal/config"
	"github.com/ivanzxc/go-pulse-stream/internal/logging"
	"github.com/ivanzxc/go-pulse-stream/internal/metrics"
	"github.com/ivanzxc/go-pulse-stream/internal/stream"
)

func main() {
	cfg, err := config.LoadProcessor(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("processor stopped", zap.Error(err))
	}
}

func run(cfg *config.Processor, logger *zap.Logger) error {
	ctx, stop := osSignal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.NewPipeline(reg)

	clk := clock.New()
	proc := analysis.NewStreamProcessor(cfg.Pipeline.Analysis(),
		analysis.WithLogger(logger.Named("pipeline")),
		analysis.WithObserver(m),
	)

	nc, err := stream.Connect(cfg.NATSURL, "pulse-processor", logger.Named("nats"))
	if err != nil {
		return err
	}

	feedOpts := stream.FeedOptions{
		Clock:  clk,
		Logger: logger.Named("feed"),
		OnDrop: m.PayloadDropped,
	}

	var feed stream.Feed
	switch cfg.Transport {
	case config.TransportMQTT:
		feed = stream.NewMQTTFeed(cfg.MQTT, feedOpts)
	default:
		feed = stream.NewNATSFeed(nc, cfg.InSubject, feedOpts)
	}

	if err := feed.Start(proc); err != nil {
		return multierr.Append(err, closeAll(feed, nc))
	}

	logger.Info("processor running",
		zap.String("transport", cfg.Transport),
		zap.String("out", cfg.OutSubject),
		zap.Duration("every", cfg.PublishInterval),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return stream.PublishSnapshots(ctx, clk, cfg.PublishInterval, proc, nc, cfg.OutSubject, logger.Named("publish"))
	})

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	err = multierr.Append(err, closeAll(feed, nc))
	logger.Info("processor stopped")
	return err
}

func closeAll(feed stream.Feed, nc *nats.Conn) error {
	err := feed.Close()
	if drainErr := nc.Drain(); drainErr != nil && !errors.Is(drainErr, nats.ErrConnectionClosed) {
		err = multierr.Append(err, fmt.Errorf("nats drain: %w", drainErr))
	}
	return err
}
