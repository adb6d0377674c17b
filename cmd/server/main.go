package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	osSignal "os/signal"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ivanzxc/go-pulse-stream/internal/config"
	"github.com/ivanzxc/go-pulse-stream/internal/hub"
	"github.com/ivanzxc/go-pulse-stream/internal/logging"
	"github.com/ivanzxc/go-pulse-stream/internal/metrics"
	"github.com/ivanzxc/go-pulse-stream/internal/stream"
)

func main() {
	cfg, err := config.LoadServer(os.Args[1:])
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
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Server, logger *zap.Logger) error {
	ctx, stop := osSignal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	nc, err := stream.Connect(cfg.NATSURL, "pulse-server", logger.Named("nats"))
	if err != nil {
		return err
	}
	defer nc.Drain()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	h := hub.New(logger.Named("hub"), metrics.NewRelay(reg))
	defer h.Close()

	// Snapshots (JSON) tal cual los publica el processor.
	if _, err := nc.Subscribe(cfg.Subject, func(msg *nats.Msg) {
		h.Broadcast(msg.Data)
	}); err != nil {
		return fmt.Errorf("subscribe %s: %w", cfg.Subject, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(cfg.WebDir)))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/ws", h)

	server := &http.Server{Addr: cfg.Addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server running", zap.String("addr", cfg.Addr), zap.String("subject", cfg.Subject))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("server stopped")
	return err
}
