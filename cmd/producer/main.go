package main

import (
	"context"
	"fmt"
	"os"
	osSignal "os/signal"
	"time"

	"github.com/benbjohnson/clock"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/ivanzxc/go-pulse-stream/internal/config"
	"github.com/ivanzxc/go-pulse-stream/internal/logging"
	"github.com/ivanzxc/go-pulse-stream/internal/signal"
	"github.com/ivanzxc/go-pulse-stream/internal/stream"
)

func main() {
	cfg, err := config.LoadProducer(os.Args[1:])
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

	publish, closeFn, err := dial(cfg, logger)
	if err != nil {
		logger.Fatal("producer: connect", zap.Error(err))
	}
	defer closeFn()

	ctx, stop := osSignal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sim := signal.NewECGSim(float64(cfg.FS), cfg.HR, cfg.Noise)
	logger.Info("producer running",
		zap.String("transport", cfg.Transport),
		zap.Int("fs", cfg.FS),
		zap.Float64("hr", cfg.HR),
	)

	run(ctx, clock.New(), cfg.FS, sim, publish, logger)
	logger.Info("producer: stopping")
}

// run publica una muestra por mensaje, igual que una notificación del sensor.
func run(ctx context.Context, clk clock.Clock, fs int, sim *signal.ECGSim, publish func([]byte) error, logger *zap.Logger) {
	ticker := clk.Ticker(time.Second / time.Duration(fs))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := publish(stream.EncodeVoltage(sim.Next())); err != nil {
				logger.Warn("publish failed", zap.Error(err))
			}
		}
	}
}

func dial(cfg *config.Producer, logger *zap.Logger) (func([]byte) error, func(), error) {
	if cfg.Transport == config.TransportMQTT {
		opts := mqtt.NewClientOptions()
		opts.AddBroker(cfg.MQTT.Broker)
		opts.SetClientID(cfg.MQTT.ClientID)
		if cfg.MQTT.Username != "" {
			opts.SetUsername(cfg.MQTT.Username)
			opts.SetPassword(cfg.MQTT.Password)
		}
		opts.SetAutoReconnect(true)

		client := mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			return nil, nil, fmt.Errorf("mqtt connect %s: %w", cfg.MQTT.Broker, token.Error())
		}
		publish := func(b []byte) error {
			// QoS 0 no espera confirmación del broker.
			token := client.Publish(cfg.MQTT.Topic, cfg.MQTT.QoS, false, b)
			if cfg.MQTT.QoS > 0 {
				token.Wait()
			}
			return token.Error()
		}
		return publish, func() { client.Disconnect(250) }, nil
	}

	nc, err := stream.Connect(cfg.NATSURL, "pulse-producer", logger.Named("nats"))
	if err != nil {
		return nil, nil, err
	}
	publish := func(b []byte) error { return nc.Publish(cfg.Subject, b) }
	return publish, func() { _ = nc.Drain() }, nil
}
