// Package config lee la configuración de los binarios desde flags, con
// valores por defecto tomados de variables de entorno.
package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/ivanzxc/go-pulse-stream/internal/analysis"
	"github.com/ivanzxc/go-pulse-stream/internal/stream"
)

var ErrInvalid = errors.New("invalid configuration")

const (
	TransportNATS = "nats"
	TransportMQTT = "mqtt"
)

// Pipeline son los parámetros ajustables del StreamProcessor.
type Pipeline struct {
	MaxHistoryCount   int
	TimeWindow        time.Duration
	PeakThreshold     float64
	MinPeakInterval   time.Duration
	MaxPeakTimestamps int
}

func (p Pipeline) Validate() error {
	switch {
	case p.MaxHistoryCount <= 0:
		return fmt.Errorf("%w: history count must be positive, got %d", ErrInvalid, p.MaxHistoryCount)
	case p.MaxPeakTimestamps < 2:
		return fmt.Errorf("%w: peak buffer needs at least 2 entries, got %d", ErrInvalid, p.MaxPeakTimestamps)
	case p.TimeWindow <= 0:
		return fmt.Errorf("%w: time window must be positive, got %s", ErrInvalid, p.TimeWindow)
	case p.MinPeakInterval < 0:
		return fmt.Errorf("%w: min peak interval must not be negative, got %s", ErrInvalid, p.MinPeakInterval)
	}
	return nil
}

func (p Pipeline) Analysis() analysis.Config {
	return analysis.Config{
		MaxHistoryCount:   p.MaxHistoryCount,
		TimeWindow:        p.TimeWindow,
		PeakThreshold:     float32(p.PeakThreshold),
		MinPeakInterval:   p.MinPeakInterval,
		MaxPeakTimestamps: p.MaxPeakTimestamps,
	}
}

func (p *Pipeline) register(fs *flag.FlagSet) {
	fs.IntVar(&p.MaxHistoryCount, "history", getEnvAsInt("PULSE_MAX_HISTORY", analysis.DefaultMaxHistoryCount), "max samples kept for display")
	fs.DurationVar(&p.TimeWindow, "window", getEnvAsDuration("PULSE_TIME_WINDOW", analysis.DefaultTimeWindow), "display window")
	fs.Float64Var(&p.PeakThreshold, "threshold", getEnvAsFloat("PULSE_PEAK_THRESHOLD", analysis.DefaultPeakThreshold), "peak threshold in volts")
	fs.DurationVar(&p.MinPeakInterval, "min-interval", getEnvAsDuration("PULSE_MIN_PEAK_INTERVAL", analysis.DefaultMinPeakInterval), "minimum time between peaks")
	fs.IntVar(&p.MaxPeakTimestamps, "peaks", getEnvAsInt("PULSE_MAX_PEAKS", analysis.DefaultMaxPeakTimestamps), "peaks used for the BPM estimate")
}

// registerMQTTFlags registra los flags MQTT y devuelve el QoS, que se copia
// a m.QoS después de Parse.
func registerMQTTFlags(fs *flag.FlagSet, m *stream.MQTTConfig, topic, clientID string) *int {
	fs.StringVar(&m.Broker, "mqtt", getEnv("MQTT_BROKER", "tcp://127.0.0.1:1883"), "MQTT broker")
	fs.StringVar(&m.ClientID, "mqtt-client", getEnv("MQTT_CLIENT_ID", clientID), "MQTT client id")
	fs.StringVar(&m.Username, "mqtt-user", getEnv("MQTT_USERNAME", ""), "MQTT username")
	fs.StringVar(&m.Password, "mqtt-password", getEnv("MQTT_PASSWORD", ""), "MQTT password")
	fs.StringVar(&m.Topic, "mqtt-topic", getEnv("MQTT_TOPIC", topic), "MQTT topic")
	return fs.Int("mqtt-qos", getEnvAsInt("MQTT_QOS", 0), "MQTT QoS (0-2)")
}

func validQoS(qos int) error {
	if qos < 0 || qos > 2 {
		return fmt.Errorf("%w: mqtt qos must be 0, 1 or 2, got %d", ErrInvalid, qos)
	}
	return nil
}

func validTransport(t string) error {
	if t != TransportNATS && t != TransportMQTT {
		return fmt.Errorf("%w: unknown transport %q", ErrInvalid, t)
	}
	return nil
}

// Processor configura cmd/processor.
type Processor struct {
	Transport       string
	NATSURL         string
	InSubject       string
	OutSubject      string
	MQTT            stream.MQTTConfig
	MetricsAddr     string
	LogLevel        string
	PublishInterval time.Duration
	Pipeline        Pipeline
}

func LoadProcessor(args []string) (*Processor, error) {
	c := &Processor{}
	fs := flag.NewFlagSet("processor", flag.ContinueOnError)

	fs.StringVar(&c.Transport, "transport", getEnv("PULSE_TRANSPORT", TransportNATS), "sensor transport: nats or mqtt")
	fs.StringVar(&c.NATSURL, "nats", getEnv("NATS_URL", "nats://127.0.0.1:4222"), "NATS url")
	fs.StringVar(&c.InSubject, "in", getEnv("PULSE_IN_SUBJECT", "pulse.samples"), "input subject")
	fs.StringVar(&c.OutSubject, "out", getEnv("PULSE_OUT_SUBJECT", "pulse.params"), "output subject")
	fs.StringVar(&c.MetricsAddr, "metrics", getEnv("PULSE_METRICS_ADDR", ":9102"), "metrics address, empty to disable")
	fs.StringVar(&c.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "log level")
	fs.DurationVar(&c.PublishInterval, "every", getEnvAsDuration("PULSE_PUBLISH_INTERVAL", 100*time.Millisecond), "snapshot publish interval")
	qos := registerMQTTFlags(fs, &c.MQTT, "pulse/samples", "pulse-processor")
	c.Pipeline.register(fs)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := validQoS(*qos); err != nil {
		return nil, err
	}
	c.MQTT.QoS = byte(*qos)

	if err := validTransport(c.Transport); err != nil {
		return nil, err
	}
	if c.PublishInterval <= 0 {
		return nil, fmt.Errorf("%w: publish interval must be positive, got %s", ErrInvalid, c.PublishInterval)
	}
	if err := c.Pipeline.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Server configura cmd/server.
type Server struct {
	NATSURL  string
	Subject  string
	Addr     string
	WebDir   string
	LogLevel string
}

func LoadServer(args []string) (*Server, error) {
	c := &Server{}
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&c.NATSURL, "nats", getEnv("NATS_URL", "nats://127.0.0.1:4222"), "NATS url")
	fs.StringVar(&c.Subject, "subject", getEnv("PULSE_OUT_SUBJECT", "pulse.params"), "snapshot subject")
	fs.StringVar(&c.Addr, "addr", getEnv("HTTP_ADDR", ":8080"), "http address")
	fs.StringVar(&c.WebDir, "web", getEnv("PULSE_WEB_DIR", "./web"), "static files directory")
	fs.StringVar(&c.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "log level")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

// Producer configura cmd/producer.
type Producer struct {
	Transport string
	NATSURL   string
	Subject   string
	MQTT      stream.MQTTConfig
	FS        int
	HR        float64
	Noise     float64
	LogLevel  string
}

func LoadProducer(args []string) (*Producer, error) {
	c := &Producer{}
	fs := flag.NewFlagSet("producer", flag.ContinueOnError)

	fs.StringVar(&c.Transport, "transport", getEnv("PULSE_TRANSPORT", TransportNATS), "transport: nats or mqtt")
	fs.StringVar(&c.NATSURL, "nats", getEnv("NATS_URL", "nats://127.0.0.1:4222"), "NATS url")
	fs.StringVar(&c.Subject, "subject", getEnv("PULSE_IN_SUBJECT", "pulse.samples"), "subject")
	fs.IntVar(&c.FS, "fs", getEnvAsInt("PULSE_SAMPLE_RATE", 250), "sampling rate Hz")
	fs.Float64Var(&c.HR, "hr", getEnvAsFloat("PULSE_SIM_HR", 72), "heart rate bpm")
	fs.Float64Var(&c.Noise, "noise", getEnvAsFloat("PULSE_SIM_NOISE", 0.02), "noise amplitude")
	fs.StringVar(&c.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "log level")
	qos := registerMQTTFlags(fs, &c.MQTT, "pulse/samples", "pulse-producer")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := validQoS(*qos); err != nil {
		return nil, err
	}
	c.MQTT.QoS = byte(*qos)

	if err := validTransport(c.Transport); err != nil {
		return nil, err
	}
	if c.FS <= 0 {
		return nil, fmt.Errorf("%w: sampling rate must be positive, got %d", ErrInvalid, c.FS)
	}
	if c.HR <= 0 {
		return nil, fmt.Errorf("%w: heart rate must be positive, got %v", ErrInvalid, c.HR)
	}
	return c, nil
}
