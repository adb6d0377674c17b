package stream

import (
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MQTTConfig describe el broker donde publica el gateway del sensor.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// MQTTFeed recibe muestras desde un broker MQTT. La suscripción se repite en
// cada conexión; una pérdida de conexión reinicia el pipeline.
type MQTTFeed struct {
	cfg  MQTTConfig
	opts FeedOptions

	mu     sync.Mutex
	client mqtt.Client
}

func NewMQTTFeed(cfg MQTTConfig, opts FeedOptions) *MQTTFeed {
	if cfg.ClientID == "" {
		cfg.ClientID = fmt.Sprintf("pulse-processor-%d", time.Now().Unix())
	}
	return &MQTTFeed{cfg: cfg, opts: opts.withDefaults()}
}

func (f *MQTTFeed) Start(sink Sink) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.client != nil {
		return fmt.Errorf("mqtt feed already started")
	}

	r := newReceiver(sink, f.opts)
	log := f.opts.Logger

	opts := mqtt.NewClientOptions()
	opts.AddBroker(f.cfg.Broker)
	opts.SetClientID(f.cfg.ClientID)
	if f.cfg.Username != "" {
		opts.SetUsername(f.cfg.Username)
		opts.SetPassword(f.cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetOrderMatters(true)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		token := c.Subscribe(f.cfg.Topic, f.cfg.QoS, func(_ mqtt.Client, m mqtt.Message) {
			r.handle(m.Payload())
		})
		if token.Wait() && token.Error() != nil {
			log.Error("mqtt subscribe failed", zap.String("topic", f.cfg.Topic), zap.Error(token.Error()))
			return
		}
		log.Info("mqtt feed subscribed", zap.String("topic", f.cfg.Topic))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		r.lost("mqtt", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect %s: %w", f.cfg.Broker, token.Error())
	}
	f.client = client
	return nil
}

func (f *MQTTFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.client == nil {
		return nil
	}
	f.client.Disconnect(250)
	f.client = nil
	return nil
}
