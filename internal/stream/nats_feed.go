package stream

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSFeed se suscribe a un subject sobre una conexión ya abierta. Instala
// sus propios handlers de desconexión en la conexión, así que un corte
// reinicia el pipeline.
type NATSFeed struct {
	nc      *nats.Conn
	subject string
	opts    FeedOptions

	mu  sync.Mutex
	sub *nats.Subscription
}

func NewNATSFeed(nc *nats.Conn, subject string, opts FeedOptions) *NATSFeed {
	return &NATSFeed{nc: nc, subject: subject, opts: opts.withDefaults()}
}

func (f *NATSFeed) Start(sink Sink) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sub != nil {
		return errors.New("nats feed already started")
	}

	r := newReceiver(sink, f.opts)

	f.nc.SetDisconnectErrHandler(func(_ *nats.Conn, err error) {
		r.lost("nats", err)
	})
	f.nc.SetReconnectHandler(func(nc *nats.Conn) {
		f.opts.Logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
	})

	// Los callbacks de una suscripción se ejecutan en una sola goroutine,
	// así que el orden de llegada se conserva.
	sub, err := f.nc.Subscribe(f.subject, func(msg *nats.Msg) {
		r.handle(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", f.subject, err)
	}
	f.sub = sub

	f.opts.Logger.Info("nats feed started", zap.String("subject", f.subject))
	return nil
}

func (f *NATSFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sub == nil {
		return nil
	}
	err := f.sub.Unsubscribe()
	f.sub = nil
	if err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		return fmt.Errorf("unsubscribe %s: %w", f.subject, err)
	}
	return nil
}
