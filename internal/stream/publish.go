package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/ivanzxc/go-pulse-stream/internal/analysis"
)

// SnapshotSource es lo que expone el StreamProcessor para la presentación.
type SnapshotSource interface {
	Snapshot(now time.Time) analysis.Snapshot
}

// Publisher coincide con (*nats.Conn).Publish.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// PublishSnapshots publica un snapshot JSON cada intervalo hasta que ctx
// termine. Los errores de publicación se registran y no cortan el bucle.
func PublishSnapshots(ctx context.Context, clk clock.Clock, every time.Duration, src SnapshotSource, pub Publisher, subject string, log *zap.Logger) error {
	if every <= 0 {
		return fmt.Errorf("publish interval must be positive, got %s", every)
	}
	if log == nil {
		log = zap.NewNop()
	}

	ticker := clk.Ticker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			snap := src.Snapshot(clk.Now())
			b, err := json.Marshal(snap)
			if err != nil {
				return fmt.Errorf("marshal snapshot: %w", err)
			}
			if err := pub.Publish(subject, b); err != nil {
				log.Warn("publish snapshot failed", zap.String("subject", subject), zap.Error(err))
			}
		}
	}
}
