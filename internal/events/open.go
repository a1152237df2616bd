package events

import (
	"context"
	"fmt"
	"log/slog"
)

// Open returns the publisher for backend: "log" (or empty), "nats", "kafka"
// or "redis". url is the broker address, topic the subject/topic prefix.
func Open(ctx context.Context, backend, url, topic string, log *slog.Logger) (Publisher, error) {
	switch backend {
	case "", "log":
		return NewLog(log), nil
	case "nats":
		return NewNATS(url, topic)
	case "kafka":
		k, err := NewKafka(url, topic)
		if err != nil {
			return nil, err
		}
		if err := k.EnsureTopic(ctx, 3, 1); err != nil {
			k.Close()
			return nil, fmt.Errorf("ensure topic %s: %w", topic, err)
		}
		return k, nil
	case "redis":
		return NewRedis(ctx, url, topic)
	}
	return nil, fmt.Errorf("unknown events backend %q", backend)
}
