package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis publishes each event on the pub/sub channel "<prefix>.<type>".
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(ctx context.Context, url, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Redis{client: client, prefix: prefix}, nil
}

func (r *Redis) Publish(ctx context.Context, e Event) error {
	data, err := encode(e)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.prefix+"."+string(e.Type), data).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
