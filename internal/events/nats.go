package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS publishes each event on "<prefix>.<type>".
type NATS struct {
	nc     *nats.Conn
	prefix string
}

func NewNATS(url, prefix string) (*NATS, error) {
	nc, err := nats.Connect(url,
		nats.Name("consult-broker"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATS{nc: nc, prefix: prefix}, nil
}

func (n *NATS) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := encode(e)
	if err != nil {
		return err
	}
	return n.nc.Publish(n.prefix+"."+string(e.Type), data)
}

func (n *NATS) Close() error {
	return n.nc.Drain()
}
