package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Kafka produces every event to one topic, keyed by appointment id so that a
// channel's events stay ordered within a partition.
type Kafka struct {
	cl    *kgo.Client
	topic string
}

func NewKafka(brokers, topic string) (*Kafka, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(strings.Split(brokers, ",")...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(0),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Kafka{cl: cl, topic: topic}, nil
}

// EnsureTopic creates the topic if it does not exist yet.
func (k *Kafka) EnsureTopic(ctx context.Context, partitions int32, replication int16) error {
	adm := kadm.NewClient(k.cl)
	resp, err := adm.CreateTopic(ctx, partitions, replication, nil, k.topic)
	if err != nil {
		return err
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return resp.Err
	}
	return nil
}

func (k *Kafka) Publish(ctx context.Context, e Event) error {
	data, err := encode(e)
	if err != nil {
		return err
	}
	rec := &kgo.Record{
		Key:   []byte(strconv.FormatInt(e.AppointmentID, 10)),
		Value: data,
		Headers: []kgo.RecordHeader{
			{Key: "type", Value: []byte(e.Type)},
		},
	}
	return k.cl.ProduceSync(ctx, rec).FirstErr()
}

func (k *Kafka) Close() error {
	k.cl.Close()
	return nil
}
