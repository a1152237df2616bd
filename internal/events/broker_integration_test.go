//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"consult-broker/internal/events"
	"consult-broker/internal/model"
	"consult-broker/internal/testutil/containers"
)

func TestRedisPublisher(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	url := containers.NewRedis(t)

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	sub := redis.NewClient(opts).Subscribe(ctx, "broker.appointment.created")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	pub, err := events.NewRedis(ctx, url, "broker")
	require.NoError(t, err)
	defer pub.Close()

	require.NoError(t, pub.Publish(ctx, events.Event{
		Type: events.AppointmentCreated, AppointmentID: 11, Status: model.StatusPending, At: time.Now(),
	}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	var got events.Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, int64(11), got.AppointmentID)
	assert.Equal(t, model.StatusPending, got.Status)
}

func TestKafkaPublisher(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	seed := containers.NewRedpanda(t)

	pub, err := events.Open(ctx, "kafka", seed, "broker-events", nil)
	require.NoError(t, err)
	defer pub.Close()

	for i, st := range []model.Status{model.StatusAccepted, model.StatusInConsultation} {
		require.NoError(t, pub.Publish(ctx, events.Event{
			Type: events.StatusChanged, AppointmentID: 5, Status: st, At: time.Now().Add(time.Duration(i) * time.Second),
		}))
	}

	cl, err := kgo.NewClient(
		kgo.SeedBrokers(seed),
		kgo.ConsumeTopics("broker-events"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer cl.Close()

	var got []events.Event
	for len(got) < 2 {
		fetches := cl.PollFetches(ctx)
		require.NoError(t, ctx.Err())
		fetches.EachRecord(func(r *kgo.Record) {
			assert.Equal(t, "5", string(r.Key))
			var e events.Event
			require.NoError(t, json.Unmarshal(r.Value, &e))
			got = append(got, e)
		})
	}
	assert.Equal(t, model.StatusAccepted, got[0].Status, "same key keeps partition order")
	assert.Equal(t, model.StatusInConsultation, got[1].Status)
}
