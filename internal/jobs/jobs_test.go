package jobs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPurger struct {
	calls atomic.Int32
	n     int64
	err   error
}

func (p *countingPurger) PurgeExpired(context.Context) (int64, error) {
	p.calls.Add(1)
	return p.n, p.err
}

func TestPurgeOnceLogs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	PurgeOnce(context.Background(), &countingPurger{n: 3}, log)
	assert.Contains(t, buf.String(), "count=3")

	buf.Reset()
	PurgeOnce(context.Background(), &countingPurger{err: errors.New("db gone")}, log)
	assert.Contains(t, buf.String(), "refresh token purge failed")

	buf.Reset()
	PurgeOnce(context.Background(), &countingPurger{}, log)
	assert.Empty(t, buf.String())
}

func TestBadSchedule(t *testing.T) {
	_, err := New("every tuesday", &countingPurger{}, slog.Default())
	assert.Error(t, err)
}

func TestRunFiresAndStops(t *testing.T) {
	p := &countingPurger{}
	s, err := New("@every 1s", p, slog.Default())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return p.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
