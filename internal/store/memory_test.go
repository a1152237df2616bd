package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consult-broker/internal/model"
)

func TestNextSentAt(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, base, nextSentAt(base, nil))

	later := base.Add(time.Second)
	assert.Equal(t, later, nextSentAt(later, &base))

	same := base
	assert.Equal(t, base.Add(time.Microsecond), nextSentAt(base, &same))

	earlier := base.Add(-time.Minute)
	assert.Equal(t, base.Add(time.Microsecond), nextSentAt(earlier, &base), "clock skew never reorders")

	assert.Equal(t, base, nextSentAt(base.Add(500*time.Nanosecond), nil), "truncated to microseconds")
}

func TestMemoryAppointmentsAreCopied(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	a := &model.Appointment{UserID: 1, WorkerID: 2, Status: model.StatusPending}
	require.NoError(t, m.CreateAppointment(ctx, a))
	require.Equal(t, int64(1), a.ID)

	a.Status = model.StatusCompleted
	got, err := m.GetAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)

	start := time.Now()
	updated, err := m.UpdateAppointment(ctx, a.ID, func(cur *model.Appointment) error {
		cur.Status = model.StatusInConsultation
		cur.StartTime = &start
		return nil
	})
	require.NoError(t, err)
	updated.StartTime = nil

	got, err = m.GetAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInConsultation, got.Status)
	assert.NotNil(t, got.StartTime)

	_, err = m.GetAppointment(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.UpdateAppointment(ctx, 99, func(*model.Appointment) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	frozen := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return frozen }

	for _, w := range []int64{2, 3, 2} {
		require.NoError(t, m.CreateAppointment(ctx, &model.Appointment{UserID: 1, WorkerID: w}))
	}

	list, err := m.ListAppointmentsByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{list[0].ID, list[1].ID, list[2].ID})

	list, err = m.ListAppointmentsByWorker(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = m.ListAppointmentsByUser(ctx, 42)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestMemoryAppendMessage(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	a := &model.Appointment{UserID: 1, WorkerID: 2, Status: model.StatusAccepted}
	require.NoError(t, m.CreateAppointment(ctx, a))

	sent := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	open := func(*model.Appointment) error { return nil }
	for i := 0; i < 3; i++ {
		msg := &model.Message{AppointmentID: a.ID, SenderRole: model.RoleUser, SenderID: 1, Body: "hi", SentAt: sent}
		require.NoError(t, m.AppendMessage(ctx, msg, open))
	}

	msgs, err := m.ListMessages(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i := 1; i < len(msgs); i++ {
		assert.True(t, msgs[i].SentAt.After(msgs[i-1].SentAt))
		assert.Greater(t, msgs[i].ID, msgs[i-1].ID)
	}

	refused := assert.AnError
	err = m.AppendMessage(ctx, &model.Message{AppointmentID: a.ID, Body: "no"}, func(*model.Appointment) error { return refused })
	assert.ErrorIs(t, err, refused)

	err = m.AppendMessage(ctx, &model.Message{AppointmentID: 77, Body: "no"}, open)
	assert.ErrorIs(t, err, ErrNotFound)

	msgs, err = m.ListMessages(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 3)
}

func TestMemoryAccounts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	u := &model.Account{Role: model.RoleUser, Email: "Pat@Test.com", Name: "Pat"}
	require.NoError(t, m.CreateAccount(ctx, u))
	assert.ErrorIs(t, m.CreateAccount(ctx, &model.Account{Role: model.RoleUser, Email: "pat@test.com"}), ErrConflict)
	require.NoError(t, m.CreateAccount(ctx, &model.Account{Role: model.RoleWorker, Email: "pat@test.com"}))

	got, err := m.AccountByEmail(ctx, model.RoleUser, "PAT@TEST.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = m.GetAccount(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pat", got.Name)

	_, err = m.AccountByEmail(ctx, model.RoleWorker, "nobody@test.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRefreshTokens(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	id, err := m.CreateRefreshToken(ctx, 1, "h1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, m.RotateRefreshToken(ctx, id, "next", 1, "h2", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, m.RotateRefreshToken(ctx, id, "again", 1, "h3", time.Now().Add(time.Hour)), ErrConflict)

	old, err := m.GetRefreshTokenByHash(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, old.Revoked)
	require.NotNil(t, old.ReplacedBy)
	assert.Equal(t, "next", *old.ReplacedBy)

	require.NoError(t, m.RevokeAllRefreshTokens(ctx, 1))
	next, err := m.GetRefreshTokenByHash(ctx, "h2")
	require.NoError(t, err)
	assert.True(t, next.Revoked)

	_, err = m.CreateRefreshToken(ctx, 2, "stale", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	n, err := m.PurgeRefreshTokens(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = m.GetRefreshTokenByHash(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)
}
