package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"consult-broker/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// AppointmentStore persists appointments. UpdateAppointment runs fn on the
// current record while holding the record exclusively, and writes the result
// only when fn returns nil.
type AppointmentStore interface {
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	GetAppointment(ctx context.Context, id int64) (*model.Appointment, error)
	ListAppointmentsByUser(ctx context.Context, userID int64) ([]model.Appointment, error)
	ListAppointmentsByWorker(ctx context.Context, workerID int64) ([]model.Appointment, error)
	UpdateAppointment(ctx context.Context, id int64, fn func(*model.Appointment) error) (*model.Appointment, error)
}

// MessageStore persists chat messages. AppendMessage calls check with the
// owning appointment locked against concurrent updates and appends only when
// check returns nil. SentAt is raised when needed so it strictly increases per
// appointment.
type MessageStore interface {
	AppendMessage(ctx context.Context, m *model.Message, check func(*model.Appointment) error) error
	ListMessages(ctx context.Context, appointmentID int64) ([]model.Message, error)
}

type AccountStore interface {
	CreateAccount(ctx context.Context, a *model.Account) error
	AccountByEmail(ctx context.Context, role model.Role, email string) (*model.Account, error)
	GetAccount(ctx context.Context, id int64) (*model.Account, error)
}

// WorkerStore is the read side of the worker directory.
type WorkerStore interface {
	ListWorkers(ctx context.Context, f model.WorkerFilter) ([]model.Account, error)
	Specializations(ctx context.Context) ([]string, error)
}

type AvailabilityStore interface {
	SetAvailability(ctx context.Context, workerID int64, date time.Time, slot string) error
	RemoveAvailability(ctx context.Context, workerID int64, date time.Time, slot string) error
	ListAvailability(ctx context.Context, workerID int64, date *time.Time) ([]model.Slot, error)
	IsAvailable(ctx context.Context, workerID int64, date time.Time, slot string) (bool, error)
}

type TokenStore interface {
	CreateRefreshToken(ctx context.Context, accountID int64, tokenHash string, expiresAt time.Time) (string, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID, newID string, accountID int64, newHash string, newExpiry time.Time) error
	RevokeAllRefreshTokens(ctx context.Context, accountID int64) error
	PurgeRefreshTokens(ctx context.Context, before time.Time) (int64, error)
}

// Backend is everything the server needs from persistence.
type Backend interface {
	AppointmentStore
	MessageStore
	AccountStore
	WorkerStore
	AvailabilityStore
	TokenStore
}

// Store is the Postgres backend.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// nextSentAt keeps message timestamps strictly increasing within a channel.
// Postgres stores microseconds, so that is the step.
func nextSentAt(now time.Time, last *time.Time) time.Time {
	now = now.UTC().Truncate(time.Microsecond)
	if last != nil && !now.After(*last) {
		return last.UTC().Add(time.Microsecond)
	}
	return now
}

var (
	_ Backend = (*Store)(nil)
	_ Backend = (*Memory)(nil)
)
