package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"consult-broker/internal/model"
)

const appointmentCols = `id, user_id, worker_id, name, reason, date, modality,
	status, start_time, end_time, created_at, updated_at`

func scanAppointment(row pgx.Row, a *model.Appointment) error {
	var modality, status string
	err := row.Scan(&a.ID, &a.UserID, &a.WorkerID, &a.Name, &a.Reason, &a.Date,
		&modality, &status, &a.StartTime, &a.EndTime, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	a.Modality = model.Modality(modality)
	a.Status = model.Status(status)
	return nil
}

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO appointments (user_id, worker_id, name, reason, date, modality, status)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 RETURNING id, created_at, updated_at`,
		a.UserID, a.WorkerID, a.Name, a.Reason, a.Date, string(a.Modality), string(a.Status),
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (s *Store) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := scanAppointment(s.pool.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id), a)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) ListAppointmentsByUser(ctx context.Context, userID int64) ([]model.Appointment, error) {
	return s.listAppointments(ctx,
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
}

func (s *Store) ListAppointmentsByWorker(ctx context.Context, workerID int64) ([]model.Appointment, error) {
	return s.listAppointments(ctx,
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE worker_id = $1 ORDER BY created_at DESC, id DESC`, workerID)
}

func (s *Store) listAppointments(ctx context.Context, q string, arg int64) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Appointment{}
	for rows.Next() {
		var a model.Appointment
		if err := scanAppointment(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateAppointment locks the row for the duration of fn so that concurrent
// updates of one appointment serialize.
func (s *Store) UpdateAppointment(ctx context.Context, id int64, fn func(*model.Appointment) error) (*model.Appointment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	a := &model.Appointment{}
	err = scanAppointment(tx.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1 FOR UPDATE`, id), a)
	if err != nil {
		return nil, err
	}

	if err := fn(a); err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx,
		`UPDATE appointments
		 SET status=$1, start_time=$2, end_time=$3, updated_at=NOW()
		 WHERE id=$4
		 RETURNING updated_at`,
		string(a.Status), a.StartTime, a.EndTime, id,
	).Scan(&a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) AppendMessage(ctx context.Context, m *model.Message, check func(*model.Appointment) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// lock the channel's appointment: a status change or another append waits
	a := &model.Appointment{}
	err = scanAppointment(tx.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1 FOR UPDATE`, m.AppointmentID), a)
	if err != nil {
		return err
	}
	if err := check(a); err != nil {
		return err
	}

	var last *time.Time
	if err := tx.QueryRow(ctx,
		`SELECT MAX(sent_at) FROM messages WHERE appointment_id = $1`, m.AppointmentID,
	).Scan(&last); err != nil {
		return err
	}
	m.SentAt = nextSentAt(m.SentAt, last)

	err = tx.QueryRow(ctx,
		`INSERT INTO messages (appointment_id, sender_role, sender_id, body, sent_at)
		 VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		m.AppointmentID, string(m.SenderRole), m.SenderID, m.Body, m.SentAt,
	).Scan(&m.ID)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) ListMessages(ctx context.Context, appointmentID int64) ([]model.Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, appointment_id, sender_role, sender_id, body, sent_at
		 FROM messages WHERE appointment_id = $1
		 ORDER BY sent_at, id`, appointmentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Message{}
	for rows.Next() {
		var m model.Message
		var role string
		if err := rows.Scan(&m.ID, &m.AppointmentID, &role, &m.SenderID, &m.Body, &m.SentAt); err != nil {
			return nil, err
		}
		m.SenderRole = model.Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}
