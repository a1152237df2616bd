package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"consult-broker/internal/model"
)

// SetAvailability offers a slot, reopening it if it was removed before.
func (s *Store) SetAvailability(ctx context.Context, workerID int64, date time.Time, slot string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO availability (worker_id, date, time_slot) VALUES ($1,$2,$3)
		 ON CONFLICT (worker_id, date, time_slot)
		 DO UPDATE SET available = TRUE, created_at = NOW()`,
		workerID, date, slot)
	return err
}

// RemoveAvailability withdraws an offered slot. It returns ErrNotFound when
// the slot is not currently offered.
func (s *Store) RemoveAvailability(ctx context.Context, workerID int64, date time.Time, slot string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE availability SET available = FALSE
		 WHERE worker_id = $1 AND date = $2 AND time_slot = $3 AND available`,
		workerID, date, slot)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAvailability returns a worker's open slots ordered by date and time,
// restricted to one date when date is non-nil.
func (s *Store) ListAvailability(ctx context.Context, workerID int64, date *time.Time) ([]model.Slot, error) {
	q := `SELECT worker_id, date, time_slot, created_at FROM availability
		  WHERE worker_id = $1 AND available`
	args := []any{workerID}
	if date != nil {
		q += ` AND date = $2`
		args = append(args, *date)
	}
	rows, err := s.pool.Query(ctx, q+` ORDER BY date, time_slot`, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Slot, error) {
		var sl model.Slot
		err := row.Scan(&sl.WorkerID, &sl.Date, &sl.TimeSlot, &sl.CreatedAt)
		return sl, err
	})
}

func (s *Store) IsAvailable(ctx context.Context, workerID int64, date time.Time, slot string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM availability
		 WHERE worker_id = $1 AND date = $2 AND time_slot = $3 AND available)`,
		workerID, date, slot).Scan(&ok)
	return ok, err
}
