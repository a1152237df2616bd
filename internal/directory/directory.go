// Package directory is the worker directory: profiles users browse before
// booking, and the time slots each worker offers.
package directory

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"consult-broker/internal/apperr"
	"consult-broker/internal/model"
	"consult-broker/internal/store"
)

type Directory struct {
	accounts store.AccountStore
	workers  store.WorkerStore
	slots    store.AvailabilityStore
	log      *slog.Logger
}

func New(accounts store.AccountStore, workers store.WorkerStore, slots store.AvailabilityStore, log *slog.Logger) *Directory {
	return &Directory{accounts: accounts, workers: workers, slots: slots, log: log}
}

// ListWorkers returns workers ordered by name, or by rating then name when
// the filter narrows the list.
func (d *Directory) ListWorkers(ctx context.Context, f model.WorkerFilter) ([]model.Account, error) {
	f.Specialization = strings.TrimSpace(f.Specialization)
	f.Query = strings.TrimSpace(f.Query)
	return d.workers.ListWorkers(ctx, f)
}

func (d *Directory) Specializations(ctx context.Context) ([]string, error) {
	return d.workers.Specializations(ctx)
}

// Worker returns the account of worker id, or NotFound when id is not a
// worker.
func (d *Directory) Worker(ctx context.Context, id int64) (*model.Account, error) {
	a, err := d.accounts.GetAccount(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && a.Role != model.RoleWorker) {
		return nil, apperr.NotFound("worker %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// SetAvailability offers a slot on the calling worker's own calendar.
func (d *Directory) SetAvailability(ctx context.Context, caller model.Actor, date, slot string) (*model.Slot, error) {
	workerID, err := ownCalendar(caller)
	if err != nil {
		return nil, err
	}
	day, ts, err := parseSlot(date, slot)
	if err != nil {
		return nil, err
	}
	if err := d.slots.SetAvailability(ctx, workerID, day, ts); err != nil {
		return nil, err
	}
	d.log.InfoContext(ctx, "availability set", "worker_id", workerID, "date", date, "time_slot", ts)
	return &model.Slot{WorkerID: workerID, Date: day, TimeSlot: ts}, nil
}

func (d *Directory) RemoveAvailability(ctx context.Context, caller model.Actor, date, slot string) error {
	workerID, err := ownCalendar(caller)
	if err != nil {
		return err
	}
	day, ts, err := parseSlot(date, slot)
	if err != nil {
		return err
	}
	err = d.slots.RemoveAvailability(ctx, workerID, day, ts)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("no open slot %s on %s", ts, date)
	}
	if err != nil {
		return err
	}
	d.log.InfoContext(ctx, "availability removed", "worker_id", workerID, "date", date, "time_slot", ts)
	return nil
}

// Availability lists a worker's open slots. An empty date lists every day.
func (d *Directory) Availability(ctx context.Context, workerID int64, date string) ([]model.Slot, error) {
	if _, err := d.Worker(ctx, workerID); err != nil {
		return nil, err
	}
	var day *time.Time
	if date = strings.TrimSpace(date); date != "" {
		t, err := time.Parse(model.DateLayout, date)
		if err != nil {
			return nil, apperr.Validation("date must be YYYY-MM-DD")
		}
		day = &t
	}
	return d.slots.ListAvailability(ctx, workerID, day)
}

func (d *Directory) IsAvailable(ctx context.Context, workerID int64, date, slot string) (bool, error) {
	day, ts, err := parseSlot(date, slot)
	if err != nil {
		return false, err
	}
	return d.slots.IsAvailable(ctx, workerID, day, ts)
}

func ownCalendar(a model.Actor) (int64, error) {
	if !a.Valid() {
		return 0, apperr.BadRequest("unresolved actor")
	}
	if a.Role() != model.RoleWorker {
		return 0, apperr.Forbidden("only workers manage availability")
	}
	return a.ID(), nil
}

// parseSlot validates a date and an HH:MM slot and normalizes the slot.
func parseSlot(date, slot string) (time.Time, string, error) {
	day, err := time.Parse(model.DateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, "", apperr.Validation("date must be YYYY-MM-DD")
	}
	t, err := time.Parse(model.TimeSlotLayout, strings.TrimSpace(slot))
	if err != nil {
		return time.Time{}, "", apperr.Validation("time_slot must be HH:MM")
	}
	return day, t.Format(model.TimeSlotLayout), nil
}
