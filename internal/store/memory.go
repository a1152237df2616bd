package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"consult-broker/internal/model"
)

// Memory is an in-process backend used by tests and STORE=memory. A single
// mutex makes every read-modify-write atomic.
type Memory struct {
	mu  sync.Mutex
	now func() time.Time

	lastApptID, lastMsgID, lastAccountID int64

	appointments map[int64]*model.Appointment
	messages     map[int64][]model.Message
	accounts     map[int64]*model.Account
	tokens       map[string]*model.RefreshToken
	slots        map[slotKey]*model.Slot
}

type slotKey struct {
	worker int64
	date   string
	slot   string
}

func keyOf(workerID int64, date time.Time, slot string) slotKey {
	return slotKey{worker: workerID, date: date.Format(model.DateLayout), slot: slot}
}

func NewMemory() *Memory {
	return &Memory{
		now:          time.Now,
		appointments: make(map[int64]*model.Appointment),
		messages:     make(map[int64][]model.Message),
		accounts:     make(map[int64]*model.Account),
		tokens:       make(map[string]*model.RefreshToken),
		slots:        make(map[slotKey]*model.Slot),
	}
}

func cloneAppointment(a *model.Appointment) *model.Appointment {
	c := *a
	if a.StartTime != nil {
		t := *a.StartTime
		c.StartTime = &t
	}
	if a.EndTime != nil {
		t := *a.EndTime
		c.EndTime = &t
	}
	return &c
}

func (m *Memory) CreateAppointment(_ context.Context, a *model.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastApptID++
	a.ID = m.lastApptID
	a.CreatedAt = m.now().UTC()
	a.UpdatedAt = a.CreatedAt
	m.appointments[a.ID] = cloneAppointment(a)
	return nil
}

func (m *Memory) GetAppointment(_ context.Context, id int64) (*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAppointment(a), nil
}

func (m *Memory) ListAppointmentsByUser(_ context.Context, userID int64) ([]model.Appointment, error) {
	return m.listAppointments(func(a *model.Appointment) bool { return a.UserID == userID }), nil
}

func (m *Memory) ListAppointmentsByWorker(_ context.Context, workerID int64) ([]model.Appointment, error) {
	return m.listAppointments(func(a *model.Appointment) bool { return a.WorkerID == workerID }), nil
}

func (m *Memory) listAppointments(match func(*model.Appointment) bool) []model.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []model.Appointment{}
	for _, a := range m.appointments {
		if match(a) {
			out = append(out, *cloneAppointment(a))
		}
	}
	// ids grow with creation time, so they break created_at ties
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *Memory) UpdateAppointment(_ context.Context, id int64, fn func(*model.Appointment) error) (*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	next := cloneAppointment(cur)
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = m.now().UTC()
	m.appointments[id] = next
	return cloneAppointment(next), nil
}

func (m *Memory) AppendMessage(_ context.Context, msg *model.Message, check func(*model.Appointment) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appointments[msg.AppointmentID]
	if !ok {
		return ErrNotFound
	}
	if err := check(cloneAppointment(a)); err != nil {
		return err
	}

	var last *time.Time
	if prev := m.messages[msg.AppointmentID]; len(prev) > 0 {
		last = &prev[len(prev)-1].SentAt
	}
	msg.SentAt = nextSentAt(msg.SentAt, last)

	m.lastMsgID++
	msg.ID = m.lastMsgID
	m.messages[msg.AppointmentID] = append(m.messages[msg.AppointmentID], *msg)
	return nil
}

func (m *Memory) ListMessages(_ context.Context, appointmentID int64) ([]model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Message, len(m.messages[appointmentID]))
	copy(out, m.messages[appointmentID])
	return out, nil
}

func (m *Memory) CreateAccount(_ context.Context, a *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.accounts {
		if existing.Role == a.Role && strings.EqualFold(existing.Email, a.Email) {
			return ErrConflict
		}
	}
	m.lastAccountID++
	a.ID = m.lastAccountID
	a.CreatedAt = m.now().UTC()
	c := *a
	m.accounts[a.ID] = &c
	return nil
}

func (m *Memory) AccountByEmail(_ context.Context, role model.Role, email string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.accounts {
		if a.Role == role && strings.EqualFold(a.Email, email) {
			c := *a
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) GetAccount(_ context.Context, id int64) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *a
	return &c, nil
}

func (m *Memory) ListWorkers(_ context.Context, f model.WorkerFilter) ([]model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := strings.ToLower(f.Query)
	out := []model.Account{}
	for _, a := range m.accounts {
		if a.Role != model.RoleWorker {
			continue
		}
		if f.Specialization != "" && !strings.EqualFold(a.Profile.Specialization, f.Specialization) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(a.Name), q) &&
			!strings.Contains(strings.ToLower(a.Profile.Specialization), q) &&
			!strings.Contains(strings.ToLower(a.Profile.ClinicLocation), q) {
			continue
		}
		out = append(out, *a)
	}
	ranked := f.Ranked()
	sort.Slice(out, func(i, j int) bool {
		if ranked && out[i].Profile.Rating != out[j].Profile.Rating {
			return out[i].Profile.Rating > out[j].Profile.Rating
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) Specializations(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool)
	out := []string{}
	for _, a := range m.accounts {
		sp := a.Profile.Specialization
		if a.Role != model.RoleWorker || sp == "" || seen[sp] {
			continue
		}
		seen[sp] = true
		out = append(out, sp)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) SetAvailability(_ context.Context, workerID int64, date time.Time, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.slots[keyOf(workerID, date, slot)] = &model.Slot{
		WorkerID: workerID, Date: date, TimeSlot: slot, CreatedAt: m.now().UTC(),
	}
	return nil
}

func (m *Memory) RemoveAvailability(_ context.Context, workerID int64, date time.Time, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := keyOf(workerID, date, slot)
	if _, ok := m.slots[k]; !ok {
		return ErrNotFound
	}
	delete(m.slots, k)
	return nil
}

func (m *Memory) ListAvailability(_ context.Context, workerID int64, date *time.Time) ([]model.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []model.Slot{}
	for k, sl := range m.slots {
		if k.worker != workerID || (date != nil && k.date != date.Format(model.DateLayout)) {
			continue
		}
		out = append(out, *sl)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].TimeSlot < out[j].TimeSlot
	})
	return out, nil
}

func (m *Memory) IsAvailable(_ context.Context, workerID int64, date time.Time, slot string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.slots[keyOf(workerID, date, slot)]
	return ok, nil
}

func (m *Memory) CreateRefreshToken(_ context.Context, accountID int64, tokenHash string, expiresAt time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.tokens[id] = &model.RefreshToken{
		ID: id, AccountID: accountID, TokenHash: tokenHash,
		ExpiresAt: expiresAt, CreatedAt: m.now().UTC(),
	}
	return id, nil
}

func (m *Memory) GetRefreshTokenByHash(_ context.Context, tokenHash string) (*model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rt := range m.tokens {
		if rt.TokenHash == tokenHash {
			c := *rt
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) RotateRefreshToken(_ context.Context, oldID, newID string, accountID int64, newHash string, newExpiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.tokens[oldID]
	if !ok || old.Revoked {
		return ErrConflict
	}
	old.Revoked = true
	replaced := newID
	old.ReplacedBy = &replaced
	m.tokens[newID] = &model.RefreshToken{
		ID: newID, AccountID: accountID, TokenHash: newHash,
		ExpiresAt: newExpiry, CreatedAt: m.now().UTC(),
	}
	return nil
}

func (m *Memory) RevokeAllRefreshTokens(_ context.Context, accountID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rt := range m.tokens {
		if rt.AccountID == accountID {
			rt.Revoked = true
		}
	}
	return nil
}

func (m *Memory) PurgeRefreshTokens(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, rt := range m.tokens {
		if rt.ExpiresAt.Before(before) {
			delete(m.tokens, id)
			n++
		}
	}
	return n, nil
}
