package model

import "time"

type Status string

const (
	StatusPending        Status = "pending"
	StatusAccepted       Status = "accepted"
	StatusRejected       Status = "rejected"
	StatusInConsultation Status = "in_consultation"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

// Statuses lists every value an appointment status may hold.
var Statuses = []Status{
	StatusPending, StatusAccepted, StatusRejected,
	StatusInConsultation, StatusCompleted, StatusCancelled,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted || s == StatusCancelled
}

// ChatOpen reports whether messages may be exchanged while in s.
func (s Status) ChatOpen() bool {
	return s == StatusAccepted || s == StatusInConsultation
}

type Modality string

const (
	ModalityClinic Modality = "clinic"
	ModalityVideo  Modality = "video"
)

func (m Modality) Valid() bool {
	return m == ModalityClinic || m == ModalityVideo
}

// DateLayout is the wire and storage layout of Appointment.Date.
const DateLayout = "2006-01-02"

type Appointment struct {
	ID        int64
	UserID    int64
	WorkerID  int64
	Name      string
	Reason    string
	Date      time.Time
	Modality  Modality
	Status    Status
	StartTime *time.Time
	EndTime   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Message struct {
	ID            int64
	AppointmentID int64
	SenderRole    Role
	SenderID      int64
	Body          string
	SentAt        time.Time
}

type Account struct {
	ID           int64
	Role         Role
	Email        string
	Name         string
	PasswordHash string
	// Profile is only meaningful for workers.
	Profile   WorkerProfile
	CreatedAt time.Time
}

// WorkerProfile is what the worker directory shows about a worker.
type WorkerProfile struct {
	Specialization string
	Experience     int
	ClinicLocation string
	Rating         float64
}

// TimeSlotLayout is the layout of Slot.TimeSlot (24-hour clock).
const TimeSlotLayout = "15:04"

// Slot is one time a worker has offered on a given date.
type Slot struct {
	WorkerID  int64
	Date      time.Time
	TimeSlot  string
	CreatedAt time.Time
}

// WorkerFilter narrows a directory listing. Query matches name,
// specialization or clinic location, case-insensitively.
type WorkerFilter struct {
	Specialization string
	Query          string
}

// Ranked reports whether results should be ordered by rating rather than by
// name alone.
func (f WorkerFilter) Ranked() bool {
	return f.Specialization != "" || f.Query != ""
}

type RefreshToken struct {
	ID         string
	AccountID  int64
	TokenHash  string
	ExpiresAt  time.Time
	Revoked    bool
	ReplacedBy *string
	CreatedAt  time.Time
}
