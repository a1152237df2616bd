package httpapi

import (
	"time"

	"consult-broker/internal/identity"
	"consult-broker/internal/model"
)

type registerRequest struct {
	Role     string `json:"role"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`

	Specialization string `json:"specialization,omitempty"`
	Experience     int    `json:"experience,omitempty"`
	ClinicLocation string `json:"clinic_location,omitempty"`
}

type loginRequest struct {
	Role     string `json:"role"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type authResponse struct {
	AccountID    int64  `json:"account_id"`
	Role         string `json:"role"`
	Name         string `json:"name"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func toAuthResponse(s *identity.Session) authResponse {
	return authResponse{
		AccountID:    s.Account.ID,
		Role:         string(s.Account.Role),
		Name:         s.Account.Name,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
	}
}

type createAppointmentRequest struct {
	UserID   int64  `json:"user_id"`
	WorkerID int64  `json:"worker_id"`
	Name     string `json:"name"`
	Reason   string `json:"reason"`
	Date     string `json:"date"`
	Modality string `json:"modality"`
}

type respondRequest struct {
	Decision string `json:"decision"`
}

type sendMessageRequest struct {
	Body string `json:"body"`
}

type appointmentJSON struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	WorkerID  int64          `json:"worker_id"`
	Name      string         `json:"name"`
	Reason    string         `json:"reason"`
	Date      string         `json:"date"`
	Modality  model.Modality `json:"modality"`
	Status    model.Status   `json:"status"`
	StartTime *time.Time     `json:"start_time"`
	EndTime   *time.Time     `json:"end_time"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func toAppointmentJSON(a *model.Appointment) appointmentJSON {
	return appointmentJSON{
		ID:        a.ID,
		UserID:    a.UserID,
		WorkerID:  a.WorkerID,
		Name:      a.Name,
		Reason:    a.Reason,
		Date:      a.Date.Format(model.DateLayout),
		Modality:  a.Modality,
		Status:    a.Status,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

type messageJSON struct {
	ID            int64      `json:"id"`
	AppointmentID int64      `json:"appointment_id"`
	SenderRole    model.Role `json:"sender_role"`
	SenderID      int64      `json:"sender_id"`
	Body          string     `json:"body"`
	SentAt        time.Time  `json:"sent_at"`
}

func toMessageJSON(m *model.Message) messageJSON {
	return messageJSON{
		ID:            m.ID,
		AppointmentID: m.AppointmentID,
		SenderRole:    m.SenderRole,
		SenderID:      m.SenderID,
		Body:          m.Body,
		SentAt:        m.SentAt,
	}
}

type workerJSON struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Specialization string  `json:"specialization"`
	Experience     int     `json:"experience"`
	ClinicLocation string  `json:"clinic_location"`
	Rating         float64 `json:"rating"`
}

func toWorkerJSON(a *model.Account) workerJSON {
	return workerJSON{
		ID:             a.ID,
		Name:           a.Name,
		Specialization: a.Profile.Specialization,
		Experience:     a.Profile.Experience,
		ClinicLocation: a.Profile.ClinicLocation,
		Rating:         a.Profile.Rating,
	}
}

type slotRequest struct {
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
}

type slotJSON struct {
	WorkerID int64  `json:"worker_id"`
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
}

func toSlotJSON(s *model.Slot) slotJSON {
	return slotJSON{WorkerID: s.WorkerID, Date: s.Date.Format(model.DateLayout), TimeSlot: s.TimeSlot}
}
