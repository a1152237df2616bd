package brokerv1

import (
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type Appointment struct {
	Id        int64                  // 1
	UserId    int64                  // 2
	WorkerId  int64                  // 3
	Name      string                 // 4
	Reason    string                 // 5
	Date      string                 // 6, YYYY-MM-DD
	Modality  string                 // 7
	Status    string                 // 8
	StartTime *timestamppb.Timestamp // 9
	EndTime   *timestamppb.Timestamp // 10
	CreatedAt *timestamppb.Timestamp // 11
	UpdatedAt *timestamppb.Timestamp // 12
}

func (m *Appointment) Marshal() ([]byte, error) {
	var b []byte
	b = appendInt64(b, 1, m.Id)
	b = appendInt64(b, 2, m.UserId)
	b = appendInt64(b, 3, m.WorkerId)
	b = appendString(b, 4, m.Name)
	b = appendString(b, 5, m.Reason)
	b = appendString(b, 6, m.Date)
	b = appendString(b, 7, m.Modality)
	b = appendString(b, 8, m.Status)
	b = appendTime(b, 9, m.StartTime)
	b = appendTime(b, 10, m.EndTime)
	b = appendTime(b, 11, m.CreatedAt)
	b = appendTime(b, 12, m.UpdatedAt)
	return b, nil
}

func (m *Appointment) Unmarshal(b []byte) error {
	*m = Appointment{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readInt64(typ, b, &m.Id)
		case 2:
			return readInt64(typ, b, &m.UserId)
		case 3:
			return readInt64(typ, b, &m.WorkerId)
		case 4:
			return readString(typ, b, &m.Name)
		case 5:
			return readString(typ, b, &m.Reason)
		case 6:
			return readString(typ, b, &m.Date)
		case 7:
			return readString(typ, b, &m.Modality)
		case 8:
			return readString(typ, b, &m.Status)
		case 9:
			return readTime(typ, b, &m.StartTime)
		case 10:
			return readTime(typ, b, &m.EndTime)
		case 11:
			return readTime(typ, b, &m.CreatedAt)
		case 12:
			return readTime(typ, b, &m.UpdatedAt)
		}
		return 0
	})
}

type ChatMessage struct {
	Id            int64                  // 1
	AppointmentId int64                  // 2
	SenderRole    string                 // 3
	SenderId      int64                  // 4
	Body          string                 // 5
	SentAt        *timestamppb.Timestamp // 6
}

func (m *ChatMessage) Marshal() ([]byte, error) {
	var b []byte
	b = appendInt64(b, 1, m.Id)
	b = appendInt64(b, 2, m.AppointmentId)
	b = appendString(b, 3, m.SenderRole)
	b = appendInt64(b, 4, m.SenderId)
	b = appendString(b, 5, m.Body)
	b = appendTime(b, 6, m.SentAt)
	return b, nil
}

func (m *ChatMessage) Unmarshal(b []byte) error {
	*m = ChatMessage{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readInt64(typ, b, &m.Id)
		case 2:
			return readInt64(typ, b, &m.AppointmentId)
		case 3:
			return readString(typ, b, &m.SenderRole)
		case 4:
			return readInt64(typ, b, &m.SenderId)
		case 5:
			return readString(typ, b, &m.Body)
		case 6:
			return readTime(typ, b, &m.SentAt)
		}
		return 0
	})
}

// auth

type RegisterRequest struct {
	Role     string // 1
	Name     string // 2
	Email    string // 3
	Password string // 4

	// worker profile
	Specialization string // 5
	Experience     int64  // 6, years
	ClinicLocation string // 7
}

func (m *RegisterRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Role)
	b = appendString(b, 2, m.Name)
	b = appendString(b, 3, m.Email)
	b = appendString(b, 4, m.Password)
	b = appendString(b, 5, m.Specialization)
	b = appendInt64(b, 6, m.Experience)
	b = appendString(b, 7, m.ClinicLocation)
	return b, nil
}

func (m *RegisterRequest) Unmarshal(b []byte) error {
	*m = RegisterRequest{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readString(typ, b, &m.Role)
		case 2:
			return readString(typ, b, &m.Name)
		case 3:
			return readString(typ, b, &m.Email)
		case 4:
			return readString(typ, b, &m.Password)
		case 5:
			return readString(typ, b, &m.Specialization)
		case 6:
			return readInt64(typ, b, &m.Experience)
		case 7:
			return readString(typ, b, &m.ClinicLocation)
		}
		return 0
	})
}

type LoginRequest struct {
	Role     string // 1
	Email    string // 2
	Password string // 3
}

func (m *LoginRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Role)
	b = appendString(b, 2, m.Email)
	b = appendString(b, 3, m.Password)
	return b, nil
}

func (m *LoginRequest) Unmarshal(b []byte) error {
	*m = LoginRequest{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readString(typ, b, &m.Role)
		case 2:
			return readString(typ, b, &m.Email)
		case 3:
			return readString(typ, b, &m.Password)
		}
		return 0
	})
}

type RefreshRequest struct {
	RefreshToken string // 1
}

func (m *RefreshRequest) Marshal() ([]byte, error) {
	return appendString(nil, 1, m.RefreshToken), nil
}

func (m *RefreshRequest) Unmarshal(b []byte) error {
	*m = RefreshRequest{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 {
			return readString(typ, b, &m.RefreshToken)
		}
		return 0
	})
}

type AuthResponse struct {
	AccountId    int64  // 1
	Role         string // 2
	Name         string // 3
	AccessToken  string // 4
	RefreshToken string // 5
}

func (m *AuthResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendInt64(b, 1, m.AccountId)
	b = appendString(b, 2, m.Role)
	b = appendString(b, 3, m.Name)
	b = appendString(b, 4, m.AccessToken)
	b = appendString(b, 5, m.RefreshToken)
	return b, nil
}

func (m *AuthResponse) Unmarshal(b []byte) error {
	*m = AuthResponse{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readInt64(typ, b, &m.AccountId)
		case 2:
			return readString(typ, b, &m.Role)
		case 3:
			return readString(typ, b, &m.Name)
		case 4:
			return readString(typ, b, &m.AccessToken)
		case 5:
			return readString(typ, b, &m.RefreshToken)
		}
		return 0
	})
}

// appointments

type CreateAppointmentRequest struct {
	UserId   int64  // 1, optional: defaults to the caller
	WorkerId int64  // 2
	Name     string // 3
	Reason   string // 4
	Date     string // 5
	Modality string // 6
}

func (m *CreateAppointmentRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendInt64(b, 1, m.UserId)
	b = appendInt64(b, 2, m.WorkerId)
	b = appendString(b, 3, m.Name)
	b = appendString(b, 4, m.Reason)
	b = appendString(b, 5, m.Date)
	b = appendString(b, 6, m.Modality)
	return b, nil
}

func (m *CreateAppointmentRequest) Unmarshal(b []byte) error {
	*m = CreateAppointmentRequest{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readInt64(typ, b, &m.UserId)
		case 2:
			return readInt64(typ, b, &m.WorkerId)
		case 3:
			return readString(typ, b, &m.Name)
		case 4:
			return readString(typ, b, &m.Reason)
		case 5:
			return readString(typ, b, &m.Date)
		case 6:
			return readString(typ, b, &m.Modality)
		}
		return 0
	})
}

// AppointmentRef names one appointment. Used by Get, Start, Complete and
// Cancel.
type AppointmentRef struct {
	Id int64 // 1
}

func (m *AppointmentRef) Marshal() ([]byte, error) {
	return appendInt64(nil, 1, m.Id), nil
}

func (m *AppointmentRef) Unmarshal(b []byte) error {
	*m = AppointmentRef{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 {
			return readInt64(typ, b, &m.Id)
		}
		return 0
	})
}

type RespondRequest struct {
	Id       int64  // 1
	Decision string // 2, "accept" or "reject"
}

func (m *RespondRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendInt64(b, 1, m.Id)
	b = appendString(b, 2, m.Decision)
	return b, nil
}

func (m *RespondRequest) Unmarshal(b []byte) error {
	*m = RespondRequest{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readInt64(typ, b, &m.Id)
		case 2:
			return readString(typ, b, &m.Decision)
		}
		return 0
	})
}

type AppointmentResponse struct {
	Appointment *Appointment // 1
}

func (m *AppointmentResponse) Marshal() ([]byte, error) {
	if m.Appointment == nil {
		return nil, nil
	}
	inner, _ := m.Appointment.Marshal()
	return appendMessage(nil, 1, inner), nil
}

func (m *AppointmentResponse) Unmarshal(b []byte) error {
	*m = AppointmentResponse{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num != 1 {
			return 0
		}
		return readBytes(typ, b, func(v []byte) error {
			m.Appointment = &Appointment{}
			return m.Appointment.Unmarshal(v)
		})
	})
}

// ListAppointmentsRequest is empty: the caller's token says whose list it is.
type ListAppointmentsRequest struct{}

func (m *ListAppointmentsRequest) Marshal() ([]byte, error) { return nil, nil }

func (m *ListAppointmentsRequest) Unmarshal(b []byte) error {
	return decode(b, func(protowire.Number, protowire.Type, []byte) int { return 0 })
}

type ListAppointmentsResponse struct {
	Appointments []*Appointment // 1
}

func (m *ListAppointmentsResponse) Marshal() ([]byte, error) {
	var b []byte
	for _, a := range m.Appointments {
		inner, _ := a.Marshal()
		b = appendMessage(b, 1, inner)
	}
	return b, nil
}

func (m *ListAppointmentsResponse) Unmarshal(b []byte) error {
	*m = ListAppointmentsResponse{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num != 1 {
			return 0
		}
		return readBytes(typ, b, func(v []byte) error {
			a := &Appointment{}
			if err := a.Unmarshal(v); err != nil {
				return err
			}
			m.Appointments = append(m.Appointments, a)
			return nil
		})
	})
}

// chat

type SendMessageRequest struct {
	AppointmentId int64  // 1
	Body          string // 2
}

func (m *SendMessageRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendInt64(b, 1, m.AppointmentId)
	b = appendString(b, 2, m.Body)
	return b, nil
}

func (m *SendMessageRequest) Unmarshal(b []byte) error {
	*m = SendMessageRequest{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readInt64(typ, b, &m.AppointmentId)
		case 2:
			return readString(typ, b, &m.Body)
		}
		return 0
	})
}

type SendMessageResponse struct {
	Message *ChatMessage // 1
}

func (m *SendMessageResponse) Marshal() ([]byte, error) {
	if m.Message == nil {
		return nil, nil
	}
	inner, _ := m.Message.Marshal()
	return appendMessage(nil, 1, inner), nil
}

func (m *SendMessageResponse) Unmarshal(b []byte) error {
	*m = SendMessageResponse{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num != 1 {
			return 0
		}
		return readBytes(typ, b, func(v []byte) error {
			m.Message = &ChatMessage{}
			return m.Message.Unmarshal(v)
		})
	})
}

type ListMessagesRequest struct {
	AppointmentId int64 // 1
}

func (m *ListMessagesRequest) Marshal() ([]byte, error) {
	return appendInt64(nil, 1, m.AppointmentId), nil
}

func (m *ListMessagesRequest) Unmarshal(b []byte) error {
	*m = ListMessagesRequest{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 {
			return readInt64(typ, b, &m.AppointmentId)
		}
		return 0
	})
}

type ListMessagesResponse struct {
	Messages []*ChatMessage // 1
}

func (m *ListMessagesResponse) Marshal() ([]byte, error) {
	var b []byte
	for _, msg := range m.Messages {
		inner, _ := msg.Marshal()
		b = appendMessage(b, 1, inner)
	}
	return b, nil
}

func (m *ListMessagesResponse) Unmarshal(b []byte) error {
	*m = ListMessagesResponse{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num != 1 {
			return 0
		}
		return readBytes(typ, b, func(v []byte) error {
			msg := &ChatMessage{}
			if err := msg.Unmarshal(v); err != nil {
				return err
			}
			m.Messages = append(m.Messages, msg)
			return nil
		})
	})
}
