package brokerv1

import "google.golang.org/protobuf/encoding/protowire"

type Worker struct {
	Id             int64   // 1
	Name           string  // 2
	Specialization string  // 3
	Experience     int64   // 4
	ClinicLocation string  // 5
	Rating         float64 // 6
}

func (m *Worker) Marshal() ([]byte, error) {
	var b []byte
	b = appendInt64(b, 1, m.Id)
	b = appendString(b, 2, m.Name)
	b = appendString(b, 3, m.Specialization)
	b = appendInt64(b, 4, m.Experience)
	b = appendString(b, 5, m.ClinicLocation)
	b = appendDouble(b, 6, m.Rating)
	return b, nil
}

func (m *Worker) Unmarshal(b []byte) error {
	*m = Worker{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readInt64(typ, b, &m.Id)
		case 2:
			return readString(typ, b, &m.Name)
		case 3:
			return readString(typ, b, &m.Specialization)
		case 4:
			return readInt64(typ, b, &m.Experience)
		case 5:
			return readString(typ, b, &m.ClinicLocation)
		case 6:
			return readDouble(typ, b, &m.Rating)
		}
		return 0
	})
}

// ListWorkersRequest with both fields empty lists every worker by name.
type ListWorkersRequest struct {
	Specialization string // 1
	Query          string // 2
}

func (m *ListWorkersRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Specialization)
	b = appendString(b, 2, m.Query)
	return b, nil
}

func (m *ListWorkersRequest) Unmarshal(b []byte) error {
	*m = ListWorkersRequest{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readString(typ, b, &m.Specialization)
		case 2:
			return readString(typ, b, &m.Query)
		}
		return 0
	})
}

type ListWorkersResponse struct {
	Workers []*Worker // 1
}

func (m *ListWorkersResponse) Marshal() ([]byte, error) {
	var b []byte
	for _, w := range m.Workers {
		inner, _ := w.Marshal()
		b = appendMessage(b, 1, inner)
	}
	return b, nil
}

func (m *ListWorkersResponse) Unmarshal(b []byte) error {
	*m = ListWorkersResponse{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num != 1 {
			return 0
		}
		return readBytes(typ, b, func(v []byte) error {
			w := &Worker{}
			if err := w.Unmarshal(v); err != nil {
				return err
			}
			m.Workers = append(m.Workers, w)
			return nil
		})
	})
}

type ListSpecializationsRequest struct{}

func (m *ListSpecializationsRequest) Marshal() ([]byte, error) { return nil, nil }

func (m *ListSpecializationsRequest) Unmarshal(b []byte) error {
	return decode(b, func(protowire.Number, protowire.Type, []byte) int { return 0 })
}

type ListSpecializationsResponse struct {
	Specializations []string // 1
}

func (m *ListSpecializationsResponse) Marshal() ([]byte, error) {
	var b []byte
	for _, s := range m.Specializations {
		// repeated strings keep empty elements
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, s)
	}
	return b, nil
}

func (m *ListSpecializationsResponse) Unmarshal(b []byte) error {
	*m = ListSpecializationsResponse{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num != 1 {
			return 0
		}
		var s string
		n := readString(typ, b, &s)
		if n > 0 {
			m.Specializations = append(m.Specializations, s)
		}
		return n
	})
}

// Slot is a time a worker offers. SetAvailability and RemoveAvailability
// take a Slot and ignore WorkerId: workers only manage their own calendar.
type Slot struct {
	WorkerId int64  // 1
	Date     string // 2, YYYY-MM-DD
	TimeSlot string // 3, HH:MM
}

func (m *Slot) Marshal() ([]byte, error) {
	var b []byte
	b = appendInt64(b, 1, m.WorkerId)
	b = appendString(b, 2, m.Date)
	b = appendString(b, 3, m.TimeSlot)
	return b, nil
}

func (m *Slot) Unmarshal(b []byte) error {
	*m = Slot{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readInt64(typ, b, &m.WorkerId)
		case 2:
			return readString(typ, b, &m.Date)
		case 3:
			return readString(typ, b, &m.TimeSlot)
		}
		return 0
	})
}

type RemoveAvailabilityResponse struct{}

func (m *RemoveAvailabilityResponse) Marshal() ([]byte, error) { return nil, nil }

func (m *RemoveAvailabilityResponse) Unmarshal(b []byte) error {
	return decode(b, func(protowire.Number, protowire.Type, []byte) int { return 0 })
}

type ListAvailabilityRequest struct {
	WorkerId int64  // 1
	Date     string // 2, optional
}

func (m *ListAvailabilityRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendInt64(b, 1, m.WorkerId)
	b = appendString(b, 2, m.Date)
	return b, nil
}

func (m *ListAvailabilityRequest) Unmarshal(b []byte) error {
	*m = ListAvailabilityRequest{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readInt64(typ, b, &m.WorkerId)
		case 2:
			return readString(typ, b, &m.Date)
		}
		return 0
	})
}

type ListAvailabilityResponse struct {
	Slots []*Slot // 1
}

func (m *ListAvailabilityResponse) Marshal() ([]byte, error) {
	var b []byte
	for _, s := range m.Slots {
		inner, _ := s.Marshal()
		b = appendMessage(b, 1, inner)
	}
	return b, nil
}

func (m *ListAvailabilityResponse) Unmarshal(b []byte) error {
	*m = ListAvailabilityResponse{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num != 1 {
			return 0
		}
		return readBytes(typ, b, func(v []byte) error {
			s := &Slot{}
			if err := s.Unmarshal(v); err != nil {
				return err
			}
			m.Slots = append(m.Slots, s)
			return nil
		})
	})
}
