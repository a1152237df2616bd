package httpapi

import (
	"context"
	"net/http"

	"consult-broker/internal/guard"
	"consult-broker/internal/identity"
	"consult-broker/internal/lifecycle"
	"consult-broker/internal/model"
	"consult-broker/internal/service"
)

func (a *api) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	sess, err := a.ident.Register(r.Context(), identity.RegisterInput{
		Role:           req.Role,
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		Specialization: req.Specialization,
		Experience:     req.Experience,
		ClinicLocation: req.ClinicLocation,
	})
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAuthResponse(sess))
}

func (a *api) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	sess, err := a.ident.Login(r.Context(), req.Role, req.Email, req.Password)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(sess))
}

func (a *api) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	sess, err := a.ident.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(sess))
}

func (a *api) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	_, claim := claimFrom(r)
	appt, err := a.svc.CreateAppointment(r.Context(), claim, lifecycle.CreateInput{
		UserID:   req.UserID,
		WorkerID: req.WorkerID,
		Name:     req.Name,
		Reason:   req.Reason,
		Date:     req.Date,
		Modality: req.Modality,
	})
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAppointmentJSON(appt))
}

func (a *api) listAppointments(w http.ResponseWriter, r *http.Request) {
	actor, _ := claimFrom(r)
	apts, err := a.svc.ListAppointmentsFor(r.Context(), actor)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	out := make([]appointmentJSON, len(apts))
	for i := range apts {
		out[i] = toAppointmentJSON(&apts[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": out})
}

func (a *api) getAppointment(w http.ResponseWriter, r *http.Request) {
	a.byID(a.svc.GetAppointment)(w, r)
}

func (a *api) respond(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	var req respondRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	_, claim := claimFrom(r)
	appt, err := a.svc.RespondToAppointment(r.Context(), claim, id, service.Decision(req.Decision))
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentJSON(appt))
}

// byID adapts a coordinator operation on one appointment to a handler.
func (a *api) byID(op func(context.Context, guard.Claim, int64) (*model.Appointment, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, a.log, err)
			return
		}
		_, claim := claimFrom(r)
		appt, err := op(r.Context(), claim, id)
		if err != nil {
			writeError(w, r, a.log, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentJSON(appt))
	}
}

func (a *api) sendMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	var req sendMessageRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	_, claim := claimFrom(r)
	m, err := a.svc.SendMessage(r.Context(), claim, id, req.Body)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMessageJSON(m))
}

func (a *api) listMessages(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	_, claim := claimFrom(r)
	msgs, err := a.svc.ListMessages(r.Context(), claim, id)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	out := make([]messageJSON, len(msgs))
	for i := range msgs {
		out[i] = toMessageJSON(&msgs[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": out})
}
