package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"consult-broker/internal/model"
)

func (a *api) listWorkers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	workers, err := a.dir.ListWorkers(r.Context(), model.WorkerFilter{
		Specialization: q.Get("specialization"),
		Query:          q.Get("q"),
	})
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	out := make([]workerJSON, len(workers))
	for i := range workers {
		out[i] = toWorkerJSON(&workers[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"workers": out})
}

func (a *api) listSpecializations(w http.ResponseWriter, r *http.Request) {
	specs, err := a.dir.Specializations(r.Context())
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"specializations": specs})
}

func (a *api) listAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "worker")
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	slots, err := a.dir.Availability(r.Context(), id, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	out := make([]slotJSON, len(slots))
	for i := range slots {
		out[i] = toSlotJSON(&slots[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": out})
}

func (a *api) setAvailability(w http.ResponseWriter, r *http.Request) {
	var req slotRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	actor, _ := claimFrom(r)
	slot, err := a.dir.SetAvailability(r.Context(), actor, req.Date, req.TimeSlot)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSlotJSON(slot))
}

func (a *api) removeAvailability(w http.ResponseWriter, r *http.Request) {
	actor, _ := claimFrom(r)
	err := a.dir.RemoveAvailability(r.Context(), actor, chi.URLParam(r, "date"), chi.URLParam(r, "slot"))
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
