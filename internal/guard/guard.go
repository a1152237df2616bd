// Package guard decides who may see or act on an appointment. It never looks
// at status; the lifecycle engine and the message channel gate on that.
package guard

import (
	"context"
	"errors"

	"consult-broker/internal/apperr"
	"consult-broker/internal/model"
	"consult-broker/internal/store"
)

// Claim is an identity as asserted by a caller, before it is checked.
type Claim struct {
	Role string
	ID   int64
}

func ClaimOf(a model.Actor) Claim {
	return Claim{Role: string(a.Role()), ID: a.ID()}
}

// Resolve turns a claim into an Actor. Malformed claims are BadRequest.
func Resolve(c Claim) (model.Actor, error) {
	a, err := model.ParseActor(c.Role, c.ID)
	if err != nil {
		return model.Actor{}, apperr.BadRequest("%v", err)
	}
	return a, nil
}

// Authorize allows the claim iff it names the appointment's user (as user)
// or its worker (as worker).
func Authorize(appt *model.Appointment, role string, id int64) error {
	actor, err := Resolve(Claim{Role: role, ID: id})
	if err != nil {
		return err
	}
	if !actor.Owns(appt) {
		return apperr.Forbidden("%s is not a party to appointment %d", actor, appt.ID)
	}
	return nil
}

type Guard struct {
	store store.AppointmentStore
}

func New(st store.AppointmentStore) *Guard {
	return &Guard{store: st}
}

// Load fetches the appointment and authorizes c against it.
func (g *Guard) Load(ctx context.Context, id int64, c Claim) (*model.Appointment, error) {
	appt, err := g.store.GetAppointment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("appointment %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	if err := Authorize(appt, c.Role, c.ID); err != nil {
		return nil, err
	}
	return appt, nil
}
