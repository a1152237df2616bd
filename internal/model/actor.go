package model

import (
	"errors"
	"fmt"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleWorker Role = "worker"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleWorker
}

var (
	ErrUnknownRole = errors.New("unknown role")
	ErrBadActorID  = errors.New("actor id must be positive")
)

// Actor is a resolved caller: either a user or a worker, never both.
// The zero value is not a valid actor.
type Actor struct {
	role Role
	id   int64
}

func UserActor(id int64) Actor   { return Actor{role: RoleUser, id: id} }
func WorkerActor(id int64) Actor { return Actor{role: RoleWorker, id: id} }

// ParseActor builds an Actor from an untrusted role string and id.
func ParseActor(role string, id int64) (Actor, error) {
	r := Role(role)
	if !r.Valid() {
		return Actor{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	if id <= 0 {
		return Actor{}, ErrBadActorID
	}
	return Actor{role: r, id: id}, nil
}

func (a Actor) Role() Role  { return a.role }
func (a Actor) ID() int64   { return a.id }
func (a Actor) Valid() bool { return a.role.Valid() && a.id > 0 }

// Owns reports whether a is the party of appt named by its role.
func (a Actor) Owns(appt *Appointment) bool {
	switch a.role {
	case RoleUser:
		return appt.UserID == a.id
	case RoleWorker:
		return appt.WorkerID == a.id
	}
	return false
}

func (a Actor) String() string {
	return fmt.Sprintf("%s:%d", a.role, a.id)
}
