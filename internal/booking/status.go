package booking

import (
	"github.com/iliyamo/hotel-booking/internal/model"
)

// transition is a single edge of the lifecycle together with the roles
// allowed to take it.
type transition struct {
	from, to model.BookingStatus
}

var staff = []model.Role{model.RoleOwner, model.RoleAdmin}

// transitions is the full lifecycle table.  Anything absent is illegal,
// which makes completed and canceled terminal.
var transitions = map[transition][]model.Role{
	{model.StatusPending, model.StatusCanceled}:    {model.RoleClient, model.RoleOwner, model.RoleAdmin},
	{model.StatusPending, model.StatusConfirmed}:   staff,
	{model.StatusConfirmed, model.StatusCheckedIn}: staff,
	{model.StatusCheckedIn, model.StatusCompleted}: staff,
	{model.StatusConfirmed, model.StatusCanceled}:  staff,
	{model.StatusCheckedIn, model.StatusCanceled}:  staff,
}

// statuses lists every state in lifecycle order.
var statuses = []model.BookingStatus{
	model.StatusPending,
	model.StatusConfirmed,
	model.StatusCheckedIn,
	model.StatusCompleted,
	model.StatusCanceled,
}

// Statuses returns all booking states in lifecycle order.
func Statuses() []model.BookingStatus {
	out := make([]model.BookingStatus, len(statuses))
	copy(out, statuses)
	return out
}

// ParseStatus validates a raw status value.
func ParseStatus(s string) (model.BookingStatus, bool) {
	for _, st := range statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// IsTerminal reports whether no transition can leave s.
func IsTerminal(s model.BookingStatus) bool {
	return s == model.StatusCompleted || s == model.StatusCanceled
}

// CheckTransition is the guard run before a status change is persisted.
// It returns nil when actor may move a booking from current to requested
// and an ErrInvalidTransition error otherwise.  Staying in the same state
// is not a transition.  Ownership (the client's own booking, the owner's
// own hotel) is checked by the caller.
func CheckTransition(current, requested model.BookingStatus, actor model.Role) error {
	if _, ok := ParseStatus(string(requested)); !ok {
		return newError(ErrInvalidTransition, "unknown status %q", requested)
	}
	roles, ok := transitions[transition{current, requested}]
	if !ok {
		return newError(ErrInvalidTransition, "cannot change status from %s to %s", current, requested)
	}
	for _, r := range roles {
		if r == actor {
			return nil
		}
	}
	return newError(ErrInvalidTransition, "role %s cannot change status from %s to %s", actor, current, requested)
}

// AllowedTransitions lists the states actor may move a booking to from
// current, in lifecycle order.
func AllowedTransitions(current model.BookingStatus, actor model.Role) []model.BookingStatus {
	var out []model.BookingStatus
	for _, st := range statuses {
		if CheckTransition(current, st, actor) == nil {
			out = append(out, st)
		}
	}
	return out
}
