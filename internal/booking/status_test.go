package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/hotel-booking/internal/model"
)

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    model.BookingStatus
		to      model.BookingStatus
		actor   model.Role
		allowed bool
	}{
		{"owner confirms pending", model.StatusPending, model.StatusConfirmed, model.RoleOwner, true},
		{"admin confirms pending", model.StatusPending, model.StatusConfirmed, model.RoleAdmin, true},
		{"client cannot confirm", model.StatusPending, model.StatusConfirmed, model.RoleClient, false},
		{"client cancels pending", model.StatusPending, model.StatusCanceled, model.RoleClient, true},
		{"owner cancels pending", model.StatusPending, model.StatusCanceled, model.RoleOwner, true},
		{"client cannot cancel confirmed", model.StatusConfirmed, model.StatusCanceled, model.RoleClient, false},
		{"owner cancels confirmed", model.StatusConfirmed, model.StatusCanceled, model.RoleOwner, true},
		{"admin cancels checked in", model.StatusCheckedIn, model.StatusCanceled, model.RoleAdmin, true},
		{"owner checks in", model.StatusConfirmed, model.StatusCheckedIn, model.RoleOwner, true},
		{"owner completes", model.StatusCheckedIn, model.StatusCompleted, model.RoleOwner, true},
		{"cannot skip confirmation", model.StatusPending, model.StatusCheckedIn, model.RoleAdmin, false},
		{"cannot move backwards", model.StatusCheckedIn, model.StatusConfirmed, model.RoleAdmin, false},
		{"completed is terminal", model.StatusCompleted, model.StatusConfirmed, model.RoleOwner, false},
		{"completed cannot be canceled", model.StatusCompleted, model.StatusCanceled, model.RoleAdmin, false},
		{"canceled is terminal", model.StatusCanceled, model.StatusPending, model.RoleAdmin, false},
		{"same state is rejected", model.StatusPending, model.StatusPending, model.RoleAdmin, false},
		{"unknown target", model.StatusPending, model.BookingStatus("archived"), model.RoleAdmin, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransition(tt.from, tt.to, tt.actor)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	roles := []model.Role{model.RoleClient, model.RoleOwner, model.RoleAdmin}
	for _, from := range Statuses() {
		if !IsTerminal(from) {
			continue
		}
		for _, r := range roles {
			assert.Empty(t, AllowedTransitions(from, r), "%s as %s", from, r)
		}
	}
}

func TestAllowedTransitions(t *testing.T) {
	assert.Equal(t,
		[]model.BookingStatus{model.StatusConfirmed, model.StatusCanceled},
		AllowedTransitions(model.StatusPending, model.RoleOwner))
	assert.Equal(t,
		[]model.BookingStatus{model.StatusCanceled},
		AllowedTransitions(model.StatusPending, model.RoleClient))
	assert.Empty(t, AllowedTransitions(model.StatusConfirmed, model.RoleClient))
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus("checked_in")
	assert.True(t, ok)
	assert.Equal(t, model.StatusCheckedIn, st)

	_, ok = ParseStatus("CHECKED_IN")
	assert.False(t, ok)
}
