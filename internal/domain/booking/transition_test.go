package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide_Table(t *testing.T) {
	tests := []struct {
		role    Role
		current BookingStatus
		approve bool
		want    BookingStatus
		wantErr error
	}{
		{RoleBooker, StatusWaiting, true, "", ErrBookerCannotApprove},
		{RoleBooker, StatusCanceled, true, "", ErrBookerCannotApprove},
		{RoleBooker, StatusWaiting, false, StatusCanceled, nil},
		{RoleBooker, StatusCanceled, false, "", ErrBookingCanceled},
		{RoleBooker, StatusApproved, false, "", ErrDecisionAlreadyMade},
		{RoleBooker, StatusRejected, false, "", ErrDecisionAlreadyMade},

		{RoleOwner, StatusWaiting, true, StatusApproved, nil},
		{RoleOwner, StatusWaiting, false, StatusRejected, nil},
		{RoleOwner, StatusApproved, true, "", ErrDecisionAlreadyMade},
		{RoleOwner, StatusApproved, false, "", ErrDecisionAlreadyMade},
		{RoleOwner, StatusRejected, true, "", ErrDecisionAlreadyMade},
		{RoleOwner, StatusCanceled, true, "", ErrBookingCanceled},
		{RoleOwner, StatusCanceled, false, "", ErrBookingCanceled},

		{RoleStranger, StatusWaiting, true, "", ErrOnlyOwnerMayApprove},
		{RoleStranger, StatusWaiting, false, "", ErrOnlyOwnerMayApprove},
		{RoleStranger, StatusApproved, true, "", ErrOnlyOwnerMayApprove},
		{RoleStranger, StatusCanceled, false, "", ErrBookingCanceled},
	}

	for _, tt := range tests {
		got, err := Decide(tt.role, tt.current, tt.approve)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, "role=%d current=%s approve=%v", tt.role, tt.current, tt.approve)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "role=%d current=%s approve=%v", tt.role, tt.current, tt.approve)
	}
}

func TestDecide_NeverReturnsToWaiting(t *testing.T) {
	for _, role := range []Role{RoleBooker, RoleOwner, RoleStranger} {
		for _, current := range []BookingStatus{StatusWaiting, StatusApproved, StatusRejected, StatusCanceled} {
			for _, approve := range []bool{true, false} {
				next, err := Decide(role, current, approve)
				if err != nil {
					continue
				}
				assert.Equal(t, StatusWaiting, current, "only WAITING has outgoing transitions")
				assert.NotEqual(t, StatusWaiting, next)
			}
		}
	}
}

func TestBooking_RoleOf_BookerFirst(t *testing.T) {
	user := uuid.New()
	// Malformed data: the same user is booker and owner.
	bk := ReconstructBooking(uuid.New(), ItemSnapshot{ID: uuid.New(), OwnerID: user}, user,
		testNow, testNow.Add(time.Hour), StatusWaiting, 1, testNow, testNow)

	assert.Equal(t, RoleBooker, bk.RoleOf(user))
	assert.Equal(t, RoleStranger, bk.RoleOf(uuid.New()))
}

func TestBooking_Transition(t *testing.T) {
	owner, booker := uuid.New(), uuid.New()
	bk, err := NewBooking(availableItem(owner), booker, testNow.Add(time.Hour), testNow.Add(2*time.Hour), testNow)
	require.NoError(t, err)

	later := testNow.Add(time.Minute)
	require.NoError(t, bk.Transition(owner, true, later))
	assert.Equal(t, StatusApproved, bk.Status())
	assert.Equal(t, later, bk.UpdatedAt())

	assert.ErrorIs(t, bk.Transition(owner, false, later), ErrDecisionAlreadyMade)
	assert.ErrorIs(t, bk.Transition(uuid.New(), true, later), ErrOnlyOwnerMayApprove)
	assert.Equal(t, StatusApproved, bk.Status())
}
