package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit/service-booking/pkg/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func availableItem(owner uuid.UUID) ItemSnapshot {
	return ItemSnapshot{ID: uuid.New(), OwnerID: owner, Name: "drill", Available: true}
}

func TestNewBooking_StartsWaiting(t *testing.T) {
	owner, booker := uuid.New(), uuid.New()
	item := availableItem(owner)

	bk, err := NewBooking(item, booker, testNow.Add(time.Hour), testNow.Add(2*time.Hour), testNow)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, bk.ID())
	assert.Equal(t, StatusWaiting, bk.Status())
	assert.Equal(t, item.ID, bk.ItemID())
	assert.Equal(t, owner, bk.OwnerID())
	assert.Equal(t, booker, bk.BookerID())
	assert.Equal(t, int64(1), bk.Version())
	assert.Equal(t, testNow, bk.CreatedAt())
}

func TestNewBooking_PreconditionOrder(t *testing.T) {
	owner, booker := uuid.New(), uuid.New()
	start, end := testNow.Add(time.Hour), testNow.Add(2*time.Hour)

	unavailable := availableItem(owner)
	unavailable.Available = false

	tests := []struct {
		name    string
		item    ItemSnapshot
		booker  uuid.UUID
		start   time.Time
		end     time.Time
		wantErr error
	}{
		{name: "unavailable wins over self booking", item: unavailable, booker: owner, start: end, end: start, wantErr: ErrItemNotAvailable},
		{name: "self booking wins over bad interval", item: availableItem(owner), booker: owner, start: end, end: start, wantErr: ErrSelfBooking},
		{name: "self booking with valid interval", item: availableItem(owner), booker: owner, start: start, end: end, wantErr: ErrSelfBooking},
		{name: "end before start", item: availableItem(owner), booker: booker, start: end, end: start, wantErr: ErrEndBeforeStart},
		{name: "start equals end", item: availableItem(owner), booker: booker, start: start, end: start, wantErr: ErrStartEqualsEnd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bk, err := NewBooking(tt.item, tt.booker, tt.start, tt.end, testNow)
			assert.Nil(t, bk)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewBooking_RequiresIDs(t *testing.T) {
	_, err := NewBooking(ItemSnapshot{Available: true}, uuid.New(), testNow, testNow.Add(time.Hour), testNow)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	_, err = NewBooking(availableItem(uuid.New()), uuid.Nil, testNow, testNow.Add(time.Hour), testNow)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestBookingStatus_StateMachine(t *testing.T) {
	assert.True(t, StatusWaiting.CanTransitionTo(StatusApproved))
	assert.True(t, StatusWaiting.CanTransitionTo(StatusRejected))
	assert.True(t, StatusWaiting.CanTransitionTo(StatusCanceled))
	assert.False(t, StatusWaiting.IsTerminal())

	for _, s := range []BookingStatus{StatusApproved, StatusRejected, StatusCanceled} {
		assert.True(t, s.IsTerminal(), s)
		assert.False(t, s.CanTransitionTo(StatusWaiting), s)
	}

	_, err := ParseBookingStatus("LOST")
	assert.Error(t, err)
	st, err := ParseBookingStatus("APPROVED")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, st)
}

func TestBooking_VisibilityAndShort(t *testing.T) {
	owner, booker := uuid.New(), uuid.New()
	bk, err := NewBooking(availableItem(owner), booker, testNow.Add(time.Hour), testNow.Add(2*time.Hour), testNow)
	require.NoError(t, err)

	assert.True(t, bk.IsVisibleTo(owner))
	assert.True(t, bk.IsVisibleTo(booker))
	assert.False(t, bk.IsVisibleTo(uuid.New()))

	short := bk.Short()
	assert.Equal(t, bk.ID(), short.ID)
	assert.Equal(t, booker, short.BookerID)
	assert.Equal(t, bk.Start(), short.Start)
	assert.Equal(t, bk.End(), short.End)
}
