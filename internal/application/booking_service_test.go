package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shareit/service-booking/internal/application"
	"github.com/shareit/service-booking/internal/clock"
	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit/service-booking/internal/domain/item"
	userDomain "github.com/shareit/service-booking/internal/domain/user"
	"github.com/shareit/service-booking/internal/testutil"
	"github.com/shareit/service-booking/pkg/domain"
	"github.com/shareit/service-booking/pkg/events"
)

type bookingFixture struct {
	store     *testutil.Store
	clock     *clock.Manual
	publisher *testutil.RecordingPublisher
	svc       *application.BookingService
	owner     *userDomain.User
	booker    *userDomain.User
	stranger  *userDomain.User
	item      *itemDomain.Item
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	store := testutil.NewStore()
	clk := clock.NewManual(testutil.BaseTime)
	pub := &testutil.RecordingPublisher{}

	f := &bookingFixture{
		store:     store,
		clock:     clk,
		publisher: pub,
		svc: application.NewBookingService(
			store.Bookings(), store.Users(), store.Items(), clk, pub, zap.NewNop(),
		),
	}
	f.owner = testutil.SeedUser(t, store, "Owner")
	f.booker = testutil.SeedUser(t, store, "Booker")
	f.stranger = testutil.SeedUser(t, store, "Stranger")
	f.item = testutil.SeedItem(t, store, f.owner.ID(), "Drill", true)
	return f
}

func (f *bookingFixture) book(t *testing.T, bookerID, itemID uuid.UUID, start, end time.Duration) *application.BookingDTO {
	t.Helper()
	now := f.clock.Now()
	dto, err := f.svc.CreateBooking(context.Background(), bookerID, application.CreateBookingRequest{
		ItemID: itemID,
		Start:  now.Add(start),
		End:    now.Add(end),
	})
	require.NoError(t, err)
	return dto
}

func (f *bookingFixture) list(t *testing.T, state string, p bookingDomain.Perspective, actor uuid.UUID, from, size int) []application.BookingDTO {
	t.Helper()
	dtos, err := f.svc.ListBookings(context.Background(), state, p, actor, from, size)
	require.NoError(t, err)
	return dtos
}

func ids(dtos []application.BookingDTO) []uuid.UUID {
	out := make([]uuid.UUID, len(dtos))
	for i, d := range dtos {
		out[i] = d.ID
	}
	return out
}

func TestCreateBooking_Waiting(t *testing.T) {
	f := newBookingFixture(t)

	dto := f.book(t, f.booker.ID(), f.item.ID(), time.Hour, 2*time.Hour)

	assert.Equal(t, "WAITING", dto.Status)
	assert.Equal(t, f.booker.ID(), dto.Booker.ID)
	assert.Equal(t, f.item.ID(), dto.Item.ID)
	assert.Equal(t, "Drill", dto.Item.Name)

	published := f.publisher.Events()
	require.Len(t, published, 1)
	assert.Equal(t, events.TopicBookingEvents, published[0].Topic)
	assert.Equal(t, events.BookingRequested, published[0].Event.Type)
	assert.Equal(t, dto.ID.String(), published[0].Key)

	var evt events.BookingRequestedEvent
	require.NoError(t, published[0].Event.ParseData(&evt))
	assert.Equal(t, f.owner.ID(), evt.OwnerID)
	assert.Equal(t, f.booker.ID(), evt.BookerID)
}

func TestCreateBooking_Preconditions(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	now := f.clock.Now()
	unavailable := testutil.SeedItem(t, f.store, f.owner.ID(), "Ladder", false)

	tests := []struct {
		name     string
		bookerID uuid.UUID
		itemID   uuid.UUID
		start    time.Time
		end      time.Time
		wantCode string
		wantErr  error
	}{
		{name: "unknown booker", bookerID: uuid.New(), itemID: uuid.New(), start: now, end: now, wantCode: domain.CodeNotFound},
		{name: "unknown item", bookerID: f.booker.ID(), itemID: uuid.New(), start: now, end: now, wantCode: domain.CodeNotFound},
		{name: "item unavailable", bookerID: f.owner.ID(), itemID: unavailable.ID(), start: now, end: now, wantErr: bookingDomain.ErrItemNotAvailable},
		{name: "own item", bookerID: f.owner.ID(), itemID: f.item.ID(), start: now.Add(2 * time.Hour), end: now.Add(time.Hour), wantErr: bookingDomain.ErrSelfBooking},
		{name: "end before start", bookerID: f.booker.ID(), itemID: f.item.ID(), start: now.Add(2 * time.Hour), end: now.Add(time.Hour), wantErr: bookingDomain.ErrEndBeforeStart},
		{name: "start equals end", bookerID: f.booker.ID(), itemID: f.item.ID(), start: now.Add(time.Hour), end: now.Add(time.Hour), wantErr: bookingDomain.ErrStartEqualsEnd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateBooking(ctx, tt.bookerID, application.CreateBookingRequest{
				ItemID: tt.itemID, Start: tt.start, End: tt.end,
			})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.Equal(t, tt.wantCode, domain.CodeOf(err))
			}
		})
	}

	all := f.list(t, "ALL", bookingDomain.PerspectiveOwner, f.owner.ID(), 0, 10)
	assert.Empty(t, all, "failed creations must not write")
	assert.Empty(t, f.publisher.Events())
}

func TestCreateBooking_UnknownBookerReportedBeforeUnknownItem(t *testing.T) {
	f := newBookingFixture(t)
	ghost := uuid.New()

	_, err := f.svc.CreateBooking(context.Background(), ghost, application.CreateBookingRequest{
		ItemID: uuid.New(), Start: f.clock.Now(), End: f.clock.Now().Add(time.Hour),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "User with id "+ghost.String())
}

func TestTransitionBooking_OwnerApprovesOnce(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	bk := f.book(t, f.booker.ID(), f.item.ID(), time.Hour, 2*time.Hour)

	approved, err := f.svc.TransitionBooking(ctx, bk.ID, f.owner.ID(), true)
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", approved.Status)

	for _, again := range []bool{true, false} {
		_, err = f.svc.TransitionBooking(ctx, bk.ID, f.owner.ID(), again)
		assert.ErrorIs(t, err, bookingDomain.ErrDecisionAlreadyMade)
	}

	assert.Equal(t, []string{events.BookingRequested, events.BookingApproved}, f.publisher.Types())
}

func TestTransitionBooking_OwnerRejects(t *testing.T) {
	f := newBookingFixture(t)
	bk := f.book(t, f.booker.ID(), f.item.ID(), time.Hour, 2*time.Hour)

	rejected, err := f.svc.TransitionBooking(context.Background(), bk.ID, f.owner.ID(), false)
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", rejected.Status)

	got := f.list(t, "REJECTED", bookingDomain.PerspectiveBooker, f.booker.ID(), 0, 10)
	assert.Equal(t, []uuid.UUID{bk.ID}, ids(got))
}

func TestTransitionBooking_BookerCancels(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	bk := f.book(t, f.booker.ID(), f.item.ID(), time.Hour, 2*time.Hour)

	_, err := f.svc.TransitionBooking(ctx, bk.ID, f.booker.ID(), true)
	assert.ErrorIs(t, err, bookingDomain.ErrBookerCannotApprove)

	canceled, err := f.svc.TransitionBooking(ctx, bk.ID, f.booker.ID(), false)
	require.NoError(t, err)
	assert.Equal(t, "CANCELED", canceled.Status)

	_, err = f.svc.TransitionBooking(ctx, bk.ID, f.owner.ID(), true)
	assert.ErrorIs(t, err, bookingDomain.ErrBookingCanceled)
	_, err = f.svc.TransitionBooking(ctx, bk.ID, f.booker.ID(), false)
	assert.ErrorIs(t, err, bookingDomain.ErrBookingCanceled)
	_, err = f.svc.TransitionBooking(ctx, bk.ID, f.stranger.ID(), false)
	assert.ErrorIs(t, err, bookingDomain.ErrBookingCanceled)

	assert.Equal(t, []string{events.BookingRequested, events.BookingCanceled}, f.publisher.Types())
}

func TestTransitionBooking_ThirdPartyAlwaysFails(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	bk := f.book(t, f.booker.ID(), f.item.ID(), time.Hour, 2*time.Hour)

	for _, approve := range []bool{true, false} {
		_, err := f.svc.TransitionBooking(ctx, bk.ID, f.stranger.ID(), approve)
		assert.ErrorIs(t, err, bookingDomain.ErrOnlyOwnerMayApprove)
		assert.Equal(t, domain.CodeInvalidBooking, domain.CodeOf(err))
	}

	got, err := f.svc.GetBooking(ctx, bk.ID, f.booker.ID())
	require.NoError(t, err)
	assert.Equal(t, "WAITING", got.Status)
}

func TestTransitionBooking_UnknownActorOrBooking(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	bk := f.book(t, f.booker.ID(), f.item.ID(), time.Hour, 2*time.Hour)

	_, err := f.svc.TransitionBooking(ctx, bk.ID, uuid.New(), true)
	assert.True(t, domain.IsNotFound(err))

	_, err = f.svc.TransitionBooking(ctx, uuid.New(), f.owner.ID(), true)
	assert.True(t, domain.IsNotFound(err))
}

func TestTransitionBooking_PublishFailureDoesNotFailOperation(t *testing.T) {
	f := newBookingFixture(t)
	bk := f.book(t, f.booker.ID(), f.item.ID(), time.Hour, 2*time.Hour)
	f.publisher.Err = testutil.ErrBrokerDown

	approved, err := f.svc.TransitionBooking(context.Background(), bk.ID, f.owner.ID(), true)
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", approved.Status)
}

func TestBookingService_NilPublisher(t *testing.T) {
	store := testutil.NewStore()
	owner := testutil.SeedUser(t, store, "Owner")
	booker := testutil.SeedUser(t, store, "Booker")
	item := testutil.SeedItem(t, store, owner.ID(), "Tent", true)
	svc := application.NewBookingService(store.Bookings(), store.Users(), store.Items(),
		clock.NewManual(testutil.BaseTime), nil, zap.NewNop())

	_, err := svc.CreateBooking(context.Background(), booker.ID(), application.CreateBookingRequest{
		ItemID: item.ID(),
		Start:  testutil.BaseTime.Add(time.Hour),
		End:    testutil.BaseTime.Add(2 * time.Hour),
	})
	require.NoError(t, err)
}

func TestGetBooking_Visibility(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	bk := f.book(t, f.booker.ID(), f.item.ID(), time.Hour, 2*time.Hour)

	for _, actor := range []uuid.UUID{f.booker.ID(), f.owner.ID()} {
		got, err := f.svc.GetBooking(ctx, bk.ID, actor)
		require.NoError(t, err)
		assert.Equal(t, bk.ID, got.ID)
	}

	_, err := f.svc.GetBooking(ctx, bk.ID, f.stranger.ID())
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Contains(t, err.Error(), "Booking with id")

	_, err = f.svc.GetBooking(ctx, bk.ID, uuid.New())
	assert.Contains(t, err.Error(), "User with id")
}

func TestListBookings_ApprovalScenario(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	bk := f.book(t, f.booker.ID(), f.item.ID(), time.Hour, 2*time.Hour)

	waiting := f.list(t, "WAITING", bookingDomain.PerspectiveBooker, f.booker.ID(), 0, 10)
	assert.Equal(t, []uuid.UUID{bk.ID}, ids(waiting))

	_, err := f.svc.TransitionBooking(ctx, bk.ID, f.owner.ID(), true)
	require.NoError(t, err)

	assert.Empty(t, f.list(t, "WAITING", bookingDomain.PerspectiveBooker, f.booker.ID(), 0, 10))
	all := f.list(t, "ALL", bookingDomain.PerspectiveOwner, f.owner.ID(), 0, 10)
	require.Len(t, all, 1)
	assert.Equal(t, "APPROVED", all[0].Status)
}

func TestListBookings_TimeElapses(t *testing.T) {
	f := newBookingFixture(t)
	bk := f.book(t, f.booker.ID(), f.item.ID(), 2*time.Second, 3*time.Second)

	assert.Equal(t, []uuid.UUID{bk.ID}, ids(f.list(t, "FUTURE", bookingDomain.PerspectiveBooker, f.booker.ID(), 0, 10)))
	assert.Empty(t, f.list(t, "PAST", bookingDomain.PerspectiveBooker, f.booker.ID(), 0, 10))

	f.clock.Advance(2500 * time.Millisecond)
	assert.Equal(t, []uuid.UUID{bk.ID}, ids(f.list(t, "CURRENT", bookingDomain.PerspectiveBooker, f.booker.ID(), 0, 10)))
	assert.Empty(t, f.list(t, "FUTURE", bookingDomain.PerspectiveBooker, f.booker.ID(), 0, 10))

	f.clock.Advance(time.Second)
	assert.Equal(t, []uuid.UUID{bk.ID}, ids(f.list(t, "PAST", bookingDomain.PerspectiveBooker, f.booker.ID(), 0, 10)))
	assert.Empty(t, f.list(t, "FUTURE", bookingDomain.PerspectiveBooker, f.booker.ID(), 0, 10))
	assert.Empty(t, f.list(t, "CURRENT", bookingDomain.PerspectiveBooker, f.booker.ID(), 0, 10))
}

func TestListBookings_OrderAndPaging(t *testing.T) {
	f := newBookingFixture(t)
	second := testutil.SeedItem(t, f.store, f.owner.ID(), "Saw", true)

	early := f.book(t, f.booker.ID(), f.item.ID(), time.Hour, 2*time.Hour)
	late := f.book(t, f.booker.ID(), f.item.ID(), 5*time.Hour, 6*time.Hour)
	tieA := f.book(t, f.booker.ID(), second.ID(), 3*time.Hour, 4*time.Hour)
	tieB := f.book(t, f.booker.ID(), f.item.ID(), 3*time.Hour, 5*time.Hour)

	all := f.list(t, "all", bookingDomain.PerspectiveBooker, f.booker.ID(), 0, 10)
	assert.Equal(t, []uuid.UUID{late.ID, tieA.ID, tieB.ID, early.ID}, ids(all))

	assert.Equal(t, []uuid.UUID{late.ID, tieA.ID}, ids(f.list(t, "ALL", bookingDomain.PerspectiveBooker, f.booker.ID(), 0, 2)))
	assert.Equal(t, []uuid.UUID{tieB.ID, early.ID}, ids(f.list(t, "ALL", bookingDomain.PerspectiveBooker, f.booker.ID(), 2, 2)))
	// from=3 is coerced to the page starting at 2.
	assert.Equal(t, []uuid.UUID{tieB.ID, early.ID}, ids(f.list(t, "ALL", bookingDomain.PerspectiveBooker, f.booker.ID(), 3, 2)))
	assert.Empty(t, f.list(t, "ALL", bookingDomain.PerspectiveBooker, f.booker.ID(), 4, 2))

	owner := f.list(t, "ALL", bookingDomain.PerspectiveOwner, f.owner.ID(), 0, 10)
	assert.Equal(t, ids(all), ids(owner))
	assert.Empty(t, f.list(t, "ALL", bookingDomain.PerspectiveOwner, f.booker.ID(), 0, 10))
}

func TestListBookings_InvalidArguments(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListBookings(ctx, "UNSUPPORTED_STATUS", bookingDomain.PerspectiveBooker, f.booker.ID(), 0, 10)
	assert.Equal(t, domain.CodeUnsupportedState, domain.CodeOf(err))
	assert.Contains(t, err.Error(), "Unknown state: UNSUPPORTED_STATUS")

	_, err = f.svc.ListBookings(ctx, "ALL", bookingDomain.PerspectiveBooker, f.booker.ID(), -1, 10)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	_, err = f.svc.ListBookings(ctx, "ALL", bookingDomain.PerspectiveBooker, f.booker.ID(), 0, 0)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	_, err = f.svc.ListBookings(ctx, "ALL", bookingDomain.PerspectiveBooker, uuid.New(), 0, 10)
	assert.True(t, domain.IsNotFound(err))
}
