package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) ListingCreated(kind string) { m.Called(kind) }
func (m *MockRecorder) ListingDeleted(kind string, soft bool) { m.Called(kind, soft) }
func (m *MockRecorder) BookingAttempt(result string, tickets int) { m.Called(result, tickets) }
func (m *MockRecorder) UserRegistered() { m.Called() }
func (m *MockRecorder) UserDecision(decision string) { m.Called(decision) }
func (m *MockRecorder) NotificationSimulated(channel string) { m.Called(channel) }

func seedEvent(store *testutil.EventStore, capacity, booked int, visible bool) *domain.Event {
	return store.Put(&domain.Event{
		Base: domain.Base{
			ID:         primitive.NewObjectID(),
			Images:     []string{},
			IsApproved: visible,
			IsActive:   true,
			CreatedAt:  fixedNow,
			UpdatedAt:  fixedNow,
		},
		Title:           "Onam Sadhya",
		Category:        "food",
		Venue:           domain.Venue{City: "Kottayam"},
		StartDate:       fixedNow.Add(72 * time.Hour),
		Capacity:        capacity,
		CurrentBookings: booked,
		Organizer:       primitive.NewObjectID(),
	})
}

func TestEventUsecase_Book(t *testing.T) {
	store := testutil.NewEventStore()
	recorder := new(MockRecorder)
	publisher := &testutil.Publisher{}
	uc := NewEventUsecase(store, Deps{Storage: testutil.NewFileStore(), Metrics: recorder, Publisher: publisher})

	event := seedEvent(store, 10, 9, true)

	t.Run("exceeding capacity is refused", func(t *testing.T) {
		recorder.On("BookingAttempt", "capacity_exceeded", 2).Once()

		_, err := uc.Book(context.Background(), event.ID.Hex(), 2)
		assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	})

	t.Run("last seat is booked", func(t *testing.T) {
		recorder.On("BookingAttempt", "success", 1).Once()

		booking, err := uc.Book(context.Background(), event.ID.Hex(), 1)
		require.NoError(t, err)
		assert.Equal(t, 10, booking.Event.CurrentBookings)
		assert.Equal(t, 0, booking.Remaining)
		assert.Contains(t, publisher.Published(), domain.SubjectEventBooked)
	})

	t.Run("sold out event refuses further bookings", func(t *testing.T) {
		recorder.On("BookingAttempt", "capacity_exceeded", 1).Once()

		_, err := uc.Book(context.Background(), event.ID.Hex(), 1)
		assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	})

	recorder.AssertExpectations(t)
}

func TestEventUsecase_BookRejectsInvalidRequests(t *testing.T) {
	store := testutil.NewEventStore()
	uc := NewEventUsecase(store, Deps{Storage: testutil.NewFileStore()})
	hidden := seedEvent(store, 10, 0, false)

	_, err := uc.Book(context.Background(), hidden.ID.Hex(), 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Book(context.Background(), "zzz", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Book(context.Background(), primitive.NewObjectID().Hex(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Book(context.Background(), hidden.ID.Hex(), 1)
	assert.ErrorIs(t, err, domain.ErrEventUnavailable)
}

func TestEventUsecase_ConcurrentBookingsNeverOversell(t *testing.T) {
	store := testutil.NewEventStore()
	uc := NewEventUsecase(store, Deps{Storage: testutil.NewFileStore()})
	event := seedEvent(store, 5, 0, true)

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.Book(context.Background(), event.ID.Hex(), 1); err == nil {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), succeeded.Load())
	stored, err := store.FindByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.CurrentBookings)
}

func TestEventUsecase_CapacityCannotDropBelowBookings(t *testing.T) {
	store := testutil.NewEventStore()
	uc := NewEventUsecase(store, Deps{Storage: testutil.NewFileStore()})
	event := seedEvent(store, 10, 6, true)
	organizer := &domain.Identity{UserID: event.Organizer, Role: domain.RoleUser}

	_, err := uc.Update(context.Background(), organizer, event.ID.Hex(), map[string]any{"capacity": 5}, nil)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "capacity")

	updated, err := uc.Update(context.Background(), organizer, event.ID.Hex(), map[string]any{"capacity": 6, "currentBookings": 0}, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, updated.CurrentBookings)
}

func TestEventStore_UpdateKeepsBookingCounter(t *testing.T) {
	store := testutil.NewEventStore()
	event := seedEvent(store, 10, 4, true)

	stale, err := store.FindByID(context.Background(), event.ID)
	require.NoError(t, err)
	_, err = store.Book(context.Background(), event.ID, 5)
	require.NoError(t, err)

	stale.Capacity = 8
	var verr *domain.ValidationError
	require.ErrorAs(t, store.Update(context.Background(), stale), &verr)
	assert.Contains(t, verr.Fields, "capacity")

	stale.Capacity = 9
	require.NoError(t, store.Update(context.Background(), stale))
	stored, err := store.FindByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, stored.Capacity)
	assert.Equal(t, 9, stored.CurrentBookings)
}
