package usecase

import (
	"context"
	"errors"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EventUsecase adds ticket booking to the event listing use case.
type EventUsecase struct {
	*ListingUsecase[domain.Event, *domain.Event]
	events domain.EventRepository
}

func NewEventUsecase(repo domain.EventRepository, deps Deps) *EventUsecase {
	return &EventUsecase{
		ListingUsecase: NewListingUsecase[domain.Event, *domain.Event](repo, deps),
		events:         repo,
	}
}

// Booking is the outcome of a successful reservation.
type Booking struct {
	Event     *domain.Event `json:"event"`
	Remaining int           `json:"remaining"`
}

// Book reserves tickets on an approved, active event. The capacity check and
// the increment happen in one conditional store update.
func (uc *EventUsecase) Book(ctx context.Context, id string, tickets int) (*Booking, error) {
	if tickets < 1 {
		return nil, domain.NewValidationError("tickets", "tickets must be at least 1")
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	event, err := uc.events.Book(ctx, oid, tickets)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCapacityExceeded):
			uc.deps.Metrics.BookingAttempt("capacity_exceeded", tickets)
		case errors.Is(err, domain.ErrEventUnavailable), errors.Is(err, domain.ErrNotFound):
			uc.deps.Metrics.BookingAttempt("unavailable", tickets)
		}
		uc.logger.Info("Booking refused", zap.String("id", id), zap.Int("tickets", tickets), zap.Error(err))
		return nil, err
	}

	uc.invalidate(ctx, id)
	uc.deps.Metrics.BookingAttempt("success", tickets)
	uc.logger.Info("Tickets booked", zap.String("id", id), zap.Int("tickets", tickets),
		zap.Int("current_bookings", event.CurrentBookings), zap.Int("capacity", event.Capacity))
	uc.deps.publish(ctx, domain.SubjectEventBooked, domain.BookingEvent{
		EventID:         id,
		Tickets:         tickets,
		CurrentBookings: event.CurrentBookings,
		Capacity:        event.Capacity,
	})
	return &Booking{Event: event, Remaining: event.Remaining()}, nil
}
