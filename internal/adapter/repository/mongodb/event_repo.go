package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type EventRepository struct {
	*ListingRepository[domain.Event, *domain.Event]
}

func NewEventRepository(ctx context.Context, db *mongo.Database, log *logger.Logger) *EventRepository {
	return &EventRepository{ListingRepository: NewListingRepository[domain.Event, *domain.Event](ctx, db, log)}
}

// Book reserves tickets with a single conditional update, so concurrent
// bookings can never push currentBookings past capacity.
func (r *EventRepository) Book(ctx context.Context, id primitive.ObjectID, tickets int) (*domain.Event, error) {
	filter := bson.M{
		"_id":        id,
		"isApproved": true,
		"isActive":   true,
		"$expr": bson.M{
			"$lte": bson.A{bson.M{"$add": bson.A{"$currentBookings", tickets}}, "$capacity"},
		},
	}
	update := bson.M{
		"$inc": bson.M{"currentBookings": tickets},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var event domain.Event
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&event)
	if err == nil {
		event.Normalize()
		return &event, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		r.logger.Error("Booking update failed", zap.String("id", id.Hex()), zap.Error(err))
		return nil, fmt.Errorf("%w: book event: %v", domain.ErrUpstream, err)
	}

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Visible() {
		return nil, domain.ErrEventUnavailable
	}
	return nil, domain.ErrCapacityExceeded
}
