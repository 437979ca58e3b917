package domain

import (
	"context"
	"errors"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingRepository persists one listing type.
type ListingRepository[PT Listing] interface {
	Create(ctx context.Context, listing PT) error
	FindByID(ctx context.Context, id primitive.ObjectID) (PT, error)
	Find(ctx context.Context, filter ListingFilter) ([]PT, int64, error)
	Update(ctx context.Context, listing PT) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
	SetApproved(ctx context.Context, id primitive.ObjectID, approved bool) error
	Stats(ctx context.Context) (ListingStats, error)
	IDsByOwner(ctx context.Context, owner primitive.ObjectID) ([]string, error)
}

// EventRepository adds the booking counter to the event store.
type EventRepository interface {
	ListingRepository[*Event]
	// Book atomically adds tickets when the event is bookable and has room.
	Book(ctx context.Context, id primitive.ObjectID, tickets int) (*Event, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, status UserStatus, page, limit int) ([]*User, int64, error)
	Approve(ctx context.Context, id primitive.ObjectID, at time.Time) (*User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Stats(ctx context.Context) (UserStats, error)
}

// FileStorage stores uploaded files and returns the path or URL clients use to fetch them.
type FileStorage interface {
	Save(ctx context.Context, dir, originalName, contentType string, r io.Reader, size int64) (string, error)
	Remove(ctx context.Context, path string) error
}

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// Mailer sends the notification mails of the registration workflow.
type Mailer interface {
	SendWelcome(ctx context.Context, user *User) error
	SendApproved(ctx context.Context, user *User) error
	SendRejected(ctx context.Context, user *User, reason string) error
}

var ErrCacheMiss = errors.New("cache miss")

// Cache stores serialised values by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
