package usecase

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"go.uber.org/zap"
)

// Recorder receives domain counters. *metrics.MetricsManager implements it.
type Recorder interface {
	ListingCreated(kind string)
	ListingDeleted(kind string, soft bool)
	BookingAttempt(result string, tickets int)
	UserRegistered()
	UserDecision(decision string)
	NotificationSimulated(channel string)
}

// Deps are the collaborators shared by every use case. Only Storage and
// Logger are mandatory; the rest fall back to no-ops.
type Deps struct {
	Storage   domain.FileStorage
	Cache     domain.Cache
	CacheTTL  time.Duration
	Publisher domain.EventPublisher
	Metrics   Recorder
	Logger    *logger.Logger
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Publisher == nil {
		d.Publisher = nopPublisher{}
	}
	if d.Metrics == nil {
		d.Metrics = nopRecorder{}
	}
	if d.Logger == nil {
		d.Logger = logger.NewNop()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	if d.CacheTTL <= 0 {
		d.CacheTTL = 5 * time.Minute
	}
	return d
}

// publish sends an event and only logs failures; the bus is best-effort.
func (d Deps) publish(ctx context.Context, subject string, payload any) {
	if err := d.Publisher.Publish(ctx, subject, payload); err != nil {
		d.Logger.Warn("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

// discard removes stored files, logging failures.
func (d Deps) discard(ctx context.Context, paths []string) {
	if d.Storage == nil {
		return
	}
	for _, p := range paths {
		if err := d.Storage.Remove(ctx, p); err != nil {
			d.Logger.Warn("Failed to remove stored file", zap.String("path", p), zap.Error(err))
		}
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) error { return nil }

type nopRecorder struct{}

func (nopRecorder) ListingCreated(string) {}
func (nopRecorder) ListingDeleted(string, bool) {}
func (nopRecorder) BookingAttempt(string, int) {}
func (nopRecorder) UserRegistered() {}
func (nopRecorder) UserDecision(string) {}
func (nopRecorder) NotificationSimulated(string) {}
