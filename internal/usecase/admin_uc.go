package usecase

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DashboardStats is the admin overview.
type DashboardStats struct {
	Users    domain.UserStats               `json:"users"`
	Listings map[string]domain.ListingStats `json:"listings"`
}

// AdminUsecase drives the registration approval workflow and listing moderation.
type AdminUsecase struct {
	users      domain.UserRepository
	mailer     domain.Mailer
	moderators []ListingModerator
	deps       Deps
	logger     *logger.Logger
}

func NewAdminUsecase(users domain.UserRepository, mailer domain.Mailer, moderators []ListingModerator, deps Deps) *AdminUsecase {
	deps = deps.withDefaults()
	return &AdminUsecase{
		users:      users,
		mailer:     mailer,
		moderators: moderators,
		deps:       deps,
		logger:     deps.Logger.Named("AdminUsecase"),
	}
}

func (uc *AdminUsecase) PendingUsers(ctx context.Context, page, limit int) (domain.Page[*domain.User], error) {
	return uc.ListUsers(ctx, domain.UserStatusPending, page, limit)
}

func (uc *AdminUsecase) ListUsers(ctx context.Context, status domain.UserStatus, page, limit int) (domain.Page[*domain.User], error) {
	switch status {
	case domain.UserStatusAny, domain.UserStatusPending, domain.UserStatusApproved:
	default:
		return domain.Page[*domain.User]{}, domain.NewValidationError("status", "status must be one of [pending, approved]")
	}
	filter := domain.ListingFilter{Page: page, Limit: limit}
	filter.Normalize()

	users, total, err := uc.users.List(ctx, status, filter.Page, filter.Limit)
	if err != nil {
		return domain.Page[*domain.User]{}, err
	}
	return domain.NewPage(users, total, filter.Page, filter.Limit), nil
}

// Approve moves a pending user to approved and notifies them.
func (uc *AdminUsecase) Approve(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	user, err := uc.users.Approve(ctx, oid, uc.deps.Now())
	if err != nil {
		return nil, err
	}

	if err := uc.mailer.SendApproved(ctx, user); err != nil {
		uc.logger.Warn("Approval mail failed", zap.String("userID", id), zap.Error(err))
	}
	uc.deps.Metrics.UserDecision("approved")
	uc.deps.publish(ctx, domain.SubjectUserApproved, domain.UserEvent{ID: id, Email: user.Email})
	uc.logger.Info("User approved", zap.String("userID", id))
	return user, nil
}

// Reject deletes a pending registration together with its uploaded files.
func (uc *AdminUsecase) Reject(ctx context.Context, id, reason string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	user, err := uc.users.FindByID(ctx, oid)
	if err != nil {
		return err
	}
	if user.IsApproved {
		return fmt.Errorf("%w: only pending users can be rejected", domain.ErrConflict)
	}
	if err := uc.users.Delete(ctx, oid); err != nil {
		return err
	}
	uc.deps.discard(ctx, user.UploadedFiles())

	if err := uc.mailer.SendRejected(ctx, user, reason); err != nil {
		uc.logger.Warn("Rejection mail failed", zap.String("userID", id), zap.Error(err))
	}
	uc.deps.Metrics.UserDecision("rejected")
	uc.deps.publish(ctx, domain.SubjectUserRejected, domain.UserEvent{ID: id, Email: user.Email, Reason: reason})
	uc.logger.Info("User rejected", zap.String("userID", id), zap.String("reason", reason))
	return nil
}

func (uc *AdminUsecase) Stats(ctx context.Context) (*DashboardStats, error) {
	users, err := uc.users.Stats(ctx)
	if err != nil {
		return nil, err
	}
	stats := &DashboardStats{Users: users, Listings: make(map[string]domain.ListingStats, len(uc.moderators))}
	for _, m := range uc.moderators {
		s, err := m.Stats(ctx)
		if err != nil {
			return nil, err
		}
		stats.Listings[m.Kind().Route] = s
	}
	return stats, nil
}

// SetListingApproval moderates one listing addressed by its route name.
func (uc *AdminUsecase) SetListingApproval(ctx context.Context, route, id string, approved bool) error {
	for _, m := range uc.moderators {
		if m.Kind().Route == route {
			return m.SetApproval(ctx, id, approved)
		}
	}
	return fmt.Errorf("%w: unknown listing kind %q", domain.ErrNotFound, route)
}
