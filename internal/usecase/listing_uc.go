package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ListingModerator is the admin-facing part of a listing use case.
type ListingModerator interface {
	Kind() *domain.Kind
	SetApproval(ctx context.Context, id string, approved bool) error
	Stats(ctx context.Context) (domain.ListingStats, error)
}

// OwnerLookup resolves the listings a user owns.
type OwnerLookup interface {
	OwnedIDs(ctx context.Context, owner primitive.ObjectID) ([]string, error)
}

// ListingUsecase implements the CRUD contract shared by every listing type.
type ListingUsecase[T any, PT domain.ListingPtr[T]] struct {
	kind   *domain.Kind
	repo   domain.ListingRepository[PT]
	deps   Deps
	logger *logger.Logger
}

func NewListingUsecase[T any, PT domain.ListingPtr[T]](repo domain.ListingRepository[PT], deps Deps) *ListingUsecase[T, PT] {
	deps = deps.withDefaults()
	kind := PT(new(T)).Kind()
	return &ListingUsecase[T, PT]{
		kind:   kind,
		repo:   repo,
		deps:   deps,
		logger: deps.Logger.Named("ListingUsecase").With(zap.String("kind", kind.Name)),
	}
}

func (uc *ListingUsecase[T, PT]) Kind() *domain.Kind { return uc.kind }

// Create builds a listing from loosely typed fields and the stored image
// paths. The images are removed again if the listing cannot be created.
func (uc *ListingUsecase[T, PT]) Create(ctx context.Context, actor *domain.Identity, fields map[string]any, images []string) (PT, error) {
	listing, err := uc.build(actor, fields, images)
	if err != nil {
		uc.deps.discard(ctx, images)
		return nil, err
	}
	if err := uc.repo.Create(ctx, listing); err != nil {
		uc.deps.discard(ctx, images)
		return nil, err
	}

	id := listing.Meta().ID.Hex()
	uc.logger.Info("Listing created", zap.String("id", id), zap.Int("images", len(images)))
	uc.deps.Metrics.ListingCreated(uc.kind.Name)
	uc.deps.publish(ctx, domain.SubjectListingCreated, domain.ListingEvent{Kind: uc.kind.Name, ID: id, ActorID: actorID(actor)})
	return listing, nil
}

func (uc *ListingUsecase[T, PT]) build(actor *domain.Identity, fields map[string]any, images []string) (PT, error) {
	if uc.kind.OwnerScoped() && actor == nil {
		return nil, domain.ErrUnauthorized
	}
	input := cloneFields(fields)
	domain.StripFields(input, uc.kind.ProtectedFields()...)

	listing := PT(new(T))
	if err := domain.DecodeFields(input, listing); err != nil {
		return nil, err
	}
	if d, ok := any(listing).(domain.Defaulter); ok {
		d.ApplyDefaults()
	}

	meta := listing.Meta()
	meta.Images = append([]string{}, images...)
	meta.IsApproved = true
	meta.IsActive = true
	meta.Touch(uc.deps.Now())

	if owned, ok := any(listing).(domain.Owned); ok && uc.kind.OwnerScoped() {
		owned.SetOwnerID(actor.UserID)
	}
	if err := domain.ValidateInput(input, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (uc *ListingUsecase[T, PT]) List(ctx context.Context, filter domain.ListingFilter) (domain.Page[PT], error) {
	filter.Normalize()
	items, total, err := uc.repo.Find(ctx, filter)
	if err != nil {
		return domain.Page[PT]{}, err
	}
	return domain.NewPage(items, total, filter.Page, filter.Limit), nil
}

// Mine lists the caller's own listings, including unapproved and inactive ones.
func (uc *ListingUsecase[T, PT]) Mine(ctx context.Context, actor *domain.Identity, filter domain.ListingFilter) (domain.Page[PT], error) {
	if actor == nil {
		return domain.Page[PT]{}, domain.ErrUnauthorized
	}
	filter.OwnerID = actor.UserID
	filter.IncludeHidden = true
	return uc.List(ctx, filter)
}

// GetByID returns a publicly visible listing. Missing, inactive and
// unapproved listings are all reported as domain.ErrNotFound.
func (uc *ListingUsecase[T, PT]) GetByID(ctx context.Context, id string) (PT, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	listing, err := uc.load(ctx, oid)
	if err != nil {
		return nil, err
	}
	if !listing.Meta().Visible() {
		return nil, domain.ErrNotFound
	}
	return listing, nil
}

func (uc *ListingUsecase[T, PT]) load(ctx context.Context, oid primitive.ObjectID) (PT, error) {
	key := uc.cacheKey(oid.Hex())
	if uc.deps.Cache != nil {
		if raw, err := uc.deps.Cache.Get(ctx, key); err == nil {
			cached := PT(new(T))
			if err := json.Unmarshal(raw, cached); err == nil {
				cached.Meta().Normalize()
				return cached, nil
			}
			uc.logger.Warn("Discarding undecodable cache entry", zap.String("key", key))
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			uc.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	listing, err := uc.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if uc.deps.Cache != nil {
		if raw, err := json.Marshal(listing); err == nil {
			if err := uc.deps.Cache.Set(ctx, key, raw, uc.deps.CacheTTL); err != nil {
				uc.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return listing, nil
}

// Update merges the provided fields into the stored listing. New images are
// appended to the existing ones.
func (uc *ListingUsecase[T, PT]) Update(ctx context.Context, actor *domain.Identity, id string, fields map[string]any, images []string) (PT, error) {
	updated, err := uc.update(ctx, actor, id, fields, images)
	if err != nil {
		uc.deps.discard(ctx, images)
		return nil, err
	}
	uc.invalidate(ctx, id)
	uc.logger.Info("Listing updated", zap.String("id", id), zap.Int("new_images", len(images)))
	uc.deps.publish(ctx, domain.SubjectListingUpdated, domain.ListingEvent{Kind: uc.kind.Name, ID: id, ActorID: actorID(actor)})
	return updated, nil
}

func (uc *ListingUsecase[T, PT]) update(ctx context.Context, actor *domain.Identity, id string, fields map[string]any, images []string) (PT, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	existing, err := uc.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if err := uc.authorize(actor, existing); err != nil {
		return nil, err
	}

	merged, err := domain.ToFields(existing)
	if err != nil {
		return nil, err
	}
	patch := cloneFields(fields)
	domain.StripFields(patch, uc.kind.ProtectedFields()...)
	domain.MergeFields(merged, patch)

	updated := PT(new(T))
	if err := domain.DecodeFields(merged, updated); err != nil {
		return nil, err
	}
	if d, ok := any(updated).(domain.Defaulter); ok {
		d.ApplyDefaults()
	}

	meta := updated.Meta()
	*meta = *existing.Meta()
	meta.Images = append(append([]string{}, existing.Meta().Images...), images...)
	meta.Touch(uc.deps.Now())
	if owned, ok := any(updated).(domain.Owned); ok {
		owned.SetOwnerID(any(existing).(domain.Owned).OwnerID())
	}

	if err := domain.ValidateInput(merged, updated); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a listing. Soft-deletable types are deactivated and keep
// their files; the others lose their files first, best-effort.
func (uc *ListingUsecase[T, PT]) Delete(ctx context.Context, actor *domain.Identity, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	existing, err := uc.repo.FindByID(ctx, oid)
	if err != nil {
		return err
	}
	if err := uc.authorize(actor, existing); err != nil {
		return err
	}

	if uc.kind.SoftDelete {
		if !existing.Meta().IsActive {
			return domain.ErrNotFound
		}
		if err := uc.repo.SetActive(ctx, oid, false); err != nil {
			return err
		}
	} else {
		uc.deps.discard(ctx, existing.Meta().Images)
		if err := uc.repo.Delete(ctx, oid); err != nil {
			return err
		}
	}

	uc.invalidate(ctx, id)
	uc.logger.Info("Listing deleted", zap.String("id", id), zap.Bool("soft", uc.kind.SoftDelete))
	uc.deps.Metrics.ListingDeleted(uc.kind.Name, uc.kind.SoftDelete)
	uc.deps.publish(ctx, domain.SubjectListingDeleted, domain.ListingEvent{Kind: uc.kind.Name, ID: id, Soft: uc.kind.SoftDelete, ActorID: actorID(actor)})
	return nil
}

// SetApproval grants or withdraws admin approval of a listing.
func (uc *ListingUsecase[T, PT]) SetApproval(ctx context.Context, id string, approved bool) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	if err := uc.repo.SetApproved(ctx, oid, approved); err != nil {
		return err
	}
	uc.invalidate(ctx, id)
	uc.logger.Info("Listing approval changed", zap.String("id", id), zap.Bool("approved", approved))
	uc.deps.publish(ctx, domain.SubjectListingApproval, domain.ListingEvent{Kind: uc.kind.Name, ID: id, Approved: &approved})
	return nil
}

func (uc *ListingUsecase[T, PT]) Stats(ctx context.Context) (domain.ListingStats, error) {
	return uc.repo.Stats(ctx)
}

func (uc *ListingUsecase[T, PT]) OwnedIDs(ctx context.Context, owner primitive.ObjectID) ([]string, error) {
	return uc.repo.IDsByOwner(ctx, owner)
}

func (uc *ListingUsecase[T, PT]) authorize(actor *domain.Identity, listing PT) error {
	if !uc.kind.OwnerScoped() {
		return nil
	}
	if actor == nil {
		return domain.ErrUnauthorized
	}
	if actor.IsAdmin() {
		return nil
	}
	owned, ok := any(listing).(domain.Owned)
	if !ok || owned.OwnerID() != actor.UserID {
		return domain.ErrForbidden
	}
	return nil
}

func (uc *ListingUsecase[T, PT]) cacheKey(id string) string {
	return "listing:" + uc.kind.Name + ":" + id
}

func (uc *ListingUsecase[T, PT]) invalidate(ctx context.Context, id string) {
	if uc.deps.Cache == nil {
		return
	}
	if err := uc.deps.Cache.Delete(ctx, uc.cacheKey(id)); err != nil {
		uc.logger.Warn("Cache invalidation failed", zap.String("id", id), zap.Error(err))
	}
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func actorID(actor *domain.Identity) string {
	if actor == nil {
		return ""
	}
	return actor.UserID.Hex()
}
