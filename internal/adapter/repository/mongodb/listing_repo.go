package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ListingRepository stores one listing type in its own collection.
type ListingRepository[T any, PT domain.ListingPtr[T]] struct {
	coll   *mongo.Collection
	kind   *domain.Kind
	logger *logger.Logger
}

func NewListingRepository[T any, PT domain.ListingPtr[T]](ctx context.Context, db *mongo.Database, log *logger.Logger) *ListingRepository[T, PT] {
	kind := PT(new(T)).Kind()
	r := &ListingRepository[T, PT]{
		coll:   db.Collection(kind.Collection),
		kind:   kind,
		logger: log.Named("ListingRepository").With(zap.String("kind", kind.Name)),
	}
	r.ensureIndexes(ctx)
	return r
}

func (r *ListingRepository[T, PT]) ensureIndexes(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	sortDir := -1
	if r.kind.SortAsc {
		sortDir = 1
	}
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "isApproved", Value: 1}, {Key: "isActive", Value: 1}, {Key: r.kind.SortField, Value: sortDir}}},
	}
	if r.kind.CategoryField != "" {
		indexes = append(indexes, mongo.IndexModel{Keys: bson.D{{Key: r.kind.CategoryField, Value: 1}}})
	}
	if r.kind.OwnerScoped() {
		indexes = append(indexes, mongo.IndexModel{Keys: bson.D{{Key: r.kind.OwnerField, Value: 1}}})
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		r.logger.Warn("Failed to create indexes (may already exist)", zap.Error(err))
		return
	}
	r.logger.Debug("Ensured indexes", zap.String("collection", r.kind.Collection))
}

func (r *ListingRepository[T, PT]) Create(ctx context.Context, listing PT) error {
	meta := listing.Meta()
	if meta.ID.IsZero() {
		meta.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, listing); err != nil {
		r.logger.Error("Failed to insert listing", zap.Error(err))
		return fmt.Errorf("%w: insert %s: %v", domain.ErrUpstream, r.kind.Name, err)
	}
	return nil
}

func (r *ListingRepository[T, PT]) FindByID(ctx context.Context, id primitive.ObjectID) (PT, error) {
	listing := PT(new(T))
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(listing); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to find listing", zap.String("id", id.Hex()), zap.Error(err))
		return nil, fmt.Errorf("%w: find %s: %v", domain.ErrUpstream, r.kind.Name, err)
	}
	listing.Meta().Normalize()
	return listing, nil
}

func (r *ListingRepository[T, PT]) Find(ctx context.Context, filter domain.ListingFilter) ([]PT, int64, error) {
	filter.Normalize()
	query := r.buildFilter(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: count %s: %v", domain.ErrUpstream, r.kind.Name, err)
	}

	sortDir := -1
	if r.kind.SortAsc {
		sortDir = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: r.kind.SortField, Value: sortDir}, {Key: "_id", Value: -1}}).
		SetSkip(filter.Skip()).
		SetLimit(int64(filter.Limit))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		r.logger.Error("Failed to list listings", zap.Error(err))
		return nil, 0, fmt.Errorf("%w: list %s: %v", domain.ErrUpstream, r.kind.Name, err)
	}
	defer cursor.Close(ctx)

	var docs []T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("%w: decode %s: %v", domain.ErrUpstream, r.kind.Name, err)
	}
	items := make([]PT, 0, len(docs))
	for i := range docs {
		item := PT(&docs[i])
		item.Meta().Normalize()
		items = append(items, item)
	}
	return items, total, nil
}

func (r *ListingRepository[T, PT]) buildFilter(filter domain.ListingFilter) bson.M {
	query := bson.M{}
	if !filter.IncludeHidden {
		query["isApproved"] = true
		query["isActive"] = true
	}
	if !filter.OwnerID.IsZero() && r.kind.OwnerScoped() {
		query[r.kind.OwnerField] = filter.OwnerID
	}
	if filter.Category != "" && r.kind.CategoryField != "" {
		query[r.kind.CategoryField] = filter.Category
	}
	if filter.City != "" && r.kind.CityField != "" {
		query[r.kind.CityField] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.City), Options: "i"}
	}
	if filter.Search != "" && r.kind.TitleField != "" {
		query[r.kind.TitleField] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		price := bson.M{}
		if filter.MinPrice != nil {
			price["$gte"] = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			price["$lte"] = *filter.MaxPrice
		}
		query[r.kind.PriceField] = price
	}
	if filter.From != nil || filter.To != nil {
		field := r.kind.DateField
		if field == "" {
			field = "createdAt"
		}
		dates := bson.M{}
		if filter.From != nil {
			dates["$gte"] = *filter.From
		}
		if filter.To != nil {
			dates["$lte"] = *filter.To
		}
		query[field] = dates
	}
	return query
}

// Update writes every field of listing except the id, the creation time and
// the server managed counters, which have their own atomic writers.
func (r *ListingRepository[T, PT]) Update(ctx context.Context, listing PT) error {
	raw, err := bson.Marshal(listing)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", r.kind.Name, err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("unmarshal %s: %w", r.kind.Name, err)
	}
	// Flags have their own setters; writing them back from a stale read
	// would undo a concurrent soft delete or moderation decision.
	for _, f := range []string{"_id", "createdAt", "isActive", "isApproved"} {
		delete(doc, f)
	}
	for _, f := range r.kind.ServerManaged {
		delete(doc, f)
	}

	id := listing.Meta().ID
	filter := bson.M{"_id": id}
	if r.kind.CapacityField != "" {
		filter["$expr"] = bson.M{"$gte": bson.A{doc[r.kind.CapacityField], "$" + r.kind.CounterField}}
	}

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": doc})
	if err != nil {
		r.logger.Error("Failed to update listing", zap.String("id", id.Hex()), zap.Error(err))
		return fmt.Errorf("%w: update %s: %v", domain.ErrUpstream, r.kind.Name, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	if r.kind.CapacityField != "" {
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("%w: update %s: %v", domain.ErrUpstream, r.kind.Name, err)
		}
		if n > 0 {
			return domain.CapacityBelowBookings()
		}
	}
	return domain.ErrNotFound
}

func (r *ListingRepository[T, PT]) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete listing", zap.String("id", id.Hex()), zap.Error(err))
		return fmt.Errorf("%w: delete %s: %v", domain.ErrUpstream, r.kind.Name, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ListingRepository[T, PT]) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	return r.setFlag(ctx, id, "isActive", active)
}

func (r *ListingRepository[T, PT]) SetApproved(ctx context.Context, id primitive.ObjectID, approved bool) error {
	return r.setFlag(ctx, id, "isApproved", approved)
}

func (r *ListingRepository[T, PT]) setFlag(ctx context.Context, id primitive.ObjectID, field string, value bool) error {
	update := bson.M{"$set": bson.M{field: value, "updatedAt": time.Now().UTC()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("%w: set %s on %s: %v", domain.ErrUpstream, field, r.kind.Name, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ListingRepository[T, PT]) Stats(ctx context.Context) (domain.ListingStats, error) {
	var stats domain.ListingStats
	var err error
	if stats.Total, err = r.coll.CountDocuments(ctx, bson.M{}); err != nil {
		return stats, fmt.Errorf("%w: count %s: %v", domain.ErrUpstream, r.kind.Name, err)
	}
	if stats.Active, err = r.coll.CountDocuments(ctx, bson.M{"isActive": true}); err != nil {
		return stats, fmt.Errorf("%w: count %s: %v", domain.ErrUpstream, r.kind.Name, err)
	}
	if stats.Approved, err = r.coll.CountDocuments(ctx, bson.M{"isApproved": true}); err != nil {
		return stats, fmt.Errorf("%w: count %s: %v", domain.ErrUpstream, r.kind.Name, err)
	}
	return stats, nil
}

// IDsByOwner resolves the listings owned by a user at query time.
func (r *ListingRepository[T, PT]) IDsByOwner(ctx context.Context, owner primitive.ObjectID) ([]string, error) {
	if !r.kind.OwnerScoped() {
		return []string{}, nil
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{r.kind.OwnerField: owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: owner lookup %s: %v", domain.ErrUpstream, r.kind.Name, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: owner lookup %s: %v", domain.ErrUpstream, r.kind.Name, err)
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID.Hex())
	}
	return ids, nil
}
