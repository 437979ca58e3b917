package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const usersCollection = "users"

type UserRepository struct {
	coll   *mongo.Collection
	logger *logger.Logger
}

func NewUserRepository(ctx context.Context, db *mongo.Database, log *logger.Logger) *UserRepository {
	r := &UserRepository{
		coll:   db.Collection(usersCollection),
		logger: log.Named("UserRepository"),
	}

	idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "isApproved", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(idxCtx, indexes); err != nil {
		r.logger.Warn("Failed to create indexes for users collection (may already exist)", zap.Error(err))
	} else {
		r.logger.Info("Successfully ensured indexes for users collection")
	}
	return r
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		var writeException mongo.WriteException
		if errors.As(err, &writeException) {
			for _, writeError := range writeException.WriteErrors {
				if writeError.Code == 11000 && strings.Contains(writeError.Message, "email_1") {
					r.logger.Warn("Duplicate email during user creation", zap.String("email", user.Email))
					return domain.ErrDuplicateEmail
				}
			}
		}
		r.logger.Error("Database error during user creation", zap.String("email", user.Email), zap.Error(err))
		return fmt.Errorf("%w: insert user: %v", domain.ErrUpstream, err)
	}
	r.logger.Info("User created", zap.String("userID", user.ID.Hex()))
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Database error fetching user", zap.Error(err))
		return nil, fmt.Errorf("%w: find user: %v", domain.ErrUpstream, err)
	}
	return &user, nil
}

func statusFilter(status domain.UserStatus) bson.M {
	switch status {
	case domain.UserStatusPending:
		return bson.M{"isApproved": false}
	case domain.UserStatusApproved:
		return bson.M{"isApproved": true}
	default:
		return bson.M{}
	}
}

func (r *UserRepository) List(ctx context.Context, status domain.UserStatus, page, limit int) ([]*domain.User, int64, error) {
	filter := statusFilter(status)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: count users: %v", domain.ErrUpstream, err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(domain.PageSkip(page, limit)).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, 0, fmt.Errorf("%w: list users: %v", domain.ErrUpstream, err)
	}
	defer cursor.Close(ctx)

	users := make([]*domain.User, 0, limit)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("%w: decode users: %v", domain.ErrUpstream, err)
	}
	return users, total, nil
}

// Approve moves a pending user to approved. Already approved users yield domain.ErrConflict.
func (r *UserRepository) Approve(ctx context.Context, id primitive.ObjectID, at time.Time) (*domain.User, error) {
	update := bson.M{"$set": bson.M{"isApproved": true, "approvedAt": at, "updatedAt": at}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user domain.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "isApproved": false}, update, opts).Decode(&user)
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		r.logger.Error("Failed to approve user", zap.String("userID", id.Hex()), zap.Error(err))
		return nil, fmt.Errorf("%w: approve user: %v", domain.ErrUpstream, err)
	}
	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: user is already approved", domain.ErrConflict)
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete user", zap.String("userID", id.Hex()), zap.Error(err))
		return fmt.Errorf("%w: delete user: %v", domain.ErrUpstream, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Stats(ctx context.Context) (domain.UserStats, error) {
	var stats domain.UserStats
	var err error
	if stats.Total, err = r.coll.CountDocuments(ctx, bson.M{}); err != nil {
		return stats, fmt.Errorf("%w: count users: %v", domain.ErrUpstream, err)
	}
	if stats.Approved, err = r.coll.CountDocuments(ctx, statusFilter(domain.UserStatusApproved)); err != nil {
		return stats, fmt.Errorf("%w: count users: %v", domain.ErrUpstream, err)
	}
	stats.Pending = stats.Total - stats.Approved
	return stats, nil
}
