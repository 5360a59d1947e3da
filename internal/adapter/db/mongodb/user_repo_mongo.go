package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	domain "mongo-user-api/internal/domain/user"
	apperrors "mongo-user-api/pkg/errors"
)

// UserRepository implements the usecase Repository interface over a MongoDB
// collection. Every driver failure is classified into the application error
// taxonomy before it leaves this package.
type UserRepository struct {
	coll *mongo.Collection
	log  *zap.Logger
}

// NewUserRepository creates a new UserRepository bound to the given collection.
func NewUserRepository(coll *mongo.Collection, log *zap.Logger) *UserRepository {
	return &UserRepository{coll: coll, log: log}
}

// EnsureEmailIndex declares the unique index on email. Called once at
// startup; uniqueness itself is enforced by the store on every write.
func (r *UserRepository) EnsureEmailIndex(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		r.log.Error("failed to create unique email index", zap.Error(err))
		return apperrors.NewInternalError("failed to create unique email index", err)
	}

	r.log.Info("unique email index ensured", zap.String("collection", r.coll.Name()))
	return nil
}

// Insert stores a new user document. The document never carries a client
// identifier; the store assigns the ObjectID.
func (r *UserRepository) Insert(ctx context.Context, u *domain.User) (primitive.ObjectID, error) {
	if u == nil {
		return primitive.NilObjectID, apperrors.NewInternalError("user cannot be nil", nil)
	}

	res, err := r.coll.InsertOne(ctx, u)
	if err != nil {
		r.log.Error("failed to insert user", zap.String("email", u.Email), zap.Error(err))
		return primitive.NilObjectID, classify("failed to insert user", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, apperrors.NewInternalError("store returned an unexpected id type", nil)
	}

	r.log.Info("user inserted", zap.String("id", id.Hex()))
	return id, nil
}

// FindByID retrieves a user document by its ObjectID.
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var u domain.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.log.Warn("user not found", zap.String("id", id.Hex()))
			return nil, apperrors.NewNotFoundError("user", "user not found")
		}
		r.log.Error("failed to find user", zap.String("id", id.Hex()), zap.Error(err))
		return nil, classify("failed to find user", err)
	}

	return &u, nil
}

// Find lists user documents in store-native order with pagination offsets.
func (r *UserRepository) Find(ctx context.Context, skip, limit int64) ([]domain.User, error) {
	opts := options.Find().SetSkip(skip).SetLimit(limit)

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.log.Error("failed to list users", zap.Int64("skip", skip), zap.Int64("limit", limit), zap.Error(err))
		return nil, classify("failed to list users", err)
	}
	defer cur.Close(ctx)

	var users []domain.User
	if err := cur.All(ctx, &users); err != nil {
		r.log.Error("failed to decode users", zap.Error(err))
		return nil, classify("failed to decode users", err)
	}

	return users, nil
}

// Update applies a $set of the supplied patch fields and returns the
// matched count. Fields absent from the patch are untouched in storage.
func (r *UserRepository) Update(ctx context.Context, id primitive.ObjectID, p domain.Patch) (int64, error) {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": patchDocument(p)})
	if err != nil {
		r.log.Error("failed to update user", zap.String("id", id.Hex()), zap.Error(err))
		return 0, classify("failed to update user", err)
	}

	r.log.Info("user updated", zap.String("id", id.Hex()), zap.Int64("matched", res.MatchedCount))
	return res.MatchedCount, nil
}

// Delete removes a user document by its ObjectID and returns the deleted count.
func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.log.Error("failed to delete user", zap.String("id", id.Hex()), zap.Error(err))
		return 0, classify("failed to delete user", err)
	}

	r.log.Info("user deleted", zap.String("id", id.Hex()), zap.Int64("deleted", res.DeletedCount))
	return res.DeletedCount, nil
}

// Count returns the unfiltered number of user documents.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		r.log.Error("failed to count users", zap.Error(err))
		return 0, classify("failed to count users", err)
	}
	return count, nil
}

// patchDocument builds the $set document for a partial update. Only the
// supplied fields appear; a city supplied as null is stored as null.
func patchDocument(p domain.Patch) bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Age != nil {
		set["age"] = *p.Age
	}
	if p.CitySet {
		set["city"] = p.City
	}
	return set
}

// classify translates a driver error into the application taxonomy. A
// duplicate-key write is a conflict on the unique email index; anything
// else is an internal store failure.
func classify(message string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.NewConflictError("user", "user with this email already exists")
	}
	return apperrors.NewInternalError(message, err)
}
