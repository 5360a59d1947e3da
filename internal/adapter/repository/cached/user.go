package cached

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"mongo-user-api/internal/adapter/cache"
	domain "mongo-user-api/internal/domain/user"
	"mongo-user-api/internal/usecase/user"
)

// UserRepository implements user.Repository with caching support.
// It wraps the persistent repository and a cache implementation; writes go
// straight to the store and invalidate the cached entry, so the cache never
// changes what the API observes.
type UserRepository struct {
	store user.Repository
	cache cache.UserCache
	log   *zap.Logger
	group singleflight.Group
}

// NewUserRepository creates a cache-aside decorator around a repository.
func NewUserRepository(store user.Repository, cache cache.UserCache, log *zap.Logger) user.Repository {
	return &UserRepository{
		store: store,
		cache: cache,
		log:   log,
	}
}

// Insert delegates to the store repository.
func (r *UserRepository) Insert(ctx context.Context, u *domain.User) (primitive.ObjectID, error) {
	return r.store.Insert(ctx, u)
}

// FindByID retrieves a user by id using the cache-aside pattern.
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	if r.cache != nil {
		cachedUser, err := r.cache.Get(ctx, id)
		if err != nil {
			r.log.Warn("cache get error, falling back to store", zap.String("id", id.Hex()), zap.Error(err))
		} else if cachedUser != nil {
			return cachedUser, nil
		}
	}

	// Cache miss - use single-flight so concurrent misses on the same id
	// produce one store round-trip.
	key := fmt.Sprintf("user:%s", id.Hex())
	result, err, _ := r.group.Do(key, func() (any, error) {
		// Another request may have populated the cache while we waited.
		if r.cache != nil {
			cachedUser, err := r.cache.Get(ctx, id)
			if err == nil && cachedUser != nil {
				return cachedUser, nil
			}
		}

		u, err := r.store.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if r.cache != nil {
			if err := r.cache.Set(ctx, u); err != nil {
				r.log.Warn("failed to cache user", zap.String("id", id.Hex()), zap.Error(err))
			}
		}

		return u, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*domain.User), nil
}

// Find delegates to the store repository; list results are not cached.
func (r *UserRepository) Find(ctx context.Context, skip, limit int64) ([]domain.User, error) {
	return r.store.Find(ctx, skip, limit)
}

// Update applies the patch in the store and invalidates the cached entry.
func (r *UserRepository) Update(ctx context.Context, id primitive.ObjectID, p domain.Patch) (int64, error) {
	matched, err := r.store.Update(ctx, id, p)
	if err != nil {
		return 0, err
	}

	r.invalidate(ctx, id)
	return matched, nil
}

// Delete removes the user from the store and invalidates the cached entry.
func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	deleted, err := r.store.Delete(ctx, id)
	if err != nil {
		return 0, err
	}

	r.invalidate(ctx, id)
	return deleted, nil
}

// Count delegates to the store repository.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.store.Count(ctx)
}

func (r *UserRepository) invalidate(ctx context.Context, id primitive.ObjectID) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("failed to invalidate cache", zap.String("id", id.Hex()), zap.Error(err))
	}
}
