package user

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	domain "mongo-user-api/internal/domain/user"
	"mongo-user-api/internal/identifier"
	apperrors "mongo-user-api/pkg/errors"
)

// List pagination bounds. The limit cap keeps response sizes bounded.
const (
	defaultListLimit = 100
	maxListLimit     = 100
)

// Repository defines the interface for user data access operations.
// Implementations translate store-level failures into the classified error
// taxonomy before returning; no raw driver error crosses this boundary.
type Repository interface {
	// Insert stores a new user; the store assigns the id.
	Insert(ctx context.Context, u *domain.User) (primitive.ObjectID, error)
	// FindByID retrieves a user by id; absence is a not-found error.
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// Find lists users in store-native order.
	Find(ctx context.Context, skip, limit int64) ([]domain.User, error)
	// Update applies a partial merge and returns the matched count.
	Update(ctx context.Context, id primitive.ObjectID, p domain.Patch) (int64, error)
	// Delete removes a user by id and returns the deleted count.
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	// Count returns the unfiltered user total.
	Count(ctx context.Context) (int64, error)
}

// Service implements the business logic for user management operations: it
// validates payloads, maps them onto store operations and renders store
// documents back into response shapes.
type Service struct {
	repo Repository
	log  *zap.Logger
}

// New creates a new Service with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log}
}

// CreateUser validates the payload, inserts the document and re-reads it so
// the response reflects store-assigned state. A uniqueness violation on
// email surfaces as a conflict.
func (s *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*UserResponse, error) {
	s.log.Info("creating user", zap.String("email", in.Email))

	if err := validateCreate(in); err != nil {
		s.log.Warn("create user validation failed", zap.Error(err))
		return nil, err
	}

	// Any client-supplied identifier was dropped at the transport boundary;
	// the store assigns the id on insert.
	id, err := s.repo.Insert(ctx, &domain.User{
		Name:  in.Name,
		Email: in.Email,
		Age:   *in.Age,
		City:  in.City,
	})
	if err != nil {
		s.log.Error("failed to insert user", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}

	created, err := s.repo.FindByID(ctx, id)
	if err != nil {
		// The insert succeeded, so an absent or unreadable document here is
		// a store failure, never a client-visible not-found.
		s.log.Error("failed to read back created user", zap.String("id", identifier.Format(id)), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to load created user", err)
	}

	s.log.Info("user created", zap.String("id", identifier.Format(id)))
	return toResponse(created), nil
}

// GetUser retrieves a user by its external identifier. A malformed
// identifier is a client error distinct from not-found.
func (s *Service) GetUser(ctx context.Context, id string) (*UserResponse, error) {
	oid, err := identifier.Parse(id)
	if err != nil {
		s.log.Warn("invalid user id", zap.String("id", id))
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	return toResponse(u), nil
}

// ListUsers returns a finite snapshot of users in store-native order.
// Negative offsets are clamped and the limit is capped.
func (s *Service) ListUsers(ctx context.Context, in ListUsersRequest) ([]UserResponse, error) {
	if in.Skip < 0 {
		in.Skip = 0
	}
	if in.Limit <= 0 || in.Limit > maxListLimit {
		in.Limit = defaultListLimit
	}

	s.log.Debug("listing users", zap.Int64("skip", in.Skip), zap.Int64("limit", in.Limit))

	users, err := s.repo.Find(ctx, in.Skip, in.Limit)
	if err != nil {
		s.log.Error("failed to list users", zap.Error(err))
		return nil, err
	}

	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = *toResponse(&users[i])
	}
	return out, nil
}

// UpdateUser applies a partial merge of the supplied fields. Fields absent
// from the payload stay untouched in storage. The full current document is
// re-read and returned on success.
func (s *Service) UpdateUser(ctx context.Context, id string, in UpdateUserRequest) (*UserResponse, error) {
	oid, err := identifier.Parse(id)
	if err != nil {
		s.log.Warn("invalid user id", zap.String("id", id))
		return nil, err
	}

	patch, err := validateUpdate(in)
	if err != nil {
		s.log.Warn("update user validation failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	matched, err := s.repo.Update(ctx, oid, patch)
	if err != nil {
		s.log.Error("failed to update user", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if matched == 0 {
		s.log.Warn("user not found for update", zap.String("id", id))
		return nil, apperrors.NewNotFoundError("user", "user not found")
	}

	updated, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		s.log.Error("failed to read back updated user", zap.String("id", id), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to load updated user", err)
	}

	s.log.Info("user updated", zap.String("id", id))
	return toResponse(updated), nil
}

// DeleteUser removes a user permanently. Deleting an absent user is a
// not-found error, which makes a second delete of the same id fail.
func (s *Service) DeleteUser(ctx context.Context, id string) (*DeleteUserResponse, error) {
	oid, err := identifier.Parse(id)
	if err != nil {
		s.log.Warn("invalid user id", zap.String("id", id))
		return nil, err
	}

	deleted, err := s.repo.Delete(ctx, oid)
	if err != nil {
		s.log.Error("failed to delete user", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if deleted == 0 {
		s.log.Warn("user not found for delete", zap.String("id", id))
		return nil, apperrors.NewNotFoundError("user", "user not found")
	}

	s.log.Info("user deleted", zap.String("id", id))
	return &DeleteUserResponse{ID: id}, nil
}

// CountUsers returns the unfiltered user total. The value is advisory:
// true at the instant of the query only.
func (s *Service) CountUsers(ctx context.Context) (*CountUsersResponse, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.log.Error("failed to count users", zap.Error(err))
		return nil, err
	}
	return &CountUsersResponse{Count: count}, nil
}

// toResponse renders a stored document as the API response shape.
func toResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:    identifier.Format(u.ID),
		Name:  u.Name,
		Email: u.Email,
		Age:   u.Age,
		City:  u.City,
	}
}
