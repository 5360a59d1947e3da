package user

import "context"

// Usecase defines the interface for user business logic operations.
type Usecase interface {
	CreateUser(ctx context.Context, in CreateUserRequest) (*UserResponse, error)
	GetUser(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, in ListUsersRequest) ([]UserResponse, error)
	UpdateUser(ctx context.Context, id string, in UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, id string) (*DeleteUserResponse, error)
	CountUsers(ctx context.Context) (*CountUsersResponse, error)
}
