package user

// CreateUserRequest represents the payload for creating a new user.
// Age uses a pointer so a missing field is distinguishable from age zero.
// Any client-supplied identifier is dropped before the payload reaches
// this shape; the store assigns the id.
type CreateUserRequest struct {
	Name  string
	Email string
	Age   *int
	City  *string
}

// UpdateUserRequest represents the payload for a partial update. Nil fields
// were not supplied. CitySet marks that city appeared in the payload,
// possibly as null (which clears the stored value).
type UpdateUserRequest struct {
	Name    *string
	Email   *string
	Age     *int
	City    *string
	CitySet bool
}

// ListUsersRequest represents pagination offsets for listing users.
type ListUsersRequest struct {
	Skip  int64
	Limit int64
}

// UserResponse represents a user as rendered in API responses. ID is the
// external string form of the store identifier.
type UserResponse struct {
	ID    string
	Name  string
	Email string
	Age   int
	City  *string
}

// DeleteUserResponse confirms a deletion.
type DeleteUserResponse struct {
	ID string
}

// CountUsersResponse carries the unfiltered user total.
type CountUsersResponse struct {
	Count int64
}
