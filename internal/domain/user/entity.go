package user

import "go.mongodb.org/mongo-driver/bson/primitive"

// User represents a user document in the store. ID is assigned by the store
// on insert and never mutated afterwards. City is optional and may be null.
type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	Age   int                `bson:"age" json:"age"`
	City  *string            `bson:"city,omitempty" json:"city"`
}
