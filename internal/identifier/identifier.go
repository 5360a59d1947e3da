// Package identifier converts between the external string form of a user
// identifier and the store's native ObjectID. Parsing runs before any store
// call so malformed identifiers fail fast as client errors instead of
// surfacing as store failures.
package identifier

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "mongo-user-api/pkg/errors"
)

// Parse validates the lexical form of an external identifier (24-character
// hex) and converts it into the store's native ObjectID.
func Parse(external string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(external)
	if err != nil {
		return primitive.NilObjectID, apperrors.NewInvalidIDError(external)
	}
	return id, nil
}

// Format renders a native ObjectID as the external string form used in
// every API response.
func Format(id primitive.ObjectID) string {
	return id.Hex()
}
