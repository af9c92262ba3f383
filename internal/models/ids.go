package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a fresh 24 hex character identifier. Every store uses the
// same shape so route validation does not depend on the backend.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether id is 24 hex characters.
func IsValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}
