package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidID is returned when a path identifier is not a 24-char hex ObjectID.
var ErrInvalidID = errors.New("invalid object id")

// Base carries the identity and timestamps shared by every stored document
// and embedded node.
type Base struct {
	ID        primitive.ObjectID `json:"_id"       bson:"_id"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// NewBase assigns a fresh ObjectID and stamps both timestamps with now.
func NewBase(now time.Time) Base {
	return Base{ID: primitive.NewObjectID(), CreatedAt: now, UpdatedAt: now}
}

// Touch bumps the modification time.
func (b *Base) Touch(now time.Time) { b.UpdatedAt = now }

// ParseObjectID validates the syntax of raw without touching the store.
func ParseObjectID(raw string) (primitive.ObjectID, error) {
	if len(raw) != 24 {
		return primitive.NilObjectID, ErrInvalidID
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}

// nodeIndex maps node identifiers to their slice position.
type nodeIndex map[primitive.ObjectID]int

func indexNodes[T any](nodes []T, idOf func(*T) primitive.ObjectID) nodeIndex {
	idx := make(nodeIndex, len(nodes))
	for i := range nodes {
		idx[idOf(&nodes[i])] = i
	}
	return idx
}
