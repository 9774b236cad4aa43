package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sandbox is a practice environment provisioned for a user when they enroll
// in a course that declares a sandbox type. Provisioning is best-effort and
// never blocks or fails the enrollment itself.
type Sandbox struct {
	ID        string             `json:"id"`
	UserID    primitive.ObjectID `json:"userId"`
	Type      string             `json:"type"`
	CreatedAt time.Time          `json:"createdAt"`
}
