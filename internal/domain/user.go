package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// Plan identifies the subscription plan a user is currently on.
type Plan string

const (
	PlanBasic Plan = "BASIC"
	PlanPro   Plan = "PRO"
)

// User represents a platform user (a student or an administrator).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"fullName" json:"fullName"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	Plan         Plan               `bson:"plan" json:"plan"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsPro() bool {
	return u.Plan == PlanPro
}
