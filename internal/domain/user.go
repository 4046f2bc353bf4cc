package domain

import (
	"time"
)

// User is an authenticated identity. Its ID is a UUID string shared with the
// user's Profile.
type User struct {
	ID            string    `bson:"_id" json:"id"`
	Email         string    `bson:"email" json:"email"`    // Should be unique
	PasswordHash  string    `bson:"passwordHash" json:"-"` // Never expose this via JSON
	EmailVerified bool      `bson:"emailVerified" json:"emailVerified"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}
