package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRole distinguishes back-office admins from regular authenticated users.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// User is a back-office account, created at provisioning time.
// The password hash is never serialized.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Role      UserRole           `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// LoginRequest is the credential payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the authenticated user.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
	User      *User  `json:"user"`
}

// AdminStats is the counter snapshot served by GET /api/admin/stats.
type AdminStats struct {
	EnquiriesTotal    int64 `json:"enquiriesTotal"`
	NewCustomers      int64 `json:"newCustomers"`
	ExistingCustomers int64 `json:"existingCustomers"`
	UploadsAccepted   int64 `json:"uploadsAccepted"`
	UploadsRejected   int64 `json:"uploadsRejected"`
}
