package domain

import (
	"time"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleUser       Role = "USER" // A coaching client
	RoleTrainer    Role = "TRAINER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// StaffRoles are the roles allowed to manage sessions.
var StaffRoles = []Role{RoleTrainer, RoleAdmin, RoleSuperAdmin}

// UserStatus is the account state of a user.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
)

// User represents an account on the platform: a client, a trainer or an administrator.
type User struct {
	ID             string     `bson:"_id" json:"id"`
	Name           string     `bson:"name" json:"name"`
	Email          string     `bson:"email" json:"email"`    // Should be unique
	PasswordHash   string     `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role           Role       `bson:"role" json:"role"`
	Status         UserStatus `bson:"status" json:"status"`
	Image          string     `bson:"image,omitempty" json:"image,omitempty"` // Object key of the profile image in storage
	Specialization string     `bson:"specialization,omitempty" json:"specialization,omitempty"`
	CreatedAt      time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time  `bson:"updatedAt" json:"updatedAt"`

	// --- Client-specific ---
	// The trainer responsible for this client, if assigned.
	TrainerID *string `bson:"trainerId,omitempty" json:"trainerId,omitempty"`
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsClient() bool {
	return u.Role == RoleUser
}

// HasRole reports whether r is one of allowed.
func HasRole(r Role, allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}
