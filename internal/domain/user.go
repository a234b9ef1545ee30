package domain

import "time"

// UserRole enumerates account roles.
type UserRole string

const (
	RoleExcavator UserRole = "EXCAVATOR"
	RoleMember    UserRole = "MEMBER"
	RoleAdmin     UserRole = "ADMIN"
)

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is an account that can call the API: excavators who open tickets,
// member operators who file responses, and admins. Member accounts carry the
// member code they respond on behalf of.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	MemberCode   *string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
