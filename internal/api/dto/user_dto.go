package dto

import (
	"time"

	"github.com/digsafe/locate-ticket-service/internal/domain"
)

// RegisterRequest payload for excavator self-registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterMemberRequest payload for admin-created member accounts.
type RegisterMemberRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	MemberCode string `json:"member_code"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// PasswordResetRequest payload.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// AuthResponse returns account info plus token.
type AuthResponse struct {
	UserID     string          `json:"user_id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       domain.UserRole `json:"role"`
	MemberCode *string         `json:"member_code,omitempty"`
	Token      string          `json:"token"`
	ExpiresAt  time.Time       `json:"expires_at"`
}
