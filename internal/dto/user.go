package dto

import (
	"time"

	"github.com/sunucar/sunucar_backend/internal/core/domain"
)

// RegisterRequest creates a new user. Drivers are provisioned with a wallet
// at registration.
type RegisterRequest struct {
	Name     string          `json:"name" binding:"required"`
	Email    string          `json:"email" binding:"required,email"`
	Phone    string          `json:"phone" binding:"required"`
	Password string          `json:"password" binding:"required,min=8"`
	Role     domain.UserRole `json:"role" binding:"required,oneof=RIDER DRIVER"`
}

// LoginRequest authenticates a user by email and password.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userID"`
}

// UpdateUserRequest defines the fields a user may change on their profile.
// Pointers distinguish omitted fields from zero values.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// VerificationRequest sets a user's identity-verification outcome. Consumed
// from the document-review subsystem, not computed here.
type VerificationRequest struct {
	Status domain.VerificationStatus `json:"status" binding:"required,oneof=PENDING APPROVED REJECTED"`
}

// UserResponse defines the data returned for a user.
type UserResponse struct {
	UserID       string                    `json:"userID"`
	Name         string                    `json:"name"`
	Email        string                    `json:"email"`
	Phone        string                    `json:"phone"`
	Role         domain.UserRole           `json:"role"`
	Verification domain.VerificationStatus `json:"verificationStatus"`
	Suspended    bool                      `json:"suspended"`
	CreatedAt    time.Time                 `json:"createdAt"`
}

// ToUserResponse converts a domain.User to UserResponse.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:       u.UserID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         u.Role,
		Verification: u.Verification,
		Suspended:    u.Suspended,
		CreatedAt:    u.CreatedAt,
	}
}

// ListUsersParams defines query parameters for listing users.
type ListUsersParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListUsersResponse wraps the list of users.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// ToListUserResponse converts a slice of domain.User to ListUsersResponse.
func ToListUserResponse(users []domain.User) ListUsersResponse {
	res := make([]UserResponse, len(users))
	for i := range users {
		res[i] = ToUserResponse(&users[i])
	}
	return ListUsersResponse{Users: res}
}
