package dto

import (
	"time"

	"github.com/ecovilla/exchange_backend/internal/core/domain"
)

// UserResponse defines the data returned for a user.
type UserResponse struct {
	UserID            string    `json:"userID"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	ProfilePictureURL *string   `json:"profilePictureURL,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// UpdateUserRequest defines the data allowed for updating a user.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateUserRequest struct {
	Name              *string `json:"name" binding:"omitempty,min=1,max=100"`
	ProfilePictureURL *string `json:"profilePictureURL" binding:"omitempty,url"`
}

// ListUsersParams defines query parameters for listing users.
type ListUsersParams struct {
	Limit  int `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"omitempty,min=0"`
}

// ListUsersResponse wraps the list of users.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// ToUserResponse converts a domain.User to UserResponse DTO.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:            u.UserID,
		Name:              u.Name,
		Email:             u.Email,
		ProfilePictureURL: u.ProfilePictureURL,
		CreatedAt:         u.CreatedAt,
	}
}

// ToListUsersResponse converts a slice of domain.User to ListUsersResponse DTO.
func ToListUsersResponse(users []domain.User) ListUsersResponse {
	userResponses := make([]UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = ToUserResponse(&user)
	}
	return ListUsersResponse{Users: userResponses}
}
