package dto

import authdomain "roadbuddy-backend/internal/auth/domain"

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

type VerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

// SignupResponse carries a token only when the service issues its own
// (local development without Firebase).
type SignupResponse struct {
	User  *UserResponse `json:"user"`
	Token string        `json:"token,omitempty"`
}

type UserResponse struct {
	ID                      string   `json:"id"`
	Name                    string   `json:"name"`
	Email                   string   `json:"email"`
	RidesPosted             []string `json:"ridesPosted"`
	RidesJoined             []string `json:"ridesJoined"`
	UnreadNotificationCount int64    `json:"unreadNotificationCount"`
}

func NewUserResponse(u *authdomain.User) *UserResponse {
	return &UserResponse{
		ID:                      u.ID,
		Name:                    u.Name,
		Email:                   u.Email,
		RidesPosted:             nonNil(u.RidesPosted),
		RidesJoined:             nonNil(u.RidesJoined),
		UnreadNotificationCount: u.UnreadNotificationCount,
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
