package authapi

import (
	"time"

	"github.com/Abdelrahmanaman/chef-circle/cmd/identity"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=128"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	ProfilePicture *string   `json:"profile_picture"`
	UnitSystem     string    `json:"unit_system"`
	CreatedAt      time.Time `json:"created_at"`
}

type meResponse struct {
	User userResponse `json:"user"`
}

func toUserResponse(u identity.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		ProfilePicture: u.ProfilePicture,
		UnitSystem:     u.UnitSystem,
		CreatedAt:      u.CreatedAt,
	}
}
