// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/edustack/edustack-api/internal/core"
)

type UpdateProfileRequest struct {
	Name         *string `json:"name,omitempty"          validate:"omitempty,notblank,max=100"`
	Phone        *string `json:"phone,omitempty"         validate:"omitempty,max=20"`
	Bio          *string `json:"bio,omitempty"           validate:"omitempty,max=2000"`
	ProfileImage *string `json:"profile_image,omitempty" validate:"omitempty,url,max=500"`
}

type UserResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	ProfileImage  *string   `json:"profile_image"`
	Phone         *string   `json:"phone"`
	Bio           *string   `json:"bio"`
	IsActive      bool      `json:"is_active"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PublicProfileResponse is what other users may see: no contact details.
type PublicProfileResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	ProfileImage *string   `json:"profile_image"`
	Bio          *string   `json:"bio"`
	CreatedAt    time.Time `json:"created_at"`
}

type ListUsersParams struct {
	core.ListParams
	Search   string
	Role     string
	IsActive *bool
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		ProfileImage:  u.ProfileImage,
		Phone:         u.Phone,
		Bio:           u.Bio,
		IsActive:      u.IsActive,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func ToPublicProfileResponse(u *User) PublicProfileResponse {
	return PublicProfileResponse{
		ID:           u.ID,
		Name:         u.Name,
		Role:         u.Role,
		ProfileImage: u.ProfileImage,
		Bio:          u.Bio,
		CreatedAt:    u.CreatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
