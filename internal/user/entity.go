// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/edustack/edustack-api/internal/core"
)

type User struct {
	ID                      int64      `db:"id"`
	Name                    string     `db:"name"`
	Email                   string     `db:"email"`
	PasswordHash            string     `db:"password_hash"`
	RoleID                  int64      `db:"role_id"`
	Role                    string     `db:"role_name"`
	ProfileImage            *string    `db:"profile_image"`
	Phone                   *string    `db:"phone"`
	Bio                     *string    `db:"bio"`
	IsActive                bool       `db:"is_active"`
	EmailVerified           bool       `db:"email_verified"`
	VerificationToken       *string    `db:"verification_token"`
	VerificationTokenExpiry *time.Time `db:"verification_token_expiry"`
	TokenVersion            int        `db:"token_version"`
	CreatedAt               time.Time  `db:"created_at"`
	UpdatedAt               time.Time  `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == core.RoleAdmin
}

func (u *User) IsInstructor() bool {
	return u.Role == core.RoleInstructor
}
