package user

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID        string    `json:"userId"`
	Email     string    `json:"email"`
	Password  string    `json:"password,omitempty"`
	FullName  string    `json:"fullName"`
	Phone     string    `json:"phone,omitempty"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileUpdate carries the optional fields a user may change on
// their own profile. Nil means "leave unchanged".
type ProfileUpdate struct {
	FullName  *string `json:"fullName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}
