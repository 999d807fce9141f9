package model

import "time"

// ClientID identifies one browser tab, CLI profile or embedding frame
type ClientID string

// Role is a user's privilege level
type Role string

const (
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
)

// Owner account defaults, created on first access to the users collection
const (
	OwnerUsername     = "Owner"
	OwnerPassword     = "123"
	OwnerInitialScore = 9999
)

// Minimum credential lengths accepted at signup
const (
	MinUsernameLength = 3
	MinPasswordLength = 3
)

// User is a registered player record
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	Role         Role      `json:"role"`
	Score        int       `json:"score"`
	GamesPlayed  int       `json:"gamesPlayed"`
	IsBanned     bool      `json:"isBanned"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsOwner reports whether the user holds the owner role
func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

// Public returns a copy of the user with the password hash removed
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
