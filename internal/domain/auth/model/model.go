package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account is the stored identity record. PasswordHash never leaves the
// service layer; use Public for anything written to a response.
type Account struct {
	ID             uuid.UUID
	Username       string
	Email          string
	PasswordHash   string
	Role           Role
	ProfilePicture string
	Followings     []uuid.UUID
	Followers      []uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type PublicAccount struct {
	ID             uuid.UUID `json:"_id"`
	Username       string    `json:"username"`
	Email          string    `json:"email,omitempty"`
	ProfilePicture string    `json:"profilePicture"`
	Followings     int       `json:"followings"`
	Followers      int       `json:"followers"`
}

func (a Account) Public() PublicAccount {
	return PublicAccount{
		ID:             a.ID,
		Username:       a.Username,
		Email:          a.Email,
		ProfilePicture: a.ProfilePicture,
		Followings:     len(a.Followings),
		Followers:      len(a.Followers),
	}
}

// Summary is the short form used in search results and follow lists.
type Summary struct {
	ID             uuid.UUID `json:"_id"`
	Username       string    `json:"username"`
	ProfilePicture string    `json:"profilePicture"`
}

func (a Account) Summary() Summary {
	return Summary{ID: a.ID, Username: a.Username, ProfilePicture: a.ProfilePicture}
}

func (a Account) Identity() Identity {
	return Identity{ID: a.ID, Username: a.Username, Role: a.Role}
}

func (a Account) IsFollowing(id uuid.UUID) bool {
	for _, f := range a.Followings {
		if f == id {
			return true
		}
	}
	return false
}

// Identity is the verified claim set attached to a request by the auth gate.
type Identity struct {
	ID       uuid.UUID
	Username string
	Role     Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	AccountID       uuid.UUID
	RefreshTokenJTI string
}
