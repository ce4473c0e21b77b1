package model

import "time"

// User mirrors a row of the `users` table.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email (unique, lower-case)
	PhoneNumber  string    // users.phonenumber
	PasswordHash string    // users.password_hash (bcrypt)
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RoleCustomer is the only role issued at sign-up.
const RoleCustomer = "CUSTOMER"

// SessionUser is the copy of the signed-in user's row kept in the session
// cache. It never carries the password hash.
type SessionUser struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phonenumber"`
	Role        string `json:"role"`
}

// Session returns the cacheable view of u.
func (u User) Session() SessionUser {
	return SessionUser{ID: u.ID, Name: u.Name, Email: u.Email, PhoneNumber: u.PhoneNumber, Role: u.Role}
}

// ProfileUpdate lists the profile fields a user may change. Nil fields are
// left untouched.
type ProfileUpdate struct {
	Name         *string
	PhoneNumber  *string
	Email        *string
	PasswordHash *string
}

// Empty reports whether no field is set.
func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.PhoneNumber == nil && p.Email == nil && p.PasswordHash == nil
}

// RefreshToken models a row in `refresh_tokens`. Only the SHA-256 hash of
// the raw token is stored.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
