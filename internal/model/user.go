package model

import "time"

// User represents an application user record as stored in the
// `users` table. The password is never stored in plain text; only
// the bcrypt hash is kept. Role is either CUSTOMER or ADMIN and is
// carried into the JWT so middleware can authorize requests without
// a database round trip.
type User struct {
	ID           uint64     // users.id
	FirstName    string     // users.first_name
	LastName     string     // users.last_name
	Email        string     // users.email (unique, stored lowercase)
	Phone        *string    // users.phone (nullable)
	PasswordHash string     // users.password_hash
	Role         string     // users.role (CUSTOMER or ADMIN)
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Role values stored in users.role and in the JWT "role" claim.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// RefreshToken models an entry in the `refresh_tokens` table. The
// raw token is returned to the client once and only its SHA-256
// hash is persisted.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
