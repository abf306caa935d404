package model

import "time"

// Role is the authorization scope of a profile.
type Role string

const (
    RoleClient Role = "client" // guest who books rooms
    RoleOwner  Role = "owner"  // hotel manager
    RoleAdmin  Role = "admin"  // platform operator
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
    switch r {
    case RoleClient, RoleOwner, RoleAdmin:
        return true
    }
    return false
}

// Profile represents an account as stored in the `users` table.  The
// profile id doubles as the identity id carried in the JWT subject, so
// there is a single row per user holding both credentials and profile
// data.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password (never serialized).
//  Role         – client, owner or admin.
//  FullName     – display name.
//  Phone        – optional E.164 phone used for SMS notifications.
//  IsActive     – whether the account may sign in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Profile struct {
    ID           uint64    `json:"id"`         // users.id
    Email        string    `json:"email"`      // users.email
    PasswordHash string    `json:"-"`          // users.password_hash
    Role         Role      `json:"role"`       // users.role
    FullName     string    `json:"full_name"`  // users.full_name
    Phone        *string   `json:"phone,omitempty"` // users.phone (nullable)
    IsActive     bool      `json:"is_active"`  // users.is_active
    CreatedAt    time.Time `json:"created_at"` // users.created_at
    UpdatedAt    time.Time `json:"updated_at"` // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA‑256 hash.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
