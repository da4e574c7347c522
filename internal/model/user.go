package model

import "time"

// User represents an account of the ticketing service.  Users are keyed by
// a numeric id chosen at registration.  Privilege decides both the
// priority of the user's orders in the queue and whether administrative
// operations are allowed.
//
// Fields:
//  ID           – numeric user identifier.
//  Username     – display name.
//  PasswordHash – bcrypt hash of the password.
//  Privilege    – 0 for regular users, >= the admin privilege for admins.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.user_id
    Username     string    // users.username
    PasswordHash string    // users.password_hash
    Privilege    int       // users.privilege
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA‑256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA‑256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
