package model

import "time"

// User represents an application account as stored in the `users`
// table. Customers register themselves with their license plate as the
// username; concierge, dealer and owner accounts are created by an
// owner. The json tags are omitted here because these structs are used
// by the repository layer; handlers define response types with their
// own tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name (a license plate for customers).
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – role name (customer, concierge, dealer, owner).
//  FirstName    – given name.
//  LastName     – family name.
//  Phone        – contact phone (optional).
//  Address      – contact address (optional).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	Phone        string    // users.phone
	Address      string    // users.address
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and carries metadata for expiry and
// revocation.  The plain token is never stored; only its SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
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
