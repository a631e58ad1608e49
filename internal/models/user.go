package models

import "time"

// User roles
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// InternalUser is a user account record. Accounts are provisioned by the
// external identity provider; Core stores only what it needs locally.
type InternalUser struct {
	ID          string    `json:"id" badgerhold:"key"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserKeyValue is a per-user configuration entry.
type UserKeyValue struct {
	ID        string    `json:"id" badgerhold:"key"` // userID|key
	UserID    string    `json:"user_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserKVID builds the composite key for a per-user KV entry.
func UserKVID(userID, key string) string {
	return userID + "|" + key
}

// SystemKeyValue is a system-level configuration entry (non-user-scoped),
// used for API keys and operational flags.
type SystemKeyValue struct {
	Key       string    `json:"key" badgerhold:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
