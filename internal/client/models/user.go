package models

import "slices"

// SystemRole gates administrative operations.
type SystemRole string

const (
	RoleAdmin    SystemRole = "Admin"
	RoleOperator SystemRole = "Operator"
)

// UserProfile is an operator or administrator identity.
type UserProfile struct {
	Entity
	UserID          string     `json:"userId"`
	Name            string     `json:"name"`
	SystemRole      SystemRole `json:"systemRole"`
	OperationalRole string     `json:"operationalRole"`
	AllowedPlods    []string   `json:"allowedPlods"`

	// SignatureKey references the captured signature image in the
	// signature store; empty when no signature has been captured.
	SignatureKey string `json:"signatureKey,omitempty"`

	// PINHash is the bcrypt hash of the operator's PIN, empty when no
	// PIN is set. The plaintext PIN is never persisted.
	PINHash string `json:"pinHash,omitempty"`
}

func (u *UserProfile) Clone() Record {
	c := *u
	c.AllowedPlods = slices.Clone(u.AllowedPlods)
	return &c
}

func (u *UserProfile) Remap(old, new string) {
	remapIDs(u.AllowedPlods, old, new)
}

// IsAdmin reports whether the profile may perform admin operations.
func (u *UserProfile) IsAdmin() bool {
	return u.SystemRole == RoleAdmin
}
