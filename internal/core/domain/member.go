package domain

import "time"

// Role enumerates the stored roles a member profile can carry.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Member mirrors the persisted representation in the profiles table.
// The role and verified flag are authoritative only in the store; they are
// re-read per request and never derived from client-supplied claims.
type Member struct {
	ID        string
	Email     string
	Role      Role
	Verified  bool
	CreatedAt time.Time
}
