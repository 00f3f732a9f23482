package domain

// Principal is the authenticated identity derived from validating a bearer
// token with the identity provider. It is produced transiently per request
// and never persisted.
type Principal struct {
	ID     string
	Email  string
	Claims map[string]any

	// Role is populated only after a server-side role lookup; it is zero for
	// principals that merely passed token validation.
	Role Role
}
