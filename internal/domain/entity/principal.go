package entity

// Principal is the verified identity attached to an authenticated request.
// It is rebuilt from token claims on every request and never persisted.
type Principal struct {
	AccountID int64
	Email     string
	Role      Role
}

// HasRole reports whether the principal acts under role.
func (p *Principal) HasRole(role Role) bool {
	return p != nil && p.Role == role
}
