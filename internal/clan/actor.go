package clan

// Actor is the user performing an operation, carrying the role IDs the
// gateway reported for them. Authorization is checked against the role
// bag, never re-fetched.
type Actor struct {
	ID      string
	RoleIDs []string
}

// HasRole reports whether the actor carries roleID. An empty roleID never
// matches, so unconfigured roles fail closed.
func (a Actor) HasRole(roleID string) bool {
	if roleID == "" {
		return false
	}
	for _, r := range a.RoleIDs {
		if r == roleID {
			return true
		}
	}
	return false
}
