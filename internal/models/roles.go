// roles.go — the role rank total order used for all authorization gating.
//
// Every mutating operation on schedules and games is gated by one of these
// checks before any state is touched; a failed check must never leave a
// partial write behind (the middleware rejects the request before the handler
// runs at all).
package models

// roleRanks fixes the total order PENDING(0) < USER(1) < MODERATOR(2) < ADMIN(3).
var roleRanks = map[UserRole]int{
	UserRolePending:   0,
	UserRoleUser:      1,
	UserRoleModerator: 2,
	UserRoleAdmin:     3,
}

// Rank returns the role's position in the total order. Unknown roles rank
// below PENDING so a corrupted row can never pass a gate.
func (r UserRole) Rank() int {
	rank, ok := roleRanks[r]
	if !ok {
		return -1
	}
	return rank
}

// IsRoleOrHigher reports whether role ranks at least as high as required.
func IsRoleOrHigher(role, required UserRole) bool {
	return role.Rank() >= required.Rank()
}

// IsRoleHigher reports whether role ranks strictly higher than required.
// No role is strictly higher than ADMIN, so an ADMIN target is always false.
// Consistency invariant: IsRoleHigher(r, q) implies IsRoleOrHigher(r, q).
func IsRoleHigher(role, required UserRole) bool {
	return role.Rank() > required.Rank()
}
