package access

import (
	"pocket-signal-pro/internal/domain"
)

// AdminSet is the static set of administrator chat ids. It is built once at
// startup and read concurrently without further synchronization.
type AdminSet map[int64]struct{}

func NewAdminSet(ids []int64) AdminSet {
	set := make(AdminSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s AdminSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the member ids in ascending order.
func (s AdminSet) IDs() []int64 {
	out := make([]int64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// Classify derives the caller's role. Admin membership wins regardless of
// verification state, so an admin who never registered still gets the admin
// view.
func Classify(user domain.UserRecord, admins AdminSet) domain.Role {
	if admins.Contains(user.ID) {
		return domain.RoleAdmin
	}
	if user.State == domain.StateVerified {
		return domain.RoleVerified
	}
	return domain.RoleUnverified
}

// CanViewContent reports whether the role may see the signal flow screens.
func CanViewContent(role domain.Role) bool {
	return role == domain.RoleAdmin || role == domain.RoleVerified
}
