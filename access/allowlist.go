package access

import "strings"

// AllowList is the set of authorized card UIDs, stored as normalized
// uppercase-hex strings. Its size comes from configuration alone.
type AllowList struct {
	set map[string]struct{}
}

// NewAllowList normalizes and stores ids. Blank entries are dropped.
func NewAllowList(ids ...string) AllowList {
	l := AllowList{set: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		id = strings.ToUpper(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		l.set[id] = struct{}{}
	}
	return l
}

// Contains reports membership. The probe is normalized the same way
// stored entries were, so matching is case-insensitive.
func (l AllowList) Contains(uid string) bool {
	_, ok := l.set[strings.ToUpper(uid)]
	return ok
}

// Len returns the number of authorized cards.
func (l AllowList) Len() int { return len(l.set) }
