package engagement

// Toggle flips id's membership in the set: present is removed, absent is
// added. Returns the new set and whether id was added. Two toggles in a
// row restore the original state. Shared by watchlist membership and the
// movie like toggle.
func Toggle(set []string, id string) ([]string, bool) {
	out := make([]string, 0, len(set)+1)
	found := false
	for _, v := range set {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, id)
	}
	return out, !found
}
