package ranking

// Validate reports whether a parsed order is a usable ranking: it must be
// non-empty, cover at least the expected number of labels, and contain no
// duplicate labels. Validation never errors; an ambiguous parse is simply
// invalid.
func Validate(order []string, expected int) bool {
	if len(order) == 0 || len(order) < expected {
		return false
	}
	seen := make(map[string]bool, len(order))
	for _, label := range order {
		if seen[label] {
			return false
		}
		seen[label] = true
	}
	return true
}
