package textutil

// Jaccard returns |a ∩ b| / |a ∪ b|. Returns 0 when both sets are empty; callers
// that need a different answer for the no-signal case must check first.
func Jaccard(a, b TokenSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	intersection := 0
	for token := range small {
		if large.Contains(token) {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
